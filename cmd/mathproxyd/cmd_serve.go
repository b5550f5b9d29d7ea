package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/mathproxy/server"
)

func newServeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, stdout, stderr)
		},
	}
	cmd.Flags().Int("port", 0, "Port to listen on (overrides config and PORT)")
	cmd.Flags().Bool("check", false, "Validate the configuration, wire every component, and exit")
	return cmd
}

func runServe(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, stderr)
	if err != nil {
		return err
	}

	if check, _ := cmd.Flags().GetBool("check"); check {
		fmt.Fprintln(stdout, "configuration ok")
		return a.shutdown(cfg.Server.ShutdownTimeout.Std())
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		_ = a.shutdown(cfg.Server.ShutdownTimeout.Std())
		return err
	}
	fmt.Fprintf(stdout, "mathproxyd listening on %s\n", ln.Addr())

	return a.run(ctx, func(ctx context.Context, h http.Handler) error {
		return server.Serve(ctx, ln, h, server.ServeOptions{
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Std(),
			ShutdownTimeout:   cfg.Server.ShutdownTimeout.Std(),
		})
	})
}
