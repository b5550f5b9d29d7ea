package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonwraymond/mathproxy/config"
	"github.com/jonwraymond/mathproxy/token"
	"github.com/jonwraymond/mathproxy/upstream"
)

func TestApp_TokensServedWhileDraining(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: upstream.TokenCookie, Value: "tok"})
	}))
	defer up.Close()

	cfg := config.Default()
	cfg.Upstream.BaseURL = up.URL
	cfg.Observe.MetricsExporter = "none"

	a, err := newApp(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var drained error
	err = a.run(ctx, func(ctx context.Context, _ http.Handler) error {
		cancel()
		<-ctx.Done()

		// An in-flight request still needs a token after the signal.
		actx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		_, drained = a.supervisor.Acquire(actx)
		return nil
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if drained != nil {
		t.Errorf("Acquire() during drain error = %v, want a token", drained)
	}

	if _, err := a.supervisor.Acquire(context.Background()); !errors.Is(err, token.ErrStopped) {
		t.Errorf("Acquire() after run error = %v, want ErrStopped", err)
	}
}
