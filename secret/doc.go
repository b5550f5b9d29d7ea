// Package secret resolves environment variables and secret references in
// configuration values before the proxy uses them.
//
// Every string read from the config file goes through a Resolver:
//
//   - ${VAR} is expanded strictly: a missing VAR is an error, $$ is a
//     literal dollar.
//   - secretref:<provider>:<ref> is replaced by the provider's value, either
//     as the whole value or inline ("Bearer secretref:env:RENDER_TOKEN").
//
// Two providers ship with the package and are registered on
// DefaultRegistry: "env" reads an environment variable and "file" reads a
// file (trailing newline trimmed), which is how container secrets are
// usually mounted.
package secret
