// Package config loads the mathproxyd configuration.
//
// Values are layered, later layers winning:
//
//  1. Defaults (Default): port 8080, ten warm tokens, the public solver
//     site, no render endpoint, no auth.
//  2. A TOML file, when a path is given. Unknown keys are an error.
//  3. Environment overrides: PORT and the MATHPROXY_* variables listed in
//     EnvOverrides.
//  4. Secret resolution: strings that may hold credentials go through a
//     secret.Resolver, so ${VAR} and secretref:env:/secretref:file:
//     references work in both the file and the environment.
//
// Validate runs last.
package config
