// Package config resolves step inputs from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags (ResolveWithFlags)
//  2. Step inputs (INPUT_<NAME>, including legacy alias names)
//  3. Local project file (.nativeci.yaml in the git root)
//  4. Global config (~/.config/<app>/config.yaml)
//  5. Fallback environment variables (e.g. GITHUB_TOKEN)
//  6. Built-in defaults
//
// # Basic Usage
//
//	resolver := config.NewResolver(config.ResolverConfig{
//	    Keys:            []string{"github-token", "title", "artifact-url"},
//	    Aliases:         map[string][]string{"github-token": {"github_token"}},
//	    EnvFallbacks:    map[string][]string{"github-token": {"GITHUB_TOKEN"}},
//	    LocalConfigName: ".nativeci.yaml",
//	})
//
//	cfg := resolver.Resolve()
//	if err := cfg.Require("github-token", "title"); err != nil {
//	    return err // one error per missing field
//	}
//
// # Step Inputs
//
// The Actions runner exposes the input "artifact-url" as INPUT_ARTIFACT-URL.
// A nil Lookup reads them through githubactions.GetInput.
//
// # Config Sources
//
// Each resolved value tracks where it came from:
//   - "default": Built-in default value
//   - "env": Fallback environment variable
//   - "global": ~/.config/<app>/config.yaml
//   - "local": .nativeci.yaml in git root
//   - "input": Step input
//   - "flag": Command-line flag
package config
