package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"
	"gopkg.in/yaml.v3"

	cierrors "github.com/randalmurphal/nativeci/errors"
)

// LookupFunc returns the raw value of a step input, or "" when unset.
type LookupFunc func(name string) string

// ResolverConfig configures the hierarchical config resolver.
type ResolverConfig struct {
	// Keys lists the canonical input names to resolve, e.g. "github-token".
	// Keys in Defaults are always resolved too.
	Keys []string

	// Aliases maps a canonical key to legacy input names that are read when
	// the canonical input is empty. For example "github-token" may be
	// aliased to "github_token".
	Aliases map[string][]string

	// EnvFallbacks maps a key to environment variables consulted when no
	// other source sets it, e.g. "github-token" -> GITHUB_TOKEN.
	EnvFallbacks map[string][]string

	// Lookup reads step inputs. Defaults to githubactions.GetInput.
	Lookup LookupFunc

	// Getenv reads fallback environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// GlobalConfigDir is the name of the directory under ~/.config/
	// where the global config is stored.
	GlobalConfigDir string

	// GlobalConfigFile is the filename for global config.
	// Defaults to "config.yaml" if empty.
	GlobalConfigFile string

	// LocalConfigName is the filename for local config in the git root.
	// For example, ".nativeci.yaml".
	LocalConfigName string

	// Defaults provides the default values for configuration keys.
	Defaults map[string]string

	// ValidFileKeys lists keys that the global and local config files may
	// set. If nil, all keys are valid.
	ValidFileKeys []string

	// GitRootFinder is a function that finds the git root directory.
	// If nil, uses a simple git root detection.
	GitRootFinder func(startDir string) (string, error)

	// Logger receives warnings about unreadable config files.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

func (c ResolverConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// Resolver handles hierarchical configuration resolution.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver creates a new configuration resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	resolver := &Resolver{config: cfg.withDefaults()}

	finder := cfg.GitRootFinder
	if finder == nil {
		finder = func(dir string) (string, error) { return findGitRoot(dir), nil }
	}
	if root, err := finder("."); err == nil && root != "" {
		resolver.gitRoot = root
		if cfg.LocalConfigName != "" {
			resolver.localPath = filepath.Join(root, cfg.LocalConfigName)
		}
	}

	if cfg.GlobalConfigDir != "" {
		if home, err := os.UserHomeDir(); err == nil {
			resolver.globalPath = filepath.Join(
				home, ".config", cfg.GlobalConfigDir, cfg.globalConfigFile(),
			)
		}
	}

	return resolver
}

// NewResolverWithPaths creates a resolver with explicit global and local paths.
// This is useful for testing or when paths are known ahead of time.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	return &Resolver{
		config:     cfg.withDefaults(),
		globalPath: globalPath,
		localPath:  localPath,
	}
}

func (c ResolverConfig) withDefaults() ResolverConfig {
	if c.Lookup == nil {
		c.Lookup = githubactions.GetInput
	}
	if c.Getenv == nil {
		c.Getenv = os.Getenv
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.config.Logger.Warn(msg)
}

// Resolved holds the final merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Bool parses a boolean-like value. Empty means false.
// Accepted spellings are those of strconv.ParseBool plus "yes"/"no".
func (c *Resolved) Bool(key string) (bool, error) {
	raw := strings.TrimSpace(c.values[key])
	switch strings.ToLower(raw) {
	case "":
		return false, nil
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, cierrors.Invalid(key, "%q is not a boolean", raw)
	}
	return v, nil
}

// Int parses an integer value. Empty yields 0 and ok=false.
func (c *Resolved) Int(key string) (n int64, ok bool, err error) {
	raw := strings.TrimSpace(c.values[key])
	if raw == "" {
		return 0, false, nil
	}
	n, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, cierrors.Invalid(key, "%q is not an integer", raw)
	}
	return n, true, nil
}

// Require returns an error naming every key whose value is empty.
func (c *Resolved) Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(c.values[key]) == "" {
			missing = append(missing, key)
		}
	}
	return cierrors.Missing(missing...)
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	result := make(map[string]string, len(c.values))
	for k, v := range c.values {
		result[k] = v
	}
	return result
}

// Keys returns all configuration keys.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Resolve builds the final config by merging all sources.
// Priority (highest to lowest): inputs > local > global > env fallbacks > defaults.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	r.applyDefaults(cfg)
	r.applyEnvFallbacks(cfg)
	r.applyFile(cfg, r.globalPath, SourceGlobal, r.config.ValidFileKeys)
	r.applyFile(cfg, r.localPath, SourceLocal, r.config.ValidFileKeys)
	r.applyInputs(cfg)

	return cfg
}

// ResolveWithFlags resolves config and applies flag overrides.
// Empty flag values are ignored so they never mask an input.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()

	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}

	return cfg
}

func (r *Resolver) keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, k := range r.config.Keys {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range r.config.Defaults {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func (r *Resolver) applyDefaults(cfg *Resolved) {
	for key, value := range r.config.Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}
}

func (r *Resolver) applyEnvFallbacks(cfg *Resolved) {
	for key, names := range r.config.EnvFallbacks {
		for _, name := range names {
			if value := strings.TrimSpace(r.config.Getenv(name)); value != "" {
				cfg.values[key] = value
				cfg.sources[key] = SourceEnv
				break
			}
		}
	}
}

func (r *Resolver) applyFile(cfg *Resolved, path string, source Source, valid []string) {
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist - not an error
	}

	var parsed map[string]interface{}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range parsed {
		if len(valid) > 0 && !contains(valid, key) {
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = source
		}
	}
}

func (r *Resolver) applyInputs(cfg *Resolved) {
	for _, key := range r.keys() {
		names := append([]string{key}, r.config.Aliases[key]...)
		for _, name := range names {
			if value := r.config.Lookup(name); value != "" {
				cfg.values[key] = value
				cfg.sources[key] = SourceInput
				break
			}
		}
	}
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// Helper functions

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

// findGitRoot finds the git root by looking for .git directory.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached root
		}
		dir = parent
	}

	return ""
}
