package fingerprint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	cierrors "github.com/randalmurphal/nativeci/errors"
)

// ConfigFileName is the project file holding fingerprint options.
const ConfigFileName = ".nativeci.yaml"

// Platform is a native platform directory.
type Platform string

// Supported platforms.
const (
	Android Platform = "android"
	IOS     Platform = "ios"
)

// ParsePlatform validates a platform input.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.TrimSpace(s)); p {
	case Android, IOS:
		return p, nil
	default:
		return "", cierrors.Invalid("platform", "Invalid platform: %s (want android or ios)", s)
	}
}

// Options tunes what the fingerprint covers.
type Options struct {
	// ExtraSources are files, directories or doublestar globs relative to the
	// project root that are hashed in addition to the defaults.
	ExtraSources []string `yaml:"extraSources"`

	// IgnorePaths are doublestar globs relative to the project root.
	IgnorePaths []string `yaml:"ignorePaths"`
}

type projectFile struct {
	Fingerprint Options `yaml:"fingerprint"`
}

// LoadOptions reads the fingerprint section of dir/.nativeci.yaml.
// A missing file yields zero Options.
func LoadOptions(dir string) (Options, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Options{}, nil
	}
	if err != nil {
		return Options{}, fmt.Errorf("read %s: %w", path, err)
	}

	var file projectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Options{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return file.Fingerprint, nil
}

// DefaultIgnores returns the globs ignored for platform.
func DefaultIgnores(platform Platform) []string {
	ignores := []string{"**/.DS_Store"}
	switch platform {
	case IOS:
		ignores = append(ignores,
			"ios/Pods/**",
			"ios/build/**",
			"ios/**/xcuserdata/**",
		)
	case Android:
		ignores = append(ignores,
			"android/build/**",
			"android/app/build/**",
			"android/.gradle/**",
			"android/.cxx/**",
			"android/local.properties",
		)
	}
	return ignores
}

// ResolveDir returns workingDir as an absolute path, resolving relative
// paths against cwd. An empty workingDir means cwd.
func ResolveDir(cwd, workingDir string) string {
	if workingDir == "" {
		return filepath.Clean(cwd)
	}
	if filepath.IsAbs(workingDir) {
		return filepath.Clean(workingDir)
	}
	return filepath.Join(cwd, workingDir)
}
