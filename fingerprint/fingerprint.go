package fingerprint

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/randalmurphal/nativeci/logging"
)

// ErrNoPlatformDir indicates the project has no directory for the platform.
var ErrNoPlatformDir = errors.New("platform directory not found")

// Source kinds.
const (
	KindDir      = "dir"
	KindFile     = "file"
	KindContents = "contents"
)

// Source is one hashed input of a fingerprint.
type Source struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

// Fingerprint is the combined hash and the sources it was built from.
type Fingerprint struct {
	Hash    string   `json:"hash"`
	Sources []Source `json:"sources"`
}

// Hasher computes fingerprints for one project directory.
type Hasher struct {
	root     string
	platform Platform
	ignores  []string
	extras   []string
	logger   *slog.Logger
}

// NewHasher creates a hasher for the project at root.
func NewHasher(root string, platform Platform, opts Options, logger *slog.Logger) (*Hasher, error) {
	ignores := append(DefaultIgnores(platform), opts.IgnorePaths...)
	for _, pattern := range append(append([]string(nil), ignores...), opts.ExtraSources...) {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid glob %q", pattern)
		}
	}

	return &Hasher{
		root:     root,
		platform: platform,
		ignores:  ignores,
		extras:   opts.ExtraSources,
		logger:   logging.Ensure(logger),
	}, nil
}

// Compute hashes every source and combines them.
func (h *Hasher) Compute(ctx context.Context) (*Fingerprint, error) {
	var sources []Source

	platformDir := string(h.platform)
	info, err := os.Stat(filepath.Join(h.root, platformDir))
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoPlatformDir, filepath.Join(h.root, platformDir))
	}
	src, err := h.hashDir(ctx, platformDir)
	if err != nil {
		return nil, err
	}
	sources = append(sources, src)

	if src, ok, err := h.hashPackageJSON(); err != nil {
		return nil, err
	} else if ok {
		sources = append(sources, src)
	}

	if info, err := os.Stat(filepath.Join(h.root, "patches")); err == nil && info.IsDir() {
		src, err := h.hashDir(ctx, "patches")
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	extras, err := h.extraSources(ctx)
	if err != nil {
		return nil, err
	}
	sources = append(sources, extras...)

	return &Fingerprint{Hash: combine(sources), Sources: sources}, nil
}

// Compute is a convenience wrapper around NewHasher and Hasher.Compute.
func Compute(ctx context.Context, root string, platform Platform, opts Options, logger *slog.Logger) (*Fingerprint, error) {
	h, err := NewHasher(root, platform, opts, logger)
	if err != nil {
		return nil, err
	}
	return h.Compute(ctx)
}

func (h *Hasher) ignored(rel string) bool {
	for _, pattern := range h.ignores {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// hashDir hashes the files under rel. Each entry contributes
// "<path>\x00<file hash>\n"; entries are sorted before hashing.
func (h *Hasher) hashDir(ctx context.Context, rel string) (Source, error) {
	var entries []string

	err := filepath.WalkDir(filepath.Join(h.root, rel), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := h.rel(path)
		if err != nil {
			return err
		}
		if h.ignored(relPath) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		sum, err := h.hashEntry(path, d)
		if err != nil {
			return err
		}
		if sum != "" {
			entries = append(entries, relPath+"\x00"+sum+"\n")
		}
		return nil
	})
	if err != nil {
		return Source{}, fmt.Errorf("hash %s: %w", rel, err)
	}

	sort.Strings(entries)
	hash := sha1.New()
	for _, e := range entries {
		io.WriteString(hash, e)
	}

	h.logger.Debug("hashed directory", "path", rel, "files", len(entries))
	return Source{Kind: KindDir, ID: filepath.ToSlash(rel), Hash: hex.EncodeToString(hash.Sum(nil))}, nil
}

// hashEntry hashes a regular file's contents or a symlink's target.
// Other file types are skipped.
func (h *Hasher) hashEntry(path string, d fs.DirEntry) (string, error) {
	switch {
	case d.Type()&fs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return "", err
		}
		return hashBytes([]byte(target)), nil
	case d.Type().IsRegular():
		return hashFile(path)
	default:
		return "", nil
	}
}

// hashPackageJSON hashes the dependency maps of package.json in canonical
// form so formatting and unrelated fields do not change the fingerprint.
func (h *Hasher) hashPackageJSON() (Source, bool, error) {
	data, err := os.ReadFile(filepath.Join(h.root, "package.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return Source{}, false, nil
	}
	if err != nil {
		return Source{}, false, fmt.Errorf("read package.json: %w", err)
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Source{}, false, fmt.Errorf("parse package.json: %w", err)
	}

	// encoding/json writes map keys in sorted order.
	canonical, err := json.Marshal(map[string]map[string]string{
		"dependencies":    nonNil(pkg.Dependencies),
		"devDependencies": nonNil(pkg.DevDependencies),
	})
	if err != nil {
		return Source{}, false, err
	}

	return Source{Kind: KindContents, ID: "package.json:dependencies", Hash: hashBytes(canonical)}, true, nil
}

func (h *Hasher) extraSources(ctx context.Context) ([]Source, error) {
	var sources []Source
	seen := make(map[string]bool)

	for _, entry := range h.extras {
		pattern := filepath.ToSlash(filepath.Clean(entry))

		matches := []string{pattern}
		if strings.ContainsAny(pattern, "*?[{") {
			var err error
			matches, err = doublestar.Glob(os.DirFS(h.root), pattern)
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", entry, err)
			}
			sort.Strings(matches)
		}

		for _, rel := range matches {
			if seen[rel] || h.ignored(rel) {
				continue
			}
			seen[rel] = true

			path := filepath.Join(h.root, filepath.FromSlash(rel))
			info, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				h.logger.Warn("extra fingerprint source not found", "path", rel)
				continue
			}
			if err != nil {
				return nil, err
			}

			if info.IsDir() {
				src, err := h.hashDir(ctx, filepath.FromSlash(rel))
				if err != nil {
					return nil, err
				}
				sources = append(sources, src)
				continue
			}

			sum, err := hashFile(path)
			if err != nil {
				return nil, fmt.Errorf("hash %s: %w", rel, err)
			}
			sources = append(sources, Source{Kind: KindFile, ID: rel, Hash: sum})
		}
	}
	return sources, nil
}

func (h *Hasher) rel(path string) (string, error) {
	rel, err := filepath.Rel(h.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// combine hashes the sorted "<kind>:<id>:<hash>\n" lines of all sources.
func combine(sources []Source) string {
	lines := make([]string, len(sources))
	for i, s := range sources {
		lines[i] = s.Kind + ":" + s.ID + ":" + s.Hash + "\n"
	}
	sort.Strings(lines)
	return hashBytes([]byte(strings.Join(lines, "")))
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha1.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

func hashBytes(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
