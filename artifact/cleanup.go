package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/go-github/v57/github"

	cierrors "github.com/randalmurphal/nativeci/errors"
	cihttp "github.com/randalmurphal/nativeci/http"
	"github.com/randalmurphal/nativeci/logging"
)

// CleanupResult summarizes a deletion pass.
type CleanupResult struct {
	Deleted []int64 `json:"deleted"`
	Missing []int64 `json:"missing"` // already gone (404)
	Failed  []int64 `json:"failed,omitempty"`
	Errors  []error `json:"-"`
	DryRun  bool    `json:"dryRun"`
}

// Err joins every deletion failure under ErrDeleteFailed, nil when none failed.
func (r *CleanupResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d: %w", ErrDeleteFailed, len(r.Failed),
		len(r.Deleted)+len(r.Missing)+len(r.Failed), errors.Join(r.Errors...))
}

// Deleter removes workflow artifacts.
type Deleter struct {
	client *github.Client
	logger *slog.Logger
}

// NewDeleter creates a deleter backed by client. A nil logger means slog.Default.
func NewDeleter(client *github.Client, logger *slog.Logger) *Deleter {
	return &Deleter{client: client, logger: logging.Ensure(logger)}
}

// Delete removes ids one at a time. An artifact that no longer exists counts
// as missing rather than failed. Every id is attempted before the combined
// error is returned; the result is always non-nil.
func (d *Deleter) Delete(ctx context.Context, repo Repository, ids []int64, dryRun bool) (*CleanupResult, error) {
	result := &CleanupResult{
		Deleted: make([]int64, 0, len(ids)),
		Missing: make([]int64, 0),
		DryRun:  dryRun,
	}

	for _, id := range ids {
		if dryRun {
			d.logger.Info("would delete artifact", "repository", repo.String(), "id", id)
			result.Deleted = append(result.Deleted, id)
			continue
		}

		_, err := d.client.Actions.DeleteArtifact(ctx, repo.Owner, repo.Name, id)
		switch {
		case err == nil:
			d.logger.Info("deleted artifact", "repository", repo.String(), "id", id)
			result.Deleted = append(result.Deleted, id)
		case cihttp.IsNotFound(err):
			d.logger.Info("artifact already deleted", "repository", repo.String(), "id", id)
			result.Missing = append(result.Missing, id)
		default:
			d.logger.Warn("failed to delete artifact", "repository", repo.String(), "id", id, "error", err)
			result.Failed = append(result.Failed, id)
			result.Errors = append(result.Errors, fmt.Errorf("delete artifact %d: %w", id, cihttp.Classify(err)))
		}

		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	return result, result.Err()
}

// ParseIDs parses artifact ids separated by spaces, commas or newlines.
// Empty input yields no ids.
func ParseIDs(s string) ([]int64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})

	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, cierrors.Invalid("artifact-ids", "%q is not an artifact id", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
