package comment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	cierrors "github.com/randalmurphal/nativeci/errors"
	cihttp "github.com/randalmurphal/nativeci/http"
	"github.com/randalmurphal/nativeci/logging"
)

// Result reports what Upsert did.
type Result struct {
	Comment *Comment

	// Created is true when no managed comment existed yet.
	Created bool
}

// Upserter maintains one managed comment per title.
type Upserter struct {
	provider Provider
	botLogin string
	logger   *slog.Logger
}

// Option configures an Upserter.
type Option func(*Upserter)

// WithBotLogin sets the author login that identifies managed comments.
// GitHub App tokens post as "<app-slug>[bot]". Empty keeps the default.
func WithBotLogin(login string) Option {
	return func(u *Upserter) {
		if login != "" {
			u.botLogin = login
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Upserter) { u.logger = logger }
}

// NewUpserter creates an upserter writing through provider.
func NewUpserter(provider Provider, opts ...Option) *Upserter {
	u := &Upserter{provider: provider, botLogin: DefaultBotLogin}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = logging.Ensure(u.logger)
	return u
}

// BotLogin returns the login managed comments are matched against.
func (u *Upserter) BotLogin() string {
	return u.botLogin
}

// Managed reports whether c is the comment maintained for title.
func (u *Upserter) Managed(c Comment, title string) bool {
	return c.Author == u.botLogin && strings.Contains(c.Body, Heading(title))
}

// Find scans every page of comments on issue and returns the first managed
// comment for title, or nil when there is none.
func (u *Upserter) Find(ctx context.Context, issue int, title string) (*Comment, error) {
	iter := cihttp.NewPageIterator(func(ctx context.Context, page int) ([]Comment, bool, error) {
		return u.provider.List(ctx, issue, page, PerPage)
	})

	found, ok, err := iter.Find(ctx, func(c Comment) bool { return u.Managed(c, title) })
	if err != nil {
		return nil, fmt.Errorf("list %s comments on #%d: %w", u.provider.Name(), issue, err)
	}
	u.logger.Debug("scanned comments", "provider", u.provider.Name(), "issue", issue,
		"scanned", iter.Fetched(), "pages", iter.Pages(), "found", ok)
	if !ok {
		return nil, nil
	}
	return &found, nil
}

// Upsert edits the managed comment for title on issue, or creates it.
// body is the complete comment text and must contain Heading(title).
func (u *Upserter) Upsert(ctx context.Context, issue int, title, body string) (*Result, error) {
	if issue <= 0 {
		return nil, ErrNoIssue
	}
	if strings.TrimSpace(title) == "" {
		return nil, cierrors.Missing("title")
	}

	existing, err := u.Find(ctx, issue, title)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		updated, err := u.provider.Update(ctx, issue, existing.ID, body)
		if err != nil {
			return nil, fmt.Errorf("update %s comment %d: %w", u.provider.Name(), existing.ID, err)
		}
		u.logger.Info("updated comment", "provider", u.provider.Name(), "issue", issue, "id", updated.ID)
		return &Result{Comment: updated}, nil
	}

	created, err := u.provider.Create(ctx, issue, body)
	if err != nil {
		return nil, fmt.Errorf("create %s comment on #%d: %w", u.provider.Name(), issue, err)
	}
	u.logger.Info("created comment", "provider", u.provider.Name(), "issue", issue, "id", created.ID)
	return &Result{Comment: created, Created: true}, nil
}
