package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"

	cihttp "github.com/randalmurphal/nativeci/http"
	"github.com/randalmurphal/nativeci/logging"
)

// InstallationToken is a short-lived token scoped to one app installation.
type InstallationToken struct {
	Token          string
	ExpiresAt      time.Time
	InstallationID int64
}

// Exchanger trades an app JWT for installation tokens.
type Exchanger struct {
	client *github.Client
	logger *slog.Logger
}

// NewExchanger creates an exchanger. Only the API base URL of client is
// used; requests authenticate with a fresh app JWT on every call.
func NewExchanger(client *github.Client, logger *slog.Logger) *Exchanger {
	return &Exchanger{client: client, logger: logging.Ensure(logger)}
}

// Exchange mints an app JWT and returns an installation token for owner/repo.
// A zero installationID looks the installation up from the repository.
func (e *Exchanger) Exchange(ctx context.Context, cfg AppConfig, installationID int64, owner, repo string) (*InstallationToken, error) {
	appClient, err := e.appClient(cfg)
	if err != nil {
		return nil, err
	}

	if installationID == 0 {
		installation, _, err := appClient.Apps.FindRepositoryInstallation(ctx, owner, repo)
		if err != nil {
			if cihttp.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s/%s", ErrNoInstallation, owner, repo)
			}
			return nil, fmt.Errorf("find installation for %s/%s: %w", owner, repo, cihttp.Classify(err))
		}
		installationID = installation.GetID()
		e.logger.Debug("found app installation", "repository", owner+"/"+repo, "installation_id", installationID)
	}

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("create installation token: %w", cihttp.Classify(err))
	}

	result := &InstallationToken{
		Token:          token.GetToken(),
		InstallationID: installationID,
	}
	if token.ExpiresAt != nil {
		result.ExpiresAt = token.ExpiresAt.Time
	}
	e.logger.Info("authenticated as GitHub App", "installation_id", installationID,
		"expires_at", result.ExpiresAt.Format(time.RFC3339))
	return result, nil
}

// BotLogin returns the login the app comments as, its slug plus "[bot]".
func (e *Exchanger) BotLogin(ctx context.Context, cfg AppConfig) (string, error) {
	appClient, err := e.appClient(cfg)
	if err != nil {
		return "", err
	}
	app, _, err := appClient.Apps.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("get authenticated app: %w", cihttp.Classify(err))
	}
	if app.GetSlug() == "" {
		return "", ErrNoAppSlug
	}
	login := app.GetSlug() + "[bot]"
	e.logger.Debug("resolved app bot login", "login", login)
	return login, nil
}

// appClient returns a client authenticated with a fresh app JWT.
func (e *Exchanger) appClient(cfg AppConfig) (*github.Client, error) {
	appJWT, err := GenerateAppJWT(cfg)
	if err != nil {
		return nil, err
	}
	// WithAuthToken mutates the underlying http.Client, so never hand it a shared one.
	client := github.NewClient(&http.Client{Timeout: cihttp.DefaultTimeout}).WithAuthToken(appJWT)
	client.BaseURL = e.client.BaseURL
	return client, nil
}
