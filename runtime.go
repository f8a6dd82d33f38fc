package nativeci

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/randalmurphal/nativeci/artifact"
	"github.com/randalmurphal/nativeci/auth"
	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
	cihttp "github.com/randalmurphal/nativeci/http"
	"github.com/randalmurphal/nativeci/logging"
)

// Runtime carries what every step needs besides its own options.
type Runtime struct {
	Invocation *Invocation
	Outputs    Outputs
	Logger     *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Getwd returns the process working directory. Defaults to os.Getwd.
	Getwd func() (string, error)
}

func (rt *Runtime) logger() *slog.Logger {
	return logging.Ensure(rt.Logger)
}

func (rt *Runtime) now() time.Time {
	if rt.Now == nil {
		return time.Now()
	}
	return rt.Now()
}

func (rt *Runtime) getwd() (string, error) {
	if rt.Getwd == nil {
		return os.Getwd()
	}
	return rt.Getwd()
}

// apiURL is the GitHub REST endpoint errors are reported against.
func (rt *Runtime) apiURL() string {
	if u := rt.invocation().APIURL; u != "" {
		return u
	}
	return cihttp.PublicGitHubAPI
}

// apiError attaches guidance to a GitHub client failure.
func (rt *Runtime) apiError(err error) error {
	return cierrors.WrapClientError(err, rt.apiURL())
}

func (rt *Runtime) invocation() *Invocation {
	if rt.Invocation == nil {
		return &Invocation{ServerURL: artifact.DefaultServerURL}
	}
	return rt.Invocation
}

// Credentials authenticate GitHub API calls, either with a token or as a
// GitHub App installation.
type Credentials struct {
	Token string

	AppID             string
	AppPrivateKey     string
	AppInstallationID int64
}

// CredentialsFrom reads the token and app inputs.
func CredentialsFrom(cfg *config.Resolved) (Credentials, error) {
	creds := Credentials{
		Token:         strings.TrimSpace(cfg.Get(InputGitHubToken)),
		AppID:         strings.TrimSpace(cfg.Get(InputAppID)),
		AppPrivateKey: cfg.Get(InputAppPrivateKey),
	}
	id, _, err := cfg.Int(InputAppInstallationID)
	if err != nil {
		return creds, err
	}
	creds.AppInstallationID = id
	return creds, nil
}

// UsesApp reports whether app credentials are used instead of a token.
// A token always wins when both are given.
func (c Credentials) UsesApp() bool {
	return c.Token == "" && c.AppID != "" && strings.TrimSpace(c.AppPrivateKey) != ""
}

// Missing returns the credential inputs that still need a value.
func (c Credentials) Missing() []string {
	if c.Token != "" || c.UsesApp() {
		return nil
	}
	if c.AppID != "" {
		return []string{InputAppPrivateKey}
	}
	if strings.TrimSpace(c.AppPrivateKey) != "" {
		return []string{InputAppID}
	}
	return []string{InputGitHubToken}
}

// GitHubClient returns a client for repo authenticated with creds. App
// credentials are exchanged for an installation token, which is masked.
func (rt *Runtime) GitHubClient(ctx context.Context, creds Credentials, repo artifact.Repository) (*github.Client, error) {
	if missing := creds.Missing(); len(missing) > 0 {
		return nil, cierrors.Missing(missing...)
	}
	apiURL := rt.invocation().APIURL

	token := creds.Token
	if creds.UsesApp() {
		exchanger, app, err := rt.appExchanger(creds)
		if err != nil {
			return nil, err
		}
		exchanged, err := exchanger.Exchange(ctx, app, creds.AppInstallationID, repo.Owner, repo.Name)
		if err != nil {
			return nil, fmt.Errorf("authenticate as app %s: %w", creds.AppID, err)
		}
		if rt.Outputs != nil {
			rt.Outputs.AddMask(exchanged.Token)
		}
		token = exchanged.Token
	}

	return cihttp.NewGitHubClient(ctx, token, apiURL)
}

// AppBotLogin returns the login comments made with the app credentials in
// creds are authored by.
func (rt *Runtime) AppBotLogin(ctx context.Context, creds Credentials) (string, error) {
	exchanger, app, err := rt.appExchanger(creds)
	if err != nil {
		return "", err
	}
	return exchanger.BotLogin(ctx, app)
}

func (rt *Runtime) appExchanger(creds Credentials) (*auth.Exchanger, auth.AppConfig, error) {
	app := auth.AppConfig{
		AppID:      creds.AppID,
		PrivateKey: []byte(creds.AppPrivateKey),
		Now:        rt.Now,
	}
	if _, err := auth.ParsePrivateKey(app.PrivateKey); err != nil {
		return nil, app, cierrors.Invalid(InputAppPrivateKey, "%v", err)
	}
	base, err := cihttp.NewAnonymousGitHubClient(rt.invocation().APIURL)
	if err != nil {
		return nil, app, err
	}
	return auth.NewExchanger(base, rt.logger()), app, nil
}
