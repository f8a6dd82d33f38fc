package nativeci

import (
	"log/slog"

	"github.com/randalmurphal/nativeci/config"
	"github.com/randalmurphal/nativeci/fingerprint"
)

// Step input names as written in workflow files.
const (
	InputGitHubToken       = "github-token"
	InputRepository        = "repository"
	InputName              = "name"
	InputReSign            = "re-sign"
	InputTitle             = "title"
	InputArtifactURL       = "artifact-url"
	InputBotLogin          = "bot-login"
	InputIssueNumber       = "issue-number"
	InputProvider          = "provider"
	InputGitLabToken       = "gitlab-token"
	InputPlatform          = "platform"
	InputWorkingDirectory  = "working-directory"
	InputArtifactIDs       = "artifact-ids"
	InputDryRun            = "dry-run"
	InputAppID             = "app-id"
	InputAppPrivateKey     = "app-private-key"
	InputAppInstallationID = "app-installation-id"
	InputTimeout           = "timeout"
)

// InputKeys lists every input a step may read.
var InputKeys = []string{
	InputGitHubToken, InputRepository, InputName, InputReSign,
	InputTitle, InputArtifactURL, InputBotLogin, InputIssueNumber,
	InputProvider, InputGitLabToken, InputPlatform, InputWorkingDirectory,
	InputArtifactIDs, InputDryRun, InputAppID, InputAppPrivateKey,
	InputAppInstallationID, InputTimeout,
}

// projectKeys may be set in the project file. Secrets and per-run values
// are never read from it.
var projectKeys = []string{
	InputName, InputReSign, InputTitle, InputBotLogin,
	InputPlatform, InputProvider, InputTimeout,
}

// InputConfig returns the resolver configuration shared by every step.
// lookup reads step inputs and getenv the fallback environment.
func InputConfig(lookup config.LookupFunc, getenv func(string) string, logger *slog.Logger) config.ResolverConfig {
	return config.ResolverConfig{
		Keys: InputKeys,
		Aliases: map[string][]string{
			InputGitHubToken: {"github_token"},
			InputArtifactURL: {"artifact_url"},
		},
		EnvFallbacks: map[string][]string{
			InputGitHubToken: {"GITHUB_TOKEN"},
			InputRepository:  {"GITHUB_REPOSITORY"},
			InputGitLabToken: {"GITLAB_TOKEN"},
		},
		Lookup:          lookup,
		Getenv:          getenv,
		GlobalConfigDir: "nativeci",
		LocalConfigName: fingerprint.ConfigFileName,
		Defaults: map[string]string{
			InputWorkingDirectory: ".",
		},
		ValidFileKeys: projectKeys,
		Logger:        logger,
	}
}
