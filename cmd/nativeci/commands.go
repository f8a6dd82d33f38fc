package main

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/randalmurphal/nativeci"
	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
	"github.com/randalmurphal/nativeci/logging"
)

// cli holds state shared by every command of one execution.
type cli struct {
	deps      *deps
	logLevel  string
	logFormat string
	logger    *slog.Logger
}

func newRootCommand(d *deps) *cobra.Command {
	c := &cli{deps: d}

	root := &cobra.Command{
		Use:           "nativeci",
		Short:         "CI steps for native mobile builds: artifacts, fingerprints and build comments",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log verbosity (debug, info, warn, error); defaults to debug when the runner has debugging enabled")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "Log format (text, json, logfmt)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(c.logLevel)
		if err != nil {
			return cierrors.Invalid("log-level", "%v", err)
		}
		if c.logLevel == "" {
			level = logging.LevelFromEnv(c.deps.Getenv, level)
		}
		c.logger = logging.New(logging.ParseMode(c.logFormat), c.deps.Stderr, level)
		return nil
	}

	root.AddCommand(
		c.newFindArtifactCommand(),
		c.newFingerprintCommand(),
		c.newPostBuildCommand(),
		c.newDeleteArtifactsCommand(),
	)
	return root
}

// stepFunc runs one step with resolved inputs.
type stepFunc func(ctx context.Context, rt *nativeci.Runtime, cfg *config.Resolved) error

// run resolves the step inputs, builds the runtime and applies the timeout
// input as a deadline before calling step.
func (c *cli) run(cmd *cobra.Command, step stepFunc) error {
	logger := c.logger.With("command", cmd.Name())

	resolverConfig := nativeci.InputConfig(c.deps.Lookup, c.deps.Getenv, logger)
	resolverConfig.GitRootFinder = c.deps.GitRootFinder
	resolver := config.NewResolver(resolverConfig)
	cfg := resolver.ResolveWithFlags(changedFlags(cmd.LocalNonPersistentFlags()))

	inv, err := nativeci.InvocationFromEnv(c.deps.Getenv)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if raw := strings.TrimSpace(cfg.Get(nativeci.InputTimeout)); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return err
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Debug("resolved inputs", "event", inv.EventName, "repository", inv.Repository,
		"pull_request", inv.PullRequestNumber, "sources", inputSources(cfg),
		"project_file", resolver.LocalPath(), "global_file", resolver.GlobalPath())

	err = step(ctx, &nativeci.Runtime{
		Invocation: inv,
		Outputs:    c.deps.Outputs,
		Logger:     logger,
		Getwd:      c.deps.Getwd,
	}, cfg)
	if err != nil {
		logger.Debug("step failed", "kind", cierrors.Kind(err), "error", err)
	}
	return err
}

// parseTimeout accepts a Go duration ("90s", "5m") or a whole number of
// seconds.
func parseTimeout(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		seconds, atoiErr := strconv.Atoi(raw)
		if atoiErr != nil {
			return 0, cierrors.Invalid(nativeci.InputTimeout, "%q is not a duration", raw)
		}
		d = time.Duration(seconds) * time.Second
	}
	if d <= 0 {
		return 0, cierrors.Invalid(nativeci.InputTimeout, "must be positive, got %s", raw)
	}
	return d, nil
}

// changedFlags returns the step flags set on the command line, keyed by
// name. Flag names match input names.
func changedFlags(flags *pflag.FlagSet) map[string]string {
	values := make(map[string]string)
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			values[f.Name] = f.Value.String()
		}
	})
	return values
}

// inputSources lists where each set input came from. Values are omitted.
func inputSources(cfg *config.Resolved) map[string]config.Source {
	sources := make(map[string]config.Source)
	for _, key := range cfg.Keys() {
		if cfg.Get(key) != "" {
			sources[key] = cfg.Source(key)
		}
	}
	return sources
}

func (c *cli) newFindArtifactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-artifact",
		Short: "Find the newest unexpired build artifact for this pull request or branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, rt *nativeci.Runtime, cfg *config.Resolved) error {
				opts, err := nativeci.FindArtifactOptionsFrom(cfg)
				if err != nil {
					return err
				}
				_, err = nativeci.FindArtifact(ctx, rt, opts)
				return err
			})
		},
	}
	cmd.Flags().String(nativeci.InputName, "", "Base artifact name")
	cmd.Flags().String(nativeci.InputRepository, "", "Repository as owner/name (default $GITHUB_REPOSITORY)")
	cmd.Flags().String(nativeci.InputReSign, "", "Prefer the re-signed <name>-<pr> artifact")
	return cmd
}

func (c *cli) newFingerprintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Hash the native project configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, rt *nativeci.Runtime, cfg *config.Resolved) error {
				opts, err := nativeci.FingerprintOptionsFrom(cfg)
				if err != nil {
					return err
				}
				_, err = nativeci.Fingerprint(ctx, rt, opts)
				return err
			})
		},
	}
	cmd.Flags().String(nativeci.InputPlatform, "", "Platform to fingerprint (android or ios)")
	cmd.Flags().String(nativeci.InputWorkingDirectory, "", "Project root (default .)")
	return cmd
}

func (c *cli) newPostBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post-build",
		Short: "Post or update the build download comment on the pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, rt *nativeci.Runtime, cfg *config.Resolved) error {
				opts, err := nativeci.PostBuildOptionsFrom(cfg)
				if err != nil {
					return err
				}
				_, err = nativeci.PostBuild(ctx, rt, opts)
				return err
			})
		},
	}
	cmd.Flags().String(nativeci.InputTitle, "", "Comment title, rendered as a level 2 heading")
	cmd.Flags().String(nativeci.InputArtifactURL, "", "Download link to post")
	cmd.Flags().String(nativeci.InputIssueNumber, "", "Issue or pull request number (default from the event)")
	cmd.Flags().String(nativeci.InputBotLogin, "", "Author login of the managed comment")
	cmd.Flags().String(nativeci.InputProvider, "", "Comment provider (github or gitlab)")
	return cmd
}

func (c *cli) newDeleteArtifactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete-artifacts",
		Short: "Delete workflow artifacts by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, rt *nativeci.Runtime, cfg *config.Resolved) error {
				opts, err := nativeci.DeleteArtifactsOptionsFrom(cfg)
				if err != nil {
					return err
				}
				_, err = nativeci.DeleteArtifacts(ctx, rt, opts)
				return err
			})
		},
	}
	cmd.Flags().String(nativeci.InputArtifactIDs, "", "Artifact ids separated by spaces, commas or newlines")
	cmd.Flags().String(nativeci.InputRepository, "", "Repository as owner/name (default $GITHUB_REPOSITORY)")
	cmd.Flags().String(nativeci.InputDryRun, "", "Log what would be deleted without deleting")
	return cmd
}
