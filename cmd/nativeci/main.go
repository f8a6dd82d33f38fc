package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-githubactions"

	"github.com/randalmurphal/nativeci"
	"github.com/randalmurphal/nativeci/config"
	cierrors "github.com/randalmurphal/nativeci/errors"
)

// deps are the process facilities the commands use.
type deps struct {
	// Lookup reads step inputs.
	Lookup config.LookupFunc

	// Getenv reads the CI environment.
	Getenv func(string) string

	// Outputs receives step outputs and secret masks.
	Outputs nativeci.Outputs

	// Stderr receives log output.
	Stderr io.Writer

	// Getwd returns the process working directory.
	Getwd func() (string, error)

	// GitRootFinder locates the project file. Nil searches upwards for .git.
	GitRootFinder func(string) (string, error)
}

func main() {
	action := githubactions.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(&deps{
		Lookup:  action.GetInput,
		Getenv:  os.Getenv,
		Outputs: action,
		Stderr:  os.Stderr,
		Getwd:   os.Getwd,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		action.Errorf("%s", cierrors.Summary(err))
		os.Exit(exitCode(err))
	}
}

// exitCode is 130 for an interrupted run, 2 for unusable inputs and 1 for
// everything else.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case cierrors.IsInputError(err):
		return 2
	}
	return 1
}
