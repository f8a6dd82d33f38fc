package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceEnv indicates the value came from a fallback environment variable
	// such as GITHUB_TOKEN or GITHUB_REPOSITORY.
	SourceEnv Source = "env"

	// SourceGlobal indicates the value came from global config
	// (e.g., ~/.config/nativeci/config.yaml).
	SourceGlobal Source = "global"

	// SourceLocal indicates the value came from the project file
	// (.nativeci.yaml in the git root).
	SourceLocal Source = "local"

	// SourceInput indicates the value came from a step input (INPUT_<NAME>).
	SourceInput Source = "input"

	// SourceFlag indicates the value was set via command-line flag.
	SourceFlag Source = "flag"
)
