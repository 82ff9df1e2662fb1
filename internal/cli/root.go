package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Baarsgaard/jig/internal/config"
	"github.com/Baarsgaard/jig/internal/logging"
)

// Version information (set at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	jsonOut bool
	quiet   bool
	verbose bool
	noColor bool
)

// Global configuration, loaded in PersistentPreRunE
var globalConfig *config.Config

// stdout is where command results go. Tests replace it.
var stdout io.Writer = os.Stdout

// skipConfigCommands lists commands that must work without a valid config.
var skipConfigCommands = map[string]bool{
	"help":    true,
	"version": true,
	"init":    true,
	"configs": true,
}

var rootCmd = &cobra.Command{
	Use:   "jig",
	Short: "Jira from the terminal, driven by your git branch",
	Long: `jig connects git branches and commits to Jira issues.

It creates branches named after issues, keeps the issue key at the front of
every commit message through a commit-msg hook, and logs work, comments,
transitions and assignments without leaving the terminal.

Use "jig init" to create a config.
Use "jig hook" to install the commit-msg hook in the current repository.`,
	Version:           Version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("jig %s (%s, %s)\n", Version, shortCommit(), shortDate()))
}

// setup loads the configuration and installs the logger before any command
// runs.
func setup(cmd *cobra.Command, args []string) error {
	if globalConfig == nil {
		cfg, err := loadConfig()
		if err != nil {
			if !skipConfigCommands[cmd.Name()] {
				return err
			}
			// Commands that repair or describe the config still run.
			fmt.Fprintf(os.Stderr, "Warning: failed to load config file: %v\n", err)
			cfg = config.DefaultConfig()
		}
		globalConfig = cfg
	}

	logging.Init(logging.Options{Verbose: verbose, NoColor: IsNoColor()})
	slog.Debug("config loaded", "sources", globalConfig.Sources)
	return nil
}

// loadConfig is replaced in tests.
var loadConfig = config.Load

// shortCommit returns the first 7 characters of the git commit hash
func shortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// shortDate returns just the date portion of BuildDate (YYYY-MM-DD)
func shortDate() string {
	if len(BuildDate) >= 10 {
		return BuildDate[:10]
	}
	return BuildDate
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// IsJSON returns whether JSON output is requested
func IsJSON() bool {
	return jsonOut
}

// IsNoColor returns whether colored output should be disabled.
// Priority: flag > env > config file > default
func IsNoColor() bool {
	if noColor {
		return true
	}
	if globalConfig != nil {
		return globalConfig.NoColor
	}
	return false
}

// GetConfig returns the global configuration.
func GetConfig() *config.Config {
	if globalConfig != nil {
		return globalConfig
	}
	return config.DefaultConfig()
}

// Output prints to stdout unless quiet mode is enabled
func Output(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// OutputLine prints a line to stdout unless quiet mode is enabled
func OutputLine(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format+"\n", args...)
	}
}

// VerboseOutput prints to stdout only in verbose mode
func VerboseOutput(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// ErrorOutput prints to stderr
func ErrorOutput(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}
