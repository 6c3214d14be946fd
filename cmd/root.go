package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "essay-feedback [file]",
	Short: "Improvement suggestions for ENEM essays from a local LLM",
	Long: `essay-feedback reads a JSON array of graded essays, lets you pick one, asks a
locally hosted language model (Ollama by default) for improvement suggestions
per competency, and prints the essay with the suggestions appended to its
"cometarios" field. The input file is never rewritten.

When no file is given, the path is asked for interactively.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
// Any failure is reported on stderr and exits with status 1.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "essay-feedback version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

func reportError(err error) {
	slog.Debug("command failed", "error", err)
	fmt.Fprintln(os.Stderr, userMessage(err))
}

func init() {
	opts := &evaluateOptions{}
	rootCmd.RunE = opts.run
	opts.addFlags(rootCmd)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newListCmd())

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
