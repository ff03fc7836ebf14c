// Package cli implements the Cobra command hierarchy for the rwx CLI tool.
// The root command defined here is the entry point for all subcommands and
// handles cross-cutting concerns like logging initialization and exit-code
// translation.
package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harvx/rewrite/internal/plan"
	"github.com/harvx/rewrite/internal/resolve"
	"github.com/harvx/rewrite/internal/rwxlog"
)

var globalFlags *flagValues

var rootCmd = &cobra.Command{
	Use:   "rwx FIND WITH [PATH...]",
	Short: "Deterministic, stream-oriented text search-and-replace.",
	Long: `rwx applies exact-match, literal, or regex search-and-replace operations
across file arguments, stdin text, a stdin path list, or a ripgrep --json
match stream, emitting a stable NDJSON event per file and committing writes
through an atomic rename-based transaction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MinimumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setupLogging(globalFlags) },
	RunE:              runRoot,
}

// setupLogging initializes the global slog logger from fv and validates
// --format. Each command that binds its own flagValues (apply) supplies its
// own PersistentPreRunE calling this with its own instance, since Cobra
// only runs the nearest PersistentPreRunE in the command chain.
func setupLogging(fv *flagValues) error {
	level := rwxlog.ResolveLevel(fv.Verbose, fv.Quiet)
	format := rwxlog.ResolveFormat()
	rwxlog.Setup(level, format)
	slog.Debug("logging initialized", "level", level, "format", format)
	return validateFormat(fv.Format)
}

func init() {
	globalFlags = bindRootFlags(rootCmd)
	rootCmd.RegisterFlagCompletionFunc("format", completeFormat)
	rootCmd.RegisterFlagCompletionFunc("mode", completeMode)
}

func completeFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"ndjson", "agent"}, cobra.ShellCompDirectiveNoFileComp
}

func completeMode(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"literal", "regex"}, cobra.ShellCompDirectiveNoFileComp
}

func validateFormat(format string) error {
	if format != "ndjson" && format != "agent" {
		return plan.NewInvocationError("invalid --format", errInvalidFormat(format))
	}
	return nil
}

type errInvalidFormat string

func (e errInvalidFormat) Error() string { return "must be ndjson or agent, got " + string(e) }

func runRoot(cmd *cobra.Command, args []string) error {
	if globalFlags.StdinText && globalFlags.StdinPathsNUL {
		return plan.NewInvocationError("parsing arguments", resolve.ErrStdinTextConflictsNUL)
	}
	if globalFlags.StdinText && globalFlags.MatchStream {
		return plan.NewInvocationError("parsing arguments", resolve.ErrStdinTextConflictsMatch)
	}

	doc, _, err := buildDocument(globalFlags, args)
	if err != nil {
		return plan.NewInvocationError("parsing arguments", err)
	}

	// Only flags the user actually set are passed as overrides, so the
	// optional user config file still supplies defaults for the rest.
	p, err := normalizedPlanFromDoc(doc, cliFlagsChanged(cmd, globalFlags))
	if err != nil {
		return plan.NewInvocationError("normalizing plan", err)
	}

	forcedMode := forcedInputMode(globalFlags)
	positionalFiles := docPaths(doc)

	exitCode, err := runPlan(p, runOptions{
		runMode:               plan.RunModeCLI,
		stdin:                 os.Stdin,
		positionalFiles:       positionalFiles,
		assertPositionalFirst: len(positionalFiles) > 0,
		forcedMode:            forcedMode,
		format:                globalFlags.Format,
		stdout:                os.Stdout,
	})
	if err != nil {
		return err
	}
	if exitCode != plan.ExitSuccess {
		return &plan.RunError{Code: int(exitCode), Message: "run did not complete successfully"}
	}
	return nil
}

// forcedInputMode returns the resolver's ForcedMode for an explicit
// --stdin-* or --match-stream flag, or "" to let SelectMode auto-detect
// from the presence of positional files and whether stdin is a pipe.
func forcedInputMode(fv *flagValues) plan.InputMode {
	switch {
	case fv.StdinText:
		return plan.InputStdinText
	case fv.StdinPathsNUL:
		return plan.InputStdinPathsNUL
	case fv.StdinPaths:
		return plan.InputStdinPaths
	case fv.MatchStream:
		return plan.InputRgJSON
	default:
		return ""
	}
}

// Execute runs the root command and returns the process exit code. A
// *plan.RunError's Code is used verbatim; any other non-nil error reports
// plan.ExitError.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return extractExitCode(err)
	}
	return int(plan.ExitSuccess)
}

func extractExitCode(err error) int {
	if err == nil {
		return int(plan.ExitSuccess)
	}
	var runErr *plan.RunError
	if errors.As(err, &runErr) {
		return runErr.Code
	}
	return int(plan.ExitError)
}

// RootCmd returns the root cobra.Command for use in testing and subcommand
// registration.
func RootCmd() *cobra.Command {
	return rootCmd
}
