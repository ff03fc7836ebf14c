package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harvx/rewrite/internal/plan"
	"github.com/harvx/rewrite/internal/planconfig"
)

var applyFlags *flagValues
var applyPlanPath string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run a plan document read from disk",
	Long: `apply reads a JSON plan document (the same shape accepted by the
apply_plan MCP tool) from --plan and runs it through the same resolve,
engine, transaction, and policy pipeline as the default CLI invocation.
Explicitly set --mode, --case, --transaction, --symlinks, --binary,
--permissions, --fixed-mode, --max-file-size, --dry-run, --no-write and
--validate-only override the document fields of the same name. The policy
flags, --limit, --range, --include/--exclude, operation flags and input-mode
flags are not applied; the document's inputs and operations are always used
as-is.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setupLogging(applyFlags) },
	RunE:              runApply,
}

func init() {
	applyFlags = bindRootFlags(applyCmd)
	applyCmd.Flags().StringVar(&applyPlanPath, "plan", "", "path to a plan document (- for stdin)")
	applyCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	r, err := openPlanSource(applyPlanPath)
	if err != nil {
		return plan.NewInvocationError("opening plan document", err)
	}
	defer r.Close()

	doc, err := planconfig.ParseDocument(r)
	if err != nil {
		return plan.NewInvocationError("parsing plan document", err)
	}

	cliFlags := cliFlagsChanged(cmd, applyFlags)
	p, err := normalizedPlanFromDoc(doc, cliFlags)
	if err != nil {
		return plan.NewInvocationError("normalizing plan", err)
	}

	forcedMode, positionalFiles := designatorInputMode(p)

	exitCode, err := runPlan(p, runOptions{
		runMode:         plan.RunModeApply,
		stdin:           os.Stdin,
		positionalFiles: positionalFiles,
		forcedMode:      forcedMode,
		format:          applyFlags.Format,
		stdout:          os.Stdout,
	})
	if err != nil {
		return err
	}
	if exitCode != plan.ExitSuccess {
		return &plan.RunError{Code: int(exitCode), Message: "run did not complete successfully"}
	}
	return nil
}

// designatorInputMode inspects a normalized Plan's input designators (set
// directly from the document's inputs list, never from the invoking
// process's own stdin/argv shape) and picks the matching forced resolver
// mode plus, for path designators, the plain path list.
func designatorInputMode(p *plan.Plan) (plan.InputMode, []string) {
	var paths []string
	for _, d := range p.Inputs {
		switch d.Kind {
		case plan.DesignatorStdinText:
			return plan.InputStdinText, nil
		case plan.DesignatorMatchStream:
			return plan.InputRgJSON, nil
		case plan.DesignatorStdinPaths:
			return plan.InputStdinPaths, nil
		case plan.DesignatorPath:
			paths = append(paths, d.Path)
		}
	}
	return plan.InputArgs, paths
}

func openPlanSource(path string) (readCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdin}, nil
	}
	return os.Open(path)
}

type readCloser interface {
	Read(p []byte) (int, error)
	Close() error
}

type nopCloser struct{ *os.File }

func (nopCloser) Close() error { return nil }
