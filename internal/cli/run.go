package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harvx/rewrite/internal/engine"
	"github.com/harvx/rewrite/internal/plan"
	"github.com/harvx/rewrite/internal/planconfig"
	"github.com/harvx/rewrite/internal/policy"
	"github.com/harvx/rewrite/internal/report"
	"github.com/harvx/rewrite/internal/resolve"
	"github.com/harvx/rewrite/internal/txn"
)

// runOptions carries everything runPlan needs beyond the normalized Plan
// itself: how to obtain stdin and which input-mode flags were requested, so
// the resolver can disambiguate.
type runOptions struct {
	runMode               plan.RunMode
	stdin                 *os.File
	positionalFiles       []string
	assertPositionalFirst bool
	forcedMode            plan.InputMode
	format                string
	stdout                *os.File
}

// runPlan executes the full pipeline for one normalized Plan: resolve
// inputs, run the replacement engine over each item, stage/commit through
// the transaction manager, evaluate policy, and emit the NDJSON event
// stream. It returns the process exit code.
func runPlan(p *plan.Plan, opts runOptions) (plan.ExitCode, error) {
	start := time.Now()

	stdinInfo, _ := opts.stdin.Stat()
	isPipe := stdinInfo != nil && (stdinInfo.Mode()&os.ModeCharDevice) == 0
	isTerminal := stdinInfo != nil && (stdinInfo.Mode()&os.ModeCharDevice) != 0

	if err := policy.PreCheck(p); err != nil {
		return plan.ExitPolicy, err
	}

	res, err := resolve.Resolve(context.Background(), resolve.Options{
		ForcedMode:            opts.forcedMode,
		PositionalFiles:       opts.positionalFiles,
		AssertPositionalFirst: opts.assertPositionalFirst,
		StdinIsPipe:           isPipe,
		StdinIsTerminal:       isTerminal,
		Stdin:                 opts.stdin,
		GlobInclude:           p.GlobInclude,
		GlobExclude:           p.GlobExclude,
	})
	if err != nil {
		return plan.ExitError, fmt.Errorf("resolving input: %w", err)
	}

	if err := policy.CheckResolved(p, len(res.Items)); err != nil {
		return plan.ExitPolicy, err
	}

	compiled, err := engine.Compile(p)
	if err != nil {
		return plan.ExitError, fmt.Errorf("compiling plan: %w", err)
	}

	emitter := report.NewEmitter(opts.stdout)
	if err := emitter.RunStart(res.Mode, opts.runMode, p); err != nil {
		return plan.ExitError, err
	}

	r := &plan.Report{TotalItems: len(res.Items) + len(res.Skipped)}
	for _, skipped := range res.Skipped {
		r.Append(skipped)
		_ = emitter.File(skipped)
	}

	cache := engine.NewContentCache()
	mgr := txn.NewManager(p)

	var progressView *humanProgress
	if opts.format == "agent" {
		progressView = newHumanProgress(os.Stderr, len(res.Items))
	}

	for _, item := range res.Items {
		outcome := engine.ProcessItem(item, compiled, cache)
		mgr.Apply(&outcome)
		r.Append(outcome)
		if err := emitter.File(outcome); err != nil {
			return plan.ExitError, err
		}
		if progressView != nil {
			progressView.Advance(outcome.Path)
		}
	}

	violation := policy.PostCheck(p, r)
	r.PolicyViolation = violation

	transactional := false
	if p.Transaction == plan.TransactionAll {
		if violation != "" || r.HasErrors {
			_ = mgr.DiscardAll()
		} else if err := mgr.CommitAll(); err != nil {
			transactional = true
		} else {
			r.Committed = p.Safety.Writes()
		}
	} else {
		r.Committed = p.Safety.Writes() && violation == "" && !r.HasErrors
	}

	r.Duration = time.Since(start)
	exitCode := plan.ExitCodeFor(r, transactional)

	if err := emitter.RunEnd(r, exitCode); err != nil {
		return plan.ExitError, err
	}

	if progressView != nil {
		progressView.Finish(r)
		grouped := report.GroupForAgent(r)
		_ = report.WriteSummary(os.Stderr, grouped)
	}

	return exitCode, nil
}

// normalizedPlanFromDoc runs the full planconfig.Normalize pipeline,
// loading the optional on-disk user defaults file first.
func normalizedPlanFromDoc(doc *planconfig.Document, cliFlags map[string]any) (*plan.Plan, error) {
	userDefaults := map[string]any{}
	if path, err := planconfig.UserConfigPath(); err == nil {
		if loaded, err := planconfig.LoadUserConfig(path); err == nil {
			userDefaults = loaded
		}
	}
	p, _, err := planconfig.Normalize(doc, userDefaults, cliFlags)
	if err != nil {
		return nil, err
	}
	return p, nil
}
