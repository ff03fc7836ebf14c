package report

import (
	"fmt"
	"io"

	"github.com/harvx/rewrite/internal/plan"
)

// AgentGrouped is the `--format agent` convenience view: file outcomes
// bucketed by kind for terminal display. This is NOT part of the NDJSON
// event contract -- the stream itself is always run_start/file/run_end,
// regardless of --format. AgentGrouped is built
// from a finished Report purely for a friendlier summary and carries no
// schema guarantees across releases.
type AgentGrouped struct {
	Success []plan.ItemOutcome
	Skipped []plan.ItemOutcome
	Errors  []plan.ItemOutcome
}

// GroupForAgent buckets r.Outcomes by kind.
func GroupForAgent(r *plan.Report) AgentGrouped {
	var g AgentGrouped
	for _, o := range r.Outcomes {
		switch o.Kind {
		case plan.OutcomeSuccess:
			g.Success = append(g.Success, o)
		case plan.OutcomeSkipped:
			g.Skipped = append(g.Skipped, o)
		case plan.OutcomeError:
			g.Errors = append(g.Errors, o)
		}
	}
	return g
}

// WriteSummary prints a short human-readable summary of g to w. It is a
// convenience renderer for terminals, not a machine-readable contract.
func WriteSummary(w io.Writer, g AgentGrouped) error {
	modified := 0
	for _, o := range g.Success {
		if o.Modified {
			modified++
		}
	}
	_, err := fmt.Fprintf(w, "%d modified, %d unchanged, %d skipped, %d errors\n",
		modified, len(g.Success)-modified, len(g.Skipped), len(g.Errors))
	return err
}
