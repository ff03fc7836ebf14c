// Package policy implements the pre- and post-execution policy gate:
// pre-execution checks that can fail a run before any item is touched, and
// the single post-execution check that decides whether a run's writes are
// allowed to commit.
package policy

import (
	"fmt"

	"github.com/harvx/rewrite/internal/plan"
)

// Stable policy_violation tokens.
const (
	ViolationRequireMatch     = "require_match"
	ViolationExpectExactCount = "expect_exact_count"
	ViolationFailOnChange     = "fail_on_change"
)

// PreCheck validates a normalized Plan before any input designator is read
// or resolved. require_match against a statically-empty input list fails
// immediately, without spending a single read syscall: a policy that can
// never be satisfied fails before any work, including resolution, begins.
func PreCheck(p *plan.Plan) error {
	if p.PolicyBlock.RequireMatch && len(p.Inputs) == 0 {
		return fmt.Errorf("policy require_match cannot be satisfied: input list is empty")
	}
	return nil
}

// CheckResolved validates the resolved item count once resolution has run
// but before the engine touches any of them. A require_match policy can
// never be satisfied if globs and other filters resolved the input
// designators down to zero items, even though PreCheck's abstract
// designator-list check passed; this catches that case before a full run
// would otherwise complete with nothing to report.
func CheckResolved(p *plan.Plan, resolvedCount int) error {
	if p.PolicyBlock.RequireMatch && resolvedCount == 0 {
		return fmt.Errorf("policy require_match cannot be satisfied: no inputs resolved")
	}
	return nil
}

// PostCheck evaluates the three post-execution constraints against a
// finalized Report and returns the stable violation token (empty if none
// triggered). It is the single authority for the decision; the txn manager
// and CLI both key their commit/exit-code behavior off its return value.
func PostCheck(p *plan.Plan, r *plan.Report) string {
	if p.PolicyBlock.FailOnChange && r.TotalModified > 0 {
		return ViolationFailOnChange
	}
	if p.PolicyBlock.RequireMatch && r.TotalReplacements == 0 {
		return ViolationRequireMatch
	}
	if p.PolicyBlock.ExpectExactCount != nil &&
		r.TotalReplacements != uint64(*p.PolicyBlock.ExpectExactCount) {
		return ViolationExpectExactCount
	}
	return ""
}
