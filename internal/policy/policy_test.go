package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harvx/rewrite/internal/plan"
)

func TestPreCheck_RequireMatchWithEmptyInputsFailsEarly(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{PolicyBlock: plan.Policy{RequireMatch: true}}
	assert.Error(t, PreCheck(p))
}

func TestPreCheck_PassesOtherwise(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{
		Inputs:      []plan.InputDesignator{{Kind: plan.DesignatorPath, Path: "a.txt"}},
		PolicyBlock: plan.Policy{RequireMatch: true},
	}
	assert.NoError(t, PreCheck(p))
}

func TestCheckResolved_RequireMatchWithZeroResolvedFails(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{
		Inputs:      []plan.InputDesignator{{Kind: plan.DesignatorPath, Path: "*.nomatch"}},
		PolicyBlock: plan.Policy{RequireMatch: true},
	}
	assert.Error(t, CheckResolved(p, 0))
}

func TestCheckResolved_PassesWhenItemsResolved(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{PolicyBlock: plan.Policy{RequireMatch: true}}
	assert.NoError(t, CheckResolved(p, 1))
}

func TestPostCheck_RequireMatchViolation(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{PolicyBlock: plan.Policy{RequireMatch: true}}
	r := &plan.Report{TotalReplacements: 0}
	assert.Equal(t, ViolationRequireMatch, PostCheck(p, r))
}

func TestPostCheck_RequireMatchSatisfied(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{PolicyBlock: plan.Policy{RequireMatch: true}}
	r := &plan.Report{TotalReplacements: 2}
	assert.Empty(t, PostCheck(p, r))
}

func TestPostCheck_ExpectExactCountViolation(t *testing.T) {
	t.Parallel()

	n := 3
	p := &plan.Plan{PolicyBlock: plan.Policy{ExpectExactCount: &n}}
	r := &plan.Report{TotalReplacements: 2}
	assert.Equal(t, ViolationExpectExactCount, PostCheck(p, r))
}

func TestPostCheck_FailOnChangeViolation(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{PolicyBlock: plan.Policy{FailOnChange: true}}
	r := &plan.Report{TotalModified: 1}
	assert.Equal(t, ViolationFailOnChange, PostCheck(p, r))
}

func TestPostCheck_NoViolationWhenDisabled(t *testing.T) {
	t.Parallel()

	p := &plan.Plan{}
	r := &plan.Report{TotalModified: 5, TotalReplacements: 5}
	assert.Empty(t, PostCheck(p, r))
}
