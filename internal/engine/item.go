package engine

import (
	"bytes"

	"github.com/harvx/rewrite/internal/plan"
)

// ProcessItem runs the full per-item pipeline: acquire content, determine
// the candidate region, apply every operation in order, and assemble the
// resulting ItemOutcome (including its diff). It never touches the
// filesystem for writing; staging and commit
// belong to the txn package.
func ProcessItem(item plan.InputItem, cp *CompiledPlan, cache *ContentCache) plan.ItemOutcome {
	displayPath := item.OriginalSpelling
	if displayPath == "" {
		displayPath = item.AbsPath
	}

	content, aerr := cache.Acquire(item, cp.plan)
	if aerr != nil {
		return aerr.outcome
	}

	lo, hi, staleErr := region(item, content, cp)
	if staleErr {
		return plan.ItemOutcome{
			Kind: plan.OutcomeError, Path: displayPath,
			Code:    "E_STALE_SPAN",
			Message: (&errStaleSpan{path: displayPath, offset: item.ByteOffset}).Error(),
		}
	}

	transformed, replacements, err := applyRegion(content, lo, hi, cp.ops)
	if err != nil {
		return plan.ItemOutcome{
			Kind: plan.OutcomeError, Path: displayPath,
			Code: "E_EXPAND", Message: err.Error(),
		}
	}

	modified := !bytes.Equal(content, transformed)

	outcome := plan.ItemOutcome{
		Kind:               plan.OutcomeSuccess,
		Path:               displayPath,
		Modified:           modified,
		Replacements:       replacements,
		TransformedContent: transformed,
		HasTransformed:     true,
		IsVirtual:          item.Kind == plan.ItemStdinText,
	}

	if modified {
		diffText, isBinary, derr := UnifiedDiff(displayPath, content, transformed)
		if derr == nil {
			outcome.Diff = diffText
			outcome.DiffIsBinary = isBinary
			outcome.HasDiff = !isBinary
		}
	}

	return outcome
}

// region resolves the [lo,hi) byte window operations are restricted to for
// this item: the recorded span for match-span items (after verifying it is
// not stale), the plan's line range if set, or the whole item otherwise.
// staleErr is true only for a match-span item whose recorded offset no
// longer matches the current find pattern.
func region(item plan.InputItem, content []byte, cp *CompiledPlan) (lo, hi int, staleErr bool) {
	if item.Kind == plan.ItemMatchSpan {
		lo = int(item.ByteOffset)
		hi = int(item.ByteOffset + item.ByteLength)
		if len(cp.ops) == 0 || !verifySpan(content, item.ByteOffset, item.ByteLength, cp.ops[0]) {
			return 0, 0, true
		}
		return lo, hi, false
	}
	if cp.plan.Range != nil {
		lo, hi = lineRangeBounds(content, *cp.plan.Range)
		return lo, hi, false
	}
	return 0, len(content), false
}
