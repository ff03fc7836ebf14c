// Package resolve implements the input resolver: it
// selects exactly one input mode and yields a stable, deduplicated sequence
// of plan.InputItem values. It never discovers files on its own -- every
// path comes from an explicit designator, a stream of paths, or an external
// match-producer's JSON stream.
package resolve

import (
	"fmt"

	"github.com/harvx/rewrite/internal/plan"
)

// ModeRequest carries the information needed to pick an InputMode following
// this exact precedence order:
//
//  1. An explicit forced mode flag wins outright.
//  2. Positional files win if present and the caller asserts positional
//     precedence.
//  3. Stdin-as-paths wins if stdin is a pipe and no positional files exist.
//  4. Otherwise positional paths; if neither exists and stdin is a
//     terminal, fail with an invocation error.
type ModeRequest struct {
	ForcedMode           plan.InputMode // empty means "not forced"
	PositionalFiles      []string
	AssertPositionalFirst bool
	StdinIsPipe          bool
	StdinIsTerminal      bool
}

// Mutual-exclusion errors for conflicting input-mode requests.
var (
	ErrStdinTextConflictsNUL   = fmt.Errorf("stdin-as-text conflicts with NUL-delimited paths mode")
	ErrStdinTextConflictsMatch = fmt.Errorf("stdin-as-text conflicts with match-span stream mode")
	ErrMatchStreamForbidsFiles = fmt.Errorf("match-span stream mode forbids positional files")
	ErrNoInput                 = fmt.Errorf("no input: no positional files and standard input is a terminal")
)

// SelectMode applies the ModeRequest precedence rules and returns the
// chosen InputMode. It does not itself validate mutual exclusion between a
// forced mode and positional files beyond what the rules describe; callers
// that also accept a forced mode alongside match-span streaming should check
// ValidateModeConstraints first.
func SelectMode(req ModeRequest) (plan.InputMode, error) {
	if req.ForcedMode != "" {
		return req.ForcedMode, nil
	}
	if len(req.PositionalFiles) > 0 && req.AssertPositionalFirst {
		return plan.InputArgs, nil
	}
	if req.StdinIsPipe && len(req.PositionalFiles) == 0 {
		return plan.InputStdinPaths, nil
	}
	if len(req.PositionalFiles) > 0 {
		return plan.InputArgs, nil
	}
	if req.StdinIsTerminal {
		return "", ErrNoInput
	}
	// Stdin is neither a terminal nor flagged as a pipe (e.g. redirected
	// from a regular file) and there are no positional files: treat it as
	// newline-delimited paths, same as the pipe case.
	return plan.InputStdinPaths, nil
}

// ValidateModeConstraints checks the mutual-exclusion rule that is still
// visible once a mode is selected: match-span stream mode forbids
// positional files.
func ValidateModeConstraints(mode plan.InputMode, hasPositionalFiles bool) error {
	switch mode {
	case plan.InputStdinText:
		// SelectMode only ever returns one mode, so a conflicting NUL-paths
		// or match-stream request is not visible here; the CLI rejects those
		// combinations from its raw flags (ErrStdinTextConflictsNUL,
		// ErrStdinTextConflictsMatch) before calling the resolver.
		return nil
	case plan.InputRgJSON:
		if hasPositionalFiles {
			return ErrMatchStreamForbidsFiles
		}
	}
	return nil
}
