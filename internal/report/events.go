// Package report implements the event stream and Report accumulation:
// one NDJSON record per run_start, one per processed item (file), and one
// run_end record closing the run.
package report

import (
	"io"
	"strings"
	"unicode/utf8"

	json "github.com/segmentio/encoding/json"

	"github.com/harvx/rewrite/internal/buildinfo"
	"github.com/harvx/rewrite/internal/plan"
)

// SchemaVersion is the stable wire-format version reported on every
// run_start event.
const SchemaVersion = "1"

// Stable skip reason_code tokens reported on "skipped" items.
// Deliberately does not include a legacy "not_modified" token:
// an item that runs every operation and changes nothing is a successful,
// unmodified outcome, not a skip.
const (
	SkipReasonBinary      = "binary"
	SkipReasonSymlink     = "symlink"
	SkipReasonGlobExclude = "glob_exclude"
	SkipReasonDedup       = "dedup"
	SkipReasonSizeLimit   = "size_limit"
)

// Stable error Code tokens reported on "error" items.
const (
	ErrCodeNotFound    = "E_NOT_FOUND"
	ErrCodeAccess      = "E_ACCES"
	ErrCodeIO          = "E_IO"
	ErrCodeSymlink     = "E_SYMLINK_POLICY"
	ErrCodeBinary      = "E_BINARY_POLICY"
	ErrCodeStaleSpan   = "E_STALE_SPAN"
	ErrCodeExpand      = "E_EXPAND"
	ErrCodeTransaction = "E_TRANSACTION"
	ErrCodeInternal    = "E_INTERNAL"
)

// runStartEvent is the first record emitted for every run.
type runStartEvent struct {
	Type            string        `json:"type"`
	SchemaVersion   string        `json:"schema_version"`
	ToolVersion     string        `json:"tool_version"`
	Mode            string        `json:"mode"`
	InputMode       string        `json:"input_mode"`
	TransactionMode string        `json:"transaction_mode"`
	DryRun          bool          `json:"dry_run"`
	ValidateOnly    bool          `json:"validate_only"`
	NoWrite         bool          `json:"no_write"`
	Policies        policiesEvent `json:"policies"`
}

// policiesEvent mirrors plan.Policy on the wire.
type policiesEvent struct {
	RequireMatch bool `json:"require_match"`
	Expect       *int `json:"expect"`
	FailOnChange bool `json:"fail_on_change"`
}

// fileEvent is emitted once per processed InputItem, shaped by outcome.Kind.
type fileEvent struct {
	Type             string `json:"type"`
	Path             string `json:"path"`
	Kind             string `json:"kind"`
	Modified         *bool  `json:"modified,omitempty"`
	Replacements     *uint  `json:"replacements,omitempty"`
	Diff             string `json:"diff,omitempty"`
	DiffIsBinary     *bool  `json:"diff_is_binary,omitempty"`
	GeneratedContent string `json:"generated_content,omitempty"`
	IsVirtual        *bool  `json:"is_virtual,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Code             string `json:"code,omitempty"`
	Message          string `json:"message,omitempty"`
}

// runEndEvent is the closing record, carrying the run's aggregate totals.
type runEndEvent struct {
	Type              string `json:"type"`
	TotalFiles        int    `json:"total_files"`
	TotalProcessed    int    `json:"total_processed"`
	TotalModified     int    `json:"total_modified"`
	TotalReplacements uint64 `json:"total_replacements"`
	HasErrors         bool   `json:"has_errors"`
	PolicyViolation   string `json:"policy_violation,omitempty"`
	Committed         bool   `json:"committed"`
	DurationMs        int64  `json:"duration_ms"`
	ExitCode          int    `json:"exit_code"`
}

// Emitter writes NDJSON events to w as a run progresses. It is not
// goroutine-safe; the pipeline is strictly single-worker, so none is
// needed.
type Emitter struct {
	w   io.Writer
	enc *json.Encoder
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w, enc: json.NewEncoder(w)}
}

// RunStart emits the run_start record, describing the schema/tool version,
// the resolved input mode, and every scalar on p that governs the run's
// behavior (transaction scope, safety flags, policy block).
func (e *Emitter) RunStart(mode plan.InputMode, runMode plan.RunMode, p *plan.Plan) error {
	return e.enc.Encode(runStartEvent{
		Type:            "run_start",
		SchemaVersion:   SchemaVersion,
		ToolVersion:     buildinfo.Version,
		Mode:            string(runMode),
		InputMode:       string(mode),
		TransactionMode: string(p.Transaction),
		DryRun:          p.Safety.DryRun,
		ValidateOnly:    p.Safety.ValidateOnly,
		NoWrite:         p.Safety.NoWrite,
		Policies: policiesEvent{
			RequireMatch: p.PolicyBlock.RequireMatch,
			Expect:       p.PolicyBlock.ExpectExactCount,
			FailOnChange: p.PolicyBlock.FailOnChange,
		},
	})
}

// File emits one "file" record for a single ItemOutcome. Virtual (stdin-text)
// success outcomes carry their transformed content in generated_content,
// since they have no on-disk location a reader could otherwise inspect.
func (e *Emitter) File(o plan.ItemOutcome) error {
	ev := fileEvent{Type: "file", Path: sanitizePath(o.Path), Kind: string(o.Kind)}
	switch o.Kind {
	case plan.OutcomeSuccess:
		modified := o.Modified
		repl := o.Replacements
		virtual := o.IsVirtual
		ev.Modified = &modified
		ev.Replacements = &repl
		ev.IsVirtual = &virtual
		if o.HasDiff {
			ev.Diff = o.Diff
		}
		if o.DiffIsBinary {
			isBin := true
			ev.DiffIsBinary = &isBin
		}
		if o.IsVirtual && o.HasTransformed {
			ev.GeneratedContent = string(o.TransformedContent)
		}
	case plan.OutcomeSkipped:
		ev.Reason = o.ReasonCode
	case plan.OutcomeError:
		ev.Code = o.Code
		ev.Message = o.Message
	}
	return e.enc.Encode(ev)
}

// RunEnd emits the closing run_end record.
func (e *Emitter) RunEnd(r *plan.Report, exitCode plan.ExitCode) error {
	return e.enc.Encode(runEndEvent{
		Type:              "run_end",
		TotalFiles:        r.TotalItems,
		TotalProcessed:    r.TotalProcessed,
		TotalModified:     r.TotalModified,
		TotalReplacements: r.TotalReplacements,
		HasErrors:         r.HasErrors,
		PolicyViolation:   r.PolicyViolation,
		Committed:         r.Committed,
		DurationMs:        r.Duration.Milliseconds(),
		ExitCode:          int(exitCode),
	})
}

// sanitizePath replaces invalid UTF-8 byte sequences with the Unicode
// replacement character so every emitted path is valid JSON text: the event
// stream never emits invalid UTF-8, even for paths containing arbitrary
// bytes.
func sanitizePath(p string) string {
	if utf8.ValidString(p) {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRuneInString(p[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}
