package planconfig

import (
	"fmt"
	"io"

	json "github.com/segmentio/encoding/json"
)

// Document is the on-the-wire JSON shape of a plan file, as accepted by
// `rwx apply --plan <file>` and the `apply_plan` MCP tool. It mirrors
// plan.Plan field-for-field but keeps string/primitive types so it can be
// parsed before any semantic validation runs -- Normalize is what turns a
// Document into a fully validated plan.Plan.
type Document struct {
	Inputs      []InputDoc       `json:"inputs"`
	Operations  []OperationDoc   `json:"operations"`
	Mode        string           `json:"mode,omitempty"`
	Case        string           `json:"case,omitempty"`
	Limit       *int             `json:"limit,omitempty"`
	Range       *RangeDoc        `json:"range,omitempty"`
	GlobInclude []string         `json:"glob_include,omitempty"`
	GlobExclude []string         `json:"glob_exclude,omitempty"`
	Transaction string           `json:"transaction,omitempty"`
	Symlinks    string           `json:"symlinks,omitempty"`
	Binary      string           `json:"binary,omitempty"`
	Permissions string           `json:"permissions,omitempty"`
	FixedMode   string           `json:"fixed_mode,omitempty"`
	MaxFileSize string          `json:"max_file_size,omitempty"`
	DryRun      bool             `json:"dry_run,omitempty"`
	NoWrite     bool             `json:"no_write,omitempty"`
	ValidateOnly bool            `json:"validate_only,omitempty"`
	Policy      *PolicyDoc       `json:"policy,omitempty"`
}

// InputDoc is one entry of Document.Inputs.
type InputDoc struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
}

// OperationDoc is one entry of Document.Operations.
type OperationDoc struct {
	Type   string `json:"type"`
	Find   string `json:"find"`
	With   string `json:"with,omitempty"`
	Text   string `json:"text,omitempty"`
	Limit  *int   `json:"limit,omitempty"`
	Expand bool   `json:"expand,omitempty"`
}

// RangeDoc is Document.Range's wire shape.
type RangeDoc struct {
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

// PolicyDoc is Document.Policy's wire shape.
type PolicyDoc struct {
	RequireMatch     bool `json:"require_match,omitempty"`
	ExpectExactCount *int `json:"expect_exact_count,omitempty"`
	FailOnChange     bool `json:"fail_on_change,omitempty"`
}

// ParseDocument decodes a Document from r. segmentio/encoding/json is used
// here (and throughout the event stream) as a faster drop-in for the
// stdlib's encoding/json, matching its Marshal/Unmarshal semantics exactly.
func ParseDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing plan document: %w", err)
	}
	return &doc, nil
}
