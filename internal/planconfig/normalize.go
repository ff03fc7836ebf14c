// Package planconfig implements the plan normalizer: it merges the
// embedded plan document, CLI flag overrides, and built-in
// defaults into one immutable plan.Plan, performing every semantic
// validation the engine and txn stages rely on never having to re-check.
package planconfig

import (
	"fmt"

	koanf "github.com/knadh/koanf/v2"
	"github.com/knadh/koanf/providers/confmap"
	json "github.com/segmentio/encoding/json"

	"github.com/harvx/rewrite/internal/engine"
	"github.com/harvx/rewrite/internal/plan"
)

// Source identifies which layer a scalar plan field was resolved from,
// mirroring the ambient config package's layered-resolution source
// attribution.
type Source int

const (
	SourceDefault Source = iota
	SourcePlanDoc
	SourceCLIFlag
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourcePlanDoc:
		return "plan_doc"
	case SourceCLIFlag:
		return "cli_flag"
	default:
		return "unknown"
	}
}

// SourceMap tracks where each scalar field's final value came from.
type SourceMap map[string]Source

// Normalize merges, in increasing precedence: the package's built-in
// defaults, userDefaults (the optional ~/.config/rwx/config.toml layer,
// nil-able), doc (the embedded plan document), and cliFlags (explicit CLI
// overrides, highest precedence) into a fully validated plan.Plan. Inputs
// and Operations come directly from doc -- CLI flags may only override
// scalar knobs, never append to or replace the input/operation lists.
func Normalize(doc *Document, userDefaults, cliFlags map[string]any) (*plan.Plan, SourceMap, error) {
	k := koanf.New(".")
	sources := make(SourceMap)

	if err := layer(k, DefaultsFlat(), sources, SourceDefault); err != nil {
		return nil, nil, err
	}
	if len(userDefaults) > 0 {
		if err := layer(k, userDefaults, sources, SourceDefault); err != nil {
			return nil, nil, err
		}
	}
	if err := layer(k, scalarFlat(doc), sources, SourcePlanDoc); err != nil {
		return nil, nil, err
	}
	if len(cliFlags) > 0 {
		if err := layer(k, cliFlags, sources, SourceCLIFlag); err != nil {
			return nil, nil, err
		}
	}

	p := &plan.Plan{
		Mode:        plan.PatternMode(k.String("mode")),
		Case:        plan.CaseMode(k.String("case")),
		Transaction: plan.TransactionMode(k.String("transaction")),
		Symlinks:    plan.SymlinkPolicy(k.String("symlinks")),
		Binary:      plan.BinaryPolicy(k.String("binary")),
		Permissions: plan.PermissionsMode(k.String("permissions")),
		GlobInclude: doc.GlobInclude,
		GlobExclude: doc.GlobExclude,
		Safety: plan.SafetyFlags{
			DryRun:       k.Bool("dry_run"),
			NoWrite:      k.Bool("no_write"),
			ValidateOnly: k.Bool("validate_only"),
		},
		PolicyBlock: plan.Policy{
			RequireMatch: k.Bool("policy.require_match"),
			FailOnChange: k.Bool("policy.fail_on_change"),
		},
	}

	if doc.Limit != nil {
		if *doc.Limit < 0 {
			return nil, nil, fmt.Errorf("limit must be non-negative, got %d", *doc.Limit)
		}
		p.Limit = doc.Limit
	}
	if v := k.String("fixed_mode"); v != "" {
		mode, err := ParseFixedMode(v)
		if err != nil {
			return nil, nil, err
		}
		p.FixedPermBits = mode
	}
	if v := k.String("max_file_size"); v != "" {
		size, err := ParseSize(v)
		if err != nil {
			return nil, nil, err
		}
		p.MaxFileSize = size
	}
	if doc.Policy != nil && doc.Policy.ExpectExactCount != nil {
		n := *doc.Policy.ExpectExactCount
		if n < 0 {
			return nil, nil, fmt.Errorf("policy.expect_exact_count must be non-negative, got %d", n)
		}
		p.PolicyBlock.ExpectExactCount = doc.Policy.ExpectExactCount
	}
	if doc.Range != nil {
		if doc.Range.End != 0 && doc.Range.End < doc.Range.Start {
			return nil, nil, fmt.Errorf("range.end (%d) must not be less than range.start (%d)", doc.Range.End, doc.Range.Start)
		}
		p.Range = &plan.LineRange{Start: doc.Range.Start, End: doc.Range.End}
	}

	inputs, err := convertInputs(doc.Inputs)
	if err != nil {
		return nil, nil, err
	}
	p.Inputs = inputs

	ops, err := convertOperations(doc.Operations, p.Mode)
	if err != nil {
		return nil, nil, err
	}
	p.Operations = ops

	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	return p, sources, nil
}

func layer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if len(m) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merging %s layer: %w", src, err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// scalarFlat extracts only the scalar plan knobs doc explicitly set, using
// a marshal/unmarshal round trip so fields the JSON tags omitted (the zero
// value) never shadow a lower-precedence layer -- the same "only keys
// genuinely present" discipline the ambient config package applies to its
// TOML layers.
func scalarFlat(doc *Document) map[string]any {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	flat := make(map[string]any)
	for _, key := range []string{
		"mode", "case", "transaction", "symlinks", "binary", "permissions",
		"fixed_mode", "max_file_size", "dry_run", "no_write", "validate_only",
	} {
		if v, ok := m[key]; ok {
			flat[key] = v
		}
	}
	if pol, ok := m["policy"].(map[string]any); ok {
		if v, ok := pol["require_match"]; ok {
			flat["policy.require_match"] = v
		}
		if v, ok := pol["fail_on_change"]; ok {
			flat["policy.fail_on_change"] = v
		}
	}
	return flat
}

func convertInputs(docs []InputDoc) ([]plan.InputDesignator, error) {
	out := make([]plan.InputDesignator, 0, len(docs))
	for _, d := range docs {
		kind := plan.InputDesignatorKind(d.Kind)
		switch kind {
		case plan.DesignatorPath, plan.DesignatorStdinText, plan.DesignatorStdinPaths, plan.DesignatorMatchStream:
		default:
			return nil, fmt.Errorf("unrecognized input designator kind %q", d.Kind)
		}
		out = append(out, plan.InputDesignator{Kind: kind, Path: d.Path})
	}
	return out, nil
}

func convertOperations(docs []OperationDoc, mode plan.PatternMode) ([]plan.Operation, error) {
	out := make([]plan.Operation, 0, len(docs))
	for i, d := range docs {
		kind := plan.OperationKind(d.Type)
		switch kind {
		case plan.OpReplace, plan.OpDelete, plan.OpInsertBefore, plan.OpInsertAfter:
		default:
			return nil, fmt.Errorf("operation %d: unrecognized type %q", i, d.Type)
		}

		if d.Expand && mode != plan.PatternRegex {
			return nil, fmt.Errorf("operation %d: expand requires regex mode, plan mode is %q", i, mode)
		}
		if err := engine.ValidatePattern(d.Find, mode); err != nil {
			return nil, fmt.Errorf("operation %d: invalid find pattern: %w", i, err)
		}
		if d.Limit != nil && *d.Limit < 0 {
			return nil, fmt.Errorf("operation %d: limit must be non-negative, got %d", i, *d.Limit)
		}

		out = append(out, plan.Operation{
			Type: kind, Find: d.Find, With: d.With, Text: d.Text,
			Limit: d.Limit, Expand: d.Expand,
		})
	}
	return out, nil
}
