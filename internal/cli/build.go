package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harvx/rewrite/internal/planconfig"
)

// buildDocument turns the root command's positional args and flags into a
// planconfig.Document plus a flattened CLI-override map for
// planconfig.Normalize. args[0] is the find pattern; args[1] is the
// replacement text unless --delete/--insert-before/--insert-after select a
// different operation; any remaining args are treated as positional file
// paths.
func buildDocument(fv *flagValues, args []string) (*planconfig.Document, map[string]any, error) {
	if len(args) == 0 {
		return nil, nil, fmt.Errorf("missing required FIND argument")
	}
	find := args[0]
	rest := args[1:]

	op, rest, err := buildOperation(fv, find, rest)
	if err != nil {
		return nil, nil, err
	}

	doc := &planconfig.Document{
		Operations: []planconfig.OperationDoc{op},
	}
	for _, p := range rest {
		doc.Inputs = append(doc.Inputs, planconfig.InputDoc{Kind: "path", Path: p})
	}

	if fv.Range != "" {
		r, err := parseRange(fv.Range)
		if err != nil {
			return nil, nil, err
		}
		doc.Range = r
	}
	doc.GlobInclude = fv.GlobInclude
	doc.GlobExclude = fv.GlobExclude
	doc.DryRun = fv.DryRun
	doc.NoWrite = fv.NoWrite
	doc.ValidateOnly = fv.ValidateOnly

	if fv.RequireMatch || fv.ExpectExactCount >= 0 || fv.FailOnChange {
		pol := &planconfig.PolicyDoc{
			RequireMatch: fv.RequireMatch,
			FailOnChange: fv.FailOnChange,
		}
		if fv.ExpectExactCount >= 0 {
			n := fv.ExpectExactCount
			pol.ExpectExactCount = &n
		}
		doc.Policy = pol
	}

	cliFlags := cliFlagsFrom(fv)
	if fv.Limit > 0 {
		doc.Limit = &fv.Limit
	}

	return doc, cliFlags, nil
}

// cliFlagsFrom flattens the scalar plan-relevant fields of fv into the
// override map planconfig.Normalize expects as its highest-precedence
// layer. Used both by buildDocument (flags built into a fresh Document) and
// by the apply subcommand (flags overriding a Document read from disk).
func cliFlagsFrom(fv *flagValues) map[string]any {
	return map[string]any{
		"mode":          fv.Mode,
		"case":          fv.Case,
		"transaction":   fv.Transaction,
		"symlinks":      fv.Symlinks,
		"binary":        fv.Binary,
		"permissions":   fv.Permissions,
		"fixed_mode":    fv.FixedMode,
		"max_file_size": fv.MaxFileSize,
		"dry_run":       fv.DryRun,
		"no_write":      fv.NoWrite,
		"validate_only": fv.ValidateOnly,
	}
}

func buildOperation(fv *flagValues, find string, rest []string) (planconfig.OperationDoc, []string, error) {
	switch {
	case fv.Delete:
		return planconfig.OperationDoc{Type: "delete", Find: find}, rest, nil
	case fv.InsertBefore != "":
		return planconfig.OperationDoc{Type: "insert_before", Find: find, Text: fv.InsertBefore}, rest, nil
	case fv.InsertAfter != "":
		return planconfig.OperationDoc{Type: "insert_after", Find: find, Text: fv.InsertAfter}, rest, nil
	default:
		if len(rest) == 0 {
			return planconfig.OperationDoc{}, nil, fmt.Errorf("missing required WITH argument for replace")
		}
		op := planconfig.OperationDoc{Type: "replace", Find: find, With: rest[0], Expand: fv.Expand}
		return op, rest[1:], nil
	}
}

// cliFlagsChanged is cliFlagsFrom restricted to flags the user actually set
// on the command line, keyed the same way. rwx apply reads its Document
// from disk, so an unset flag must never shadow a value the plan file
// explicitly chose -- only an explicitly-passed flag may override it. The
// root command uses it too, so an unset flag never shadows the user config
// file.
func cliFlagsChanged(cmd *cobra.Command, fv *flagValues) map[string]any {
	all := cliFlagsFrom(fv)
	out := make(map[string]any)
	names := map[string]string{
		"mode": "mode", "case": "case", "transaction": "transaction",
		"symlinks": "symlinks", "binary": "binary", "permissions": "permissions",
		"fixed_mode": "fixed-mode", "max_file_size": "max-file-size",
		"dry_run": "dry-run", "no_write": "no-write", "validate_only": "validate-only",
	}
	for key, flagName := range names {
		if cmd.Flags().Changed(flagName) {
			out[key] = all[key]
		}
	}
	return out
}

// docPaths extracts the plain path strings from a Document's path-kind
// inputs, for handing to the resolver as positional file arguments.
func docPaths(doc *planconfig.Document) []string {
	var out []string
	for _, in := range doc.Inputs {
		if in.Kind == "path" {
			out = append(out, in.Path)
		}
	}
	return out
}

// parseRange parses a "start:end" or "start:" range string into a RangeDoc.
func parseRange(s string) (*planconfig.RangeDoc, error) {
	parts := strings.SplitN(s, ":", 2)
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid --range %q: %w", s, err)
	}
	r := &planconfig.RangeDoc{Start: start}
	if len(parts) == 2 && parts[1] != "" {
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid --range %q: %w", s, err)
		}
		r.End = end
	}
	return r, nil
}
