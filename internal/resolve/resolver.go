package resolve

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/harvx/rewrite/internal/plan"
)

// Options configures a Resolver run. Exactly one of the resulting modes is
// ever used; ForcedMode/PositionalFiles/Stdin describe the raw invocation
// shape that SelectMode disambiguates.
type Options struct {
	ForcedMode            plan.InputMode
	PositionalFiles       []string
	AssertPositionalFirst bool
	StdinIsPipe           bool
	StdinIsTerminal       bool
	Stdin                 io.Reader

	GlobInclude []string
	GlobExclude []string
}

// Result is the resolver's output: the deduplicated, filtered input items in
// stable order, the chosen mode (for the run_start event), and the Skipped
// outcomes produced by glob exclusion.
type Result struct {
	Mode    plan.InputMode
	Items   []plan.InputItem
	Skipped []plan.ItemOutcome
}

// Resolve selects the input mode and produces the
// input-item sequence: for path-producing modes it reads the raw path list,
// applies include-then-exclude globs, and deduplicates by canonical path
// (first occurrence wins); for stdin-text mode it wraps the raw stdin bytes
// in a single virtual item; for the match-span stream (which forbids
// positional files, checked by ValidateModeConstraints) it delegates to
// DecodeMatchStream and never applies glob filtering (the spans are
// authoritative, not subject to rediscovery).
func Resolve(ctx context.Context, opts Options) (*Result, error) {
	logger := slog.Default().With("component", "resolver")

	mode, err := SelectMode(ModeRequest{
		ForcedMode:            opts.ForcedMode,
		PositionalFiles:       opts.PositionalFiles,
		AssertPositionalFirst: opts.AssertPositionalFirst,
		StdinIsPipe:           opts.StdinIsPipe,
		StdinIsTerminal:       opts.StdinIsTerminal,
	})
	if err != nil {
		return nil, err
	}

	if err := ValidateModeConstraints(mode, len(opts.PositionalFiles) > 0); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch mode {
	case plan.InputStdinText:
		content, err := io.ReadAll(opts.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin text: %w", err)
		}
		return &Result{
			Mode: mode,
			Items: []plan.InputItem{{
				Kind:  plan.ItemStdinText,
				Bytes: content,
			}},
		}, nil

	case plan.InputRgJSON:
		items, err := DecodeMatchStream(opts.Stdin)
		if err != nil {
			return nil, err
		}
		items = dedupMatchSpans(items)
		logger.Debug("resolved match-span stream", "items", len(items))
		return &Result{Mode: mode, Items: items}, nil

	case plan.InputManifest:
		// Reserved for future manifest-file input; treated identically to
		// stdin-paths today (a manifest is just an explicit path list read
		// from a named file by the caller before invoking the resolver).
		fallthrough
	case plan.InputStdinPaths:
		rawPaths, err := readDelimitedPaths(opts.Stdin, '\n')
		if err != nil {
			return nil, err
		}
		return resolvePathList(rawPaths, opts, logger, mode)

	case plan.InputStdinPathsNUL:
		rawPaths, err := readDelimitedPaths(opts.Stdin, '\x00')
		if err != nil {
			return nil, err
		}
		return resolvePathList(rawPaths, opts, logger, mode)

	case plan.InputArgs:
		return resolvePathList(opts.PositionalFiles, opts, logger, mode)

	default:
		return nil, fmt.Errorf("unrecognized input mode %q", mode)
	}
}

// readDelimitedPaths reads r fully and splits on sep, dropping empty
// trailing segments (a trailing delimiter never yields a spurious empty
// path entry).
func readDelimitedPaths(r io.Reader, sep byte) ([]string, error) {
	if r == nil {
		return nil, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading path list: %w", err)
	}
	var paths []string
	for _, part := range bytes.Split(data, []byte{sep}) {
		if len(part) == 0 {
			continue
		}
		paths = append(paths, string(part))
	}
	return paths, nil
}

// resolvePathList converts a raw path list into deduplicated, glob-filtered
// InputItems, in first-seen order.
func resolvePathList(rawPaths []string, opts Options, logger *slog.Logger, mode plan.InputMode) (*Result, error) {
	var filter *GlobFilter
	if len(opts.GlobInclude) > 0 || len(opts.GlobExclude) > 0 {
		filter = NewGlobFilter(opts.GlobInclude, opts.GlobExclude)
	}

	seen := make(map[string]bool, len(rawPaths))
	result := &Result{Mode: mode}

	for _, raw := range rawPaths {
		abs, err := filepath.Abs(raw)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", raw, err)
		}
		canonical := abs
		if real, err := ResolveSymlink(abs); err == nil {
			canonical = real
		}

		if filter != nil && filter.HasFilters() && !filter.Keep(raw) {
			result.Skipped = append(result.Skipped, plan.ItemOutcome{
				Kind:       plan.OutcomeSkipped,
				Path:       raw,
				ReasonCode: "glob_exclude",
			})
			continue
		}

		if seen[canonical] {
			result.Skipped = append(result.Skipped, plan.ItemOutcome{
				Kind:       plan.OutcomeSkipped,
				Path:       raw,
				ReasonCode: "dedup",
			})
			continue
		}
		seen[canonical] = true

		result.Items = append(result.Items, plan.InputItem{
			Kind:             plan.ItemPath,
			AbsPath:          abs,
			OriginalSpelling: raw,
		})
	}

	logger.Debug("resolved path list", "mode", mode, "items", len(result.Items), "skipped", len(result.Skipped))
	return result, nil
}

// dedupMatchSpans removes duplicate (path, offset, length) spans while
// preserving first-seen order; the upstream producer should never emit
// duplicates, but the resolver does not trust that invariant blindly.
func dedupMatchSpans(items []plan.InputItem) []plan.InputItem {
	type key struct {
		path   string
		offset int64
		length int64
	}
	seen := make(map[key]bool, len(items))
	out := make([]plan.InputItem, 0, len(items))
	for _, it := range items {
		k := key{it.AbsPath, it.ByteOffset, it.ByteLength}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}
