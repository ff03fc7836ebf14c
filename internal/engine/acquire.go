package engine

import (
	"errors"
	"os"

	"github.com/harvx/rewrite/internal/plan"
	"github.com/harvx/rewrite/internal/resolve"
)

// ContentCache memoizes file reads by absolute path so that match-span mode
// -- where several InputItems can point at the same file -- reads each
// file's content exactly once. It is used
// strictly sequentially by the single-worker pipeline; it carries no
// synchronization because the spec mandates there is none to guard against.
type ContentCache struct {
	content map[string][]byte
	modes   map[string]os.FileMode
}

// NewContentCache returns an empty cache.
func NewContentCache() *ContentCache {
	return &ContentCache{
		content: make(map[string][]byte),
		modes:   make(map[string]os.FileMode),
	}
}

// acquireOutcome is a terminal Skipped/Error outcome produced during
// acquisition, short-circuiting the rest of the pipeline for that item.
type acquireOutcome struct {
	outcome plan.ItemOutcome
}

func (a *acquireOutcome) Error() string { return a.outcome.Message }

// Acquire reads the bytes for one InputItem, applying the symlink and
// binary policies from p. For ItemPath and ItemMatchSpan it reads the
// target file (through ContentCache so co-located match spans share one
// read); for ItemStdinText it returns the provided bytes directly.
//
// A non-nil *acquireOutcome return means the item terminates here with a
// Skipped or Error outcome; callers must not continue processing.
func (c *ContentCache) Acquire(item plan.InputItem, p *plan.Plan) ([]byte, *acquireOutcome) {
	switch item.Kind {
	case plan.ItemStdinText:
		return item.Bytes, nil

	case plan.ItemPath, plan.ItemMatchSpan:
		return c.acquireFile(item, p)

	default:
		return nil, &acquireOutcome{outcome: plan.ItemOutcome{
			Kind: plan.OutcomeError, Path: item.OriginalSpelling,
			Code: "E_INTERNAL", Message: "unrecognized input item kind",
		}}
	}
}

func (c *ContentCache) acquireFile(item plan.InputItem, p *plan.Plan) ([]byte, *acquireOutcome) {
	path := item.AbsPath
	displayPath := item.OriginalSpelling
	if displayPath == "" {
		displayPath = path
	}

	if cached, ok := c.content[path]; ok {
		return cached, nil
	}

	isSymlink, err := resolve.SymlinkInfo(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeError, Path: displayPath,
				Code: "E_NOT_FOUND", Message: err.Error(),
			}}
		}
		return nil, &acquireOutcome{outcome: plan.ItemOutcome{
			Kind: plan.OutcomeError, Path: displayPath,
			Code: "E_IO", Message: err.Error(),
		}}
	}

	realPath := path
	if isSymlink {
		switch p.Symlinks {
		case plan.SymlinkSkip:
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeSkipped, Path: displayPath, ReasonCode: "symlink",
			}}
		case plan.SymlinkError:
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeError, Path: displayPath,
				Code: "E_SYMLINK_POLICY", Message: "symlink policy forbids following " + displayPath,
			}}
		case plan.SymlinkFollow:
			resolved, err := resolve.ResolveSymlink(path)
			if err != nil {
				return nil, &acquireOutcome{outcome: plan.ItemOutcome{
					Kind: plan.OutcomeError, Path: displayPath,
					Code: "E_IO", Message: err.Error(),
				}}
			}
			realPath = resolved
		}
	}

	if p.MaxFileSize > 0 {
		large, _, err := resolve.IsLargeFile(realPath, p.MaxFileSize)
		if err != nil {
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeError, Path: displayPath,
				Code: "E_IO", Message: err.Error(),
			}}
		}
		if large {
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeSkipped, Path: displayPath, ReasonCode: "size_limit",
			}}
		}
	}

	content, err := os.ReadFile(realPath)
	if err != nil {
		code := "E_IO"
		if os.IsNotExist(err) {
			code = "E_NOT_FOUND"
		} else if os.IsPermission(err) {
			code = "E_ACCES"
		}
		return nil, &acquireOutcome{outcome: plan.ItemOutcome{
			Kind: plan.OutcomeError, Path: displayPath,
			Code: code, Message: err.Error(),
		}}
	}

	isBin := resolve.SniffBytes(content)
	if isBin {
		switch p.Binary {
		case plan.BinarySkip:
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeSkipped, Path: displayPath, ReasonCode: "binary",
			}}
		case plan.BinaryError:
			return nil, &acquireOutcome{outcome: plan.ItemOutcome{
				Kind: plan.OutcomeError, Path: displayPath,
				Code: "E_BINARY_POLICY", Message: "binary policy forbids processing " + displayPath,
			}}
		}
	}

	if info, err := os.Stat(realPath); err == nil {
		c.modes[path] = info.Mode().Perm()
	}

	c.content[path] = content
	return content, nil
}

// ModeFor returns the cached file mode for path (populated by a prior
// Acquire call), or ok=false if the path was never acquired from disk.
func (c *ContentCache) ModeFor(path string) (os.FileMode, bool) {
	m, ok := c.modes[path]
	return m, ok
}
