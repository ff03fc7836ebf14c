package txn

import (
	"errors"
	"fmt"
	"os"

	"github.com/harvx/rewrite/internal/plan"
)

// Manager coordinates staging and commit across a run, honoring the plan's
// TransactionMode and safety flags. It is used strictly sequentially by the
// single-worker pipeline.
type Manager struct {
	p       *plan.Plan
	pending []*Staged // only populated under TransactionAll
}

// NewManager returns a Manager for p.
func NewManager(p *plan.Plan) *Manager {
	return &Manager{p: p}
}

// Apply stages (and, under TransactionFile, immediately commits) one
// modified item's transformed content. It mutates outcome in place: a
// staging or commit failure downgrades a Success outcome to an Error with
// code E_TRANSACTION; a per-item failure never affects other items under
// file-mode transactions.
//
// Non-modified items and items produced while any safety flag forbids
// writes are no-ops. Virtual items (stdin-text) have no path to stage or
// rename into -- their transformed content is surfaced through the event
// stream instead, never through the filesystem.
func (m *Manager) Apply(outcome *plan.ItemOutcome) {
	if !outcome.Modified || !m.p.Safety.Writes() {
		return
	}
	if outcome.Kind != plan.OutcomeSuccess {
		return
	}
	if outcome.IsVirtual {
		return
	}

	existing, statErr := os.Stat(outcome.Path)
	existed := statErr == nil
	var existingMode os.FileMode
	if existed {
		existingMode = existing.Mode().Perm()
	}
	mode := ResolveMode(m.p, existingMode, existed)

	staged, err := Stage(outcome.Path, outcome.TransformedContent, mode)
	if err != nil {
		m.fail(outcome, err)
		return
	}

	if m.p.Transaction == plan.TransactionFile {
		if err := staged.Commit(); err != nil {
			_ = staged.Discard()
			m.fail(outcome, err)
			return
		}
		return
	}

	m.pending = append(m.pending, staged)
}

func (m *Manager) fail(outcome *plan.ItemOutcome, err error) {
	outcome.Kind = plan.OutcomeError
	outcome.Code = "E_TRANSACTION"
	outcome.Message = err.Error()
}

// CommitAll commits every item staged under TransactionAll mode. It
// attempts every pending rename even after one fails, rather than abandon
// already-staged work, and returns a combined error describing every
// failure, or nil if every rename succeeded.
//
// Callers must not call CommitAll under TransactionFile mode; items there
// are already committed as Apply is called.
func (m *Manager) CommitAll() error {
	total := len(m.pending)
	var errs []error
	for _, s := range m.pending {
		if err := s.Commit(); err != nil {
			errs = append(errs, err)
		}
	}
	m.pending = nil
	if len(errs) > 0 {
		return fmt.Errorf("committing %d of %d staged files failed: %w",
			len(errs), total, errors.Join(errs...))
	}
	return nil
}

// DiscardAll removes every still-pending staged file without committing it,
// used when a pre-commit policy check fails under TransactionAll mode.
func (m *Manager) DiscardAll() error {
	var errs []error
	for _, s := range m.pending {
		if err := s.Discard(); err != nil {
			errs = append(errs, err)
		}
	}
	m.pending = nil
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
