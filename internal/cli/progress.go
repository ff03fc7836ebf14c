package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/harvx/rewrite/internal/plan"
)

// humanProgress renders a live single-line progress bar to w as items are
// processed, and a styled final summary line once the run ends. It is
// never used on the NDJSON stream path: runPlan creates it only when
// --format is the terminal-friendly "agent" mode, and it draws nothing
// unless w (stderr) is a real terminal. --quiet does not affect it.
type humanProgress struct {
	w       io.Writer
	bar     progress.Model
	total   int
	done    int
	enabled bool
}

var (
	styleSummaryOK   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	styleSummaryErr  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	styleSummaryPath = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// newHumanProgress returns a progress view. enabled is false (and every
// method becomes a no-op) unless w is a real terminal -- the event stream
// itself never changes shape based on terminal detection; this is a side
// channel to stderr only.
func newHumanProgress(w io.Writer, total int) *humanProgress {
	f, isFile := w.(*os.File)
	enabled := isFile && isatty.IsTerminal(f.Fd())
	return &humanProgress{
		w:       w,
		bar:     progress.New(progress.WithDefaultGradient()),
		total:   total,
		enabled: enabled,
	}
}

func (h *humanProgress) Advance(path string) {
	if !h.enabled || h.total == 0 {
		return
	}
	h.done++
	pct := float64(h.done) / float64(h.total)
	bar := h.bar.ViewAs(pct)
	fmt.Fprintf(h.w, "\r%s %s", bar, styleSummaryPath.Render(truncatePath(path, 40)))
}

func (h *humanProgress) Finish(r *plan.Report) {
	if !h.enabled {
		return
	}
	fmt.Fprint(h.w, "\r")
	var errCount, skipCount int
	for _, o := range r.Outcomes {
		switch o.Kind {
		case plan.OutcomeError:
			errCount++
		case plan.OutcomeSkipped:
			skipCount++
		}
	}
	line := fmt.Sprintf("%d modified, %d errors, %d skipped in %s",
		r.TotalModified, errCount, skipCount, r.Duration)
	if r.HasErrors {
		fmt.Fprintln(h.w, styleSummaryErr.Render(line))
		return
	}
	fmt.Fprintln(h.w, styleSummaryOK.Render(line))
}

func truncatePath(p string, max int) string {
	if len(p) <= max {
		return p
	}
	return "..." + p[len(p)-max+3:]
}
