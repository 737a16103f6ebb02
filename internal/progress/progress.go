// Package progress implements the narrow prefetch-progress collaborator
// from spec.md §1: reporting how many diffs have been fetched out of the
// total planned, without the core pipeline ever depending on a terminal.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Reporter is the collaborator prefetch.Executor reports fetch progress
// to. Implementations must be safe for concurrent use: the executor calls
// DiffFetched from one worker goroutine per completed item.
type Reporter interface {
	DiffFetched(done, total int)
}

// NoOp discards all progress reports. Used when --no-progress or --quiet
// is set.
type NoOp struct{}

// DiffFetched implements Reporter.
func (NoOp) DiffFetched(done, total int) {}

var _ Reporter = NoOp{}

// Terminal prints "fetched N/M diffs" lines to an output writer (normally
// os.Stderr), one per call, styled with lipgloss the same way the
// teacher's CLI layer styles status output. Construction records the
// process's color profile (termenv.ColorProfile, which inspects stdout) as
// label, and the style renders through lipgloss's default renderer, which
// also follows stdout and the root's --no-color setting. The writer w
// itself is not inspected, so escape codes reach w whenever stdout
// supports color.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	style  lipgloss.Style
	label  string
}

// NewTerminal returns a Terminal reporter writing to w.
func NewTerminal(w io.Writer) *Terminal {
	profile := termenv.ColorProfile()
	return &Terminal{
		w:     w,
		style: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		label: profile.Name(),
	}
}

// DiffFetched implements Reporter. It overwrites the previous line using a
// carriage return so the terminal shows a single updating counter rather
// than scrolling, matching the teacher's dashboard's in-place refresh
// idiom (internal/cli/dashboard.go) scaled down to a single line.
func (t *Terminal) DiffFetched(done, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := fmt.Sprintf("fetched %d/%d diffs", done, total)
	fmt.Fprintf(t.w, "\r%s", t.style.Render(line))
	if done >= total {
		fmt.Fprintln(t.w)
	}
}

var _ Reporter = (*Terminal)(nil)
