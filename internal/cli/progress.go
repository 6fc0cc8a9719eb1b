package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = [4]string{"-", "\\", "|", "/"}

// maxShownPath keeps the status line on one terminal row.
const maxShownPath = 72

// loadProgress redraws one status line on w while dumps decode. It only
// draws when w is a terminal.
type loadProgress struct {
	w       io.Writer
	enabled bool
	start   time.Time
	count   int
	lastLen int
}

func newLoadProgress(w io.Writer) *loadProgress {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}
	return &loadProgress{w: w, enabled: enabled, start: time.Now()}
}

// File records one decoded dump.
func (p *loadProgress) File(relPath string) {
	p.count++
	if !p.enabled {
		return
	}
	relPath = strings.TrimSpace(relPath)
	if len(relPath) > maxShownPath {
		relPath = "..." + relPath[len(relPath)-maxShownPath+3:]
	}
	frame := spinnerFrames[p.count%len(spinnerFrames)]
	p.redraw(fmt.Sprintf("%s loading dump %d: %s", frame, p.count, relPath))
}

// Finish closes the status line with a summary.
func (p *loadProgress) Finish() {
	if !p.enabled || p.count == 0 {
		return
	}
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.redraw(fmt.Sprintf("loaded %d dumps in %s", p.count, elapsed))
	fmt.Fprintln(p.w)
}

func (p *loadProgress) redraw(status string) {
	padded := status
	if p.lastLen > len(status) {
		padded += strings.Repeat(" ", p.lastLen-len(status))
	}
	p.lastLen = len(status)
	fmt.Fprintf(p.w, "\r%s", padded)
}
