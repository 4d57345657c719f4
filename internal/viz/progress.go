package viz

import (
	"fmt"
	"io"

	"github.com/san-kum/massim/internal/dynamo"
)

// Progress draws a one-line progress bar for a batch run. It implements
// dynamo.Observer.
type Progress struct {
	w        io.Writer
	duration float64
	width    int
	last     int
}

func NewProgress(w io.Writer, duration float64) *Progress {
	return &Progress{w: w, duration: duration, width: 30, last: -1}
}

// OnStep redraws the bar whenever the completed percentage changes.
func (p *Progress) OnStep(f dynamo.Frame) {
	if p.duration <= 0 {
		return
	}
	frac := min(1, f.Time/p.duration)
	pct := int(frac * 100)
	if pct == p.last {
		return
	}
	p.last = pct
	fmt.Fprintf(p.w, "\r%s %3d%%  t=%.2fs", ProgressBar(frac, p.width), pct, f.Time)
}

// Done terminates the progress line.
func (p *Progress) Done() {
	if p.last >= 0 {
		fmt.Fprintln(p.w)
	}
}
