package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

// Ensure it implements the interface
var _ ports.ProgressSink = (*ProgressBar)(nil)

// ProgressBar draws a single-line bar on a writer and reports cancellation
// once its context is done. A nil writer keeps it silent.
type ProgressBar struct {
	ctx context.Context
	out io.Writer
	bar progress.Model

	mu      sync.Mutex
	title   string
	max     int
	current int
	drawn   int
}

// NewProgressBar creates a bar bound to ctx, usually a signal.NotifyContext
func NewProgressBar(ctx context.Context, out io.Writer) *ProgressBar {
	return &ProgressBar{
		ctx:   ctx,
		out:   out,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		drawn: -1,
	}
}

func (p *ProgressBar) Begin(title string, max int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
	p.max = max
	p.current = 0
	p.drawn = -1
	p.draw()
}

func (p *ProgressBar) Tick(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.current > p.max {
		p.current = p.max
	}
	p.draw()
}

func (p *ProgressBar) IsCancelled() bool {
	return p.ctx.Err() != nil
}

func (p *ProgressBar) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return
	}
	p.drawn = -1
	p.draw()
	fmt.Fprintln(p.out)
}

// Percent returns the completed fraction in [0, 1]
func (p *ProgressBar) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent()
}

func (p *ProgressBar) percent() float64 {
	if p.max <= 0 {
		return 1
	}
	return float64(p.current) / float64(p.max)
}

// draw repaints only when the whole percentage changed
func (p *ProgressBar) draw() {
	if p.out == nil {
		return
	}
	pct := int(p.percent() * 100)
	if pct == p.drawn {
		return
	}
	p.drawn = pct
	fmt.Fprintf(p.out, "\r%s %s", ui.StyleHeader.Render(p.title), p.bar.ViewAs(p.percent()))
}
