package report

import (
	"fmt"
	"io"
	"sync"
)

// Progress renders the live comment count, overwritten in place.
// It is safe for concurrent use, since batch crawls share one.
type Progress struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
	dirty bool
}

// NewProgress creates a Progress writing to out. A quiet Progress only
// prints the final total.
func NewProgress(out io.Writer, quiet bool) *Progress {
	return &Progress{out: out, quiet: quiet}
}

// Update shows total.
func (p *Progress) Update(total int64) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "\r%d", total)
	p.dirty = true
}

// Done terminates the live line so following output starts on a fresh line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dirty {
		_, _ = fmt.Fprintln(p.out)
		p.dirty = false
	}
}

// WriteTotal prints the final "total = N" line.
func WriteTotal(w io.Writer, total int64) error {
	_, err := fmt.Fprintf(w, "total = %d\n", total)
	return err
}
