package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// progress renders download progress on a single terminal line
type progress struct {
	mu      sync.Mutex
	w       io.Writer
	dest    string
	percent int64
	active  bool
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w, percent: -1}
}

// Update redraws the line when the percentage changes. Downloads without a
// known size are drawn in KiB at every 1 MiB.
func (p *progress) Update(dest string, written, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if dest != p.dest {
		p.finish()
		p.dest = dest
		p.percent = -1
	}

	name := filepath.Base(dest)
	if total <= 0 {
		mib := written >> 20
		if mib == p.percent {
			return
		}
		p.percent = mib
		fmt.Fprintf(p.w, "\r%s %d KiB", name, written>>10)
	} else {
		percent := written * 100 / total
		if percent == p.percent {
			return
		}
		p.percent = percent
		fmt.Fprintf(p.w, "\r%s %3d%% (%d/%d KiB)", name, percent, written>>10, total>>10)
	}
	p.active = true
}

// Done terminates the progress line of dest
func (p *progress) Done(dest string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dest == p.dest {
		p.finish()
	}
}

func (p *progress) finish() {
	if p.active {
		fmt.Fprintln(p.w)
		p.active = false
	}
	p.dest = ""
}
