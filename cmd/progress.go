package cmd

import (
	"math"
	"sync"

	"github.com/schollz/progressbar/v3"
)

type progressBarReporter struct {
	enabled bool
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
}

func newProgressReporter(enabled bool) *progressBarReporter {
	return &progressBarReporter{enabled: enabled}
}

func (p *progressBarReporter) Start(total uint64) {
	if !p.enabled {
		return
	}
	size := int64(-1)
	if total <= math.MaxInt64 {
		size = int64(total)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar = progressbar.DefaultBytes(size, "Downloading")
}

func (p *progressBarReporter) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Add64(n)
}

func (p *progressBarReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
