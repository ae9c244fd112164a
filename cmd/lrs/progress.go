package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// progressReporter draws provider fetch progress on a terminal writer.
// The bar is created lazily so nothing is drawn for cached fetches.
type progressReporter struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer) *progressReporter {
	return &progressReporter{w: w}
}

// OnProgress matches provider.OnFetchProgress.
func (p *progressReporter) OnProgress(current, total float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total < 1 {
		total = 1
	}

	if p.bar == nil {
		p.bar = progressbar.NewOptions64(int64(total),
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(message),
			progressbar.OptionClearOnFinish(),
		)
	}

	p.bar.ChangeMax64(int64(max(total, current)))
	p.bar.Describe(message)
	_ = p.bar.Set64(int64(current))
}

// Finish completes the bar if one was drawn.
func (p *progressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
