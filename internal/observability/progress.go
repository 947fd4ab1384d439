package observability

import (
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
)

// Progress stages.
const (
	StageDownload = "download"
	StageChecksum = "checksum"
	StageExtract  = "extract"
	StageRain     = "rain"
	StageFog      = "fog"
)

// ProgressEvent reports Done out of Total units of work for one named item.
// Total is -1 when unknown. Download and checksum stages count bytes, the
// others count files.
type ProgressEvent struct {
	Stage string
	Name  string
	Done  int64
	Total int64
}

// Progress receives progress events from long-running operations.
type Progress interface {
	Observe(ev ProgressEvent)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(ev ProgressEvent)

func (f ProgressFunc) Observe(ev ProgressEvent) { f(ev) }

// NopProgress discards events.
type NopProgress struct{}

func (NopProgress) Observe(ProgressEvent) {}

// LogProgress logs at most one line per tenth of an item's total, plus one on
// completion. Items of unknown size log every Step units.
type LogProgress struct {
	logger *slog.Logger
	step   int64

	mu   sync.Mutex
	last map[string]int64
}

// NewLogProgress creates a log sink. step applies to items of unknown total;
// zero selects 64 MiB.
func NewLogProgress(logger *slog.Logger, step int64) *LogProgress {
	if step <= 0 {
		step = 64 << 20
	}
	return &LogProgress{logger: logger, step: step, last: make(map[string]int64)}
}

func (p *LogProgress) Observe(ev ProgressEvent) {
	key := ev.Stage + "|" + ev.Name

	p.mu.Lock()
	bucket := p.bucket(ev)
	prev, seen := p.last[key]
	done := ev.Total >= 0 && ev.Done >= ev.Total
	if seen && bucket == prev && !done {
		p.mu.Unlock()
		return
	}
	if done {
		delete(p.last, key)
	} else {
		p.last[key] = bucket
	}
	p.mu.Unlock()

	p.logger.Info("progress", "stage", ev.Stage, "name", ev.Name, "done", p.format(ev.Stage, ev.Done), "total", p.format(ev.Stage, ev.Total))
}

func (p *LogProgress) bucket(ev ProgressEvent) int64 {
	if ev.Total <= 0 {
		return ev.Done / p.step
	}
	return ev.Done * 10 / ev.Total
}

func (p *LogProgress) format(stage string, n int64) string {
	if n < 0 {
		return "unknown"
	}
	if stage == StageDownload || stage == StageChecksum {
		return humanize.IBytes(uint64(n))
	}
	return humanize.Comma(n)
}
