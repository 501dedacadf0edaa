// Package profiler records resource load statistics and reports them with heap figures.
package profiler

import (
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-resources/engine/resource"
)

// Stats accumulates the loads of one resource kind.
type Stats struct {
	// Loads counts every load request, cache hits included.
	Loads int

	// Hits counts the requests answered from a cache.
	Hits int

	// Bytes is the total size of buffers uploaded by the loads.
	Bytes uint64

	// Elapsed is the cumulative wall time spent loading.
	Elapsed time.Duration
}

// Profiler tracks per-kind load counts and timings. It is not safe for concurrent use.
type Profiler struct {
	logger         *slog.Logger
	now            func() time.Time
	stats          map[resource.Kind]*Stats
	memStats       runtime.MemStats
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler that reports through logger.
//
// Parameters:
//   - logger: the logger the summary is written to, slog.Default() if nil
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{
		logger: logger,
		now:    time.Now,
		stats:  make(map[resource.Kind]*Stats),
	}
}

// Begin returns the start time of a load, to be passed back to Record.
//
// Returns:
//   - time.Time: the current time
func (p *Profiler) Begin() time.Time {
	return p.now()
}

// Record adds one load of kind that started at start.
//
// Parameters:
//   - kind: the kind of resource loaded
//   - start: the value returned by Begin
//   - bytes: the buffer bytes the load uploaded
//   - hit: true if the load was answered from a cache
func (p *Profiler) Record(kind resource.Kind, start time.Time, bytes uint64, hit bool) {
	s, ok := p.stats[kind]
	if !ok {
		s = &Stats{}
		p.stats[kind] = s
	}
	s.Loads++
	if hit {
		s.Hits++
	}
	s.Bytes += bytes
	s.Elapsed += p.now().Sub(start)
}

// Stats returns the accumulated statistics for kind.
//
// Parameters:
//   - kind: the resource kind
//
// Returns:
//   - Stats: a copy of the statistics, zero if nothing was recorded
func (p *Profiler) Stats(kind resource.Kind) Stats {
	if s, ok := p.stats[kind]; ok {
		return *s
	}
	return Stats{}
}

// Report logs one line per recorded kind, in kind order, followed by a heap summary.
func (p *Profiler) Report() {
	kinds := make([]resource.Kind, 0, len(p.stats))
	for k := range p.stats {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	for _, k := range kinds {
		s := p.stats[k]
		p.logger.Info("load stats",
			slog.String("kind", k.String()),
			slog.Int("loads", s.Loads),
			slog.Int("hits", s.Hits),
			slog.Uint64("bytes", s.Bytes),
			slog.Duration("elapsed", s.Elapsed))
	}

	runtime.ReadMemStats(&p.memStats)
	const mb = 1024 * 1024
	p.logger.Info("heap",
		slog.Float64("heap_mb", float64(p.memStats.Alloc)/mb),
		slog.Float64("sys_mb", float64(p.memStats.Sys)/mb),
		slog.Float64("alloc_since_last_mb", float64(p.memStats.TotalAlloc-p.lastTotalAlloc)/mb),
		slog.Uint64("gc", uint64(p.memStats.NumGC)))
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
