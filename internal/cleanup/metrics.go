package cleanup

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one timed section of a run.
type Phase struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
}

// Metrics collects per-phase wall-clock timings for --performance.
// Process-lifetime bookkeeping only; never persisted across runs.
type Metrics struct {
	Phases     []Phase `json:"phases"`
	FilesRead  int     `json:"files_read"`
	CacheHits  int     `json:"cache_hits"`
	CacheMiss  int     `json:"cache_misses"`
	started    time.Time
	totalStart time.Time
}

// NewMetrics starts the run clock.
func NewMetrics() *Metrics {
	return &Metrics{totalStart: time.Now()}
}

// StartPhase begins timing a named phase; EndPhase records it.
func (m *Metrics) StartPhase() {
	if m == nil {
		return
	}
	m.started = time.Now()
}

// EndPhase records the elapsed time since StartPhase.
func (m *Metrics) EndPhase(name string) {
	if m == nil {
		return
	}
	m.Phases = append(m.Phases, Phase{Name: name, Duration: time.Since(m.started)})
}

// String renders a compact timing summary.
func (m *Metrics) String() string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "total %s", time.Since(m.totalStart).Round(time.Millisecond))
	for _, p := range m.Phases {
		fmt.Fprintf(&b, ", %s %s", p.Name, p.Duration.Round(time.Millisecond))
	}
	if m.CacheHits+m.CacheMiss > 0 {
		fmt.Fprintf(&b, ", cache %d/%d hits", m.CacheHits, m.CacheHits+m.CacheMiss)
	}
	return b.String()
}
