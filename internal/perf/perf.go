// Package perf collects opt-in timing samples for the redraw and ingest paths
// and periodically summarises them to the log.
package perf

import (
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andyrewlee/scrollwin/internal/logging"
)

const (
	sampleWindow      = 128
	defaultIntervalMs = 5000
)

type stat struct {
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples [sampleWindow]time.Duration
	n       int
}

// StatSnapshot is a summary of one timed operation since the last reset.
type StatSnapshot struct {
	Name  string
	Count int64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	P95   time.Duration
}

// CounterSnapshot is the value of one counter since the last reset.
type CounterSnapshot struct {
	Name  string
	Value int64
}

var (
	enabled     atomic.Bool
	logInterval atomic.Int64
	lastLog     atomic.Int64

	mu       sync.Mutex
	stats    = map[string]*stat{}
	counters = map[string]int64{}
)

func init() {
	enabled.Store(envEnabled(os.Getenv("SCROLLWIN_PROFILE")))
	logInterval.Store(int64(envInterval(os.Getenv("SCROLLWIN_PROFILE_INTERVAL_MS"))))
}

// Enabled reports whether profiling is on.
func Enabled() bool { return enabled.Load() }

// Time returns a function that records the elapsed time when called.
//
//	defer perf.Time("render")()
func Time(name string) func() {
	if !enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { Record(name, time.Since(start)) }
}

// Record adds a duration sample.
func Record(name string, d time.Duration) {
	if !enabled.Load() {
		return
	}
	mu.Lock()
	s, ok := stats[name]
	if !ok {
		s = &stat{}
		stats[name] = s
	}
	s.count++
	s.total += d
	if s.count == 1 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
	s.samples[s.n%sampleWindow] = d
	s.n++
	mu.Unlock()

	maybeLog()
}

// Count adds delta to a named counter.
func Count(name string, delta int64) {
	if !enabled.Load() {
		return
	}
	mu.Lock()
	counters[name] += delta
	mu.Unlock()

	maybeLog()
}

// Flush logs everything collected so far and resets.
func Flush(reason string) {
	if !enabled.Load() {
		return
	}
	logSnapshot("PERF SUMMARY "+strings.TrimSpace(reason), true)
}

// Snapshot returns and resets the collected stats and counters, sorted by name.
func Snapshot() ([]StatSnapshot, []CounterSnapshot) {
	mu.Lock()
	defer mu.Unlock()

	statsOut := make([]StatSnapshot, 0, len(stats))
	for name, s := range stats {
		if s.count == 0 {
			continue
		}
		statsOut = append(statsOut, StatSnapshot{
			Name:  name,
			Count: s.count,
			Avg:   s.total / time.Duration(s.count),
			Min:   s.min,
			Max:   s.max,
			P95:   p95(s),
		})
	}
	countersOut := make([]CounterSnapshot, 0, len(counters))
	for name, v := range counters {
		if v == 0 {
			continue
		}
		countersOut = append(countersOut, CounterSnapshot{Name: name, Value: v})
	}
	stats = map[string]*stat{}
	counters = map[string]int64{}

	sort.Slice(statsOut, func(i, j int) bool { return statsOut[i].Name < statsOut[j].Name })
	sort.Slice(countersOut, func(i, j int) bool { return countersOut[i].Name < countersOut[j].Name })
	return statsOut, countersOut
}

// EnableForTest turns collection on with periodic logging off and returns a
// function restoring the previous settings.
func EnableForTest() func() {
	prevEnabled := enabled.Load()
	prevInterval := logInterval.Load()
	enabled.Store(true)
	logInterval.Store(0)
	Snapshot()
	return func() {
		enabled.Store(prevEnabled)
		logInterval.Store(prevInterval)
		Snapshot()
	}
}

func maybeLog() {
	interval := time.Duration(logInterval.Load())
	if interval <= 0 {
		return
	}
	now := time.Now().UnixNano()
	last := lastLog.Load()
	if last != 0 && time.Duration(now-last) < interval {
		return
	}
	if !lastLog.CompareAndSwap(last, now) {
		return
	}
	logSnapshot("PERF", false)
}

func logSnapshot(prefix string, force bool) {
	statsOut, countersOut := Snapshot()
	if !force && len(statsOut) == 0 && len(countersOut) == 0 {
		return
	}
	for _, s := range statsOut {
		logging.Info("%s %s count=%d avg=%s p95=%s min=%s max=%s",
			strings.TrimSpace(prefix), s.Name, s.Count, s.Avg, s.P95, s.Min, s.Max)
	}
	for _, c := range countersOut {
		logging.Info("%s %s count=%d", strings.TrimSpace(prefix), c.Name, c.Value)
	}
}

func p95(s *stat) time.Duration {
	n := s.n
	if n > sampleWindow {
		n = sampleWindow
	}
	if n == 0 {
		return 0
	}
	window := make([]time.Duration, n)
	copy(window, s.samples[:n])
	sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
	pos := int(math.Ceil(0.95*float64(n))) - 1
	return window[max(0, min(pos, n-1))]
}

func envEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

func envInterval(raw string) time.Duration {
	ms := defaultIntervalMs
	if val, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && val > 0 {
		ms = val
	}
	return time.Duration(ms) * time.Millisecond
}
