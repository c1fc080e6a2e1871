package assistant

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Stats collects recognition latency samples and pipeline counters for the
// status API. Latencies live in a bounded ring buffer from which percentiles
// are computed on demand.
//
// Safe for concurrent use.
type Stats struct {
	mu sync.Mutex

	recognition latencyBuffer

	utterances int64
	matched    int64
	noMatch    int64
	fallbacks  int64
	errors     int64
}

// NewStats creates a Stats with the given latency window size (maximum
// number of samples retained).
func NewStats(windowSize int) *Stats {
	if windowSize <= 0 {
		windowSize = 100
	}
	return &Stats{recognition: newLatencyBuffer(windowSize)}
}

// RecordRecognition records one capture-to-transcript latency sample.
func (s *Stats) RecordRecognition(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognition.add(d)
	s.utterances++
}

// IncrMatched increments the matched-utterance counter.
func (s *Stats) IncrMatched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matched++
}

// IncrNoMatch increments the unmatched-utterance counter.
func (s *Stats) IncrNoMatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noMatch++
}

// IncrFallbacks increments the fallback-capture counter.
func (s *Stats) IncrFallbacks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallbacks++
}

// IncrErrors increments the recognition-error counter.
func (s *Stats) IncrErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors++
}

// LatencyPercentiles holds p50 and p95 values for a latency stage.
type LatencyPercentiles struct {
	P50 time.Duration `json:"p50"`
	P95 time.Duration `json:"p95"`
}

// StatsSnapshot is a point-in-time view of all pipeline statistics.
type StatsSnapshot struct {
	Recognition LatencyPercentiles `json:"recognition"`
	Utterances  int64              `json:"utterances"`
	Matched     int64              `json:"matched"`
	NoMatch     int64              `json:"no_match"`
	Fallbacks   int64              `json:"fallbacks"`
	Errors      int64              `json:"errors"`
}

// Snapshot returns a point-in-time view of all pipeline statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Recognition: s.recognition.percentiles(),
		Utterances:  s.utterances,
		Matched:     s.matched,
		NoMatch:     s.noMatch,
		Fallbacks:   s.fallbacks,
		Errors:      s.errors,
	}
}

// latencyBuffer is a bounded ring buffer of duration samples.
type latencyBuffer struct {
	data []time.Duration
	size int
	pos  int
	full bool
}

func newLatencyBuffer(size int) latencyBuffer {
	return latencyBuffer{
		data: make([]time.Duration, size),
		size: size,
	}
}

func (lb *latencyBuffer) add(d time.Duration) {
	lb.data[lb.pos] = d
	lb.pos++
	if lb.pos >= lb.size {
		lb.pos = 0
		lb.full = true
	}
}

func (lb *latencyBuffer) percentiles() LatencyPercentiles {
	n := lb.pos
	if lb.full {
		n = lb.size
	}
	if n == 0 {
		return LatencyPercentiles{}
	}

	sorted := make([]time.Duration, n)
	copy(sorted, lb.data[:n])
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return LatencyPercentiles{
		P50: percentile(sorted, 0.50),
		P95: percentile(sorted, 0.95),
	}
}

// percentile returns the value at the given percentile (0.0-1.0) from a
// sorted slice of durations using nearest-rank.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
