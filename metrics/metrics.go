// Package metrics tracks cache-tier outcomes with lock-free counters.
package metrics

import "sync/atomic"

// Metrics holds six independent counters, each an atomic.Int64 updated
// with relaxed ordering. No cross-counter atomicity is guaranteed — a
// concurrent Snapshot may observe an in-flight request's total_requests
// increment without yet seeing its corresponding hit or miss increment
// — but each individual record call groups its own updates together.
type Metrics struct {
	exactHits     atomic.Int64
	semanticHits  atomic.Int64
	misses        atomic.Int64
	totalRequests atomic.Int64
	tokensSaved   atomic.Int64
	tokensUsed    atomic.Int64
}

// New returns a zeroed Metrics ready to share across request tasks.
func New() *Metrics {
	return &Metrics{}
}

// RecordExactHit increments exact hits and total requests.
func (m *Metrics) RecordExactHit() {
	m.exactHits.Add(1)
	m.totalRequests.Add(1)
}

// RecordSemanticHit increments semantic hits and total requests, and
// adds tokensSaved to the running tokens-saved total.
func (m *Metrics) RecordSemanticHit(tokensSaved int64) {
	m.semanticHits.Add(1)
	m.totalRequests.Add(1)
	m.tokensSaved.Add(tokensSaved)
}

// RecordMiss increments misses and total requests, and adds tokensUsed
// to the running tokens-used total.
func (m *Metrics) RecordMiss(tokensUsed int64) {
	m.misses.Add(1)
	m.totalRequests.Add(1)
	m.tokensUsed.Add(tokensUsed)
}

// Snapshot is a point-in-time, relaxed read of every counter plus the
// derived hit rate.
type Snapshot struct {
	ExactHits     int64   `json:"exact_hits"`
	SemanticHits  int64   `json:"semantic_hits"`
	Misses        int64   `json:"misses"`
	TotalRequests int64   `json:"total_requests"`
	TokensSaved   int64   `json:"tokens_saved"`
	TokensUsed    int64   `json:"tokens_used"`
	HitRate       float64 `json:"hit_rate"`
}

// Snapshot reads every counter with relaxed ordering and computes
// hit_rate = (exact_hits + semantic_hits) / total_requests * 100,
// or 0 when no requests have been recorded yet.
func (m *Metrics) Snapshot() Snapshot {
	exact := m.exactHits.Load()
	semantic := m.semanticHits.Load()
	misses := m.misses.Load()
	total := m.totalRequests.Load()

	var hitRate float64
	if total > 0 {
		hitRate = float64(exact+semantic) / float64(total) * 100
	}

	return Snapshot{
		ExactHits:     exact,
		SemanticHits:  semantic,
		Misses:        misses,
		TotalRequests: total,
		TokensSaved:   m.tokensSaved.Load(),
		TokensUsed:    m.tokensUsed.Load(),
		HitRate:       hitRate,
	}
}
