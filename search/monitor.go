package search

import (
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/rank"
)

// Monitor provides hooks to observe the search process. It extends
// rank.Monitor with the stages that run before ranking.
type Monitor interface {
	rank.Monitor
	AfterQueryEmbedding(embedding []float32, err error)
	AfterCandidateRetrieval(candidates []*core.Document)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Query, _ int)                 {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32, _ error)   {}
func (n *noopMonitor) AfterCandidateRetrieval(_ []*core.Document) {}
func (n *noopMonitor) AfterTemporalResolution(_ core.TimeRange)   {}
func (n *noopMonitor) AfterFiltering(_ int)                       {}
func (n *noopMonitor) Included(_ *core.ScoredResult)              {}
func (n *noopMonitor) Excluded(_ *core.Document, _ float64)       {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult, _ error)     {}

// multiMonitor fans rank callbacks out to a search monitor and an extra
// rank monitor.
type multiMonitor struct {
	Monitor
	extra rank.Monitor
}

func (m *multiMonitor) Start(q *core.Query, candidates int) {
	m.Monitor.Start(q, candidates)
	m.extra.Start(q, candidates)
}

func (m *multiMonitor) AfterTemporalResolution(rng core.TimeRange) {
	m.Monitor.AfterTemporalResolution(rng)
	m.extra.AfterTemporalResolution(rng)
}

func (m *multiMonitor) AfterFiltering(remaining int) {
	m.Monitor.AfterFiltering(remaining)
	m.extra.AfterFiltering(remaining)
}

func (m *multiMonitor) Included(result *core.ScoredResult) {
	m.Monitor.Included(result)
	m.extra.Included(result)
}

func (m *multiMonitor) Excluded(doc *core.Document, confidence float64) {
	m.Monitor.Excluded(doc, confidence)
	m.extra.Excluded(doc, confidence)
}

func (m *multiMonitor) Finish(results []*core.ScoredResult, err error) {
	m.Monitor.Finish(results, err)
	m.extra.Finish(results, err)
}
