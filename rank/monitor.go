package rank

import "github.com/poiesic/recall/core"

// Monitor receives callbacks at each stage of a Rank call. Callbacks run on
// the calling goroutine, never concurrently. Excluded is called for scored
// candidates at or below the inclusion threshold and for those cut by the
// query limit.
type Monitor interface {
	Start(query *core.Query, candidates int)
	AfterTemporalResolution(rng core.TimeRange)
	AfterFiltering(remaining int)
	Included(result *core.ScoredResult)
	Excluded(doc *core.Document, confidence float64)
	Finish(results []*core.ScoredResult, err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Query, _ int)               {}
func (n *noopMonitor) AfterTemporalResolution(_ core.TimeRange) {}
func (n *noopMonitor) AfterFiltering(_ int)                     {}
func (n *noopMonitor) Included(_ *core.ScoredResult)            {}
func (n *noopMonitor) Excluded(_ *core.Document, _ float64)     {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult, _ error)   {}
