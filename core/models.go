package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

type ID uint64

// IDFromContent derives a stable 64-bit identifier from text.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DocumentID derives a document identifier from its title and body so that
// re-ingesting identical content yields the same ID.
func DocumentID(title, body string) ID {
	return IDFromContent(title + "\x00" + body)
}

type SourceType string

const (
	SourceTypeAudio SourceType = "audio"
	SourceTypePDF   SourceType = "pdf"
	SourceTypeWeb   SourceType = "web"
	SourceTypeText  SourceType = "text"
	SourceTypeImage SourceType = "image"
)

// SourceTypes lists every recognized source type.
var SourceTypes = []SourceType{
	SourceTypeAudio,
	SourceTypePDF,
	SourceTypeWeb,
	SourceTypeText,
	SourceTypeImage,
}

// Document is a unit of ingested knowledge. The ranking engine treats it as a
// read-only candidate and never mutates it.
type Document struct {
	Id         ID
	Title      string
	Body       string
	SourceType SourceType
	Timestamp  time.Time         // When the content was created or ingested
	InsertedAt time.Time         // When the document was inserted into the database
	UpdatedAt  time.Time         // When the document was last updated
	Vector     []float32         // Embedding vector (populated by ingestion)
	Metadata   map[string]string // Optional metadata (e.g., "author", "source_path")
}

// TemporalMode selects how a resolved time range influences ranking.
type TemporalMode int

const (
	// TemporalSoft applies temporal relevance as a multiplier only.
	TemporalSoft TemporalMode = iota
	// TemporalHard drops candidates outside a resolved range before scoring.
	TemporalHard
)

// Query is a single retrieval request. It is constructed per request and
// discarded once ranking completes.
type Query struct {
	Text string

	// Embedding is the query vector. When empty, semantic similarity falls
	// back to term overlap.
	Embedding []float32

	// DateFilter, when set, overrides any time range resolved from Text.
	DateFilter *TimeRange

	// SourceTypes restricts candidates to the listed types. Empty means all.
	SourceTypes []SourceType

	TemporalMode TemporalMode

	// Limit caps the number of returned results. Zero means no cap.
	Limit int

	// AllowPartial returns results scored before a cancellation alongside
	// ErrResourceBudgetExceeded instead of discarding them.
	AllowPartial bool
}

// RangeKind tags the variant held by a TimeRange.
type RangeKind int

const (
	// RangeNone means no temporal expression was found.
	RangeNone RangeKind = iota
	// RangeResolved carries a concrete [Start, End] interval.
	RangeResolved
	// RangeUnresolvedContext marks an expression that depends on context
	// the engine does not have ("before the meeting").
	RangeUnresolvedContext
)

func (k RangeKind) String() string {
	switch k {
	case RangeNone:
		return "none"
	case RangeResolved:
		return "resolved"
	case RangeUnresolvedContext:
		return "unresolved-context"
	default:
		return "unknown"
	}
}

// TimeRange is a closed interval in UTC. Both bounds are inclusive; End is
// the last instant of the period.
type TimeRange struct {
	Kind       RangeKind
	Start      time.Time
	End        time.Time
	Expression string // matched substring of the query, if any
	Rule       string // name of the rule that produced the range
}

// NewTimeRange builds a resolved range from explicit bounds.
func NewTimeRange(start, end time.Time) TimeRange {
	return TimeRange{
		Kind:  RangeResolved,
		Start: start.UTC(),
		End:   end.UTC(),
		Rule:  "explicit",
	}
}

// IsResolved reports whether the range carries concrete bounds.
func (r TimeRange) IsResolved() bool {
	return r.Kind == RangeResolved
}

// Contains reports whether ts falls within a resolved range.
func (r TimeRange) Contains(ts time.Time) bool {
	if !r.IsResolved() {
		return false
	}
	return !ts.Before(r.Start) && !ts.After(r.End)
}

// SemanticMethod names the strategy that produced a semantic score.
type SemanticMethod string

const (
	SemanticCosine      SemanticMethod = "cosine"
	SemanticTermOverlap SemanticMethod = "term_overlap"
)

// Points is the per-signal contribution to content relevance.
type Points struct {
	ExactPhrase float64
	Coverage    float64
	Semantic    float64
	Total       float64
}

// Signals is the breakdown of component scores behind a result.
type Signals struct {
	ExactPhrase    bool
	Coverage       float64
	MatchedTerms   int
	TotalTerms     int
	Semantic       float64
	SemanticMethod SemanticMethod
	Temporal       float64
	TitleOnly      bool // matches came only from the title
	Points         Points
}

// ScoredResult is a ranked document with its confidence in [0, 1]. It is a
// transient response object and is never persisted.
type ScoredResult struct {
	Document         *Document
	Excerpt          string
	Confidence       float64
	ContentRelevance float64
	Signals          Signals
}
