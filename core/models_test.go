package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("content1") == IDFromContent("content2") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestDocumentID_SeparatesTitleAndBody(t *testing.T) {
	if DocumentID("ab", "c") == DocumentID("a", "bc") {
		t.Errorf("DocumentID() collided when title/body boundary moved")
	}
}

func TestTimeRange_Contains(t *testing.T) {
	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	r := NewTimeRange(start, end)

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{name: "start is inclusive", ts: start, want: true},
		{name: "end is inclusive", ts: end, want: true},
		{name: "middle", ts: start.Add(72 * time.Hour), want: true},
		{name: "before start", ts: start.Add(-time.Nanosecond), want: false},
		{name: "after end", ts: end.Add(time.Nanosecond), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.ts); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.ts, got, tt.want)
			}
		})
	}
}

func TestTimeRange_ContainsUnresolved(t *testing.T) {
	r := TimeRange{Kind: RangeUnresolvedContext, Expression: "before the meeting"}
	if r.Contains(time.Now()) {
		t.Errorf("unresolved range should contain nothing")
	}
}

func TestRangeKind_String(t *testing.T) {
	tests := []struct {
		kind RangeKind
		want string
	}{
		{RangeNone, "none"},
		{RangeResolved, "resolved"},
		{RangeUnresolvedContext, "unresolved-context"},
		{RangeKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("RangeKind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}
