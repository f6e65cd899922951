package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "stop words and short tokens removed",
			text: "What is the state of AI in machine learning?",
			want: []string{"state", "machine", "learning"},
		},
		{
			name: "punctuation splits tokens",
			text: "project-management, best.practices!",
			want: []string{"project", "management", "best", "practices"},
		},
		{
			name: "duplicates collapse in first-seen order",
			text: "Quantum quantum QUANTUM computing",
			want: []string{"quantum", "computing"},
		},
		{
			name: "digits kept",
			text: "Q4 planning 2024",
			want: []string{"planning", "2024"},
		},
		{
			name: "only stop words",
			text: "the and of with",
			want: []string{},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Terms(tt.text))
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		doc   string
		want  Score
	}{
		{
			name:  "exact phrase and full coverage",
			query: "machine learning",
			doc:   "Notes on Machine   Learning algorithms",
			want:  Score{ExactPhrase: true, Coverage: 1, MatchedTerms: 2, TotalTerms: 2},
		},
		{
			name:  "full coverage without phrase",
			query: "learning machine",
			doc:   "machine learning algorithms",
			want:  Score{Coverage: 1, MatchedTerms: 2, TotalTerms: 2},
		},
		{
			name:  "partial coverage",
			query: "quantum machine learning",
			doc:   "machine learning algorithms",
			want:  Score{Coverage: 2.0 / 3.0, MatchedTerms: 2, TotalTerms: 3},
		},
		{
			name:  "substring presence matches plurals",
			query: "algorithm",
			doc:   "several algorithms",
			want:  Score{Coverage: 1, MatchedTerms: 1, TotalTerms: 1},
		},
		{
			name:  "empty document",
			query: "machine learning",
			doc:   "   ",
			want:  Score{TotalTerms: 2},
		},
		{
			name:  "stop-word-only query has full coverage",
			query: "what is the",
			doc:   "anything at all",
			want:  Score{Coverage: 1},
		},
		{
			name:  "stop-word-only query against empty document",
			query: "the",
			doc:   "",
			want:  Score{},
		},
		{
			name:  "short query never counts as phrase",
			query: "ai",
			doc:   "ai ai ai",
			want:  Score{Coverage: 1},
		},
		{
			name:  "no overlap",
			query: "quantum computing",
			doc:   "budget meeting notes",
			want:  Score{TotalTerms: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.query, tt.doc)
			assert.Equal(t, tt.want.ExactPhrase, got.ExactPhrase)
			assert.Equal(t, tt.want.MatchedTerms, got.MatchedTerms)
			assert.Equal(t, tt.want.TotalTerms, got.TotalTerms)
			assert.InDelta(t, tt.want.Coverage, got.Coverage, 1e-9)
		})
	}
}

func TestQuery_Reusable(t *testing.T) {
	q := NewQuery("Project  Management")
	assert.Equal(t, "project management", q.Phrase())
	assert.Equal(t, []string{"project", "management"}, q.Terms())

	a := q.Match("project management best practices")
	b := q.Match("nothing relevant")
	assert.True(t, a.ExactPhrase)
	assert.False(t, b.ExactPhrase)
	assert.Equal(t, 0, b.MatchedTerms)
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.False(t, IsStopWord("quantum"))
}
