package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateDocument(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)

	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Id:         1,
				Title:      "Notes",
				Body:       "Hello world",
				SourceType: SourceTypeText,
				Timestamp:  validTime,
			},
		},
		{
			name: "empty title and body are allowed",
			doc: &Document{
				Id:         1,
				SourceType: SourceTypeAudio,
				Timestamp:  validTime,
			},
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "missing id",
			doc: &Document{
				Title:      "Notes",
				SourceType: SourceTypeText,
				Timestamp:  validTime,
			},
			wantErr: ErrMissingID,
		},
		{
			name: "missing timestamp",
			doc: &Document{
				Id:         1,
				SourceType: SourceTypeText,
			},
			wantErr: ErrMissingTimestamp,
		},
		{
			name: "unknown source type",
			doc: &Document{
				Id:         1,
				SourceType: SourceType("video"),
				Timestamp:  validTime,
			},
			wantErr: ErrInvalidSourceType,
		},
		{
			name: "empty source type",
			doc: &Document{
				Id:        1,
				Timestamp: validTime,
			},
			wantErr: ErrInvalidSourceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateDocument() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ValidateDocument() error = %v, should wrap ErrInvalidDocument", err)
			}
		})
	}
}

func TestParseSourceType(t *testing.T) {
	tests := []struct {
		in      string
		want    SourceType
		wantErr bool
	}{
		{in: "pdf", want: SourceTypePDF},
		{in: " Audio ", want: SourceTypeAudio},
		{in: "WEB", want: SourceTypeWeb},
		{in: "image", want: SourceTypeImage},
		{in: "text", want: SourceTypeText},
		{in: "spreadsheet", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSourceType) {
					t.Errorf("ParseSourceType(%q) error = %v, want ErrInvalidSourceType", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSourceType(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSourceType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	inverted := NewTimeRange(end, start)
	valid := NewTimeRange(start, end)

	tests := []struct {
		name    string
		q       *Query
		wantErr error
	}{
		{name: "empty query is valid", q: &Query{}},
		{name: "valid date filter", q: &Query{Text: "notes", DateFilter: &valid}},
		{name: "nil query", q: nil, wantErr: ErrInvalidQuery},
		{name: "inverted date filter", q: &Query{DateFilter: &inverted}, wantErr: ErrInvalidTimeRange},
		{name: "unknown source filter", q: &Query{SourceTypes: []SourceType{"fax"}}, wantErr: ErrInvalidSourceType},
		{name: "negative limit", q: &Query{Limit: -1}, wantErr: ErrInvalidQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.q)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateQuery() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateQuery() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbeddingDimensions(t *testing.T) {
	doc := &Document{Id: 7, Vector: []float32{1, 2, 3}}

	if err := ValidateEmbeddingDimensions(nil, doc); err != nil {
		t.Errorf("missing query embedding should not fail: %v", err)
	}
	if err := ValidateEmbeddingDimensions([]float32{1, 2, 3}, doc); err != nil {
		t.Errorf("matching dimensions should not fail: %v", err)
	}
	if err := ValidateEmbeddingDimensions([]float32{1, 2, 3}, &Document{Id: 8}); err != nil {
		t.Errorf("missing document embedding should not fail: %v", err)
	}

	err := ValidateEmbeddingDimensions([]float32{1, 2}, doc)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("error = %v, want ErrDimensionMismatch", err)
	}
	var dm *DimensionMismatchError
	if !errors.As(err, &dm) {
		t.Fatalf("error = %v, want *DimensionMismatchError", err)
	}
	if dm.Expected != 2 || dm.Actual != 3 {
		t.Errorf("DimensionMismatchError = %+v, want Expected=2 Actual=3", dm)
	}
}
