package storage

import (
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("fully populated", func(t *testing.T) {
		doc := &core.Document{
			Id:         core.DocumentID("Quarterly review", "Revenue grew in Q4."),
			Title:      "Quarterly review",
			Body:       "Revenue grew in Q4. Unicode survives: 世界 🌍",
			SourceType: core.SourceTypePDF,
			Timestamp:  now.Add(-48 * time.Hour),
			InsertedAt: now,
			UpdatedAt:  now,
			Vector:     []float32{0.1, -0.2, 0.3, 0, 1e-7},
			Metadata:   map[string]string{"author": "ops", "source_path": "/tmp/q4.pdf"},
		}

		decoded, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)

		assert.Equal(t, doc.Id, decoded.Id)
		assert.Equal(t, doc.Title, decoded.Title)
		assert.Equal(t, doc.Body, decoded.Body)
		assert.Equal(t, doc.SourceType, decoded.SourceType)
		assert.True(t, doc.Timestamp.Equal(decoded.Timestamp))
		assert.True(t, doc.InsertedAt.Equal(decoded.InsertedAt))
		assert.True(t, doc.UpdatedAt.Equal(decoded.UpdatedAt))
		assert.Equal(t, doc.Vector, decoded.Vector)
		assert.Equal(t, doc.Metadata, decoded.Metadata)
	})

	t.Run("zero times and empty collections", func(t *testing.T) {
		doc := &core.Document{Id: 5, SourceType: core.SourceTypeAudio, Timestamp: now}

		decoded, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)

		assert.True(t, decoded.InsertedAt.IsZero())
		assert.True(t, decoded.UpdatedAt.IsZero())
		assert.Empty(t, decoded.Vector)
		assert.Empty(t, decoded.Metadata)
		assert.Empty(t, decoded.Body)
	})

	t.Run("epoch and pre-epoch times are not zero", func(t *testing.T) {
		epoch := time.Unix(0, 0).UTC()
		doc := &core.Document{
			Id:         6,
			SourceType: core.SourceTypeText,
			Timestamp:  epoch,
			InsertedAt: time.Date(1965, 3, 2, 8, 30, 0, 0, time.UTC),
		}

		decoded, err := UnmarshalDocument(MarshalDocument(doc))
		require.NoError(t, err)

		assert.False(t, decoded.Timestamp.IsZero())
		assert.True(t, epoch.Equal(decoded.Timestamp))
		assert.True(t, doc.InsertedAt.Equal(decoded.InsertedAt))
		assert.True(t, decoded.UpdatedAt.IsZero())
		assert.NoError(t, core.ValidateDocument(decoded))
	})

	t.Run("encoding is deterministic", func(t *testing.T) {
		doc := &core.Document{
			Id:         9,
			SourceType: core.SourceTypeWeb,
			Timestamp:  now,
			Metadata:   map[string]string{"b": "2", "a": "1", "c": "3"},
		}
		assert.Equal(t, MarshalDocument(doc), MarshalDocument(doc))
	})
}

func TestUnmarshalDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDocument(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}

	t.Run("truncated valid record", func(t *testing.T) {
		data := MarshalDocument(&core.Document{
			Id:         1,
			Title:      "title",
			SourceType: core.SourceTypeText,
			Timestamp:  time.Now(),
			Vector:     []float32{1, 2, 3},
		})
		_, err := UnmarshalDocument(data[:len(data)-3])
		assert.Error(t, err)
	})
}
