package reembed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
	"github.com/stretchr/testify/require"
)

// mockEmbedder returns a fixed unnormalized vector per text unless
// embedTextsFunc is set.
type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls          int
	texts          []string
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.texts = append(m.texts, texts...)
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

func setupTestDB(t *testing.T) storage.DocumentRepository {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seedDocuments stores n text documents, one minute apart.
func seedDocuments(t *testing.T, repo storage.DocumentRepository, n int) []*core.Document {
	t.Helper()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	docs := make([]*core.Document, n)
	for i := range docs {
		docs[i] = &core.Document{
			Title:      fmt.Sprintf("note %d", i),
			Body:       fmt.Sprintf("body of note %d", i),
			SourceType: core.SourceTypeText,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}
	}
	added, err := repo.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)
	return added
}
