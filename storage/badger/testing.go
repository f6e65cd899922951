package badger

import "github.com/poiesic/recall/storage"

// NewMemoryRepository creates an in-memory document repository for testing.
// Closing the repository closes the underlying backend.
func NewMemoryRepository() (storage.DocumentRepository, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return NewDocumentRepository(backend, WithOwnedBackend())
}
