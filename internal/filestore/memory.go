package filestore

import (
	"context"
	"fmt"
	"sync"

	"compilex/model"
)

// MemoryStore fakes the file store for tests and STORAGE=memory mode.
// It records destroys so tests can assert the delete cascade reached it.
type MemoryStore struct {
	mu        sync.Mutex
	seq       int
	files     map[string][]byte
	destroyed []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, data []byte, originalName, mimeType string) (model.FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	publicID := fmt.Sprintf("%s/mem-%d", uploadFolder, s.seq)
	s.files[publicID] = append([]byte{}, data...)
	return model.FileRef{
		OriginalName: originalName,
		MimeType:     mimeType,
		URL:          "memory://" + publicID,
		PublicID:     publicID,
		Bytes:        int64(len(data)),
	}, nil
}

func (s *MemoryStore) Destroy(ctx context.Context, ref model.FileRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, ref.PublicID)
	s.destroyed = append(s.destroyed, ref.PublicID)
	return nil
}

func (s *MemoryStore) Destroyed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.destroyed...)
}
