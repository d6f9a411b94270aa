package artifact

import (
	"context"
	"fmt"
	"sync"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"
)

var _ output.ArtifactStore = (*MemoryStore)(nil)

// MemoryStore keeps artifacts in process and returns them inline, for
// callers that cannot reach any URL the server could hand out.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) Store(ctx context.Context, data []byte, suggestedName string) (*entity.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := SanitizeName(suggestedName)
	if name == "" {
		name = GenerateName("")
	}
	name += ".png"
	if _, exists := s.items[name]; exists {
		name = fmt.Sprintf("%s-%s", name[:len(name)-len(".png")], GenerateName(".png"))
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	s.items[name] = buf

	metrics.ObserveArtifact("memory", "store", nil)
	return &entity.Artifact{Name: name, MIMEType: "image/png", Inline: buf}, nil
}

func (s *MemoryStore) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[name]
	return data, ok
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; !ok {
		metrics.ObserveArtifact("memory", "delete", entity.ErrNotFound)
		return fmt.Errorf("%s: %w", name, entity.ErrNotFound)
	}
	delete(s.items, name)
	metrics.ObserveArtifact("memory", "delete", nil)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.items)
	metrics.ObserveArtifact("memory", "clear", nil)
	return nil
}
