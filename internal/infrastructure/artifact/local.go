package artifact

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"
)

var _ output.ArtifactStore = (*LocalStore)(nil)

// LocalStore keeps screenshots in a DiskStore and hands out URLs under
// <baseURL>/screenshots/ served by the embedded artifact server.
type LocalStore struct {
	disk    *DiskStore
	baseURL string
	logger  output.LoggerPort

	mu         sync.Mutex
	unservedBy error
}

type LocalOption func(*LocalStore)

// WithLocalLogger receives a warning for every screenshot stored while
// its URL cannot be served.
func WithLocalLogger(l output.LoggerPort) LocalOption {
	return func(s *LocalStore) { s.logger = l }
}

func NewLocalStore(disk *DiskStore, baseURL string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{disk: disk, baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkUnserved records that the server behind the URLs is down. Files are
// still written.
func (s *LocalStore) MarkUnserved(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unservedBy = err
}

// Unserved returns the error passed to MarkUnserved, if any.
func (s *LocalStore) Unserved() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unservedBy
}

func (s *LocalStore) URL(name string) string {
	return fmt.Sprintf("%s/screenshots/%s", s.baseURL, name)
}

func (s *LocalStore) Store(ctx context.Context, data []byte, suggestedName string) (*entity.Artifact, error) {
	name := s.pickName(suggestedName)
	err := s.disk.Save(name, bytes.NewReader(data))
	metrics.ObserveArtifact("local", "store", err)
	if err != nil {
		return nil, &entity.StoreError{Op: "store", Err: err}
	}
	if cause := s.Unserved(); cause != nil && s.logger != nil {
		s.logger.Warn("screenshot stored but its URL is not served", "name", name, "url", s.URL(name), "error", cause)
	}
	return &entity.Artifact{Name: name, URL: s.URL(name), MIMEType: "image/png"}, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	err := s.disk.Remove(name)
	metrics.ObserveArtifact("local", "delete", err)
	return err
}

func (s *LocalStore) Clear(ctx context.Context) error {
	err := s.disk.Clear(ctx)
	metrics.ObserveArtifact("local", "clear", err)
	return err
}

// pickName keeps caller-chosen names readable but never overwrites an
// existing artifact: a clash gets a generated suffix.
func (s *LocalStore) pickName(suggested string) string {
	base := SanitizeName(suggested)
	if base == "" {
		return GenerateName(".png")
	}
	name := base + ".png"
	if s.disk.Exists(name) {
		name = base + "-" + GenerateName(".png")
	}
	return name
}

// SanitizeName reduces a caller-supplied name to [A-Za-z0-9._-], strips a
// trailing .png and any directory part.
func SanitizeName(s string) string {
	s = filepath.Base(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".png")
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "._")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
