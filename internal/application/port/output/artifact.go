package output

import (
	"context"

	"browser-mcp/internal/domain/entity"
)

type ArtifactStore interface {
	Store(ctx context.Context, data []byte, suggestedName string) (*entity.Artifact, error)
	Delete(ctx context.Context, name string) error
	Clear(ctx context.Context) error
}
