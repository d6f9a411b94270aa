package artifact

import (
	"context"
	"testing"

	"browser-mcp/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_InlineArtifacts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.Store(ctx, []byte("img"), "shot")
	require.NoError(t, err)
	assert.True(t, a.IsInline())
	assert.Equal(t, "shot.png", a.Name)

	b, err := s.Store(ctx, []byte("img2"), "shot")
	require.NoError(t, err)
	assert.NotEqual(t, a.Name, b.Name)

	data, ok := s.Get(a.Name)
	require.True(t, ok)
	assert.Equal(t, []byte("img"), data)
}

func TestMemoryStore_DeleteAndClear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.Store(ctx, []byte("x"), "x")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.Name))
	assert.ErrorIs(t, s.Delete(ctx, a.Name), entity.ErrNotFound)

	_, err = s.Store(ctx, []byte("y"), "y")
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))
	_, ok := s.Get("y.png")
	assert.False(t, ok)
}
