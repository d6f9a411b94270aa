package artifact

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"browser-mcp/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateName_Format(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^\d{13}-\d{9}\.png$`), GenerateName(".png"))
}

func TestDiskStore_CreatesNestedDirectoryOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	d := NewDiskStore(dir)

	require.NoError(t, d.Save("one.png", strings.NewReader("1")))
	require.NoError(t, d.Save("two.png", strings.NewReader("2")))

	assert.True(t, d.Exists("one.png"))
	assert.True(t, d.Exists("two.png"))
}

func TestDiskStore_RemoveMissingIsNotFound(t *testing.T) {
	d := NewDiskStore(t.TempDir())

	err := d.Remove("ghost.png")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = d.Open("ghost.png")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDiskStore_RejectsPathTraversal(t *testing.T) {
	d := NewDiskStore(t.TempDir())

	for _, name := range []string{"", "..", "../etc/passwd", `a\b`} {
		assert.ErrorIs(t, d.Save(name, strings.NewReader("x")), ErrInvalidName, name)
		assert.ErrorIs(t, d.Remove(name), ErrInvalidName, name)
		assert.ErrorIs(t, d.Remove(name), entity.ErrNotFound, name)

		_, err := d.Open(name)
		assert.ErrorIs(t, err, entity.ErrNotFound, name)
	}
}

func TestDiskStore_ClearRemovesEveryFile(t *testing.T) {
	d := NewDiskStore(t.TempDir())
	for i := 0; i < 25; i++ {
		require.NoError(t, d.Save(GenerateName(".png"), strings.NewReader("x")))
	}
	require.NoError(t, os.Mkdir(filepath.Join(d.Dir(), "keep"), 0o755))

	require.NoError(t, d.Clear(context.Background()))

	entries, err := os.ReadDir(d.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].Name())
}

func TestDiskStore_ClearOnEmptyAndMissingDir(t *testing.T) {
	d := NewDiskStore(filepath.Join(t.TempDir(), "not-yet"))
	assert.NoError(t, d.Clear(context.Background()))
}

func TestDiskStore_ClearHonoursCancelledContext(t *testing.T) {
	d := NewDiskStore(t.TempDir())
	require.NoError(t, d.Save("a.png", strings.NewReader("x")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, d.Clear(ctx), context.Canceled)
}
