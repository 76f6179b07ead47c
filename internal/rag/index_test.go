package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jayErrors "github.com/jaycli/jay/internal/errors"
	"github.com/jaycli/jay/internal/sandbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps texts onto fixed unit vectors by keyword so cosine
// ordering is deterministic without a live embedding endpoint.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "gopher"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "ferris"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()

	workspace := t.TempDir()
	sb, err := sandbox.New(sandbox.Options{Workspace: workspace})
	require.NoError(t, err)

	ix, err := New(Options{
		Dir:        filepath.Join(t.TempDir(), "vectors"),
		Embedder:   stubEmbedder{},
		Sandbox:    sb,
		ChunkLines: 60,
		Overlap:    10,
	})
	require.NoError(t, err)
	return ix, workspace
}

func TestIndex_BuildAndQuery(t *testing.T) {
	ix, workspace := newTestIndex(t)

	require.NoError(t, os.WriteFile(filepath.Join(workspace, "go.txt"), []byte("the gopher digs tunnels\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "rust.txt"), []byte("ferris walks sideways\n"), 0o644))

	indexed, err := ix.Build(context.Background(), []string{"go.txt", "rust.txt"})
	require.NoError(t, err)
	assert.Equal(t, 2, indexed)

	hits, err := ix.Query(context.Background(), "where does the gopher live", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	assert.Equal(t, "go.txt", hits[0].Path)
	assert.Equal(t, "go.txt:1", hits[0].ChunkID)
	assert.Contains(t, hits[0].Snippet, "gopher")

	// Descending similarity, best hit first.
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestIndex_QueryRespectsK(t *testing.T) {
	ix, workspace := newTestIndex(t)

	require.NoError(t, os.WriteFile(filepath.Join(workspace, "a.txt"), []byte("gopher one\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "b.txt"), []byte("ferris two\n"), 0o644))

	_, err := ix.Build(context.Background(), []string{"a.txt", "b.txt"})
	require.NoError(t, err)

	hits, err := ix.Query(context.Background(), "gopher", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestIndex_QueryEmptyIndex(t *testing.T) {
	ix, _ := newTestIndex(t)

	hits, err := ix.Query(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_QueryEmptyText(t *testing.T) {
	ix, _ := newTestIndex(t)

	_, err := ix.Query(context.Background(), "  ", 5)
	assert.ErrorIs(t, err, jayErrors.ErrInvalidInput)
}

func TestIndex_BuildRejectsEscapingPath(t *testing.T) {
	ix, _ := newTestIndex(t)

	_, err := ix.Build(context.Background(), []string{"../outside.txt"})
	assert.ErrorIs(t, err, jayErrors.ErrSandboxViolation)
}

func TestIndex_RebuildOverwritesChunks(t *testing.T) {
	ix, workspace := newTestIndex(t)
	path := filepath.Join(workspace, "doc.txt")

	require.NoError(t, os.WriteFile(path, []byte("gopher first draft\n"), 0o644))
	_, err := ix.Build(context.Background(), []string{"doc.txt"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("gopher second draft\n"), 0o644))
	_, err = ix.Build(context.Background(), []string{"doc.txt"})
	require.NoError(t, err)

	hits, err := ix.Query(context.Background(), "gopher", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "same chunk id must be replaced, not duplicated")
	assert.Contains(t, hits[0].Snippet, "second draft")
}
