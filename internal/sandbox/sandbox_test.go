package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	jayErrors "github.com/jaycli/jay/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	sb, err := New(Options{Workspace: t.TempDir()})
	require.NoError(t, err)
	return sb
}

func TestResolve_InsideRoot(t *testing.T) {
	sb := newTestSandbox(t)

	got, err := sb.Resolve("notes/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sb.Root(), "notes", "todo.txt"), got)
}

func TestResolve_DotDotEscape(t *testing.T) {
	sb := newTestSandbox(t)

	tests := []string{
		"../escape.txt",
		"../../etc/passwd",
		"notes/../../escape.txt",
		"/etc/passwd",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := sb.Resolve(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, jayErrors.ErrSandboxViolation)
		})
	}
}

func TestResolve_SymlinkEscape(t *testing.T) {
	sb := newTestSandbox(t)
	outside := t.TempDir()

	link := filepath.Join(sb.Root(), "sneaky")
	require.NoError(t, os.Symlink(outside, link))

	_, err := sb.Resolve("sneaky/file.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, jayErrors.ErrSandboxViolation)
}

func TestResolve_SymlinkInsideRoot(t *testing.T) {
	sb := newTestSandbox(t)

	target := filepath.Join(sb.Root(), "real")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.Symlink(target, filepath.Join(sb.Root(), "alias")))

	got, err := sb.Resolve("alias/file.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "file.txt"), got)
}

func TestResolve_Idempotent(t *testing.T) {
	sb := newTestSandbox(t)

	first, err := sb.Resolve("a/b/c.txt")
	require.NoError(t, err)
	second, err := sb.Resolve("a/b/c.txt")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_EmptyPath(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.Resolve("   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, jayErrors.ErrInvalidInput)
}

func TestResolve_RootItself(t *testing.T) {
	sb := newTestSandbox(t)

	got, err := sb.Resolve(".")
	require.NoError(t, err)
	assert.Equal(t, sb.Root(), got)
}
