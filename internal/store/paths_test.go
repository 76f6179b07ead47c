package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataRootPath_Explicit(t *testing.T) {
	root := t.TempDir()
	resolved, err := ResolveDataRootPath(root)
	require.NoError(t, err)
	assert.Equal(t, root, resolved)
}

func TestResolveDataRootPath_DefaultsToHome(t *testing.T) {
	resolved, err := ResolveDataRootPath("")
	require.NoError(t, err)
	assert.Contains(t, resolved, filepath.Join(".jay", "workspaces"))
}

func TestGetWorkspacePath(t *testing.T) {
	root := t.TempDir()
	path, err := GetWorkspacePath("myws", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "myws"), path)

	sessions, err := GetSessionsDir("myws", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(path, "sessions"), sessions)

	vectors, err := GetVectorsDir("myws", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(path, "vectors"), vectors)

	lock, err := GetLockPath("myws", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(path, "workspace.lock"), lock)
}
