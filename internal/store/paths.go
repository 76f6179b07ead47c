package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jaycli/jay/internal/pathutil"
)

// ResolveDataRootPath resolves the configured data root path. If empty, it
// falls back to ~/.jay/workspaces.
func ResolveDataRootPath(dataRootPath string) (string, error) {
	if trimmed := strings.TrimSpace(dataRootPath); trimmed != "" {
		return pathutil.Expand(trimmed)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jay", "workspaces"), nil
}

// GetWorkspacePath returns the base path for a workspace.
func GetWorkspacePath(workspaceID string, dataRootPath string) (string, error) {
	root, err := ResolveDataRootPath(dataRootPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, workspaceID), nil
}

// GetSessionsDir returns the sessions directory for a workspace.
func GetSessionsDir(workspaceID string, dataRootPath string) (string, error) {
	base, err := GetWorkspacePath(workspaceID, dataRootPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "sessions"), nil
}

// GetVectorsDir returns the vector index directory for a workspace.
func GetVectorsDir(workspaceID string, dataRootPath string) (string, error) {
	base, err := GetWorkspacePath(workspaceID, dataRootPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "vectors"), nil
}

// GetLockPath returns the lock file path for a workspace.
func GetLockPath(workspaceID string, dataRootPath string) (string, error) {
	base, err := GetWorkspacePath(workspaceID, dataRootPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "workspace.lock"), nil
}
