package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// FileLock guards a workspace directory against concurrent jay instances.
// One process holds the flock for the lifetime of its store worker.
type FileLock struct {
	fileLock    *flock.Flock
	lockPath    string
	workspaceID string
	acquiredAt  time.Time
	mu          sync.RWMutex
}

type FileLockConfig struct {
	LockTimeout  time.Duration
	LockRetry    time.Duration
	LockMaxRetry int
}

func NewFileLock(workspaceID, basePath string, cfg *FileLockConfig) (*FileLock, error) {
	if cfg == nil {
		cfg = &FileLockConfig{
			LockTimeout:  30 * time.Second,
			LockRetry:    100 * time.Millisecond,
			LockMaxRetry: 300,
		}
	}

	lockPath := filepath.Join(basePath, "workspace.lock")
	fl := &FileLock{
		fileLock:    flock.New(lockPath),
		lockPath:    lockPath,
		workspaceID: workspaceID,
	}

	if err := fl.acquireWithRetry(cfg); err != nil {
		return nil, err
	}

	fl.acquiredAt = time.Now()
	slog.Debug("workspace lock acquired", "workspace", workspaceID, "path", lockPath)
	return fl, nil
}

func (fl *FileLock) acquireWithRetry(cfg *FileLockConfig) error {
	deadline := time.Now().Add(cfg.LockTimeout)
	for i := 0; i < cfg.LockMaxRetry; i++ {
		locked, err := fl.fileLock.TryLock()
		if err != nil {
			return fmt.Errorf("attempt lock: %w", err)
		}
		if locked {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(cfg.LockRetry)
	}

	return fmt.Errorf("workspace %s is locked by another jay instance (timeout after %v)",
		fl.workspaceID, cfg.LockTimeout)
}

func (fl *FileLock) Unlock() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.fileLock == nil {
		return
	}

	if err := fl.fileLock.Unlock(); err != nil {
		slog.Error("failed to release workspace lock",
			"workspace", fl.workspaceID,
			"path", fl.lockPath,
			"error", err,
		)
	} else {
		slog.Debug("workspace lock released",
			"workspace", fl.workspaceID,
			"held", time.Since(fl.acquiredAt),
		)
	}

	fl.fileLock = nil
}

func (fl *FileLock) IsLocked() bool {
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	return fl.fileLock != nil
}
