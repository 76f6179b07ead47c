package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	stdatomic "sync/atomic"
	"time"

	"github.com/jaycli/jay/internal/config"

	"github.com/natefinch/atomic"
)

type Operation int

const (
	OpAppendTranscript Operation = iota
	OpReadTranscript
	OpResetSession
	OpGetSession
	OpSaveSession
	OpListSessions
)

type Request struct {
	Op       Operation
	Payload  interface{}
	Result   chan error
	Response chan interface{}
}

type TranscriptPayload struct {
	SessionID string
	Data      []byte // JSON line
}

type ResetSessionPayload struct {
	SessionID string
}

type GetSessionPayload struct {
	SessionID string
}

type SaveSessionPayload struct {
	Session *SessionMeta
}

type ReadTranscriptPayload struct {
	SessionID string
	Limit     int // 0 = all
}

// Worker is the single writer for one workspace's on-disk state: session
// transcripts and the session index. All mutations funnel through the inbox
// channel, so file operations never race. An flock on the workspace
// directory keeps a second jay process out entirely.
type Worker struct {
	workspaceID              string
	basePath                 string
	inbox                    chan Request
	fileLock                 *FileLock
	quit                     chan struct{}
	wg                       sync.WaitGroup
	sessionIndex             *SessionIndex
	running                  stdatomic.Bool
	transcriptRotateMaxBytes int64
}

type RuntimeConfig struct {
	LockTimeout              time.Duration
	LockRetry                time.Duration
	LockMaxRetry             int
	InboxSize                int
	TranscriptRotateMaxBytes int64
}

func NewWorker(workspaceID string, dataRootPath string, runtimeCfg RuntimeConfig) (*Worker, error) {
	basePath, err := GetWorkspacePath(workspaceID, dataRootPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(basePath, "sessions"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions dir: %w", err)
	}

	if runtimeCfg.LockTimeout <= 0 {
		lockTimeout, err := config.DurationOrDefault("", config.DefaultStoreLockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse default store lock timeout: %w", err)
		}
		runtimeCfg.LockTimeout = lockTimeout
	}
	if runtimeCfg.LockRetry <= 0 {
		lockRetry, err := config.DurationOrDefault("", config.DefaultStoreLockRetry)
		if err != nil {
			return nil, fmt.Errorf("parse default store lock retry: %w", err)
		}
		runtimeCfg.LockRetry = lockRetry
	}
	if runtimeCfg.LockMaxRetry <= 0 {
		runtimeCfg.LockMaxRetry = config.DefaultStoreLockMaxRetry
	}
	if runtimeCfg.InboxSize <= 0 {
		runtimeCfg.InboxSize = config.DefaultStoreInboxSize
	}
	if runtimeCfg.TranscriptRotateMaxBytes <= 0 {
		runtimeCfg.TranscriptRotateMaxBytes = config.DefaultStoreTranscriptRotateMaxByte
	}

	// Single instance per workspace.
	fileLock, err := NewFileLock(workspaceID, basePath, &FileLockConfig{
		LockTimeout:  runtimeCfg.LockTimeout,
		LockRetry:    runtimeCfg.LockRetry,
		LockMaxRetry: runtimeCfg.LockMaxRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	sessionIndex := &SessionIndex{Sessions: make(map[string]SessionMeta)}
	indexPath := filepath.Join(basePath, "sessions", "index.json")
	if data, err := os.ReadFile(indexPath); err == nil {
		if err := json.Unmarshal(data, sessionIndex); err != nil {
			slog.Warn("failed to parse session index, starting fresh", "error", err)
			sessionIndex = &SessionIndex{Sessions: make(map[string]SessionMeta)}
		}
	}

	return &Worker{
		workspaceID:              workspaceID,
		basePath:                 basePath,
		inbox:                    make(chan Request, runtimeCfg.InboxSize),
		fileLock:                 fileLock,
		quit:                     make(chan struct{}),
		sessionIndex:             sessionIndex,
		transcriptRotateMaxBytes: runtimeCfg.TranscriptRotateMaxBytes,
	}, nil
}

// BasePath returns the workspace data directory.
func (w *Worker) BasePath() string {
	return w.basePath
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *Worker) loop() {
	slog.Debug("store worker started", "workspace", w.workspaceID)
	w.running.Store(true)
	defer func() {
		w.running.Store(false)
		w.wg.Done()
	}()

	for {
		select {
		case req := <-w.inbox:
			err := w.handle(req)
			if req.Result != nil {
				req.Result <- err
			}
		case <-w.quit:
			slog.Debug("store worker stopping")
			return
		}
	}
}

func (w *Worker) handle(req Request) error {
	switch req.Op {
	case OpAppendTranscript:
		p, ok := req.Payload.(TranscriptPayload)
		if !ok {
			return fmt.Errorf("invalid payload for AppendTranscript")
		}
		if err := w.appendTranscript(p.SessionID, p.Data); err != nil {
			return err
		}
		return w.touchSession(p.SessionID)
	case OpReadTranscript:
		p, ok := req.Payload.(ReadTranscriptPayload)
		if !ok {
			return fmt.Errorf("invalid payload for ReadTranscript")
		}
		lines, err := w.readTranscript(p.SessionID, p.Limit)
		if req.Response != nil {
			req.Response <- lines
		}
		return err
	case OpResetSession:
		p, ok := req.Payload.(ResetSessionPayload)
		if !ok {
			return fmt.Errorf("invalid payload for ResetSession")
		}
		return w.resetSession(p.SessionID)
	case OpGetSession:
		p, ok := req.Payload.(GetSessionPayload)
		if !ok {
			return fmt.Errorf("invalid payload for GetSession")
		}
		if sess, ok := w.sessionIndex.Sessions[p.SessionID]; ok {
			if req.Response != nil {
				req.Response <- &sess
			}
		} else {
			if req.Response != nil {
				req.Response <- (*SessionMeta)(nil)
			}
		}
		return nil
	case OpSaveSession:
		p, ok := req.Payload.(SaveSessionPayload)
		if !ok {
			return fmt.Errorf("invalid payload for SaveSession")
		}
		w.sessionIndex.Sessions[p.Session.ID] = *p.Session
		return w.saveSessionIndex()
	case OpListSessions:
		sessions := make([]SessionMeta, 0, len(w.sessionIndex.Sessions))
		for _, sess := range w.sessionIndex.Sessions {
			sessions = append(sessions, sess)
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		})
		if req.Response != nil {
			req.Response <- sessions
		}
		return nil
	default:
		return fmt.Errorf("unknown operation: %d", req.Op)
	}
}

func (w *Worker) readTranscript(sessionID string, limit int) ([]string, error) {
	path := filepath.Join(w.basePath, "sessions", sessionID+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}

	if limit > 0 && len(lines) > limit {
		// Return last N lines
		return lines[len(lines)-limit:], nil
	}
	return lines, nil
}

func (w *Worker) saveSessionIndex() error {
	path := filepath.Join(w.basePath, "sessions", "index.json")
	data, err := json.MarshalIndent(w.sessionIndex, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func (w *Worker) appendTranscript(sessionID string, data []byte) error {
	path := filepath.Join(w.basePath, "sessions", sessionID+".jsonl")

	if err := w.checkAndRotate(sessionID, path); err != nil {
		slog.Warn("failed to rotate transcript", "session", sessionID, "error", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return err
	}
	if _, err := f.WriteString("\n"); err != nil {
		return err
	}
	return f.Sync()
}

func (w *Worker) touchSession(sessionID string) error {
	now := time.Now()
	sess, ok := w.sessionIndex.Sessions[sessionID]
	if !ok {
		sess = SessionMeta{ID: sessionID, CreatedAt: now}
	}
	sess.UpdatedAt = now
	sess.MessageCount++
	w.sessionIndex.Sessions[sessionID] = sess
	return w.saveSessionIndex()
}

func (w *Worker) resetSession(sessionID string) error {
	path := filepath.Join(w.basePath, "sessions", sessionID+".jsonl")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	delete(w.sessionIndex.Sessions, sessionID)
	return w.saveSessionIndex()
}

func (w *Worker) checkAndRotate(sessionID, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if info.Size() < w.transcriptRotateMaxBytes {
		return nil
	}

	slog.Info("rotating transcript", "session", sessionID, "size", info.Size())

	timestamp := time.Now().Format("20060102150405")
	backupPath := fmt.Sprintf("%s.%s.bak", path, timestamp)

	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create new transcript: %w", err)
	}
	f.Close()

	return nil
}

// Public API for other components

func (w *Worker) AppendTranscript(sessionID string, data []byte) error {
	res := make(chan error, 1)
	w.inbox <- Request{
		Op:      OpAppendTranscript,
		Payload: TranscriptPayload{SessionID: sessionID, Data: data},
		Result:  res,
	}
	return <-res
}

func (w *Worker) ReadTranscript(sessionID string, limit int) ([]string, error) {
	res := make(chan error, 1)
	resp := make(chan interface{}, 1)
	w.inbox <- Request{
		Op:       OpReadTranscript,
		Payload:  ReadTranscriptPayload{SessionID: sessionID, Limit: limit},
		Result:   res,
		Response: resp,
	}
	if err := <-res; err != nil {
		return nil, err
	}
	val := <-resp
	return val.([]string), nil
}

func (w *Worker) ResetSession(sessionID string) error {
	res := make(chan error, 1)
	w.inbox <- Request{
		Op:      OpResetSession,
		Payload: ResetSessionPayload{SessionID: sessionID},
		Result:  res,
	}
	return <-res
}

func (w *Worker) GetSession(id string) (*SessionMeta, error) {
	res := make(chan error, 1)
	resp := make(chan interface{}, 1)
	w.inbox <- Request{
		Op:       OpGetSession,
		Payload:  GetSessionPayload{SessionID: id},
		Result:   res,
		Response: resp,
	}
	if err := <-res; err != nil {
		return nil, err
	}
	val := <-resp
	meta, _ := val.(*SessionMeta)
	return meta, nil
}

func (w *Worker) SaveSession(session *SessionMeta) error {
	res := make(chan error, 1)
	w.inbox <- Request{
		Op:      OpSaveSession,
		Payload: SaveSessionPayload{Session: session},
		Result:  res,
	}
	return <-res
}

func (w *Worker) ListSessions() ([]SessionMeta, error) {
	res := make(chan error, 1)
	resp := make(chan interface{}, 1)
	w.inbox <- Request{
		Op:       OpListSessions,
		Result:   res,
		Response: resp,
	}
	if err := <-res; err != nil {
		return nil, err
	}
	val := <-resp
	return val.([]SessionMeta), nil
}

func (w *Worker) Stop() {
	close(w.quit)
	w.wg.Wait()

	if w.fileLock.IsLocked() {
		w.fileLock.Unlock()
	}
}

func (w *Worker) IsRunning() bool {
	return w.fileLock.IsLocked() && w.running.Load()
}
