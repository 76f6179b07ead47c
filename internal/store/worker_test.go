package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T) *Worker {
	t.Helper()
	w, err := NewWorker("test-ws", t.TempDir(), RuntimeConfig{
		LockTimeout: 2 * time.Second,
		LockRetry:   10 * time.Millisecond,
	})
	require.NoError(t, err)
	w.Start()
	t.Cleanup(w.Stop)
	return w
}

func TestWorker_AppendAndReadTranscript(t *testing.T) {
	w := newTestWorker(t)

	require.NoError(t, w.AppendTranscript("s1", []byte(`{"role":"user","content":"hi"}`)))
	require.NoError(t, w.AppendTranscript("s1", []byte(`{"role":"assistant","content":"hello"}`)))

	lines, err := w.ReadTranscript("s1", 0)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"user"`)
	assert.Contains(t, lines[1], `"assistant"`)
}

func TestWorker_ReadTranscriptLimitReturnsTail(t *testing.T) {
	w := newTestWorker(t)

	require.NoError(t, w.AppendTranscript("s1", []byte(`{"n":1}`)))
	require.NoError(t, w.AppendTranscript("s1", []byte(`{"n":2}`)))
	require.NoError(t, w.AppendTranscript("s1", []byte(`{"n":3}`)))

	lines, err := w.ReadTranscript("s1", 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, `{"n":2}`, lines[0])
	assert.Equal(t, `{"n":3}`, lines[1])
}

func TestWorker_ReadMissingTranscriptIsEmpty(t *testing.T) {
	w := newTestWorker(t)

	lines, err := w.ReadTranscript("ghost", 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestWorker_AppendTouchesSessionIndex(t *testing.T) {
	w := newTestWorker(t)

	require.NoError(t, w.AppendTranscript("s1", []byte(`{}`)))
	require.NoError(t, w.AppendTranscript("s1", []byte(`{}`)))

	meta, err := w.GetSession("s1")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 2, meta.MessageCount)
	assert.False(t, meta.CreatedAt.IsZero())
}

func TestWorker_GetMissingSession(t *testing.T) {
	w := newTestWorker(t)

	meta, err := w.GetSession("nope")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestWorker_ResetSession(t *testing.T) {
	w := newTestWorker(t)

	require.NoError(t, w.AppendTranscript("s1", []byte(`{}`)))
	require.NoError(t, w.ResetSession("s1"))

	lines, err := w.ReadTranscript("s1", 0)
	require.NoError(t, err)
	assert.Empty(t, lines)

	meta, err := w.GetSession("s1")
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func TestWorker_ListSessionsNewestFirst(t *testing.T) {
	w := newTestWorker(t)

	require.NoError(t, w.AppendTranscript("older", []byte(`{}`)))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, w.AppendTranscript("newer", []byte(`{}`)))

	sessions, err := w.ListSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].ID)
	assert.Equal(t, "older", sessions[1].ID)
}

func TestWorker_TranscriptRotation(t *testing.T) {
	root := t.TempDir()
	w, err := NewWorker("rot-ws", root, RuntimeConfig{
		LockTimeout:              2 * time.Second,
		LockRetry:                10 * time.Millisecond,
		TranscriptRotateMaxBytes: 32,
	})
	require.NoError(t, err)
	w.Start()
	t.Cleanup(w.Stop)

	require.NoError(t, w.AppendTranscript("s1", []byte(`{"content":"a long enough line to exceed the cap"}`)))
	require.NoError(t, w.AppendTranscript("s1", []byte(`{"content":"fresh"}`)))

	lines, err := w.ReadTranscript("s1", 0)
	require.NoError(t, err)
	require.Len(t, lines, 1, "rotation leaves only the post-rotation line")
	assert.Contains(t, lines[0], "fresh")

	backups, err := filepath.Glob(filepath.Join(w.BasePath(), "sessions", "s1.jsonl.*.bak"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestNewSessionID_SortsByCreation(t *testing.T) {
	first := NewSessionID()
	time.Sleep(2 * time.Millisecond)
	second := NewSessionID()

	assert.Less(t, first, second)
}
