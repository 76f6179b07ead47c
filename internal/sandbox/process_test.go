package sandbox

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunProcess_Success(t *testing.T) {
	sb := newTestSandbox(t)

	res, err := sb.RunProcess(context.Background(), []string{"echo", "hello"}, "", nil, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.False(t, res.TimedOut)
}

func TestRunProcess_NonzeroExit(t *testing.T) {
	sb := newTestSandbox(t)

	res, err := sb.RunProcess(context.Background(), []string{"sh", "-c", "echo oops >&2; exit 3"}, "", nil, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "oops")
}

func TestRunProcess_Timeout(t *testing.T) {
	sb := newTestSandbox(t)

	timeout := 500 * time.Millisecond
	start := time.Now()
	res, err := sb.RunProcess(context.Background(), []string{"sleep", "10"}, "", nil, timeout)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Less(t, elapsed, 3*time.Second, "process must die near the timeout, not after sleep finishes")
}

func TestRunProcess_TimeoutCappedAtMax(t *testing.T) {
	sb, err := New(Options{Workspace: t.TempDir(), MaxTimeout: 500 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	res, err := sb.RunProcess(context.Background(), []string{"sleep", "10"}, "", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunProcess_OutputTruncated(t *testing.T) {
	sb, err := New(Options{Workspace: t.TempDir(), MaxOutputBytes: 128})
	require.NoError(t, err)

	res, err := sb.RunProcess(context.Background(), []string{"sh", "-c", "yes x | head -c 4096"}, "", nil, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Stdout, truncationMarker))
	assert.LessOrEqual(t, len(res.Stdout), 128+len(truncationMarker))
}

func TestRunProcess_CwdOutsideRootRejected(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.RunProcess(context.Background(), []string{"ls"}, "../..", nil, time.Second)
	require.Error(t, err)
}

func TestRunProcess_SpawnFailure(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.RunProcess(context.Background(), []string{"definitely-not-a-binary-xyz"}, "", nil, time.Second)
	require.Error(t, err)
}
