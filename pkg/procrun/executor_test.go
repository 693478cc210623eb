package procrun

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestExecuteEmptyArgv(t *testing.T) {
	t.Parallel()

	result := NewExecutor(nil).ExecuteCommand(context.Background(), nil, "", 5.0)
	require.False(t, result.Success)
	require.Equal(t, -1, result.ExitCode)
	require.Empty(t, result.Stdout)
	require.Empty(t, result.Stderr)
	require.Equal(t, "Empty argv", result.Error)
}

func TestExecuteCapturesBothStreams(t *testing.T) {
	t.Parallel()

	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/bin/sh", "-c", "echo out-line; echo err-line 1>&2"}, "", 5.0)
	require.True(t, result.Success)
	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "out-line\n", result.Stdout)
	require.Equal(t, "err-line\n", result.Stderr)
	require.Empty(t, result.Error)
}

func TestExecuteNonZeroExit(t *testing.T) {
	t.Parallel()

	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/bin/sh", "-c", "exit 3"}, "", 5.0)
	require.False(t, result.Success)
	require.Equal(t, 3, result.ExitCode)
	require.Equal(t, "Exit code: 3", result.Error)
}

func TestExecuteSpawnFailure(t *testing.T) {
	t.Parallel()

	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/nonexistent/toolcore-test-binary"}, "", 5.0)
	require.False(t, result.Success)
	require.Equal(t, -1, result.ExitCode)
	require.Contains(t, result.Error, "Spawn error:")
}

func TestExecuteTimeoutKillsChild(t *testing.T) {
	t.Parallel()

	started := time.Now()
	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/bin/sh", "-c", "echo partial; sleep 30"}, "", 0.2)
	elapsed := time.Since(started)

	require.False(t, result.Success)
	require.Equal(t, -1, result.ExitCode)
	require.Contains(t, result.Error, "timed out")
	require.Contains(t, result.Stdout, "partial")
	// The sleep must not run to completion; the kill-and-reap path should
	// return shortly after the deadline.
	require.Less(t, elapsed, 5*time.Second)
}

func TestExecuteRespectsWorkingDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "probe.txt"), []byte("from-probe"), 0o644))

	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/bin/sh", "-c", "cat probe.txt"}, dir, 5.0)
	require.True(t, result.Success)
	require.Equal(t, "from-probe", result.Stdout)
}

func TestExecuteDrainsOutputLargerThanPipeBuffer(t *testing.T) {
	t.Parallel()

	// Well past the 64KiB pipe buffer; a strictly wait-then-drain executor
	// would deadlock here.
	script := "i=0; while [ $i -lt 5000 ]; do echo 0123456789012345678901234567890123456789; i=$((i+1)); done"
	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/bin/sh", "-c", script}, "", 30.0)
	require.True(t, result.Success)
	require.Greater(t, len(result.Stdout), 64*1024)
}

func TestExecuteReplacesInvalidUTF8(t *testing.T) {
	t.Parallel()

	result := NewExecutor(nil).ExecuteCommand(context.Background(),
		[]string{"/bin/sh", "-c", `printf '\377\376ok'`}, "", 5.0)
	require.True(t, result.Success)
	require.True(t, utf8.ValidString(result.Stdout))
	require.True(t, strings.HasSuffix(result.Stdout, "ok"))
	require.Contains(t, result.Stdout, "�")
}

func TestExecuteTimeoutFloor(t *testing.T) {
	t.Parallel()

	// A zero timeout is clamped to the floor instead of expiring instantly
	// with an unbounded wait.
	result := NewExecutor(nil).Execute(context.Background(), Spec{
		Argv: []string{"/bin/sh", "-c", "sleep 30"},
	})
	require.False(t, result.Success)
	require.Contains(t, result.Error, "timed out")
}

func TestExecuteConcurrentCallsAreIndependent(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(nil)
	results := make(chan Result, 4)
	for i := 0; i < 4; i++ {
		go func() {
			results <- executor.ExecuteCommand(context.Background(),
				[]string{"/bin/sh", "-c", "echo same"}, "", 5.0)
		}()
	}
	for i := 0; i < 4; i++ {
		result := <-results
		require.True(t, result.Success)
		require.Equal(t, "same\n", result.Stdout)
	}
}
