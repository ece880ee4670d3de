package cmd

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func TestReleasePid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pid")
	require.NoError(t, releasePid(path, 42))

	require.NoError(t, writePid(path, 42))
	require.NoError(t, releasePid(path, 7))
	assert.FileExists(t, path)

	require.NoError(t, releasePid(path, 42))
	assert.NoFileExists(t, path)
}

func TestStopPid(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sleep")
	}
	path := filepath.Join(t.TempDir(), "pid")
	_, err := stopPid(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	child := exec.Command("sleep", "30")
	require.NoError(t, child.Start())
	require.NoError(t, writePid(path, child.Process.Pid))
	alive, err := stopPid(path)
	require.NoError(t, err)
	assert.True(t, alive)
	assert.NoFileExists(t, path)
	_ = child.Wait()

	// the process is gone, the file is stale
	require.NoError(t, writePid(path, child.Process.Pid))
	alive, err = stopPid(path)
	require.NoError(t, err)
	assert.False(t, alive)
	assert.NoFileExists(t, path)
}
