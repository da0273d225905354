package installrunner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

func TestInvoke_SuccessCapturesStdout(t *testing.T) {
	r := New("sh", "-c", "echo building $1 into $2")
	result, err := r.Invoke(context.Background(), "/src/dplyr", "/dest/dplyr", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "building")
}

func TestInvoke_NonZeroExitReturnsBuildFailed(t *testing.T) {
	r := New("sh", "-c", "echo oops 1>&2; exit 3")
	_, err := r.Invoke(context.Background(), "/src/x", "/dest/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBuildFailed)
}

func TestInvoke_NoCommandConfiguredErrors(t *testing.T) {
	r := New()
	_, err := r.Invoke(context.Background(), "/src/x", "/dest/x", nil)
	assert.Error(t, err)
}

func TestWriteLog_WritesCombinedOutput(t *testing.T) {
	root := t.TempDir()
	result := ports.InstallResult{ExitCode: 0, Stdout: "built ok", Stderr: "warning: x"}

	err := WriteLog(root, "dplyr", "1.1.3", result)
	require.NoError(t, err)

	data, err := os.ReadFile(domain.LogsPath(root, "dplyr", "1.1.3"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "built ok")
	assert.Contains(t, string(data), "warning: x")
	assert.DirExists(t, filepath.Dir(domain.LogsPath(root, "dplyr", "1.1.3")))
}
