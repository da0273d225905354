package installrunner

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// WriteLog persists an install's combined output under
// <cacheRoot>/logs/<name>-<version>.log (§4.7: "Log file writes per package
// are sequential within that package but interleaved across packages").
// Each call writes its own file, so concurrent installs of different
// packages never contend on the same handle.
func WriteLog(cacheRoot, name, version string, result ports.InstallResult) error {
	path := domain.LogsPath(cacheRoot, name, version)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create logs directory")
	}

	content := "=== stdout ===\n" + result.Stdout + "\n=== stderr ===\n" + result.Stderr
	if err := os.WriteFile(path, []byte(content), domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write install log")
	}
	return nil
}
