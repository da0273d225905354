package probe

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/ports"
)

// OpenFileProbe reports which processes hold a file under the library
// directory open, so the planner can refuse to remove a package an engine
// process still has mapped. The actual scan is platform-specific; see
// openfile_linux.go and openfile_other.go.
type OpenFileProbe struct{}

// NewOpenFileProbe returns a ready-to-use probe.
func NewOpenFileProbe() *OpenFileProbe {
	return &OpenFileProbe{}
}

// NamesInUse returns the set of open file handles rooted under libraryDir.
func (p *OpenFileProbe) NamesInUse(libraryDir string) ([]ports.OpenFileHandle, error) {
	handles, err := scanOpenFiles(libraryDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to probe open files")
	}
	return handles, nil
}

// packageNameFromPath extracts the first path segment under libraryDir,
// which names the package directory per domain.LibraryPackagePath's layout.
func packageNameFromPath(libraryDir, target string) string {
	rel, err := filepath.Rel(libraryDir, target)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
