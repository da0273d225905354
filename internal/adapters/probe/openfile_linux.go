//go:build linux

package probe

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.rv.dev/rv/internal/core/ports"
)

// scanOpenFiles walks /proc/<pid>/fd on Linux, resolving each symlink and
// matching it against libraryDir, rather than shelling out to lsof (not
// guaranteed present, and /proc gives the same answer directly).
func scanOpenFiles(libraryDir string) ([]ports.OpenFileHandle, error) {
	procEntries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}

	absLib, err := filepath.Abs(libraryDir)
	if err != nil {
		return nil, err
	}

	var handles []ports.OpenFileHandle
	for _, entry := range procEntries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		fdDir := filepath.Join("/proc", entry.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue // process exited or is not ours to inspect
		}

		for _, fd := range fds {
			target, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil || !strings.HasPrefix(target, absLib) {
				continue
			}

			handles = append(handles, ports.OpenFileHandle{
				PackageName: packageNameFromPath(absLib, target),
				PID:         pid,
				ProcessName: processName(pid),
			})
		}
	}

	return handles, nil
}

func processName(pid int) string {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
