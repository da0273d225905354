//go:build !linux

package probe

import (
	"os/exec"
	"strconv"
	"strings"

	"go.rv.dev/rv/internal/core/ports"
)

// scanOpenFiles shells out to lsof on platforms without /proc, parsing its
// "+D" recursive-directory output (PID, command, and name columns).
func scanOpenFiles(libraryDir string) ([]ports.OpenFileHandle, error) {
	out, err := exec.Command("lsof", "+D", libraryDir, "-Fpcn").Output() //nolint:gosec // fixed flags, libraryDir is operator-controlled
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) == 0 {
			// lsof exits non-zero when it finds nothing to report.
			return nil, nil
		}
		return nil, err
	}

	return parseLsofFields(libraryDir, string(out)), nil
}

// parseLsofFields walks lsof's field-output format: a "p<pid>" line starts
// a process block, followed by "c<command>" and one "n<path>" line per open
// file, until the next "p" line.
func parseLsofFields(libraryDir, output string) []ports.OpenFileHandle {
	var handles []ports.OpenFileHandle
	var pid int
	var command string

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case 'p':
			pid, _ = strconv.Atoi(line[1:])
		case 'c':
			command = line[1:]
		case 'n':
			path := line[1:]
			handles = append(handles, ports.OpenFileHandle{
				PackageName: packageNameFromPath(libraryDir, path),
				PID:         pid,
				ProcessName: command,
			})
		}
	}
	return handles
}
