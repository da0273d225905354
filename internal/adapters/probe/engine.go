// Package probe implements the small platform-facing collaborators the
// planner consults but never blocks on: engine detection and in-use safety
// checks before a removal.
package probe

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/ports"
)

// EngineProbe shells out to the configured engine executable (Rscript by
// default) to detect its version, architecture, and library search path.
type EngineProbe struct {
	// Executable is the command invoked to query the engine, overridable in
	// tests; defaults to "Rscript" when empty.
	Executable string
}

// NewEngineProbe returns a probe invoking the default engine executable.
func NewEngineProbe() *EngineProbe {
	return &EngineProbe{}
}

// Detect runs a one-line script against the engine that prints version,
// platform, and library paths on three lines, and parses the result.
func (p *EngineProbe) Detect() (ports.EngineInfo, error) {
	exe := p.Executable
	if exe == "" {
		exe = "Rscript"
	}

	script := `cat(paste(R.version$major, R.version$minor, sep="."), "\n", R.version$platform, "\n", paste(.libPaths(), collapse=":"), "\n", sep="")`

	var stdout bytes.Buffer
	cmd := exec.Command(exe, "-e", script) //nolint:gosec // executable is operator-configured
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return ports.EngineInfo{}, zerr.Wrap(err, "failed to probe engine")
	}

	return parseProbeOutput(stdout.String())
}

// parseProbeOutput parses the three-line stdout Detect's script produces:
// version, platform triple, colon-joined library search path.
func parseProbeOutput(output string) (ports.EngineInfo, error) {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) < 3 {
		return ports.EngineInfo{}, zerr.With(zerr.New("unexpected engine probe output"), "output", output)
	}

	return ports.EngineInfo{
		Version:           strings.TrimSpace(lines[0]),
		Architecture:      normalizeArch(strings.TrimSpace(lines[1])),
		LibrarySearchPath: strings.Split(strings.TrimSpace(lines[2]), ":"),
	}, nil
}

// normalizeArch maps the engine's own platform triple to the canonical
// triple the disk cache's library layout keys on: any x86_64 triple becomes
// x86_64-pc-linux-gnu and any aarch64/arm64 triple aarch64-pc-linux-gnu.
// Other triples are returned unchanged; an empty one falls back to the
// host's GOARCH.
func normalizeArch(platform string) string {
	switch {
	case strings.HasPrefix(platform, "x86_64"):
		return "x86_64-pc-linux-gnu"
	case strings.HasPrefix(platform, "aarch64"), strings.HasPrefix(platform, "arm64"):
		return "aarch64-pc-linux-gnu"
	case platform == "":
		return runtime.GOARCH
	default:
		return platform
	}
}
