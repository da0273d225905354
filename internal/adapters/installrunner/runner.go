// Package installrunner implements ports.InstallRunner by invoking the
// engine's own package-install command against a staged source tree.
package installrunner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// Runner shells out to an install command (the engine's own "install from
// source tree" entry point) with stdout/stderr captured rather than
// attached to a pty: a sync fans out many of these concurrently, and an
// interleaved terminal stream across packages would be unreadable even if
// captured faithfully to a log file afterward.
type Runner struct {
	// Command is the executable invoked for every install, e.g. the
	// engine's CMD batch-install front end. Args are appended after
	// Command's own fixed arguments: sourceTree, destDir.
	Command []string
}

// New returns a Runner invoking command (with any fixed leading arguments)
// for every install.
func New(command ...string) *Runner {
	return &Runner{Command: command}
}

// Invoke runs the install command against sourceTree, writing the result
// into destDir, with env appended to the subprocess's environment.
func (r *Runner) Invoke(ctx context.Context, sourceTree, destDir string, env []string) (ports.InstallResult, error) {
	if len(r.Command) == 0 {
		return ports.InstallResult{}, zerr.New("install runner has no command configured")
	}

	args := append(append([]string{}, r.Command[1:]...), sourceTree, destDir)
	cmd := exec.CommandContext(ctx, r.Command[0], args...) //nolint:gosec // command is operator-configured, not user input

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = env

	runErr := cmd.Run()

	result := ports.InstallResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr == nil {
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, zerr.With(zerr.Wrap(domain.ErrBuildFailed, runErr.Error()), "exit_code", result.ExitCode)
	}

	result.ExitCode = -1
	return result, zerr.Wrap(domain.ErrBuildFailed, runErr.Error())
}
