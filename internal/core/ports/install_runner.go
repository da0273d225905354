package ports

import "context"

// InstallResult is the outcome of invoking the external install command.
type InstallResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// InstallRunner invokes the external install command against a staged
// source tree (§9: "Install runner: invoke(source_tree, dest_dir, env) →
// (exit_code, stdout, stderr)").
//
//go:generate mockgen -source=install_runner.go -destination=mocks/mock_install_runner.go -package=mocks
type InstallRunner interface {
	Invoke(ctx context.Context, sourceTree, destDir string, env []string) (InstallResult, error)
}
