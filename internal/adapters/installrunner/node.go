package installrunner

import (
	"context"
	"os"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the install runner Graft node.
const NodeID graft.ID = "adapter.installrunner"

// EnvExecutable overrides the engine executable invoked for installs;
// unset defaults to "R" on PATH.
const EnvExecutable = "RV_ENGINE_EXECUTABLE"

func init() {
	graft.Register(graft.Node[ports.InstallRunner]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.InstallRunner, error) {
			return New(defaultCommand()...), nil
		},
	})
}

// defaultCommand builds the argv for "R CMD INSTALL --library=<destDir>
// <sourceTree>" wrapped through a shell so Invoke's fixed
// (sourceTree, destDir) trailing arguments can be threaded into the
// --library flag's value rather than appended as bare positional args.
func defaultCommand() []string {
	exe := os.Getenv(EnvExecutable)
	if exe == "" {
		exe = "R"
	}
	script := exe + ` CMD INSTALL --no-multiarch --library="$2" "$1"`
	return []string{"sh", "-c", script, "sh"}
}
