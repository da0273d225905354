package source

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/adapters/diskcache"
	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the source-handler registry Graft node.
const NodeID graft.ID = "adapter.source.handlers"

// EnvSubmoduleUpdateDisable disables recursive git submodule checkout/update
// when set to a truthy value (§6).
const EnvSubmoduleUpdateDisable = "RV_SUBMODULE_UPDATE_DISABLE"

func init() {
	graft.Register(graft.Node[map[domain.SourceKind]ports.SourceHandler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{diskcache.NodeID},
		Run: func(ctx context.Context) (map[domain.SourceKind]ports.SourceHandler, error) {
			cache, err := graft.Dep[ports.DiskCache](ctx)
			if err != nil {
				return nil, err
			}

			client := &http.Client{Timeout: 5 * time.Minute}
			return Registry(client, cache, submodulesDisabled()), nil
		},
	})
}

func submodulesDisabled() bool {
	switch os.Getenv(EnvSubmoduleUpdateDisable) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
