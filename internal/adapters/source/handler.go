package source

import (
	"net/http"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// Registry builds the dispatch map the resolver and sync pool index their
// per-source-kind handler by, sharing one HTTP client and disk cache across
// every handler that needs one. disableSubmodules corresponds to
// RV_SUBMODULE_UPDATE_DISABLE.
func Registry(client *http.Client, cache interface {
	DiskCache
	GitCache
}, disableSubmodules bool) map[domain.SourceKind]ports.SourceHandler {
	gitHandler := NewGitHandler(cache)
	if disableSubmodules {
		gitHandler = NewGitHandlerNoSubmodules(cache)
	}
	return map[domain.SourceKind]ports.SourceHandler{
		domain.SourceRepository: NewRepositoryHandler(client, cache),
		domain.SourceGit:        gitHandler,
		domain.SourceLocal:      NewLocalHandler(),
		domain.SourceURL:        NewURLHandler(client, cache),
	}
}
