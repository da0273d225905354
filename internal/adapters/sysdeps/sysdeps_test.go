package sysdeps

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_QueriesAPIAndFindsPackages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ubuntu", r.URL.Query().Get("distribution"))
		assert.Equal(t, "22.04", r.URL.Query().Get("release"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"requirements":[{"name":"xml2","requirements":{"packages":["libxml2-dev"]}}]}`))
	}))
	defer srv.Close()

	l := New()
	l.apiURL = srv.URL

	pkgs, err := l.Map("xml2", "ubuntu", "22.04")
	require.NoError(t, err)
	assert.Equal(t, []string{"libxml2-dev"}, pkgs)
}

func TestMap_UnknownHintReturnsNilNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"requirements":[]}`))
	}))
	defer srv.Close()

	l := New()
	l.apiURL = srv.URL

	pkgs, err := l.Map("nonexistent", "ubuntu", "22.04")
	require.NoError(t, err)
	assert.Nil(t, pkgs)
}

func TestMap_KnownInPathToolResolvesViaLookPath(t *testing.T) {
	l := New()
	// "pandoc" is in the built-in allowlist; absent from a bare test
	// environment's PATH, so this exercises the "Absent" branch without
	// hitting the network.
	pkgs, err := l.Map("pandoc", "ubuntu", "22.04")
	require.NoError(t, err)
	assert.Nil(t, pkgs)
}

func TestMap_EnvCheckInPathAddsHint(t *testing.T) {
	require.NoError(t, os.Setenv(EnvCheckInPath, "sh"))
	defer os.Unsetenv(EnvCheckInPath)

	l := New()
	pkgs, err := l.Map("sh", "ubuntu", "22.04")
	require.NoError(t, err)
	assert.Equal(t, []string{"sh"}, pkgs)
}
