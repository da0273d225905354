// Package sysdeps implements ports.SysDepLookup by querying Posit's public
// system-requirements API, the same data source the original sysreqs
// tooling used, with a RV_SYS_DEPS_CHECK_IN_PATH escape hatch for tools
// that API never lists because they aren't installed through the system
// package manager.
package sysdeps

import (
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// EnvCheckInPath names additional hint names (comma-separated) to resolve
// via exec.LookPath instead of the sysreqs API, for tools commonly built
// outside the system package manager.
const EnvCheckInPath = "RV_SYS_DEPS_CHECK_IN_PATH"

// defaultAPIURL mirrors the public endpoint the original tooling queried.
const defaultAPIURL = "https://packagemanager.posit.co/__api__/repos/cran/sysreqs"

// knownInPath lists hints this system always resolves via PATH lookup
// rather than the sysreqs API, regardless of RV_SYS_DEPS_CHECK_IN_PATH,
// since the API has no entry for developer tooling like this.
var knownInPath = []string{"rustc", "cargo", "pandoc", "texlive", "chromium", "google-chrome"}

type sysreqResponse struct {
	Requirements []struct {
		Name         string `json:"name"`
		Requirements struct {
			Packages []string `json:"packages"`
		} `json:"requirements"`
	} `json:"requirements"`
}

// Lookup implements ports.SysDepLookup.
type Lookup struct {
	client *http.Client
	apiURL string
}

// New returns a ready-to-use Lookup.
func New() *Lookup {
	return &Lookup{
		client: &http.Client{Timeout: 10 * time.Second},
		apiURL: defaultAPIURL,
	}
}

// Map resolves depHint to the system package names on os/osVersion. A hint
// found in the in-path allowlist (built-in or added via
// RV_SYS_DEPS_CHECK_IN_PATH) is resolved by checking PATH directly instead
// of consulting the API.
func (l *Lookup) Map(depHint, osName, osVersion string) ([]string, error) {
	if l.checkInPath(depHint) {
		if _, err := exec.LookPath(depHint); err == nil {
			return []string{depHint}, nil
		}
		return nil, nil
	}

	req, err := http.NewRequest(http.MethodGet, l.apiURL, nil) //nolint:noctx // short-lived lookup, no caller context threaded through ports.SysDepLookup
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build sysreqs request")
	}
	q := url.Values{}
	q.Set("all", "true")
	q.Set("distribution", osName)
	q.Set("release", osVersion)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to reach sysreqs API")
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close, read already completed

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.New("sysreqs API returned non-200 status"), "status", resp.StatusCode)
	}

	var parsed sysreqResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, zerr.Wrap(err, "failed to decode sysreqs response")
	}

	for _, entry := range parsed.Requirements {
		if entry.Name == depHint {
			return entry.Requirements.Packages, nil
		}
	}
	return nil, nil
}

func (l *Lookup) checkInPath(depHint string) bool {
	for _, name := range knownInPath {
		if name == depHint {
			return true
		}
	}
	for _, name := range strings.Split(os.Getenv(EnvCheckInPath), ",") {
		if strings.TrimSpace(name) == depHint && depHint != "" {
			return true
		}
	}
	return false
}
