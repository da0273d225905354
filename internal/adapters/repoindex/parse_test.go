package repoindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
)

const samplePackages = `Package: dplyr
Version: 1.1.3
Depends: R (>= 3.5.0)
Imports: generics (>= 0.1.0), rlang
Suggests: knitr

Package: generics
Version: 0.1.3

Package: rlang
Version: 1.1.1
`

func TestParse_DCF(t *testing.T) {
	idx, err := Parse([]byte(samplePackages), "https://cran.example/src/contrib", "4.3", "linux-x86_64", false)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexFormatDCF, idx.Format)
	require.Len(t, idx.Packages, 3)

	dplyr, ok := idx.Packages[domain.NewInternedString("dplyr")]
	require.True(t, ok)
	require.Len(t, dplyr.Entries, 1)

	entry := dplyr.Entries[0]
	assert.Equal(t, "1.1.3", entry.Version.String())
	assert.Contains(t, entry.DownloadURL, "dplyr_1.1.3")

	var names []string
	for _, e := range entry.Edges {
		names = append(names, e.Name.String())
	}
	assert.ElementsMatch(t, []string{"generics", "rlang", "knitr"}, names)

	for _, e := range entry.Edges {
		switch e.Name.String() {
		case "generics":
			assert.Equal(t, domain.DependencySoft, e.Kind)
			assert.True(t, e.Requirement.Satisfies(domain.MustParseVersion("0.1.3")))
		case "knitr":
			assert.Equal(t, domain.DependencySuggests, e.Kind)
		}
	}
}

func TestParse_DCF_SkipsEngineDependency(t *testing.T) {
	idx, err := Parse([]byte(samplePackages), "https://cran.example", "4.3", "linux-x86_64", false)
	require.NoError(t, err)
	dplyr := idx.Packages[domain.NewInternedString("dplyr")]
	for _, e := range dplyr.Entries[0].Edges {
		assert.NotEqual(t, "R", e.Name.String())
	}
}

func TestParse_DCF_MultipleVersionsTracksLatest(t *testing.T) {
	data := `Package: dplyr
Version: 1.0.0

Package: dplyr
Version: 1.1.3
`
	idx, err := Parse([]byte(data), "https://cran.example", "4.3", "linux-x86_64", false)
	require.NoError(t, err)
	pkg := idx.Packages[domain.NewInternedString("dplyr")]
	assert.Len(t, pkg.Entries, 2)
	assert.Equal(t, "1.1.3", pkg.Latest.String())
}

func TestParse_JSON(t *testing.T) {
	data := `{
		"dplyr": [
			{
				"version": "1.1.3",
				"path": "dplyr_1.1.3.tar.gz",
				"digest": "abc123",
				"imports": [{"name": "generics", "requirement": ">= 0.1.0"}]
			}
		]
	}`

	idx, err := Parse([]byte(data), "https://cran.example", "4.3", "linux-x86_64", true)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexFormatJSON, idx.Format)

	pkg := idx.Packages[domain.NewInternedString("dplyr")]
	require.Len(t, pkg.Entries, 1)
	assert.Equal(t, "dplyr_1.1.3.tar.gz", pkg.Entries[0].DownloadURL)
	assert.Equal(t, "abc123", pkg.Entries[0].Digest)
	assert.True(t, pkg.Entries[0].IsBinary)
	require.Len(t, pkg.Entries[0].Edges, 1)
	assert.Equal(t, "generics", pkg.Entries[0].Edges[0].Name.String())
}

func TestParse_EmptyIndex(t *testing.T) {
	idx, err := Parse([]byte("   \n\n  "), "https://cran.example", "4.3", "linux-x86_64", false)
	require.NoError(t, err)
	assert.Empty(t, idx.Packages)
}

func TestParse_MalformedVersionErrors(t *testing.T) {
	_, err := Parse([]byte("Package: dplyr\nVersion: not-a-version\n"), "https://cran.example", "4.3", "linux-x86_64", false)
	assert.ErrorIs(t, err, ErrIndexInvalid)
}
