package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
)

const sampleDescription = `Package: dplyr
Version: 1.1.3
Imports: generics (>= 0.1.0), rlang
Suggests: knitr
SystemRequirements: libssl-dev, zlib1g-dev
Remotes: tidyverse/glue@v1.6.0
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(sampleDescription))
	require.NoError(t, err)

	assert.Equal(t, "dplyr", d.Name.String())
	assert.Equal(t, "1.1.3", d.Version.String())
	assert.ElementsMatch(t, []string{"libssl-dev", "zlib1g-dev"}, d.SystemLibraryHints)

	require.Len(t, d.Remotes, 1)
	assert.Equal(t, "glue", d.Remotes[0].DependencyName.String())
	assert.Equal(t, domain.GitRefCommit, d.Remotes[0].Ref.Kind)
	assert.Equal(t, "v1.6.0", d.Remotes[0].Ref.Value)

	var names []string
	for _, e := range d.Edges {
		names = append(names, e.Name.String())
	}
	assert.ElementsMatch(t, []string{"generics", "rlang", "knitr"}, names)
}

func TestParse_MissingPackageFieldErrors(t *testing.T) {
	_, err := Parse([]byte("Version: 1.0.0\n"))
	assert.ErrorIs(t, err, ErrDescriptionInvalid)
}

func TestParse_MissingVersionFieldErrors(t *testing.T) {
	_, err := Parse([]byte("Package: dplyr\n"))
	assert.Error(t, err)
}

func TestParse_NoRemotesIsNil(t *testing.T) {
	d, err := Parse([]byte("Package: generics\nVersion: 0.1.3\n"))
	require.NoError(t, err)
	assert.Nil(t, d.Remotes)
}
