package commands

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
)

func fixtureResolution(t *testing.T) *domain.Resolution {
	t.Helper()

	v1, err := domain.ParseVersion("1.2.0")
	require.NoError(t, err)
	v2, err := domain.ParseVersion("0.4.1")
	require.NoError(t, err)

	rlang := domain.NewInternedString("rlang")
	cli := domain.NewInternedString("cli")

	nodes := map[domain.PackageName]domain.ResolvedNode{
		rlang: {
			Name: rlang, Version: v1, Source: domain.SourceRepository,
			Repository: &domain.RepositorySourceInfo{Alias: "cran", URL: "https://cran.r-project.org"},
		},
		cli: {
			Name: cli, Version: v2, Source: domain.SourceRepository,
			Repository:   &domain.RepositorySourceInfo{Alias: "cran", URL: "https://cran.r-project.org"},
			Dependencies: []domain.PackageName{rlang},
		},
	}

	res, err := domain.NewResolution(nodes, []domain.PackageName{rlang, cli}, nil)
	require.NoError(t, err)
	return res
}

func TestRenderTree_JSON(t *testing.T) {
	resolution := fixtureResolution(t)

	cmd := &cobra.Command{}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	require.NoError(t, renderTree(cmd, resolution, true))

	g := goldie.New(t)
	g.Assert(t, "tree_json", buf.Bytes())
}
