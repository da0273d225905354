package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.rv.dev/rv/internal/core/domain"
)

func TestDependencyKind_StrongerThan(t *testing.T) {
	assert.True(t, domain.DependencyHard.StrongerThan(domain.DependencySuggests))
	assert.True(t, domain.DependencyLinking.StrongerThan(domain.DependencySoft))
	assert.False(t, domain.DependencyEnhances.StrongerThan(domain.DependencySuggests))
}

func TestDependencyKind_Followed(t *testing.T) {
	assert.True(t, domain.DependencyHard.Followed())
	assert.True(t, domain.DependencySuggests.Followed())
	assert.False(t, domain.DependencyEnhances.Followed())
}

func TestMergeEdges_KeepsStrongestAndIntersects(t *testing.T) {
	gte1 := mustReq(t, ">= 1.0")
	lt2 := mustReq(t, "< 2.0")

	raw := []domain.Edge{
		{Name: domain.NewInternedString("rlang"), Requirement: gte1, Kind: domain.DependencySuggests},
		{Name: domain.NewInternedString("rlang"), Requirement: lt2, Kind: domain.DependencyHard},
	}

	merged := domain.MergeEdges(raw)

	assert.Len(t, merged, 1)
	assert.Equal(t, domain.DependencyHard, merged[0].Kind)
	assert.True(t, merged[0].Requirement.Satisfies(domain.MustParseVersion("1.5.0")))
	assert.False(t, merged[0].Requirement.Satisfies(domain.MustParseVersion("2.0.0")))
}

func TestMergeEdges_PreservesFirstSeenOrder(t *testing.T) {
	raw := []domain.Edge{
		{Name: domain.NewInternedString("b"), Kind: domain.DependencyHard},
		{Name: domain.NewInternedString("a"), Kind: domain.DependencyHard},
	}

	merged := domain.MergeEdges(raw)

	assert.Equal(t, "b", merged[0].Name.String())
	assert.Equal(t, "a", merged[1].Name.String())
}

func mustReq(t *testing.T, s string) domain.VersionRequirement {
	t.Helper()
	req, err := domain.ParseRequirement(s)
	if err != nil {
		t.Fatal(err)
	}
	return req
}
