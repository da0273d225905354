package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
)

func TestLocalHandler_DescribeOnlyAndStage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DESCRIPTION"), []byte("Package: mypkg\nVersion: 0.0.1\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "R"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "R", "mypkg.R"), []byte("f <- function() 1"), 0o644))

	h := NewLocalHandler()
	node := domain.ResolvedNode{Name: domain.NewInternedString("mypkg"), Local: &domain.LocalSourceInfo{Path: dir}}

	desc, err := h.DescribeOnly(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, "mypkg", desc.Name.String())

	staged, err := h.Stage(context.Background(), node)
	require.NoError(t, err)
	assert.NotEqual(t, dir, staged.Path)

	data, err := os.ReadFile(filepath.Join(staged.Path, "R", "mypkg.R"))
	require.NoError(t, err)
	assert.Equal(t, "f <- function() 1", string(data))
}

func TestLocalHandler_MissingSourceInfoErrors(t *testing.T) {
	h := NewLocalHandler()
	_, err := h.Stage(context.Background(), domain.ResolvedNode{})
	assert.Error(t, err)
}
