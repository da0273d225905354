package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.rv.dev/rv/internal/core/domain"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "two components", in: "1.0"},
		{name: "three components", in: "1.1.3"},
		{name: "with dash pre", in: "1.0.0-rc1"},
		{name: "with dot pre", in: "1.0.0.rc1"},
		{name: "empty", in: "", wantErr: true},
		{name: "non-numeric component", in: "1.x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseVersion(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal", a: "1.1.3", b: "1.1.3", want: 0},
		{name: "less by patch", a: "1.1.2", b: "1.1.3", want: -1},
		{name: "greater by minor", a: "1.2.0", b: "1.1.9", want: 1},
		{name: "missing trailing treated as zero", a: "1.1", b: "1.1.0", want: 0},
		{name: "pre sorts before release", a: "1.0.0-rc1", b: "1.0.0", want: -1},
		{name: "release sorts after pre", a: "1.0.0", b: "1.0.0-rc1", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := domain.MustParseVersion(tt.a)
			b := domain.MustParseVersion(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
		})
	}
}

func TestVersion_LessThan(t *testing.T) {
	a := domain.MustParseVersion("0.1.0")
	b := domain.MustParseVersion("0.1.3")
	assert.True(t, a.LessThan(b))
	assert.False(t, b.LessThan(a))
}

func TestVersion_String(t *testing.T) {
	v := domain.MustParseVersion("1.1.3")
	assert.Equal(t, "1.1.3", v.String())
}
