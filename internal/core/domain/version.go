package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrVersionEmpty is returned when a version string has no components.
	ErrVersionEmpty = zerr.New("version string is empty")

	// ErrVersionComponentInvalid is returned when a version component is not
	// a non-negative integer.
	ErrVersionComponentInvalid = zerr.New("version component is not a non-negative integer")

	// ErrVersionTooFewComponents is returned when a version has fewer than
	// two numeric components.
	ErrVersionTooFewComponents = zerr.New("version has fewer than two components")
)

// Version is an ordered sequence of non-negative integers, with an optional
// pre-release suffix. Comparison is lexicographic component-wise; missing
// trailing components compare as zero. A pre-release version sorts before
// the corresponding release version.
type Version struct {
	components []int
	pre        string
	hasPre     bool
	raw        string
}

// ParseVersion parses a dot-separated sequence of non-negative integers, with
// an optional "-pre" or ".pre" suffix, where pre is itself dot-separated.
// At least two numeric components are required; missing trailing components
// compare as zero against a version with more of them.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrVersionEmpty
	}

	raw := s
	numeric := s
	pre := ""
	hasPre := false

	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		numeric = s[:idx]
		pre = s[idx+1:]
		hasPre = true
	} else if idx := lastDotPreIndex(s); idx >= 0 {
		numeric = s[:idx]
		pre = s[idx+1:]
		hasPre = true
	}

	parts := strings.Split(numeric, ".")
	components := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, zerr.With(ErrVersionComponentInvalid, "component", p)
		}
		components = append(components, n)
	}
	if len(components) < 2 {
		return Version{}, zerr.With(ErrVersionTooFewComponents, "version", raw)
	}

	return Version{components: components, pre: pre, hasPre: hasPre, raw: raw}, nil
}

// lastDotPreIndex detects a ".pre"-style suffix heuristically: a trailing
// dot-separated group that contains a non-numeric token is treated as a
// pre-release marker (e.g. "1.0.0.9000" has no pre marker; "1.0.0.rc1" does).
func lastDotPreIndex(s string) int {
	parts := strings.Split(s, ".")
	for i := 1; i < len(parts); i++ {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			idx := len(strings.Join(parts[:i], "."))
			return idx
		}
	}
	return -1
}

// MustParseVersion parses s and panics on error. Intended for use with
// compile-time-known literals (builtin tables, tests).
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original literal the version was parsed from.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v is the zero Version value.
func (v Version) IsZero() bool {
	return len(v.components) == 0 && v.raw == ""
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o.
// Numeric components compare left to right, with missing trailing components
// treated as zero. A pre-release version is always less than the
// corresponding release version with the same numeric components; between
// two pre-release versions, the pre suffix compares component-wise the same
// way the numeric components do, falling back to a string compare when a
// component of the suffix is non-numeric.
func (v Version) Compare(o Version) int {
	n := max(len(v.components), len(o.components))
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.components) {
			a = v.components[i]
		}
		if i < len(o.components) {
			b = o.components[i]
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
	}

	if v.hasPre && !o.hasPre {
		return -1
	}
	if !v.hasPre && o.hasPre {
		return 1
	}
	if !v.hasPre && !o.hasPre {
		return 0
	}
	return comparePre(v.pre, o.pre)
}

func comparePre(a, b string) int {
	if a == b {
		return 0
	}
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")
	n := max(len(aParts), len(bParts))

	for i := 0; i < n; i++ {
		var ap, bp string
		if i < len(aParts) {
			ap = aParts[i]
		}
		if i < len(bParts) {
			bp = bParts[i]
		}
		an, aerr := strconv.Atoi(ap)
		bn, berr := strconv.Atoi(bp)
		if aerr == nil && berr == nil {
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
			continue
		}
		if ap == bp {
			continue
		}
		if ap < bp {
			return -1
		}
		return 1
	}
	return 0
}

// LessThan reports whether v sorts strictly before o.
func (v Version) LessThan(o Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o compare equal.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }
