package domain

import "unique"

// InternedString is a value object that wraps a unique.Handle[string]. It is
// used for package and repository-alias names, which repeat heavily across a
// dependency graph and benefit from cheap identity comparison.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString creates a new InternedString from a string.
func NewInternedString(s string) InternedString {
	return InternedString{h: unique.Make(s)}
}

// NewInternedStrings creates a new InternedString slice from a string slice.
func NewInternedStrings(s []string) []InternedString {
	res := make([]InternedString, len(s))
	for i, v := range s {
		res[i] = NewInternedString(v)
	}
	return res
}

// String returns the underlying string value.
func (is InternedString) String() string {
	return is.h.Value()
}

// Value returns the underlying unique.Handle[string].
func (is InternedString) Value() unique.Handle[string] {
	return is.h
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.h.Value()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}

// PackageName is an opaque, case-sensitive package identifier, unique within
// a resolution.
type PackageName = InternedString
