package domain

// BuiltinSet is the set of packages bundled with the engine, treated as
// pre-satisfied and never installed.
type BuiltinSet struct {
	versions map[PackageName]Version
}

// NewBuiltinSet builds a BuiltinSet from a name-to-version map.
func NewBuiltinSet(versions map[string]string) (*BuiltinSet, error) {
	set := &BuiltinSet{versions: make(map[PackageName]Version, len(versions))}
	for name, v := range versions {
		parsed, err := ParseVersion(v)
		if err != nil {
			return nil, err
		}
		set.versions[NewInternedString(name)] = parsed
	}
	return set, nil
}

// Satisfies reports whether name is a builtin whose version satisfies req.
func (b *BuiltinSet) Satisfies(name PackageName, req VersionRequirement) (Version, bool) {
	v, ok := b.versions[name]
	if !ok {
		return Version{}, false
	}
	if !req.Satisfies(v) {
		return Version{}, false
	}
	return v, true
}

// Contains reports whether name is in the builtin set, independent of any
// requirement.
func (b *BuiltinSet) Contains(name PackageName) bool {
	_, ok := b.versions[name]
	return ok
}
