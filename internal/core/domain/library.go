package domain

// InstalledMeta is the sidecar written into a staged package tree before
// promotion and read back by LibraryStore.Current, since a plain source
// tree carries no record of which source kind or fingerprint it was
// installed from.
type InstalledMeta struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Source      SourceKind `json:"source"`
	Fingerprint string `json:"fingerprint"`
}

// LibraryEntry is a single installed package in the project library.
type LibraryEntry struct {
	Name        PackageName
	Version     Version
	Fingerprint string
	Source      SourceKind
}

// Library is the current on-disk set of installed packages, keyed by name.
type Library struct {
	entries map[PackageName]LibraryEntry
}

// NewLibrary builds a Library from a set of entries.
func NewLibrary(entries []LibraryEntry) *Library {
	lib := &Library{entries: make(map[PackageName]LibraryEntry, len(entries))}
	for _, e := range entries {
		lib.entries[e.Name] = e
	}
	return lib
}

// Entry returns the LibraryEntry for name and whether it is installed.
func (l *Library) Entry(name PackageName) (LibraryEntry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Names returns every installed package name.
func (l *Library) Names() []PackageName {
	names := make([]PackageName, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	return names
}

// Len returns the number of installed packages.
func (l *Library) Len() int {
	return len(l.entries)
}
