package ports

// SysDepLookup maps an engine-level system-dependency hint to the concrete
// system package names on the current OS. It is purely informational and
// never gates install (§9).
//
//go:generate mockgen -source=sysdep_lookup.go -destination=mocks/mock_sysdep_lookup.go -package=mocks
type SysDepLookup interface {
	Map(depHint, os, osVersion string) ([]string, error)
}
