package domain

// SummaryEntry is one row of the "summary" command's per-package report:
// what the manifest resolved to, and whether it is actually installed.
type SummaryEntry struct {
	Name    PackageName
	Version Version
	Source  SourceKind

	// Origin names the repository alias, git/URL remote, or local path the
	// package resolved from, whichever applies to Source.
	Origin string

	Installed bool
}
