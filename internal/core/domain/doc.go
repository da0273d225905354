// Package domain contains the core types of the package-resolution and
// build-planning model: versions and requirements, package descriptors,
// resolved nodes and resolutions, repository indexes, the manifest and
// lockfile shapes, the installed library, and the build plan.
//
// Invariants the types in this package must uphold:
//
//   - Within one Resolution, every PackageName maps to exactly one
//     ResolvedNode.
//   - Every dependency name in a ResolvedNode.Dependencies list is present
//     in the same Resolution (enforced by NewResolution).
//   - A Resolution's topological Order places each node after all of its
//     hard and linking dependencies, except within a recorded cycle group,
//     which installs as one batch.
//   - A ResolvedNode whose Source is SourceRepository names an alias
//     present in the manifest that produced it.
//   - A Resolution is immutable once constructed; the resolver owns every
//     ResolvedNode only until NewResolution returns.
package domain
