// Package build holds build-time information, overwritten by linker flags.
package build

// Version is the application version.
var Version = "dev"

// Commit is the VCS commit the binary was built from.
var Commit = "unknown"

// Date is the build timestamp.
var Date = "unknown"
