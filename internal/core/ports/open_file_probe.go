package ports

// OpenFileHandle names one process holding a package's compiled artifacts
// open in the library directory.
type OpenFileHandle struct {
	PackageName string
	PID         int
	ProcessName string
}

// OpenFileProbe reports which processes currently hold files in the library
// directory open, used as an in-use safety check before removal (§4.6, §9).
//
//go:generate mockgen -source=open_file_probe.go -destination=mocks/mock_open_file_probe.go -package=mocks
type OpenFileProbe interface {
	NamesInUse(libraryDir string) ([]OpenFileHandle, error)
}
