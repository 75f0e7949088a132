package ipcmap

import "os"

// File is a plain-file mappable resource.
type File struct {
	f    *os.File
	mode Mode
}

// OpenFile opens path as a mappable resource. ReadWrite opens the file
// for reading and writing; ReadOnly and CopyOnWrite need read access
// only, since copy-on-write pages never reach the file.
func OpenFile(path string, mode Mode) (*File, error) {
	var flag int
	switch mode {
	case ReadOnly, CopyOnWrite:
		flag = os.O_RDONLY
	case ReadWrite:
		flag = os.O_RDWR
	default:
		return nil, newModeError(mode)
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, newSystemError("open", err)
	}
	return &File{f: f, mode: mode}, nil
}

// MappingHandle returns the file's native mapping handle.
func (f *File) MappingHandle() Handle {
	return Handle{FD: f.f.Fd()}
}

// Path returns the path the file was opened with.
func (f *File) Path() string {
	return f.f.Name()
}

// Mode returns the access mode the file was opened with.
func (f *File) Mode() Mode {
	return f.mode
}

// Close closes the underlying file. Regions mapped from it stay valid:
// a mapping survives its descriptor on every supported platform.
func (f *File) Close() error {
	return f.f.Close()
}
