//go:build linux

package ipcmap

import (
	"os"
	"path/filepath"
)

// shmDir is where POSIX shared memory objects live on Linux.
const shmDir = "/dev/shm"

// SharedMemory is a named shared-memory segment, backed by a tmpfs
// file under /dev/shm in the manner of shm_open.
type SharedMemory struct {
	f    *os.File
	name string
	mode Mode
}

// CreateSharedMemory creates (or opens, if it already exists) the
// named segment and sizes it to size bytes. The segment persists until
// RemoveSharedMemory unlinks it.
func CreateSharedMemory(name string, mode Mode, size int64) (*SharedMemory, error) {
	if !mode.valid() {
		return nil, newModeError(mode)
	}

	f, err := os.OpenFile(filepath.Join(shmDir, name), os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, newSystemError("open", err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, newSystemError("ftruncate", err)
	}
	return &SharedMemory{f: f, name: name, mode: mode}, nil
}

// OpenSharedMemory opens an existing named segment.
func OpenSharedMemory(name string, mode Mode) (*SharedMemory, error) {
	var flag int
	switch mode {
	case ReadOnly, CopyOnWrite:
		flag = os.O_RDONLY
	case ReadWrite:
		flag = os.O_RDWR
	default:
		return nil, newModeError(mode)
	}

	f, err := os.OpenFile(filepath.Join(shmDir, name), flag, 0)
	if err != nil {
		return nil, newSystemError("open", err)
	}
	return &SharedMemory{f: f, name: name, mode: mode}, nil
}

// RemoveSharedMemory unlinks the named segment. Existing mappings and
// open handles keep working until released. Returns true if the name
// was removed.
func RemoveSharedMemory(name string) bool {
	return os.Remove(filepath.Join(shmDir, name)) == nil
}

// MappingHandle returns the segment's native mapping handle.
func (s *SharedMemory) MappingHandle() Handle {
	return Handle{FD: s.f.Fd(), Shm: true}
}

// Name returns the segment name.
func (s *SharedMemory) Name() string {
	return s.name
}

// Mode returns the access mode the segment was opened with.
func (s *SharedMemory) Mode() Mode {
	return s.mode
}

// Truncate resizes the segment.
func (s *SharedMemory) Truncate(size int64) error {
	if err := s.f.Truncate(size); err != nil {
		return newSystemError("ftruncate", err)
	}
	return nil
}

// Close closes the segment handle. Regions mapped from it stay valid.
func (s *SharedMemory) Close() error {
	return s.f.Close()
}
