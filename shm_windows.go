//go:build windows

package ipcmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// SharedMemory is a named pagefile-backed mapping object. Regions map
// it through their own duplicate of the handle, so a Region stays
// valid after the SharedMemory is closed.
type SharedMemory struct {
	handle windows.Handle
	name   string
	mode   Mode
	size   int64
}

// CreateSharedMemory creates (or opens, if it already exists) the
// named segment of the given size. The segment lives for as long as
// any handle to it is open; there is no name to unlink afterwards.
func CreateSharedMemory(name string, mode Mode, size int64) (*SharedMemory, error) {
	var prot uint32
	switch mode {
	case ReadOnly:
		prot = windows.PAGE_READONLY
	case ReadWrite:
		prot = windows.PAGE_READWRITE
	case CopyOnWrite:
		prot = windows.PAGE_WRITECOPY
	default:
		return nil, newModeError(mode)
	}

	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, newSystemError("name", err)
	}
	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, prot,
		uint32(uint64(size)>>32), uint32(size), namep)
	if err != nil {
		return nil, newSystemError("CreateFileMapping", err)
	}
	return &SharedMemory{handle: h, name: name, mode: mode, size: size}, nil
}

// OpenSharedMemory opens an existing named segment.
func OpenSharedMemory(name string, mode Mode) (*SharedMemory, error) {
	var access uint32
	switch mode {
	case ReadOnly:
		access = windows.FILE_MAP_READ
	case ReadWrite:
		access = windows.FILE_MAP_WRITE
	case CopyOnWrite:
		access = windows.FILE_MAP_COPY
	default:
		return nil, newModeError(mode)
	}

	namep, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, newSystemError("name", err)
	}
	h, err := openFileMapping(access, namep)
	if err != nil {
		return nil, newSystemError("OpenFileMapping", err)
	}
	return &SharedMemory{handle: h, name: name, mode: mode}, nil
}

// RemoveSharedMemory is a no-op on Windows: a mapping object vanishes
// when its last handle closes and has no unlinkable name. Always
// returns false.
func RemoveSharedMemory(name string) bool {
	return false
}

// MappingHandle returns the segment's native mapping handle.
func (s *SharedMemory) MappingHandle() Handle {
	return Handle{FD: uintptr(s.handle), Shm: true}
}

// Name returns the segment name.
func (s *SharedMemory) Name() string {
	return s.name
}

// Mode returns the access mode the segment was opened with.
func (s *SharedMemory) Mode() Mode {
	return s.mode
}

// Close closes the segment handle. Regions mapped from it stay valid.
func (s *SharedMemory) Close() error {
	if s.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(s.handle)
	s.handle = 0
	if err != nil {
		return newSystemError("CloseHandle", err)
	}
	return nil
}

func openFileMapping(access uint32, name *uint16) (windows.Handle, error) {
	h, _, errno := procOpenFileMappingW.Call(
		uintptr(access), 0, uintptr(unsafe.Pointer(name)))
	if h == 0 {
		return 0, errno
	}
	return windows.Handle(h), nil
}
