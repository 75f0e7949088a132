package ipcmap

// Handle is the native mapping handle of a mappable resource: a file
// descriptor on POSIX systems, an OS handle on Windows. Shm marks
// handles that refer to a shared-memory segment rather than a plain
// file; Windows duplicates those so a Region outlives the resource
// object that produced it.
type Handle struct {
	FD  uintptr
	Shm bool
}

// Mappable is any resource a Region can be constructed over. On POSIX
// systems the handle must additionally support seeking when the Region
// resolves a zero size to "offset to end of resource".
type Mappable interface {
	MappingHandle() Handle
}
