// Package ipcmap maps byte-range windows of files and shared-memory
// segments into the process address space.
//
// The central type is Region, which owns exactly one OS-level mapping
// created with mmap on POSIX systems or CreateFileMapping/MapViewOfFile
// on Windows. A Region hides the platform's alignment rules: callers
// ask for an arbitrary (offset, size) window and get back an address
// that corresponds exactly to that offset, even though the underlying
// OS mapping starts at the previous allocation-granularity boundary.
//
// Key properties:
//   - Single ownership: a mapping belongs to exactly one Region.
//     Ownership moves via Swap; Region values are never copied.
//   - Deterministic release: Close (or any construction failure)
//     unmaps the view and closes every handle the Region acquired.
//   - Three access modes: ReadOnly, ReadWrite and CopyOnWrite
//     (private mapping, writes never reach the backing resource).
//
// Basic usage:
//
//	f, err := ipcmap.OpenFile("/path/to/data", ipcmap.ReadWrite)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer f.Close()
//
//	r, err := ipcmap.NewRegion(f, ipcmap.ReadWrite,
//	    ipcmap.WithOffset(4096), ipcmap.WithSize(8192))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	copy(r.Bytes(), []byte("hello"))
//	r.FlushAll()
//
// Shared memory works the same way through the SharedMemory resource;
// the Region duplicates the segment's handle where the platform needs
// it, so the Region stays valid after the resource is closed.
package ipcmap
