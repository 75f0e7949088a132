//go:build unix

package ipcmap

import (
	"io"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region owns a single mmap view of a mappable resource. The OS-level
// mapping spans [base-extra, base+size); the caller-visible window is
// [base, base+size).
type Region struct {
	base   uintptr // caller-visible start address, 0 when unmapped
	size   int64   // caller-visible window length
	offset int64   // requested offset into the backing resource
	extra  int64   // offset mod allocation granularity
}

// maxMapLen is the largest mapping length representable as an int on
// this platform.
const maxMapLen = int64(^uint(0) >> 1)

// mapResource establishes the OS mapping. Size 0 is resolved by
// seeking the descriptor to its end, matching the POSIX collaborator
// contract.
func (r *Region) mapResource(h Handle, mode Mode, offset, size int64, addr uintptr) error {
	fd := int(h.FD)

	if size == 0 {
		end, err := unix.Seek(fd, 0, io.SeekEnd)
		if err != nil {
			return newSystemError("lseek", err)
		}
		if offset >= end {
			return newSizeError("offset beyond end of resource")
		}
		size = end - offset
	}

	var prot, flags int
	switch mode {
	case ReadOnly:
		prot = unix.PROT_READ
		flags = unix.MAP_SHARED
	case ReadWrite:
		prot = unix.PROT_READ | unix.PROT_WRITE
		flags = unix.MAP_SHARED
	case CopyOnWrite:
		prot = unix.PROT_READ | unix.PROT_WRITE
		flags = unix.MAP_PRIVATE
	default:
		return newModeError(mode)
	}

	extra := offset % PageSize()
	length := extra + size
	if length < 0 || length > maxMapLen {
		return newSizeError("mapping length overflows address space")
	}

	var hint unsafe.Pointer
	if addr != 0 {
		hint = unsafe.Pointer(addr - uintptr(extra))
	}

	p, err := unix.MmapPtr(fd, offset-extra, hint, uintptr(length), prot, flags)
	if err != nil {
		return newSystemError("mmap", err)
	}

	r.base = uintptr(p) + uintptr(extra)
	r.size = size
	r.offset = offset
	r.extra = extra

	// The kernel may silently place the mapping elsewhere instead of
	// failing, so a fixed-address request must be checked explicitly.
	if addr != 0 && uintptr(p) != addr-uintptr(extra) {
		r.Close()
		return newSystemError("mmap: requested address not honored", nil)
	}
	return nil
}

// osMapping returns the full OS-level mapping, including the alignment
// correction that precedes the caller-visible window.
func (r *Region) osMapping() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(r.base-uintptr(r.extra))), r.extra+r.size)
}

// flushRange msyncs the pages covering [off, off+n) of the window.
// msync requires a page-aligned start, so the range is widened to the
// previous page boundary.
func (r *Region) flushRange(off, n int64) bool {
	pad := (r.extra + off) % PageSize()
	start := r.base + uintptr(off) - uintptr(pad)
	b := unsafe.Slice((*byte)(unsafe.Pointer(start)), pad+n)
	return unix.Msync(b, unix.MS_SYNC) == nil
}

func (r *Region) unmapView() error {
	err := unix.MunmapPtr(unsafe.Pointer(r.base-uintptr(r.extra)), uintptr(r.extra+r.size))
	if err != nil {
		return newSystemError("munmap", err)
	}
	return nil
}

// releaseHandle is a no-op: the POSIX mapping survives independently
// of the descriptor, so nothing is duplicated at construction.
func (r *Region) releaseHandle() {}

func (r *Region) advise(advice Advice) bool {
	var adv int
	switch advice {
	case AdviseNormal:
		adv = unix.MADV_NORMAL
	case AdviseSequential:
		adv = unix.MADV_SEQUENTIAL
	case AdviseRandom:
		adv = unix.MADV_RANDOM
	case AdviseWillNeed:
		adv = unix.MADV_WILLNEED
	case AdviseDontNeed:
		adv = unix.MADV_DONTNEED
	default:
		return false
	}
	return unix.Madvise(r.osMapping(), adv) == nil
}

func (r *Region) lockPages() bool {
	return unix.Mlock(r.osMapping()) == nil
}

func (r *Region) unlockPages() bool {
	return unix.Munlock(r.osMapping()) == nil
}

// allocationGranularity returns the mapping alignment unit. On POSIX
// systems this is the page size.
func allocationGranularity() int64 {
	return int64(syscall.Getpagesize())
}
