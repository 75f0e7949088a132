//go:build windows

package ipcmap

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// MapViewOfFileEx (needed for address hints) and GetSystemInfo are not
// wrapped by x/sys/windows, so they are loaded from kernel32 directly.
var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procMapViewOfFileEx  = modkernel32.NewProc("MapViewOfFileEx")
	procGetSystemInfo    = modkernel32.NewProc("GetSystemInfo")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

// Region owns a single mapped view of a mappable resource. The
// OS-level view spans [base-extra, base+size); the caller-visible
// window is [base, base+size).
type Region struct {
	base   uintptr // caller-visible start address, 0 when unmapped
	size   int64   // caller-visible window length, 0 when unknown
	offset int64   // requested offset into the backing resource
	extra  int64   // offset mod allocation granularity

	// mapping is the Region's own duplicate of a shared-memory mapping
	// handle, decoupling its lifetime from the originating resource.
	// 0 for plain files: their intermediate mapping object is closed
	// as soon as the view exists.
	mapping windows.Handle
}

// maxMapLen is the largest mapping length representable as an int on
// this platform.
const maxMapLen = int64(^uint(0) >> 1)

func (r *Region) mapResource(h Handle, mode Mode, offset, size int64, addr uintptr) error {
	var prot, access uint32
	switch mode {
	case ReadOnly:
		prot = windows.PAGE_READONLY
		access = windows.FILE_MAP_READ
	case ReadWrite:
		prot = windows.PAGE_READWRITE
		access = windows.FILE_MAP_WRITE
	case CopyOnWrite:
		prot = windows.PAGE_WRITECOPY
		access = windows.FILE_MAP_COPY
	default:
		return newModeError(mode)
	}

	resource := windows.Handle(h.FD)
	var view windows.Handle

	if h.Shm {
		proc := windows.CurrentProcess()
		var dup windows.Handle
		if err := windows.DuplicateHandle(proc, resource, proc, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
			return newSystemError("DuplicateHandle", err)
		}
		r.mapping = dup
		view = dup
	} else {
		if size == 0 {
			var fi windows.ByHandleFileInformation
			if err := windows.GetFileInformationByHandle(resource, &fi); err != nil {
				return newSystemError("GetFileInformationByHandle", err)
			}
			total := int64(fi.FileSizeHigh)<<32 | int64(fi.FileSizeLow)
			if offset >= total {
				return newSizeError("offset beyond end of resource")
			}
			size = total - offset
		}
		m, err := windows.CreateFileMapping(resource, nil, prot, 0, 0, nil)
		if err != nil {
			return newSystemError("CreateFileMapping", err)
		}
		view = m
	}

	extra := offset % PageSize()
	length := extra + size
	if length < 0 || length > maxMapLen {
		if h.Shm {
			r.releaseHandle()
		} else {
			windows.CloseHandle(view)
		}
		return newSizeError("mapping length overflows address space")
	}

	aligned := offset - extra
	var hint uintptr
	if addr != 0 {
		hint = addr - uintptr(extra)
	}
	// A zero view length maps the whole object; used for shared
	// memory whose extent is left unresolved (size stays 0).
	var viewLen uintptr
	if size != 0 {
		viewLen = uintptr(length)
	}

	base, err := mapViewOfFileEx(view, access, uint32(uint64(aligned)>>32), uint32(aligned), viewLen, hint)
	if !h.Shm {
		// The intermediate mapping object is not needed once the view
		// is established (or has failed).
		windows.CloseHandle(view)
	}
	if err != nil {
		r.releaseHandle()
		return newSystemError("MapViewOfFileEx", err)
	}

	r.base = base + uintptr(extra)
	r.size = size
	r.offset = offset
	r.extra = extra

	// The OS may silently place the view elsewhere instead of
	// failing, so a fixed-address request must be checked explicitly.
	if addr != 0 && base != hint {
		r.Close()
		return newSystemError("MapViewOfFileEx: requested address not honored", nil)
	}
	return nil
}

func (r *Region) flushRange(off, n int64) bool {
	return windows.FlushViewOfFile(r.base+uintptr(off), uintptr(n)) == nil
}

func (r *Region) unmapView() error {
	if err := windows.UnmapViewOfFile(r.base - uintptr(r.extra)); err != nil {
		return newSystemError("UnmapViewOfFile", err)
	}
	return nil
}

func (r *Region) releaseHandle() {
	if r.mapping != 0 {
		windows.CloseHandle(r.mapping)
		r.mapping = 0
	}
}

// advise is advisory-only and Windows has no madvise counterpart.
func (r *Region) advise(advice Advice) bool {
	return advice >= AdviseNormal && advice <= AdviseDontNeed
}

func (r *Region) lockPages() bool {
	if r.size == 0 {
		return false
	}
	return windows.VirtualLock(r.base-uintptr(r.extra), uintptr(r.extra+r.size)) == nil
}

func (r *Region) unlockPages() bool {
	if r.size == 0 {
		return false
	}
	return windows.VirtualUnlock(r.base-uintptr(r.extra), uintptr(r.extra+r.size)) == nil
}

func mapViewOfFileEx(h windows.Handle, access uint32, offHigh, offLow uint32, length uintptr, addr uintptr) (uintptr, error) {
	base, _, errno := procMapViewOfFileEx.Call(
		uintptr(h), uintptr(access), uintptr(offHigh), uintptr(offLow), length, addr)
	if base == 0 {
		return 0, errno
	}
	return base, nil
}

// systemInfo mirrors the kernel32 SYSTEM_INFO layout.
type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// allocationGranularity returns the mapping alignment unit. Windows
// aligns mapping offsets to the allocation granularity (64 KiB on all
// current systems), not the page size.
func allocationGranularity() int64 {
	var info systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&info)))
	return int64(info.AllocationGranularity)
}
