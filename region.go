package ipcmap

import "unsafe"

// RegionOption configures optional construction parameters of a Region.
type RegionOption func(*regionConfig)

type regionConfig struct {
	offset int64
	size   int64
	addr   uintptr
}

// WithOffset sets the byte offset into the backing resource at which
// the mapped window starts. Defaults to 0.
func WithOffset(offset int64) RegionOption {
	return func(c *regionConfig) { c.offset = offset }
}

// WithSize sets the length of the mapped window in bytes. The default
// of 0 means "from offset to the end of the resource".
func WithSize(size int64) RegionOption {
	return func(c *regionConfig) { c.size = size }
}

// WithAddr requests a fixed target address for the mapping. If the OS
// places the mapping anywhere else, construction fails and the view is
// released; there is no retry at a different address.
func WithAddr(addr uintptr) RegionOption {
	return func(c *regionConfig) { c.addr = addr }
}

// NewRegion maps the window [offset, offset+size) of res into the
// process address space. The offset may be arbitrary: the OS-level
// mapping is extended backwards to the previous allocation-granularity
// boundary and the returned Region exposes the address matching offset
// exactly.
//
// Any failure releases every handle and view acquired up to that
// point. The returned error is an *Error with code ModeError,
// SizeError or SystemError.
func NewRegion(res Mappable, mode Mode, opts ...RegionOption) (*Region, error) {
	if !mode.valid() {
		return nil, newModeError(mode)
	}

	var cfg regionConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.offset < 0 {
		return nil, newSizeError("negative offset")
	}
	if cfg.size < 0 {
		return nil, newSizeError("negative size")
	}

	r := new(Region)
	if err := r.mapResource(res.MappingHandle(), mode, cfg.offset, cfg.size, cfg.addr); err != nil {
		return nil, err
	}
	return r, nil
}

// Size returns the caller-visible length of the mapped window. It is 0
// when the Region is unmapped, and also for a Windows shared-memory
// mapping whose full extent the OS does not report.
func (r *Region) Size() int64 {
	return r.size
}

// Addr returns the caller-visible start address of the window, or 0
// when the Region is unmapped.
func (r *Region) Addr() uintptr {
	return r.base
}

// Offset returns the byte offset into the backing resource the window
// was requested at.
func (r *Region) Offset() int64 {
	return r.offset
}

// Bytes returns the mapped window as a byte slice. It is nil when the
// Region is unmapped or when the window's extent is unknown. The slice
// aliases the mapping and must not be used after Close.
func (r *Region) Bytes() []byte {
	if r.base == 0 || r.size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(r.base)), r.size)
}

// Flush synchronously requests write-back of the dirty pages covering
// [mappingOffset, mappingOffset+numBytes) to the backing resource.
// numBytes 0 means "through the end of the window". Out-of-range
// requests return false; Flush never panics.
func (r *Region) Flush(mappingOffset, numBytes int64) bool {
	if r.base == 0 {
		return false
	}
	if mappingOffset < 0 || numBytes < 0 {
		return false
	}
	if mappingOffset >= r.size || mappingOffset+numBytes > r.size {
		return false
	}
	if numBytes == 0 {
		numBytes = r.size - mappingOffset
	}
	return r.flushRange(mappingOffset, numBytes)
}

// FlushAll flushes the whole window.
func (r *Region) FlushAll() bool {
	return r.Flush(0, 0)
}

// Swap exchanges the mappings owned by r and other. Moving a mapping
// is a Swap with a zero Region: the destination takes over the view
// and handles, the source reverts to the unmapped state.
func (r *Region) Swap(other *Region) {
	*r, *other = *other, *r
}

// Advise hints the kernel about the expected access pattern of the
// mapped pages. Returns false on an unmapped Region or when the OS
// rejects the hint.
func (r *Region) Advise(advice Advice) bool {
	if r.base == 0 {
		return false
	}
	return r.advise(advice)
}

// Lock pins the mapped pages in physical memory. Returns false on an
// unmapped Region or on OS failure.
func (r *Region) Lock() bool {
	if r.base == 0 {
		return false
	}
	return r.lockPages()
}

// Unlock releases pages pinned by Lock.
func (r *Region) Unlock() bool {
	if r.base == 0 {
		return false
	}
	return r.unlockPages()
}

// Close flushes the window best-effort, unmaps the OS view, releases
// any handle the Region owns and resets it to the unmapped state. It
// is idempotent and never panics; closing an unmapped Region is a
// no-op. The returned error reports an unmap failure only and can be
// ignored by callers that treat Close as teardown.
func (r *Region) Close() error {
	var err error
	if r.base != 0 {
		if r.size > 0 {
			r.flushRange(0, r.size)
		}
		err = r.unmapView()
	}
	r.releaseHandle()
	*r = Region{}
	return err
}
