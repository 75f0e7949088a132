package ipcmap

// Mode selects the access mode of a mapping or mappable resource.
type Mode int

const (
	// ReadOnly maps the resource shared and read-only.
	ReadOnly Mode = iota

	// ReadWrite maps the resource shared with read and write access.
	// Writes are visible to other mappers and, after a flush, to the
	// backing storage.
	ReadWrite

	// CopyOnWrite maps the resource privately. Writes create
	// process-local page copies that are never written back.
	CopyOnWrite
)

func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case CopyOnWrite:
		return "copy-on-write"
	default:
		return "invalid"
	}
}

func (m Mode) valid() bool {
	return m == ReadOnly || m == ReadWrite || m == CopyOnWrite
}

// Advice hints the kernel about the expected access pattern of a
// mapped region. Advisory only; Windows treats all values as no-ops.
type Advice int

const (
	// AdviseNormal resets to the default access pattern.
	AdviseNormal Advice = iota

	// AdviseSequential hints that pages will be accessed in order.
	AdviseSequential

	// AdviseRandom hints that pages will be accessed randomly.
	AdviseRandom

	// AdviseWillNeed hints that pages will be needed soon.
	AdviseWillNeed

	// AdviseDontNeed hints that pages will not be needed soon.
	AdviseDontNeed
)

func (a Advice) String() string {
	switch a {
	case AdviseNormal:
		return "normal"
	case AdviseSequential:
		return "sequential"
	case AdviseRandom:
		return "random"
	case AdviseWillNeed:
		return "willneed"
	case AdviseDontNeed:
		return "dontneed"
	default:
		return "invalid"
	}
}
