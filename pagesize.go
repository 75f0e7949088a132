package ipcmap

import "sync"

var (
	pageSizeOnce sync.Once
	pageSize     int64
)

// PageSize returns the OS allocation granularity: the minimum
// alignment unit for mapping start offsets. The value is queried once
// on first use and is constant for the rest of the process lifetime,
// so unsynchronized concurrent reads are safe.
func PageSize() int64 {
	pageSizeOnce.Do(func() {
		pageSize = allocationGranularity()
	})
	return pageSize
}
