package ipcmap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeTestFile creates a file of n bytes with a deterministic pattern.
func writeTestFile(t *testing.T, n int) (string, []byte) {
	t.Helper()
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "test.dat")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path, data
}

func TestNewRegion(t *testing.T) {
	path, data := writeTestFile(t, 8192)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewRegion(f, ReadOnly, WithSize(4096))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Addr() == 0 {
		t.Fatal("mapped region has zero address")
	}
	if r.Size() != 4096 {
		t.Errorf("size: got %d, want 4096", r.Size())
	}
	if r.Offset() != 0 {
		t.Errorf("offset: got %d, want 0", r.Offset())
	}
	if !bytes.Equal(r.Bytes(), data[:4096]) {
		t.Error("mapped bytes do not match file content")
	}
	if r.Addr()%uintptr(PageSize()) != 0 {
		t.Errorf("address %#x of an aligned-offset mapping is not page aligned", r.Addr())
	}
}

func TestNewRegionSizeResolution(t *testing.T) {
	path, _ := writeTestFile(t, 8192)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// size 0 resolves to "offset through end of file"
	r, err := NewRegion(f, ReadOnly, WithOffset(100))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Size() != 8192-100 {
		t.Errorf("resolved size: got %d, want %d", r.Size(), 8192-100)
	}
	if r.Offset() != 100 {
		t.Errorf("offset: got %d, want 100", r.Offset())
	}
}

func TestNewRegionOffsetPastEnd(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, err = NewRegion(f, ReadOnly, WithOffset(10000))
	if !IsSizeError(err) {
		t.Errorf("expected SizeError, got %v", err)
	}
}

func TestNewRegionInvalidMode(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, err = NewRegion(f, Mode(42))
	if !IsModeError(err) {
		t.Errorf("expected ModeError, got %v", err)
	}
}

func TestNewRegionNegativeArguments(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := NewRegion(f, ReadOnly, WithOffset(-1)); !IsSizeError(err) {
		t.Errorf("negative offset: expected SizeError, got %v", err)
	}
	if _, err := NewRegion(f, ReadOnly, WithSize(-1)); !IsSizeError(err) {
		t.Errorf("negative size: expected SizeError, got %v", err)
	}
}

func TestUnalignedOffset(t *testing.T) {
	page := int(PageSize())
	path, data := writeTestFile(t, 3*page)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// An offset that is not a multiple of the page size: the OS-level
	// mapping starts earlier, but the visible window must match the
	// requested offset exactly.
	offset := int64(page + 123)
	r, err := NewRegion(f, ReadOnly, WithOffset(offset), WithSize(1000))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Offset() != offset {
		t.Errorf("offset: got %d, want %d", r.Offset(), offset)
	}
	if r.Size() != 1000 {
		t.Errorf("size: got %d, want 1000", r.Size())
	}
	if !bytes.Equal(r.Bytes(), data[offset:offset+1000]) {
		t.Error("window content does not correspond to the requested offset")
	}

	extra := uintptr(offset % PageSize())
	if (r.Addr()-extra)%uintptr(PageSize()) != 0 {
		t.Errorf("OS mapping base %#x is not page aligned", r.Addr()-extra)
	}
}

func TestClose(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewRegion(f, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if r.Addr() != 0 {
		t.Error("address should be 0 after close")
	}
	if r.Size() != 0 {
		t.Error("size should be 0 after close")
	}
	if r.Offset() != 0 {
		t.Error("offset should be 0 after close")
	}
	if r.Bytes() != nil {
		t.Error("bytes should be nil after close")
	}

	// Double close is a no-op.
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestSwap(t *testing.T) {
	path, _ := writeTestFile(t, 8192)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	a, err := NewRegion(f, ReadOnly, WithOffset(4096), WithSize(1024))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	addr, size, offset := a.Addr(), a.Size(), a.Offset()

	// Move is a swap with a zero Region.
	b := new(Region)
	b.Swap(a)
	defer b.Close()

	if b.Addr() != addr || b.Size() != size || b.Offset() != offset {
		t.Errorf("destination: got (%#x, %d, %d), want (%#x, %d, %d)",
			b.Addr(), b.Size(), b.Offset(), addr, size, offset)
	}
	if a.Addr() != 0 || a.Size() != 0 || a.Offset() != 0 {
		t.Errorf("source not reset: (%#x, %d, %d)", a.Addr(), a.Size(), a.Offset())
	}

	// Closing the moved-out source must not disturb the destination.
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if b.Bytes() == nil {
		t.Fatal("destination lost its mapping")
	}
	_ = b.Bytes()[0]
}

func TestFlushBounds(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewRegion(f, ReadWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if !r.FlushAll() {
		t.Error("full flush of a mapped region failed")
	}
	if !r.Flush(100, 200) {
		t.Error("in-range flush failed")
	}
	if r.Flush(4096, 0) {
		t.Error("flush at size must fail")
	}
	if r.Flush(5000, 0) {
		t.Error("flush beyond size must fail")
	}
	if r.Flush(0, 5000) {
		t.Error("flush past the end must fail")
	}
	if r.Flush(4000, 1000) {
		t.Error("flush crossing the end must fail")
	}
	if r.Flush(-1, 10) || r.Flush(0, -1) {
		t.Error("negative flush arguments must fail")
	}

	r.Close()
	if r.FlushAll() {
		t.Error("flush on an unmapped region must fail")
	}
}

func TestCopyOnWrite(t *testing.T) {
	path, data := writeTestFile(t, 4096)

	f, err := OpenFile(path, CopyOnWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewRegion(f, CopyOnWrite)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	copy(r.Bytes(), []byte("private change"))
	r.FlushAll()
	r.Close()

	// Writes through a copy-on-write mapping never reach the file.
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("copy-on-write writes leaked into the backing file")
	}
}

func TestAddressHint(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Learn a free address by mapping once and releasing it.
	probe, err := NewRegion(f, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	hint := probe.Addr()
	if err := probe.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewRegion(f, ReadOnly, WithAddr(hint))
	if err != nil {
		t.Skipf("address %#x no longer free: %v", hint, err)
	}
	defer r.Close()

	if r.Addr() != hint {
		t.Errorf("address: got %#x, want %#x", r.Addr(), hint)
	}
}

func TestAdvise(t *testing.T) {
	path, _ := writeTestFile(t, 8192)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewRegion(f, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for _, adv := range []Advice{AdviseNormal, AdviseSequential, AdviseRandom, AdviseWillNeed, AdviseDontNeed} {
		if !r.Advise(adv) {
			t.Errorf("Advise(%s) failed", adv)
		}
	}
	if r.Advise(Advice(42)) {
		t.Error("invalid advice must fail")
	}

	r.Close()
	if r.Advise(AdviseNormal) {
		t.Error("advise on an unmapped region must fail")
	}
}

func TestLockUnlock(t *testing.T) {
	path, _ := writeTestFile(t, 4096)

	f, err := OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := NewRegion(f, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// RLIMIT_MEMLOCK may forbid locking; only the unmapped contract is
	// unconditional.
	if r.Lock() {
		if !r.Unlock() {
			t.Error("unlock of locked pages failed")
		}
	}

	r.Close()
	if r.Lock() || r.Unlock() {
		t.Error("lock/unlock on an unmapped region must fail")
	}
}

func TestPageSize(t *testing.T) {
	p := PageSize()
	if p <= 0 {
		t.Fatalf("page size %d is not positive", p)
	}
	if p&(p-1) != 0 {
		t.Errorf("page size %d is not a power of two", p)
	}
	for i := 0; i < 3; i++ {
		if PageSize() != p {
			t.Fatal("page size changed between calls")
		}
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Fatal("empty version")
	}
}
