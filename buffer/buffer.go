// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package buffer implements the dual-cursor, reference-counted,
// dynamically resizable byte container used throughout the pipeline
// core: Buffer.
//
// A Buffer tracks two monotonic cursors — a reader index and a writer
// index — over a backing array whose capacity grows on demand up to a
// configured max_capacity. Content is only accessible while the buffer
// is "live" (ref_count > 0); Release drives ref_count to zero and any
// further content access returns ErrReleased. Slice and Duplicate return
// zero-copy views over the same backing storage; a byte written through
// any view is visible through every other view sharing that storage.
package buffer

import (
	"encoding/binary"

	"code.hybscloud.com/netcore/internal/alloc"
)

// storage is the ref-counted backing array shared by a Buffer and every
// Slice/Duplicate/Swapped view derived from it.
type storage struct {
	data     []byte
	max      int64
	alloc    alloc.Allocator
	refCount int32 // atomic
}

// cursorState holds the mutable reader/writer cursors and mark snapshots
// for one logical view. A Swapped endian view shares its source's
// cursorState pointer (same cursors, different byte order); Slice and
// Duplicate each get their own.
type cursorState struct {
	r, w   int64
	markR  int64
	markW  int64
}

// Buffer is a contiguous byte container with a reader and writer cursor,
// a capacity bound, and reference-counted shared backing storage. See
// the package doc for the sharing rules between Slice/Duplicate/Swapped
// views.
type Buffer struct {
	st   *storage
	cs   *cursorState
	base int64 // absolute offset into st.data for index 0 of this view

	// bounded is true for Slice views (and Duplicates thereof): their
	// capacity and max_capacity are fixed to capFixed and cannot grow.
	bounded  bool
	capFixed int64
	maxFixed int64

	order   binary.ByteOrder
	swapped *Buffer // cached singleton, lazily created by Swapped
}

func bigEndian() binary.ByteOrder { return binary.BigEndian }

// New returns a live Buffer with the given initial capacity and
// max_capacity, allocated via opts' allocator (internal/alloc.Default if
// none is supplied).
func New(initialCapacity, maxCapacity int64, opts ...Option) (*Buffer, error) {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	if initialCapacity < 0 || maxCapacity < 0 || initialCapacity > maxCapacity {
		return nil, ErrCapacityExceeded
	}
	data, err := o.allocator.NewBytes(initialCapacity, maxCapacity)
	if err != nil {
		return nil, err
	}
	st := &storage{data: data, max: maxCapacity, alloc: o.allocator, refCount: 1}
	return &Buffer{
		st:    st,
		cs:    &cursorState{},
		order: o.order,
	}, nil
}

// ReaderIndex returns R, the next byte to be consumed.
func (b *Buffer) ReaderIndex() int64 { return b.cs.r }

// WriterIndex returns W, the next free byte to be produced.
func (b *Buffer) WriterIndex() int64 { return b.cs.w }

// Capacity returns C, the current backing length visible to this view.
func (b *Buffer) Capacity() int64 {
	if b.bounded {
		return b.capFixed
	}
	return int64(len(b.st.data)) - b.base
}

// MaxCapacity returns M, the upper bound this view may grow C to.
func (b *Buffer) MaxCapacity() int64 {
	if b.bounded {
		return b.maxFixed
	}
	return b.st.max
}

// ReadableBytes returns W-R.
func (b *Buffer) ReadableBytes() int64 { return b.cs.w - b.cs.r }

// WritableBytes returns C-W.
func (b *Buffer) WritableBytes() int64 { return b.Capacity() - b.cs.w }

// MaxWritableBytes returns M-W.
func (b *Buffer) MaxWritableBytes() int64 { return b.MaxCapacity() - b.cs.w }

// RefCount returns the current reference count. Inspecting RefCount is
// permitted even on a released buffer.
func (b *Buffer) RefCount() int32 { return loadRefCount(b.st) }

func (b *Buffer) checkAlive() error {
	if loadRefCount(b.st) <= 0 {
		return ErrReleased
	}
	return nil
}

func (b *Buffer) checkIndex(i, n int64) error {
	if i < 0 || n < 0 || i+n > b.Capacity() {
		return ErrIndexOutOfRange
	}
	return nil
}

// MarkReader snapshots the current reader index.
func (b *Buffer) MarkReader() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	b.cs.markR = b.cs.r
	return nil
}

// MarkWriter snapshots the current writer index.
func (b *Buffer) MarkWriter() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	b.cs.markW = b.cs.w
	return nil
}

// ResetReader restores R from the last MarkReader snapshot. It fails if
// the snapshot is no longer valid (greater than the current writer
// index), which can happen after Clear moved W below the mark.
func (b *Buffer) ResetReader() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if b.cs.markR > b.cs.w {
		return ErrIndexOutOfRange
	}
	b.cs.r = b.cs.markR
	return nil
}

// ResetWriter restores W from the last MarkWriter snapshot.
func (b *Buffer) ResetWriter() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if b.cs.markW < b.cs.r {
		return ErrIndexOutOfRange
	}
	b.cs.w = b.cs.markW
	return nil
}

// Clear resets R and W to zero without changing capacity.
func (b *Buffer) Clear() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	b.cs.r = 0
	b.cs.w = 0
	return nil
}

// Skip advances R by n without returning the skipped bytes.
func (b *Buffer) Skip(n int64) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if n < 0 || n > b.ReadableBytes() {
		return ErrIndexOutOfRange
	}
	b.cs.r += n
	return nil
}

// adjustMarkers implements a one-way marker-adjust formula: each marked
// index becomes max(0, m-d), clamped so it never exceeds the post-shift
// writer index. See DESIGN.md for why this is one-way rather than a
// double decrement.
func adjustMarkers(cs *cursorState, d, newW int64) {
	cs.markR = clampMarker(cs.markR, d, newW)
	cs.markW = clampMarker(cs.markW, d, newW)
}

func clampMarker(m, d, newW int64) int64 {
	m -= d
	if m < 0 {
		m = 0
	}
	if m > newW {
		m = newW
	}
	return m
}

// DiscardReadBytes compacts the buffer: bytes in [R,W) move to [0,W-R),
// W becomes W-R, and R becomes 0. Marks are adjusted per adjustMarkers.
func (b *Buffer) DiscardReadBytes() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	d := b.cs.r
	if d == 0 {
		return nil
	}
	newW := b.cs.w - d
	start := b.base + d
	copy(b.st.data[b.base:b.base+newW], b.st.data[start:start+newW])
	adjustMarkers(b.cs, d, newW)
	b.cs.r = 0
	b.cs.w = newW
	return nil
}

// DiscardSomeReadBytes compacts only if R >= C/2 (amortizing compaction
// cost for readers that consume small chunks but write larger ones);
// otherwise it is a no-op.
func (b *Buffer) DiscardSomeReadBytes() error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if b.cs.r < b.Capacity()/2 {
		return nil
	}
	return b.DiscardReadBytes()
}

// EnsureWritable grows the buffer, if needed, so that at least n more
// bytes can be written without exceeding max_capacity. It fails with
// ErrCapacityExceeded, without mutating state, when n exceeds the
// remaining max-writable room.
func (b *Buffer) EnsureWritable(n int64) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if n < 0 {
		return ErrIndexOutOfRange
	}
	if b.WritableBytes() >= n {
		return nil
	}
	if n > b.MaxWritableBytes() {
		return ErrCapacityExceeded
	}
	return b.grow(b.cs.w + n)
}

// EnsureWritableStatus reports the four-way outcome of the force
// variant of EnsureWritable.
type EnsureWritableStatus int

const (
	// StatusUnchanged means writable bytes already satisfied n; no mutation.
	StatusUnchanged EnsureWritableStatus = iota
	// StatusInsufficientAtMax means n could not be satisfied even after
	// growing to max_capacity; the buffer is left at max_capacity.
	StatusInsufficientAtMax
	// StatusGrew means the buffer grew and n is now satisfied, while
	// remaining below max_capacity.
	StatusGrew
	// StatusForcedToMax means the buffer grew all the way to
	// max_capacity to satisfy as much of n as possible.
	StatusForcedToMax
)

// EnsureWritableForce implements the force variant: when n cannot be
// satisfied within max_capacity, it grows to max_capacity anyway
// (status 3) instead of failing, unless capacity is already pinned at
// max_capacity, in which case nothing can grow and it reports status 1
// without mutating anything. Status 2 and 3 both grow; status 0 and 1
// never do.
func (b *Buffer) EnsureWritableForce(n int64) (EnsureWritableStatus, error) {
	if err := b.checkAlive(); err != nil {
		return StatusUnchanged, err
	}
	if n < 0 {
		return StatusUnchanged, ErrIndexOutOfRange
	}
	if b.WritableBytes() >= n {
		return StatusUnchanged, nil
	}
	maxW := b.MaxWritableBytes()
	if n > maxW {
		if b.Capacity() >= b.MaxCapacity() {
			return StatusInsufficientAtMax, nil
		}
		if err := b.grow(b.MaxCapacity()); err != nil {
			return StatusUnchanged, err
		}
		return StatusForcedToMax, nil
	}
	if err := b.grow(b.cs.w + n); err != nil {
		return StatusUnchanged, err
	}
	if b.Capacity() == b.MaxCapacity() {
		return StatusForcedToMax, nil
	}
	return StatusGrew, nil
}

func (b *Buffer) grow(minRequired int64) error {
	if b.bounded {
		// A bounded (Slice) view's max equals its capacity, so
		// EnsureWritable never reaches grow() for it: the
		// writable-bytes/max-writable-bytes checks above already
		// return ErrCapacityExceeded first. Guard kept for safety.
		return ErrCapacityExceeded
	}
	newCap, err := b.st.alloc.CalculateNewCapacity(b.base+minRequired, b.st.max)
	if err != nil {
		return ErrCapacityExceeded
	}
	newData, err := b.st.alloc.NewBytes(newCap, b.st.max)
	if err != nil {
		return err
	}
	copy(newData, b.st.data)
	b.st.data = newData
	return nil
}
