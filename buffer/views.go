// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

import "encoding/binary"

// Slice returns a Buffer sharing this buffer's backing storage. The
// returned view reports capacity=length and max_capacity=length (it
// cannot grow), with its own cursors starting at zero, where index 0
// maps to this buffer's absolute index `from`. Creating a Slice retains
// a reference to the shared storage; Release the slice when done with
// it.
func (b *Buffer) Slice(from, length int64) (*Buffer, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	if err := b.checkIndex(from, length); err != nil {
		return nil, err
	}
	if err := b.Retain(); err != nil {
		return nil, err
	}
	return &Buffer{
		st:       b.st,
		cs:       &cursorState{},
		base:     b.base + from,
		bounded:  true,
		capFixed: length,
		maxFixed: length,
		order:    b.order,
	}, nil
}

// Duplicate returns a Buffer with independent cursors over the same
// backing storage and the same capacity/bound characteristics as this
// view (duplicating a Slice yields another bounded view over the same
// window; duplicating an unbounded root/duplicate yields another
// unbounded view). Cursor positions and marks are copied from this
// buffer at the time of the call; afterward the two evolve
// independently. Duplicate retains the shared storage.
func (b *Buffer) Duplicate() (*Buffer, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	if err := b.Retain(); err != nil {
		return nil, err
	}
	return &Buffer{
		st:   b.st,
		cs:   &cursorState{r: b.cs.r, w: b.cs.w, markR: b.cs.markR, markW: b.cs.markW},
		base: b.base,

		bounded:  b.bounded,
		capFixed: b.capFixed,
		maxFixed: b.maxFixed,
		order:    b.order,
	}, nil
}

// Swapped returns a cached view over this buffer's same storage and
// cursors, but using the opposite byte order for multi-byte accessors.
// Calling Swapped again on the returned view yields the original
// buffer. Swapped does not change the reference count: it is an
// alternate accessor onto the exact same logical buffer, not a new
// independent reference.
func (b *Buffer) Swapped() *Buffer {
	if b.swapped != nil {
		return b.swapped
	}
	other := opposite(b.order)
	sw := &Buffer{
		st:       b.st,
		cs:       b.cs,
		base:     b.base,
		bounded:  b.bounded,
		capFixed: b.capFixed,
		maxFixed: b.maxFixed,
		order:    other,
		swapped:  b,
	}
	b.swapped = sw
	return sw
}

func opposite(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.BigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Copy returns a new, independent Buffer (its own backing storage) with
// a copy of the n bytes starting at absolute index i. Its capacity and
// max_capacity are both n.
func (b *Buffer) Copy(i, n int64) (*Buffer, error) {
	raw, err := b.GetBytes(i, n)
	if err != nil {
		return nil, err
	}
	nb, err := New(n, n, WithByteOrder(b.order))
	if err != nil {
		return nil, err
	}
	if _, err := nb.WriteBytes(raw); err != nil {
		_ = nb.Release()
		return nil, err
	}
	return nb, nil
}
