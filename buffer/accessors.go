// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffer

// Byte accessors -------------------------------------------------------

func (b *Buffer) GetByte(i int64) (byte, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i, 1); err != nil {
		return 0, err
	}
	return b.st.data[b.base+i], nil
}

func (b *Buffer) SetByte(i int64, v byte) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, 1); err != nil {
		return err
	}
	b.st.data[b.base+i] = v
	return nil
}

func (b *Buffer) ReadByte() (byte, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if b.ReadableBytes() < 1 {
		return 0, ErrIndexOutOfRange
	}
	v := b.st.data[b.base+b.cs.r]
	b.cs.r++
	return v, nil
}

func (b *Buffer) WriteByte(v byte) error {
	if err := b.EnsureWritable(1); err != nil {
		return err
	}
	b.st.data[b.base+b.cs.w] = v
	b.cs.w++
	return nil
}

// GetBytes copies n bytes starting at i into a new slice.
func (b *Buffer) GetBytes(i, n int64) ([]byte, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	if err := b.checkIndex(i, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.st.data[b.base+i:b.base+i+n])
	return out, nil
}

// SetBytes writes p at i without moving W.
func (b *Buffer) SetBytes(i int64, p []byte) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, int64(len(p))); err != nil {
		return err
	}
	copy(b.st.data[b.base+i:b.base+i+int64(len(p))], p)
	return nil
}

// ReadBytes reads n bytes from R, advancing R.
func (b *Buffer) ReadBytes(n int64) ([]byte, error) {
	if err := b.checkAlive(); err != nil {
		return nil, err
	}
	if n < 0 || n > b.ReadableBytes() {
		return nil, ErrIndexOutOfRange
	}
	out := make([]byte, n)
	copy(out, b.st.data[b.base+b.cs.r:b.base+b.cs.r+n])
	b.cs.r += n
	return out, nil
}

// WriteBytes writes p at W, advancing W, growing as needed.
func (b *Buffer) WriteBytes(p []byte) (int, error) {
	if err := b.EnsureWritable(int64(len(p))); err != nil {
		return 0, err
	}
	copy(b.st.data[b.base+b.cs.w:], p)
	b.cs.w += int64(len(p))
	return len(p), nil
}

// Fixed-width integer accessors -----------------------------------------

func (b *Buffer) GetUint16(i int64) (uint16, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i, 2); err != nil {
		return 0, err
	}
	return b.order.Uint16(b.st.data[b.base+i:]), nil
}

func (b *Buffer) SetUint16(i int64, v uint16) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, 2); err != nil {
		return err
	}
	b.order.PutUint16(b.st.data[b.base+i:], v)
	return nil
}

func (b *Buffer) ReadUint16() (uint16, error) {
	if b.ReadableBytes() < 2 {
		if err := b.checkAlive(); err != nil {
			return 0, err
		}
		return 0, ErrIndexOutOfRange
	}
	v, err := b.GetUint16(b.cs.r)
	if err != nil {
		return 0, err
	}
	b.cs.r += 2
	return v, nil
}

func (b *Buffer) WriteUint16(v uint16) error {
	if err := b.EnsureWritable(2); err != nil {
		return err
	}
	b.order.PutUint16(b.st.data[b.base+b.cs.w:], v)
	b.cs.w += 2
	return nil
}

func (b *Buffer) GetInt16(i int64) (int16, error) {
	v, err := b.GetUint16(i)
	return int16(v), err
}

func (b *Buffer) SetInt16(i int64, v int16) error { return b.SetUint16(i, uint16(v)) }

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

func (b *Buffer) WriteInt16(v int16) error { return b.WriteUint16(uint16(v)) }

func (b *Buffer) GetUint32(i int64) (uint32, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i, 4); err != nil {
		return 0, err
	}
	return b.order.Uint32(b.st.data[b.base+i:]), nil
}

func (b *Buffer) SetUint32(i int64, v uint32) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, 4); err != nil {
		return err
	}
	b.order.PutUint32(b.st.data[b.base+i:], v)
	return nil
}

func (b *Buffer) ReadUint32() (uint32, error) {
	if b.ReadableBytes() < 4 {
		if err := b.checkAlive(); err != nil {
			return 0, err
		}
		return 0, ErrIndexOutOfRange
	}
	v, err := b.GetUint32(b.cs.r)
	if err != nil {
		return 0, err
	}
	b.cs.r += 4
	return v, nil
}

func (b *Buffer) WriteUint32(v uint32) error {
	if err := b.EnsureWritable(4); err != nil {
		return err
	}
	b.order.PutUint32(b.st.data[b.base+b.cs.w:], v)
	b.cs.w += 4
	return nil
}

func (b *Buffer) GetInt32(i int64) (int32, error) {
	v, err := b.GetUint32(i)
	return int32(v), err
}

func (b *Buffer) SetInt32(i int64, v int32) error { return b.SetUint32(i, uint32(v)) }

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Buffer) WriteInt32(v int32) error { return b.WriteUint32(uint32(v)) }

func (b *Buffer) GetUint64(i int64) (uint64, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i, 8); err != nil {
		return 0, err
	}
	return b.order.Uint64(b.st.data[b.base+i:]), nil
}

func (b *Buffer) SetUint64(i int64, v uint64) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, 8); err != nil {
		return err
	}
	b.order.PutUint64(b.st.data[b.base+i:], v)
	return nil
}

func (b *Buffer) ReadUint64() (uint64, error) {
	if b.ReadableBytes() < 8 {
		if err := b.checkAlive(); err != nil {
			return 0, err
		}
		return 0, ErrIndexOutOfRange
	}
	v, err := b.GetUint64(b.cs.r)
	if err != nil {
		return 0, err
	}
	b.cs.r += 8
	return v, nil
}

func (b *Buffer) WriteUint64(v uint64) error {
	if err := b.EnsureWritable(8); err != nil {
		return err
	}
	b.order.PutUint64(b.st.data[b.base+b.cs.w:], v)
	b.cs.w += 8
	return nil
}

func (b *Buffer) GetInt64(i int64) (int64, error) {
	v, err := b.GetUint64(i)
	return int64(v), err
}

func (b *Buffer) SetInt64(i int64, v int64) error { return b.SetUint64(i, uint64(v)) }

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Buffer) WriteInt64(v int64) error { return b.WriteUint64(uint64(v)) }

// 24-bit ("medium") accessors --------------------------------------------
//
// GetUint24 returns the value in [0, 2^24); GetInt24 sign-extends from
// bit 23.

func (b *Buffer) GetUint24(i int64) (uint32, error) {
	if err := b.checkAlive(); err != nil {
		return 0, err
	}
	if err := b.checkIndex(i, 3); err != nil {
		return 0, err
	}
	d := b.st.data[b.base+i : b.base+i+3]
	if b.order == bigEndian() {
		return uint32(d[0])<<16 | uint32(d[1])<<8 | uint32(d[2]), nil
	}
	return uint32(d[2])<<16 | uint32(d[1])<<8 | uint32(d[0]), nil
}

func (b *Buffer) SetUint24(i int64, v uint32) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, 3); err != nil {
		return err
	}
	d := b.st.data[b.base+i : b.base+i+3]
	if b.order == bigEndian() {
		d[0] = byte(v >> 16)
		d[1] = byte(v >> 8)
		d[2] = byte(v)
	} else {
		d[0] = byte(v)
		d[1] = byte(v >> 8)
		d[2] = byte(v >> 16)
	}
	return nil
}

func (b *Buffer) ReadUint24() (uint32, error) {
	if b.ReadableBytes() < 3 {
		if err := b.checkAlive(); err != nil {
			return 0, err
		}
		return 0, ErrIndexOutOfRange
	}
	v, err := b.GetUint24(b.cs.r)
	if err != nil {
		return 0, err
	}
	b.cs.r += 3
	return v, nil
}

func (b *Buffer) WriteUint24(v uint32) error {
	if err := b.EnsureWritable(3); err != nil {
		return err
	}
	if err := b.SetUint24(b.cs.w, v); err != nil {
		return err
	}
	b.cs.w += 3
	return nil
}

func (b *Buffer) GetInt24(i int64) (int32, error) {
	v, err := b.GetUint24(i)
	if err != nil {
		return 0, err
	}
	return signExtend24(v), nil
}

func (b *Buffer) SetInt24(i int64, v int32) error { return b.SetUint24(i, uint32(v)&0x00FFFFFF) }

func (b *Buffer) ReadInt24() (int32, error) {
	v, err := b.ReadUint24()
	if err != nil {
		return 0, err
	}
	return signExtend24(v), nil
}

func (b *Buffer) WriteInt24(v int32) error { return b.WriteUint24(uint32(v) & 0x00FFFFFF) }

func signExtend24(v uint32) int32 {
	if v&0x00800000 != 0 {
		return int32(v | 0xFF000000)
	}
	return int32(v)
}

// Zero fill --------------------------------------------------------------

func (b *Buffer) SetZero(i, n int64) error {
	if err := b.checkAlive(); err != nil {
		return err
	}
	if err := b.checkIndex(i, n); err != nil {
		return err
	}
	clear(b.st.data[b.base+i : b.base+i+n])
	return nil
}

func (b *Buffer) WriteZero(n int64) error {
	if err := b.EnsureWritable(n); err != nil {
		return err
	}
	clear(b.st.data[b.base+b.cs.w : b.base+b.cs.w+n])
	b.cs.w += n
	return nil
}

// IndexOf returns the first index in [from,to) whose byte equals v, or
// -1 if none match.
func (b *Buffer) IndexOf(from, to int64, v byte) (int64, error) {
	if err := b.checkAlive(); err != nil {
		return -1, err
	}
	if from < 0 || to > b.Capacity() || from > to {
		return -1, ErrIndexOutOfRange
	}
	for i := from; i < to; i++ {
		if b.st.data[b.base+i] == v {
			return i, nil
		}
	}
	return -1, nil
}

// ByteProcessor examines the byte at index i and returns whether
// ForEachByte should continue.
type ByteProcessor func(i int64, v byte) (cont bool, err error)

// ForEachByte iterates the readable region [R,W), invoking proc for each
// byte, stopping at the first index where proc returns cont=false (or an
// error). It returns the stopping index, or -1 if every byte was
// visited without proc halting.
func (b *Buffer) ForEachByte(proc ByteProcessor) (int64, error) {
	if err := b.checkAlive(); err != nil {
		return -1, err
	}
	for i := b.cs.r; i < b.cs.w; i++ {
		cont, err := proc(i, b.st.data[b.base+i])
		if err != nil {
			return i, err
		}
		if !cont {
			return i, nil
		}
	}
	return -1, nil
}
