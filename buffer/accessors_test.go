package buffer_test

import (
	"testing"

	"code.hybscloud.com/netcore/buffer"
)

func TestGetSetRoundTrip(t *testing.T) {
	// ∀ v of primitive type T, ∀ valid i: get_T(i) ∘ set_T(i, v) = v.
	b, err := buffer.New(32, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.SetByte(0, 0xAB); err != nil {
		t.Fatalf("SetByte: %v", err)
	}
	if v, _ := b.GetByte(0); v != 0xAB {
		t.Fatalf("GetByte = %x, want 0xAB", v)
	}
	if err := b.SetUint16(2, 0x1234); err != nil {
		t.Fatalf("SetUint16: %v", err)
	}
	if v, _ := b.GetUint16(2); v != 0x1234 {
		t.Fatalf("GetUint16 = %x, want 0x1234", v)
	}
	if err := b.SetInt32(4, -1); err != nil {
		t.Fatalf("SetInt32: %v", err)
	}
	if v, _ := b.GetInt32(4); v != -1 {
		t.Fatalf("GetInt32 = %d, want -1", v)
	}
	if err := b.SetUint64(8, 0x0102030405060708); err != nil {
		t.Fatalf("SetUint64: %v", err)
	}
	if v, _ := b.GetUint64(8); v != 0x0102030405060708 {
		t.Fatalf("GetUint64 = %x, want 0x0102030405060708", v)
	}
	if err := b.SetUint24(16, 0x00ABCDEF&0x00FFFFFF); err != nil {
		t.Fatalf("SetUint24: %v", err)
	}
	if v, _ := b.GetUint24(16); v != 0x00ABCDEF&0x00FFFFFF {
		t.Fatalf("GetUint24 = %x, want %x", v, 0x00ABCDEF&0x00FFFFFF)
	}
}

func TestInt24SignExtension(t *testing.T) {
	b, err := buffer.New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.SetInt24(0, -1); err != nil {
		t.Fatalf("SetInt24: %v", err)
	}
	v, err := b.GetInt24(0)
	if err != nil {
		t.Fatalf("GetInt24: %v", err)
	}
	if v != -1 {
		t.Fatalf("GetInt24 = %d, want -1", v)
	}

	if err := b.SetInt24(0, -8388608); err != nil { // min 24-bit signed value
		t.Fatalf("SetInt24: %v", err)
	}
	v, err = b.GetInt24(0)
	if err != nil {
		t.Fatalf("GetInt24: %v", err)
	}
	if v != -8388608 {
		t.Fatalf("GetInt24 = %d, want -8388608", v)
	}

	u, err := b.GetUint24(0)
	if err != nil {
		t.Fatalf("GetUint24: %v", err)
	}
	if u != 1<<23 {
		t.Fatalf("GetUint24 = %d, want %d", u, 1<<23)
	}
}

func TestWriteThenReadSequenceRoundTrips(t *testing.T) {
	// write_T(v_T) for each T, then read_T() for each T yields the same sequence.
	b, err := buffer.New(64, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.WriteByte(1); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	if err := b.WriteUint16(2); err != nil {
		t.Fatalf("WriteUint16: %v", err)
	}
	if err := b.WriteUint32(3); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	if err := b.WriteUint64(4); err != nil {
		t.Fatalf("WriteUint64: %v", err)
	}
	if err := b.WriteInt24(5); err != nil {
		t.Fatalf("WriteInt24: %v", err)
	}

	bv, err := b.ReadByte()
	if err != nil || bv != 1 {
		t.Fatalf("ReadByte = %v, %v; want 1, nil", bv, err)
	}
	u16, err := b.ReadUint16()
	if err != nil || u16 != 2 {
		t.Fatalf("ReadUint16 = %v, %v; want 2, nil", u16, err)
	}
	u32, err := b.ReadUint32()
	if err != nil || u32 != 3 {
		t.Fatalf("ReadUint32 = %v, %v; want 3, nil", u32, err)
	}
	u64, err := b.ReadUint64()
	if err != nil || u64 != 4 {
		t.Fatalf("ReadUint64 = %v, %v; want 4, nil", u64, err)
	}
	i24, err := b.ReadInt24()
	if err != nil || i24 != 5 {
		t.Fatalf("ReadInt24 = %v, %v; want 5, nil", i24, err)
	}
}

func TestIndexOf(t *testing.T) {
	b, err := buffer.New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.WriteBytes([]byte("abcdXYZ!")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	idx, err := b.IndexOf(0, 8, 'X')
	if err != nil {
		t.Fatalf("IndexOf: %v", err)
	}
	if idx != 4 {
		t.Fatalf("IndexOf = %d, want 4", idx)
	}
	idx, err = b.IndexOf(0, 8, '?')
	if err != nil {
		t.Fatalf("IndexOf: %v", err)
	}
	if idx != -1 {
		t.Fatalf("IndexOf = %d, want -1", idx)
	}
}

func TestForEachByteStopsAtFirstFalse(t *testing.T) {
	b, err := buffer.New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.WriteBytes([]byte{1, 2, 3, 0, 5}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	idx, err := b.ForEachByte(func(i int64, v byte) (bool, error) {
		return v != 0, nil
	})
	if err != nil {
		t.Fatalf("ForEachByte: %v", err)
	}
	if idx != 3 {
		t.Fatalf("ForEachByte stop index = %d, want 3", idx)
	}
}

func TestSetZeroAndWriteZero(t *testing.T) {
	b, err := buffer.New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := b.WriteBytes([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := b.SetZero(1, 2); err != nil {
		t.Fatalf("SetZero: %v", err)
	}
	raw, _ := b.GetBytes(0, 4)
	if raw[1] != 0 || raw[2] != 0 {
		t.Fatalf("raw = %v, want zeroes at 1,2", raw)
	}
	if err := b.WriteZero(2); err != nil {
		t.Fatalf("WriteZero: %v", err)
	}
	raw, _ = b.GetBytes(4, 2)
	if raw[0] != 0 || raw[1] != 0 {
		t.Fatalf("raw = %v, want zeroes", raw)
	}
}
