package bitio

import "testing"

func TestWriteBitsRoundBoundary(t *testing.T) {
	buf := make([]byte, 4)
	w := NewWriter(buf)
	if err := w.WriteBits(0b101, 3); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBits(0b11111, 5); err != nil {
		t.Fatal(err)
	}
	if w.ByteLength() != 1 {
		t.Fatalf("ByteLength() = %d, want 1", w.ByteLength())
	}
	if got := w.Bytes()[0]; got != 0b10111111 {
		t.Fatalf("byte = %08b, want 10111111", got)
	}
}

func TestWriteBitsOverflow(t *testing.T) {
	buf := make([]byte, 1)
	w := NewWriter(buf)
	if err := w.WriteBits(0, 8); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteBits(1, 8); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestZigZagRoundTrip(t *testing.T) {
	cases := []int32{0, -1, 1, -2, 2, -1000, 1000}
	for _, v := range cases {
		z := ZigZag(v)
		var got int32
		if z%2 == 0 {
			got = int32(z / 2)
		} else {
			got = -int32((z + 1) / 2)
		}
		if got != v {
			t.Errorf("ZigZag round trip: v=%d z=%d got=%d", v, z, got)
		}
	}
}

func TestWriteUnsignedRiceCost(t *testing.T) {
	buf := make([]byte, 1<<15) // {1<<20, 3} alone needs 131076 bits

	for _, tc := range []struct {
		v uint32
		k int
	}{
		{0, 0}, {1, 0}, {255, 4}, {1 << 20, 3},
	} {
		w := NewWriter(buf)
		if err := w.WriteUnsignedRice(tc.v, tc.k); err != nil {
			t.Fatalf("v=%d k=%d: %v", tc.v, tc.k, err)
		}
		if err := w.AlignByte(); err != nil {
			t.Fatal(err)
		}
		want := (RiceCost(tc.v, tc.k) + 7) / 8
		if w.ByteLength() != want {
			t.Errorf("v=%d k=%d: ByteLength()=%d want %d", tc.v, tc.k, w.ByteLength(), want)
		}
	}
}

func TestPatchUint32BE(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)
	_ = w.WriteBits(0, 32)
	_ = w.WriteBits(0xAABBCCDD, 32)
	w.PatchUint32BE(0, 0x11223344)
	got := w.Bytes()
	want := []byte{0x11, 0x22, 0x33, 0x44, 0xAA, 0xBB, 0xCC, 0xDD}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}
