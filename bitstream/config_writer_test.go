package bitstream

import (
	"testing"

	"github.com/go-als/alsenc/bitio"
	"github.com/go-als/alsenc/types"
)

// bitReader is a tiny MSB-first reader used only by these tests to check
// what the writer actually produced.
type bitReader struct {
	buf []byte
	pos int
}

func (r *bitReader) readBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := r.pos / 8
		bitIdx := 7 - (r.pos % 8)
		bit := (r.buf[byteIdx] >> uint(bitIdx)) & 1
		v = (v << 1) | uint32(bit)
		r.pos++
	}
	return v
}

func TestWriteAudioSpecificConfigFields(t *testing.T) {
	buf := make([]byte, 16)
	w := bitio.NewWriter(buf)
	if err := WriteAudioSpecificConfig(w, 48000); err != nil {
		t.Fatalf("WriteAudioSpecificConfig: %v", err)
	}
	if err := w.AlignByte(); err != nil {
		t.Fatalf("AlignByte: %v", err)
	}

	r := &bitReader{buf: w.Bytes()}
	if esc := r.readBits(5); esc != 31 {
		t.Fatalf("object type escape = %d, want 31", esc)
	}
	if objType := 32 + r.readBits(6); objType != alsObjectTypeALS {
		t.Fatalf("object type = %d, want %d", objType, alsObjectTypeALS)
	}
	if idx := r.readBits(4); idx != alsSamplingIndex {
		t.Fatalf("sampling index = %#x, want %#x", idx, alsSamplingIndex)
	}
	if rate := r.readBits(24); rate != 48000 {
		t.Fatalf("rate = %d, want 48000", rate)
	}
}

func TestWriteALSSpecificConfigMagicAtExpectedOffset(t *testing.T) {
	buf := make([]byte, 64)
	w := bitio.NewWriter(buf)
	if err := WriteAudioSpecificConfig(w, 48000); err != nil {
		t.Fatalf("WriteAudioSpecificConfig: %v", err)
	}
	audioBits := w.BitLength()
	if err := w.AlignByte(); err != nil {
		t.Fatalf("AlignByte: %v", err)
	}
	configOff := ConfigOffset(audioBits)
	if w.ByteLength() != configOff {
		t.Fatalf("byte offset after align = %d, want %d", w.ByteLength(), configOff)
	}

	p := ConfigParams{
		SampleRate:  48000,
		Channels:    1,
		Resolution:  types.Resolution16,
		FrameLength: 4096,
		MaxOrder:    8,
	}
	if _, err := WriteALSSpecificConfig(w, p); err != nil {
		t.Fatalf("WriteALSSpecificConfig: %v", err)
	}

	got := w.Bytes()[configOff : configOff+4]
	want := []byte{'A', 'L', 'S', 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("magic = %v, want %v", got, want)
		}
	}
}

func TestWriteALSSpecificConfigChannelsMinusOne(t *testing.T) {
	buf := make([]byte, 64)
	w := bitio.NewWriter(buf)
	p := ConfigParams{
		SampleRate:  44100,
		Channels:    2,
		Resolution:  types.Resolution24,
		FrameLength: 2048,
		MaxOrder:    16,
	}
	if _, err := WriteALSSpecificConfig(w, p); err != nil {
		t.Fatalf("WriteALSSpecificConfig: %v", err)
	}

	r := &bitReader{buf: w.Bytes()}
	r.readBits(32) // magic
	r.readBits(32) // sample rate
	r.readBits(32) // total samples
	if chMinus1 := r.readBits(16); chMinus1 != 1 {
		t.Fatalf("channels-1 = %d, want 1", chMinus1)
	}
}

func TestPatchCloseUpdatesReservedSlots(t *testing.T) {
	buf := make([]byte, 64)
	w := bitio.NewWriter(buf)
	p := ConfigParams{SampleRate: 48000, Channels: 1, Resolution: types.Resolution16, FrameLength: 4096, MaxOrder: 8}
	off, err := WriteALSSpecificConfig(w, p)
	if err != nil {
		t.Fatalf("WriteALSSpecificConfig: %v", err)
	}
	PatchClose(w, off, 123456, 999, 0, 0)

	r := &bitReader{buf: w.Bytes()}
	r.readBits(32) // magic
	r.readBits(32) // sample rate
	if total := r.readBits(32); total != 123456 {
		t.Fatalf("total samples = %d, want 123456", total)
	}
}
