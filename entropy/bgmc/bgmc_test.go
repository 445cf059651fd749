package bgmc

import (
	"math/rand"
	"testing"

	"github.com/go-als/alsenc/bitio"
)

func TestParamByteRoundTrip(t *testing.T) {
	for s := 0; s < 16; s++ {
		for sx := 0; sx < 16; sx++ {
			p := Param{S: s, Sx: sx}
			got := ParamFromByte(p.Byte())
			if got != p {
				t.Fatalf("round trip failed: %v -> %d -> %v", p, p.Byte(), got)
			}
		}
	}
}

func TestSplitResidualLSBWidth(t *testing.T) {
	p := Param{S: 8, Sx: 5}
	k := KOf(p.S, 64)
	sp := SplitResidual(12345, p, 64)
	if sp.LSB >= (1 << uint(k)) {
		t.Fatalf("LSB %d exceeds k=%d bits", sp.LSB, k)
	}
}

func TestEncodeMSBWithinModel(t *testing.T) {
	buf := make([]byte, 256)
	var enc Encoder
	enc.Init(buf)
	for sx := 0; sx < 16; sx++ {
		if !enc.EncodeMSB(0, sx) {
			t.Fatalf("EncodeMSB failed for sx=%d", sx)
		}
	}
	if n := enc.Done(); n == 0 {
		t.Fatalf("expected nonzero bytes written")
	}
}

func TestEstimateCostPicksValidSubBlocks(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	values := make([]int32, 64)
	for i := range values {
		values[i] = int32(r.NormFloat64() * 100)
	}
	sb, params, bits := EstimateCost(values, 31)
	if sb != 1 && sb != 2 && sb != 4 && sb != 8 {
		t.Fatalf("unexpected sub_blocks = %d", sb)
	}
	if len(params) != sb {
		t.Fatalf("len(params) = %d, want %d", len(params), sb)
	}
	if bits <= 0 {
		t.Fatalf("expected positive bit estimate, got %v", bits)
	}
}

func TestSearchExactReturnsPositiveCost(t *testing.T) {
	r := rand.New(rand.NewSource(8))
	values := make([]int32, 64)
	for i := range values {
		values[i] = int32(r.NormFloat64() * 100)
	}
	seed := 0x80
	_, bits := SearchExact(values, seed, 64)
	if bits <= 0 {
		t.Fatalf("expected positive cost")
	}
}

func TestEncodeResidualBlockNoOverflowSmallBuffer(t *testing.T) {
	values := []int32{1, -2, 3, -4, 5, -6, 7, -8}
	p := Param{S: 4, Sx: 3}
	buf := make([]byte, 4096)
	var enc Encoder
	enc.Init(buf)
	w := bitio.NewWriter(make([]byte, 4096))
	if err := EncodeResidualBlock(&enc, w, values, p, len(values)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
