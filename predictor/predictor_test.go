package predictor

import (
	"math"
	"testing"
)

func TestLevinsonDurbinRampErrorEnergyNonIncreasing(t *testing.T) {
	// A perfectly predictable ramp should yield near-zero residual energy
	// by the final order, i.e. decreasing error energy.
	sig := make([]float64, 64)
	for i := range sig {
		sig[i] = float64(i)
	}
	r := Autocorrelate(sig, 4)
	_, errE := LevinsonDurbin(r, 4)
	for i := 1; i < len(errE); i++ {
		if errE[i] > errE[i-1]+1e-6 {
			t.Fatalf("error energy increased at order %d: %v", i, errE)
		}
	}
}

func TestQuantizeParcorRange(t *testing.T) {
	for _, p := range []float64{-0.99, -0.5, 0, 0.5, 0.99} {
		for idx := 0; idx < 3; idx++ {
			q := QuantizeParcor(p, idx)
			if q < -64 || q > 63 {
				t.Fatalf("QuantizeParcor(%v, %d) = %d out of [-64,63]", p, idx, q)
			}
		}
	}
}

func TestReconstructParcorLinearIndex(t *testing.T) {
	got := ReconstructParcor(10, 5)
	want := int32(10<<14) + (1 << 13)
	if got != want {
		t.Fatalf("ReconstructParcor(10,5) = %d, want %d", got, want)
	}
}

func TestParcorToLPCOrderZero(t *testing.T) {
	lpc, ok := ParcorToLPC(nil, 0)
	if !ok || lpc != nil {
		t.Fatalf("order-0 conversion should be trivially ok with nil coefficients")
	}
}

func TestParcorToLPCOverflowFallback(t *testing.T) {
	// Force overflow with a pathological coefficient near the fixed-point max.
	coeffs := []int32{1 << 30, 1 << 30, 1 << 30}
	lpc, ok := ParcorToLPC(coeffs, 3)
	if ok {
		t.Fatalf("expected overflow detected")
	}
	if len(lpc) != 3 || lpc[0] == 0 {
		t.Fatalf("expected degenerate fallback predictor, got %v", lpc)
	}
}

func TestResidualRAProgressiveOrder(t *testing.T) {
	histLen := 4
	blockLen := 6
	win := []int32{0, 0, 0, 0, 1, 2, 3, 4, 5, 6}
	parcor := []int32{100, 200, 300}
	lpcByOrder := LPCByOrder(parcor, 3)
	res := Residual(win, histLen, blockLen, lpcByOrder, true)
	if len(res) != blockLen {
		t.Fatalf("len(res) = %d, want %d", len(res), blockLen)
	}
}

func TestEstimateBitsFiniteOnZeroEnergy(t *testing.T) {
	parcorBits := []float64{10, 10, 10}
	errE := []float64{100, 0, 0}
	b := EstimateBits(parcorBits, errE, 1, 256)
	if math.IsNaN(b) || math.IsInf(b, 0) {
		t.Fatalf("EstimateBits produced non-finite result: %v", b)
	}
}
