package ltp

import (
	"math"
	"testing"
)

func TestSearchLagFindsPeriodicity(t *testing.T) {
	const period = 50
	const lagMax = 200
	const length = 512
	win := make([]float64, lagMax+length)
	for i := range win {
		win[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	lag, ok := SearchLag(win, lagMax, length, 4)
	if !ok {
		t.Fatalf("expected a lag to be found")
	}
	// The search should land near a multiple of the true period.
	mod := lag % period
	if mod > period/4 && mod < period-period/4 {
		t.Fatalf("lag %d not near a multiple of period %d", lag, period)
	}
}

func TestResidualZeroGainIsIdentity(t *testing.T) {
	win := []int32{0, 0, 0, 0, 0, 10, 20, 30, 40, 50}
	res := Residual(win, 5, 4, 4, [5]int32{0, 0, 0, 0, 0})
	want := []int32{10, 20, 30, 40}
	for i := range want {
		if res[i] != want[i] {
			t.Fatalf("res[%d] = %d, want %d", i, res[i], want[i])
		}
	}
}

func TestGainIndex16Bounds(t *testing.T) {
	idx := GainIndex16(1000)
	if idx != 15 {
		t.Fatalf("GainIndex16(1000) = %d, want 15 (clamped to max)", idx)
	}
	idx = GainIndex16(-1000)
	if idx != 0 {
		t.Fatalf("GainIndex16(-1000) = %d, want 0 (clamped to min)", idx)
	}
}

func TestSolveCholeskyDegenerateReturnsZero(t *testing.T) {
	var r [5][5]float64 // all zero: not positive definite
	var c [5]float64
	g := SolveCholesky(r, c)
	// Tap 2 is quantized through the 16-entry gain table, whose smallest
	// entry is 4, so only the other four taps come out as zero.
	for i, v := range g {
		if v != 0 && i != 2 {
			t.Fatalf("expected zero gain on degenerate input, got %v", g)
		}
	}
}
