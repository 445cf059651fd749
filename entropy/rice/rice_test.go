package rice

import (
	"math/rand"
	"testing"
)

func laplacian(n int, scale int32, seed int64) []int32 {
	r := rand.New(rand.NewSource(seed))
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(r.NormFloat64() * float64(scale))
	}
	return out
}

func TestEstimateParamWithinBounds(t *testing.T) {
	values := laplacian(256, 50, 1)
	k := EstimateParam(values, 31)
	if k < 0 || k > 31 {
		t.Fatalf("EstimateParam out of range: %d", k)
	}
}

func TestSearchExactBeatsOrMatchesEstimate(t *testing.T) {
	values := laplacian(512, 200, 2)
	kEst := EstimateParam(values, 31)
	costEst := ExactCost(values, kEst)
	_, costExact := SearchExact(values, 31)
	if costExact > costEst {
		t.Fatalf("exact search (%d) worse than estimate param cost (%d)", costExact, costEst)
	}
}

func TestChooseSubBlocksValidLength(t *testing.T) {
	values := laplacian(64, 30, 3)
	choice := Choose(values, 31, true, true)
	if choice.SubBlocks != 1 && choice.SubBlocks != 4 {
		t.Fatalf("unexpected SubBlocks = %d", choice.SubBlocks)
	}
	if choice.SubBlocks == 4 && len(choice.Params) != 4 {
		t.Fatalf("expected 4 params, got %d", len(choice.Params))
	}
}

func TestChooseRejectsSubdivisionWhenNotMultipleOf4(t *testing.T) {
	values := laplacian(17, 30, 4)
	choice := Choose(values, 31, false, true)
	if choice.SubBlocks != 1 {
		t.Fatalf("expected sub_blocks=1 for length not a multiple of 4, got %d", choice.SubBlocks)
	}
}

func TestChooseNeverSubdividesWhenSBPartDisabled(t *testing.T) {
	values := laplacian(64, 30, 5)
	choice := Choose(values, 31, true, false)
	if choice.SubBlocks != 1 {
		t.Fatalf("expected sub_blocks=1 when sbPart is disabled, got %d", choice.SubBlocks)
	}
}
