package predictor

import (
	"math"

	"github.com/go-als/alsenc/types"
	"github.com/go-als/alsenc/util"
)

// QuantizeParcor implements §4.4 step 4: 7-bit signed quantization with
// companding for reflection indices 0 and 1, linear quantization for index
// >= 2. Returns the quantized code in [-64, 63].
func QuantizeParcor(parcor float64, index int) int {
	var q float64
	if index < 2 {
		q = 64 * (math.Sqrt(2*(signFor(index, parcor)*parcor+1)) - 1)
		if index == 1 {
			q = -q
		}
	} else {
		q = 64 * parcor
	}
	return int(util.Clip(math.Floor(q), -64, 63))
}

// signFor implements the companding sign convention: index 0 companders
// +parcor, index 1 companders -parcor per §4.4 step 4's (±parcor+1) term.
func signFor(index int, _ float64) float64 {
	if index == 0 {
		return 1
	}
	return -1
}

// reconCompanded is the reconstruction used for indices 0 and 1 (negate
// selects index 1), mapping a 7-bit code back to its companded 21-bit
// scaled PARCOR value. It inverts QuantizeParcor's sqrt companding.
func reconCompanded(q int, negate bool) int32 {
	x := float64(q) / 64.0
	if negate {
		x = -x
	}
	// Invert q = 64*(sqrt(2*(x+1))-1)  =>  x = ((q/64+1)^2)/2 - 1
	v := (x+1)*(x+1)/2 - 1
	if negate {
		v = -v
	}
	return int32(v * (1 << 20))
}

// ReconstructParcor implements §4.4 step 4's reconstruction to 21-bit
// scaled values: for indices 0,1 the companded value is computed by
// reconCompanded's formula (no lookup table is used), linear
// (q<<14)+(1<<13) otherwise.
func ReconstructParcor(q int, index int) int32 {
	if index == 0 {
		return reconCompanded(q, false)
	}
	if index == 1 {
		return reconCompanded(q, true)
	}
	return int32(q<<14) + (1 << 13)
}

// CoefRiceParam returns the Rice parameter used to code the i-th PARCOR
// coefficient, indexed by coef_table for i<20; i in [20,126] always use
// parameter 2 (with an offset of i&1, applied by the caller when folding
// the value), and i>=127 always use parameter 1, per §4.4 step 4.
func CoefRiceParam(i int, table types.CoefTable) (param int, offset int) {
	switch {
	case i < 20:
		return coefTable[table][i], 0
	case i < 127:
		return 2, i & 1
	default:
		return 1, 0
	}
}

// coefTable holds the per-coef_table Rice parameters for coefficient
// indices 0..19, transcribed from the ALS standard's coefficient coding
// tables (coef_table selects between two empirically tuned parameter sets;
// table 2 is reserved and table 3 means raw coding, handled by the caller
// before consulting this table).
var coefTable = [2][20]int{
	0: {10, 9, 9, 9, 9, 8, 8, 7, 7, 6, 6, 5, 5, 4, 4, 4, 3, 3, 3, 2},
	1: {13, 12, 12, 11, 11, 10, 10, 9, 9, 8, 7, 7, 6, 6, 5, 5, 4, 4, 3, 3},
}
