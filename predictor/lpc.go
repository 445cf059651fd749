package predictor

// FixedPointShift is the fractional-bit width used for the PARCOR->LPC
// recursion's fixed-point arithmetic, per §4.4 step 6.
const FixedPointShift = 20

// overflowLimit is the signed 32-bit range the running LPC coefficients
// must stay within during the recursion; exceeding it triggers the
// degenerate fallback of §4.4 step 6 / §7.
const overflowLimit = 1 << 31

// ParcorToLPC converts quantized 21-bit-scaled PARCOR coefficients
// (coeffs[i] = ReconstructParcor(...)) to direct-form LPC coefficients
// using the standard recursion a[i] += q*a[k-1-i], in 20-bit fractional
// fixed-point 64-bit intermediates (§4.4 step 6, §9). ok is false if a
// 32-bit overflow was detected; in that case lpc holds the degenerate
// fallback predictor (a 1-tap predictor with parcor[0] = -0.9).
func ParcorToLPC(parcorScaled []int32, order int) (lpc []int32, ok bool) {
	if order == 0 {
		return nil, true
	}
	a := make([]int64, order)
	for k := 0; k < order; k++ {
		q := int64(parcorScaled[k])
		a[k] = q
		for i := 0; i < k; i++ {
			a[i] += (q * a[k-1-i]) >> FixedPointShift
			if a[i] > overflowLimit || a[i] < -overflowLimit {
				return fallback(order), false
			}
		}
		if a[k] > overflowLimit || a[k] < -overflowLimit {
			return fallback(order), false
		}
	}
	lpc = make([]int32, order)
	for i, v := range a {
		lpc[i] = int32(v)
	}
	return lpc, true
}

// fallback builds the degenerate 1st-order predictor mandated by §4.4
// step 6 when PARCOR->LPC overflows: PARCOR[0] = -0.9, all higher orders
// silenced.
func fallback(order int) []int32 {
	lpc := make([]int32, order)
	parcor0 := -0.9
	lpc[0] = int32(parcor0 * (1 << FixedPointShift))
	return lpc
}

// Predict returns the LPC-predicted value for history window hist (most
// recent sample last) using coefficients lpc, in the same fixed-point
// convention as ParcorToLPC.
func Predict(hist []int32, lpc []int32) int32 {
	order := len(lpc)
	var acc int64
	for i := 0; i < order; i++ {
		acc += int64(lpc[i]) * int64(hist[len(hist)-1-i])
	}
	return int32(acc >> FixedPointShift)
}
