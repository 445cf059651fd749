package predictor

// Residual computes the LPC prediction residual for a block's working
// signal, given history+current window `win` (history length = len(win)-
// blockLen) and coefficients for the final order. For an RA block, the
// first min(order, blockLen) residuals use progressive predictor orders
// 0..order-1 (order grows with sample index) before switching to the
// fixed final order, per §3 and §4.4 step 6.
func Residual(win []int32, histLen, blockLen int, lpcByOrder [][]int32, isRA bool) []int32 {
	order := len(lpcByOrder) - 1 // lpcByOrder[k] is the order-k predictor
	res := make([]int32, blockLen)
	progressiveN := 0
	if isRA {
		progressiveN = order
		if progressiveN > blockLen {
			progressiveN = blockLen
		}
	}
	for n := 0; n < blockLen; n++ {
		idx := histLen + n
		useOrder := order
		if n < progressiveN {
			useOrder = n
		}
		if useOrder == 0 {
			res[n] = win[idx]
			continue
		}
		lpc := lpcByOrder[useOrder]
		pred := Predict(win[:idx], lpc)
		res[n] = win[idx] - pred
	}
	return res
}

// LPCByOrder builds the family of predictors for orders 0..maxOrder needed
// by RA progressive prediction, by truncating the quantized-PARCOR
// reconstruction at each order boundary and reconverting to LPC. Order 0
// is the identity (no prediction).
func LPCByOrder(parcorScaled []int32, maxOrder int) [][]int32 {
	out := make([][]int32, maxOrder+1)
	out[0] = nil
	for k := 1; k <= maxOrder; k++ {
		lpc, _ := ParcorToLPC(parcorScaled[:k], k)
		out[k] = lpc
	}
	return out
}
