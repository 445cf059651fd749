package predictor

// LevinsonDurbin runs the Levinson-Durbin recursion on autocorrelation r
// (length maxOrder+1) and returns the PARCOR (reflection) coefficients for
// orders 1..maxOrder and the per-order prediction error series E[0..maxOrder]
// used by the bit-count estimate in order selection (spec §4.4 step 3/5).
func LevinsonDurbin(r []float64, maxOrder int) (parcor []float64, errEnergy []float64) {
	parcor = make([]float64, maxOrder)
	errEnergy = make([]float64, maxOrder+1)
	errEnergy[0] = r[0]
	a := make([]float64, maxOrder+1)
	prev := make([]float64, maxOrder+1)

	for i := 1; i <= maxOrder; i++ {
		if errEnergy[i-1] == 0 {
			// Degenerate (silent) signal: no further reflection possible.
			parcor[i-1] = 0
			errEnergy[i] = 0
			continue
		}
		acc := r[i]
		for j := 1; j < i; j++ {
			acc -= a[j] * r[i-j]
		}
		k := acc / errEnergy[i-1]
		parcor[i-1] = k

		copy(prev, a)
		a[i] = k
		for j := 1; j < i; j++ {
			a[j] = prev[j] - k*prev[i-j]
		}
		errEnergy[i] = errEnergy[i-1] * (1 - k*k)
		if errEnergy[i] < 0 {
			errEnergy[i] = 0
		}
	}
	return parcor, errEnergy
}
