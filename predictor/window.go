// Package predictor implements the short-term linear predictor search of
// spec §4.4 steps 3-6: windowing, autocorrelation, Levinson-Durbin PARCOR
// extraction, PARCOR quantization, adaptive order selection, and
// PARCOR->LPC conversion with overflow fallback.
package predictor

import "math"

// Window applies the windowing function of §4.4 step 3 to signal and
// returns a new float64 slice of the same length. sampleRate selects
// between the sine-rect window (<=48kHz) and the Hann-rect window
// (>48kHz), both parameterized with 4.0 per spec.
func Window(signal []int32, sampleRate int) []float64 {
	n := len(signal)
	out := make([]float64, n)
	const param = 4.0
	// "rect" portion: the window is flat over the central part of the
	// block and tapers over the first/last 1/param fraction, matching the
	// sine-rect / Hann-rect tapered-window family the ALS reference uses.
	taper := int(float64(n) / param)
	if taper < 1 {
		taper = 1
	}
	if taper > n/2 {
		taper = n / 2
	}
	for i := 0; i < n; i++ {
		w := 1.0
		switch {
		case i < taper:
			w = taperWeight(i, taper, sampleRate)
		case i >= n-taper:
			w = taperWeight(n-1-i, taper, sampleRate)
		}
		out[i] = float64(signal[i]) * w
	}
	return out
}

func taperWeight(i, taper, sampleRate int) float64 {
	x := (float64(i) + 0.5) / float64(taper)
	if sampleRate > 48000 {
		// Hann-rect: raised-cosine taper.
		return 0.5 - 0.5*math.Cos(math.Pi*x)
	}
	// sine-rect: sine taper.
	return math.Sin(math.Pi / 2 * x)
}

// Autocorrelate returns the autocorrelation of signal for lags 0..maxOrder.
func Autocorrelate(signal []float64, maxOrder int) []float64 {
	r := make([]float64, maxOrder+1)
	n := len(signal)
	for lag := 0; lag <= maxOrder; lag++ {
		var sum float64
		for i := lag; i < n; i++ {
			sum += signal[i] * signal[i-lag]
		}
		r[lag] = sum
	}
	return r
}
