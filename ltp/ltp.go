// Package ltp implements the long-term predictor search of spec §4.4
// step 7: weighted-signal lag search, fixed or Cholesky gain derivation,
// and LTP residual generation.
package ltp

import (
	"math"

	"github.com/go-als/alsenc/types"
	"github.com/go-als/alsenc/util"
)

// Info mirrors the bitstream LTPInfo fields of spec §3.
type Info struct {
	UseLTP bool
	Lag    int      // [4, 2048]
	Gains  [5]int32 // fixed-point gains, quantization convention per Mode
	Mode   types.LTPGainMode
}

// FixedGains is the constant gain set used when Mode is LTPGainFixed
// (spec §4.4 step 7).
var FixedGains = [5]int32{8, 8, 16, 8, 8}

// gainTable16 is the 16-level logarithmic lookup used to quantize tap 2
// under the Cholesky gain path (§4.4 step 7). Transcribed from the ALS
// standard's LTP gain table.
var gainTable16 = [16]int32{
	4, 8, 12, 16, 20, 24, 28, 32,
	40, 48, 56, 64, 80, 96, 112, 127,
}

// GainIndex16 returns the 16-entry table index whose value is closest to v.
func GainIndex16(v int32) int {
	best, bestDiff := 0, int32(1<<30)
	for i, g := range gainTable16 {
		d := util.Abs(g - v)
		if d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return best
}

// weight builds w[i] = x[i] / (sqrt(|x[i]|)/(5*sqrt(mu)) + 1) per §4.4
// step 7, where mu is the mean absolute value over the search window.
func weight(x []float64) []float64 {
	var sum float64
	for _, v := range x {
		sum += math.Abs(v)
	}
	mu := sum / float64(len(x))
	if mu <= 0 {
		mu = 1e-9
	}
	sqrtMu := math.Sqrt(mu)
	w := make([]float64, len(x))
	for i, v := range x {
		w[i] = v / (math.Sqrt(math.Abs(v))/(5*sqrtMu) + 1)
	}
	return w
}

// SearchLag picks the lag in [max(4, minLag), min(2048, length)) that
// maximizes positive normalized autocorrelation of the weighted signal,
// per §4.4 step 7. win must hold at least lagMax+length samples of
// history+current signal, with the current block starting at offset
// lagMax. Returns ok=false if no lag produced positive correlation.
func SearchLag(win []float64, lagMax, length, minLag int) (lag int, ok bool) {
	w := weight(win)
	lo := minLag
	if lo < 4 {
		lo = 4
	}
	hi := types.LTPMaxLag
	if hi > length {
		hi = length
	}
	if hi > lagMax {
		hi = lagMax
	}
	bestCorr := 0.0
	blockStart := lagMax
	for l := lo; l < hi; l++ {
		var num, denomA, denomB float64
		for n := 0; n < length; n++ {
			a := w[blockStart+n]
			b := w[blockStart+n-l]
			num += a * b
			denomA += a * a
			denomB += b * b
		}
		if denomA <= 0 || denomB <= 0 {
			continue
		}
		corr := num / math.Sqrt(denomA*denomB)
		if corr > bestCorr {
			bestCorr = corr
			lag = l
			ok = true
		}
	}
	return
}

// Residual computes y[n] = x[n] - ((sum gain[t]*x[n+lag-2+t] + 64) >> 7)
// for t in [0,5), per §4.4 step 7. win holds history+current with the
// current block starting at offset `start`.
func Residual(win []int32, start, length, lag int, gains [5]int32) []int32 {
	out := make([]int32, length)
	for n := 0; n < length; n++ {
		var acc int64
		for t := 0; t < 5; t++ {
			idx := start + n + lag - 2 + t
			if idx >= 0 && idx < len(win) {
				acc += int64(gains[t]) * int64(win[idx])
			}
		}
		pred := int32((acc + 64) >> 7)
		out[n] = win[start+n] - pred
	}
	return out
}

// NormalEquations builds the 5x5 covariance matrix R and cross-correlation
// vector c for the least-squares gain fit y[n] = sum_t g[t]*x[n+lag-2+t]
// that SolveCholesky solves (§4.4 step 7). win holds history+current with
// the current block starting at offset start; out-of-range taps (near the
// stream start) contribute zero, matching Residual's boundary handling.
func NormalEquations(win []int32, start, length, lag int) (r [5][5]float64, c [5]float64) {
	tap := func(n, t int) float64 {
		idx := start + n + lag - 2 + t
		if idx < 0 || idx >= len(win) {
			return 0
		}
		return float64(win[idx])
	}
	for n := 0; n < length; n++ {
		y := float64(win[start+n])
		var b [5]float64
		for t := 0; t < 5; t++ {
			b[t] = tap(n, t)
		}
		for i := 0; i < 5; i++ {
			c[i] += b[i] * y
			for j := 0; j < 5; j++ {
				r[i][j] += b[i] * b[j]
			}
		}
	}
	return
}

// SolveCholesky solves the 5x5 normal equations R*g = c for the Cholesky
// gain path (§4.4 step 7) and quantizes the result to the 8-step linear
// grid used for taps 0,1,3,4 and the 16-level logarithmic grid for tap 2.
func SolveCholesky(r [5][5]float64, c [5]float64) [5]int32 {
	g := choleskySolve(r, c)
	var out [5]int32
	for t := 0; t < 5; t++ {
		if t == 2 {
			idx := GainIndex16(int32(math.Round(g[t] * 128)))
			out[t] = gainTable16[idx]
			continue
		}
		// 8-step linear grid in units of 1/128 (matching FixedGains' scale).
		q := math.Round(g[t]*128/16) * 16
		out[t] = int32(util.Clip(q, -128, 127))
	}
	return out
}

// choleskySolve solves the symmetric positive-(semi)definite system r*x=c
// via Cholesky decomposition. Falls back to returning zeros if r is not
// positive definite (degenerate/silent input).
func choleskySolve(r [5][5]float64, c [5]float64) [5]float64 {
	var l [5][5]float64
	for i := 0; i < 5; i++ {
		for j := 0; j <= i; j++ {
			sum := r[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return [5]float64{}
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	var y [5]float64
	for i := 0; i < 5; i++ {
		sum := c[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * y[k]
		}
		y[i] = sum / l[i][i]
	}
	var x [5]float64
	for i := 4; i >= 0; i-- {
		sum := y[i]
		for k := i + 1; k < 5; k++ {
			sum -= l[k][i] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x
}
