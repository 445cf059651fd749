// Package block orchestrates the per-block parameter search of spec §4.4:
// constant test, LSB-shift test, PARCOR/LPC search with adaptive order
// selection, optional LTP search, and the resulting residual — feeding the
// entropy parameter search of §4.5 to produce a final bit cost and a fully
// populated Block ready for the bitstream writer (§4.6).
package block

import (
	"math/bits"

	"github.com/go-als/alsenc/entropy/bgmc"
	"github.com/go-als/alsenc/entropy/rice"
	"github.com/go-als/alsenc/ltp"
	"github.com/go-als/alsenc/predictor"
	"github.com/go-als/alsenc/types"
)

// Config carries the per-stream settings the search needs (spec §3, §6).
type Config struct {
	Resolution      types.Resolution
	SampleRate      int
	MaxOrder        int
	AdaptOrder      bool
	FullSearchOrder bool // true: exact enumeration; false: valley-detect
	LongTermPred    bool
	LTPGainMode     types.LTPGainMode
	BGMC            bool
	SBPart          bool
	CoefTable       types.CoefTable
	ConstantTest    bool
	ShiftTest       bool
	ExactEntropy    bool
}

// Block is a fully searched block: everything the bitstream writer needs.
type Block struct {
	Offset   int
	Length   int
	RABlock  bool
	JSBlock  types.JSInfo

	Constant      bool
	ConstantValue int32

	ShiftLSBs int

	OptOrder     int
	ParcorScaled []int32 // reconstructed 21-bit-scaled PARCOR, length OptOrder

	LTP     *ltp.Info
	Entropy EntropyResult

	Residual []int32 // final residual fed to the entropy coder

	Bits float64 // total estimated/exact cost, for partition-tree comparison
}

// EntropyResult captures the chosen entropy parameters for one block.
type EntropyResult struct {
	Mode      types.EntropyMode
	SubBlocks int
	RiceK     []int
	BGMCParam []bgmc.Param
	Bits      float64
}

// Search runs the full per-block parameter search (§4.4 steps 1-7 plus
// §4.5) over win (history+current window, current block starting at
// offset histLen) and returns the populated Block.
func Search(cfg Config, win []int32, histLen, length int, isRA bool) *Block {
	b := &Block{Length: length, RABlock: isRA}
	cur := win[histLen : histLen+length]

	if cfg.ConstantTest {
		if v, ok := constantValue(cur); ok {
			b.Constant = true
			b.ConstantValue = v
			b.Bits = 8 // fixed small header, no residual
			return b
		}
	}

	working := cur
	if cfg.ShiftTest {
		if z := commonTrailingZeros(cur); z > 0 {
			b.ShiftLSBs = z
			working = shiftRight(cur, z)
		}
	}

	maxOrder := cfg.MaxOrder
	if maxOrder > length-1 && length > 1 {
		maxOrder = length - 1
	}
	if maxOrder < 0 {
		maxOrder = 0
	}

	windowed := predictor.Window(working, cfg.SampleRate)
	r := predictor.Autocorrelate(windowed, maxOrder)
	parcor, errE := predictor.LevinsonDurbin(r, maxOrder)

	parcorBitsEstimate := make([]float64, maxOrder+1)
	scaledByOrder := make([][]int32, maxOrder+1)
	scaledByOrder[0] = nil
	for i := 1; i <= maxOrder; i++ {
		q := predictor.QuantizeParcor(parcor[i-1], i-1)
		scaled := append(append([]int32{}, scaledByOrder[i-1]...), predictor.ReconstructParcor(q, i-1))
		scaledByOrder[i] = scaled
		param, offset := predictor.CoefRiceParam(i-1, cfg.CoefTable)
		parcorBitsEstimate[i] = float64(riceCoefCost(q, param, offset))
	}

	order := 0
	if cfg.AdaptOrder && maxOrder > 0 {
		if cfg.FullSearchOrder {
			order, _ = predictor.SelectOrderFull(maxOrder, func(k int) float64 {
				return costForOrder(cfg, working, histLen, scaledByOrder[k], isRA)
			})
		} else {
			order, _ = predictor.SelectOrderValley(maxOrder, func(k int) float64 {
				return predictor.EstimateBits(parcorBitsEstimate, errE, k, length)
			})
		}
	} else {
		order = maxOrder
	}

	b.OptOrder = order
	b.ParcorScaled = scaledByOrder[order]

	lpcByOrder := predictor.LPCByOrder(b.ParcorScaled, order)
	fullWin := make([]int32, histLen+length)
	copy(fullWin, win[:histLen])
	copy(fullWin[histLen:], working)
	residual := predictor.Residual(fullWin, histLen, length, lpcByOrder, isRA)

	if cfg.LongTermPred && order < length {
		residual = searchLTP(cfg, b, fullWin, histLen, length, order, residual)
	}

	b.Residual = residual
	b.Entropy = searchEntropy(cfg, residual)
	b.Bits = predictor.BitCostMisc + predictor.BitCostAdaptOrder +
		parcorCost(b.ParcorScaled, cfg.CoefTable) + b.Entropy.Bits
	return b
}

func constantValue(samples []int32) (int32, bool) {
	if len(samples) == 0 {
		return 0, false
	}
	v := samples[0]
	for _, s := range samples[1:] {
		if s != v {
			return 0, false
		}
	}
	return v, true
}

func commonTrailingZeros(samples []int32) int {
	var orv int32
	for _, s := range samples {
		orv |= s
	}
	if orv == 0 {
		return 0
	}
	z := bits.TrailingZeros32(uint32(orv))
	if z > 15 {
		z = 15
	}
	return z
}

func shiftRight(samples []int32, z int) []int32 {
	out := make([]int32, len(samples))
	for i, s := range samples {
		out[i] = s >> uint(z)
	}
	return out
}

func riceCoefCost(q int, param int, offset int) int {
	z := q
	if z < 0 {
		z = -z
	}
	v := uint32(z<<1) + uint32(offset)
	return int(v>>uint(param)) + 1 + param
}

func parcorCost(scaled []int32, table types.CoefTable) float64 {
	total := 0.0
	for i := range scaled {
		param, offset := predictor.CoefRiceParam(i, table)
		total += float64(riceCoefCost(int(scaled[i]>>14), param, offset))
	}
	return total
}

func costForOrder(cfg Config, working []int32, histLen int, scaled []int32, isRA bool) float64 {
	lpcByOrder := predictor.LPCByOrder(scaled, len(scaled))
	full := make([]int32, histLen+len(working))
	copy(full[histLen:], working)
	res := predictor.Residual(full, histLen, len(working), lpcByOrder, isRA)
	e := searchEntropy(cfg, res)
	return e.Bits
}

func searchLTP(cfg Config, b *Block, fullWin []int32, histLen, length, order int, lpcResidual []int32) []int32 {
	lagMax := histLen
	if lagMax > types.LTPMaxLag {
		lagMax = types.LTPMaxLag
	}
	winF := make([]float64, len(fullWin))
	for i, v := range fullWin {
		winF[i] = float64(v)
	}
	minLag := order + 1
	if minLag < 4 {
		minLag = 4
	}
	lag, ok := ltp.SearchLag(winF[histLen-lagMax:], lagMax, length, minLag)
	if !ok {
		return lpcResidual
	}
	var gains [5]int32
	if cfg.LTPGainMode == types.LTPGainFixed {
		gains = ltp.FixedGains
	} else {
		r, c := ltp.NormalEquations(fullWin, histLen, length, lag)
		gains = ltp.SolveCholesky(r, c)
	}
	ltpResidual := ltp.Residual(fullWin, histLen, length, lag, gains)

	lpcBits := residualEntropyBits(cfg, lpcResidual)
	ltpBits := residualEntropyBits(cfg, ltpResidual) + ltpHeaderBits(cfg.SampleRate)
	if ltpBits < lpcBits {
		b.LTP = &ltp.Info{UseLTP: true, Lag: lag, Gains: gains, Mode: cfg.LTPGainMode}
		return ltpResidual
	}
	return lpcResidual
}

func ltpHeaderBits(sampleRate int) float64 {
	bitsForLag := 8
	if sampleRate >= 96000 {
		bitsForLag++
	}
	if sampleRate >= 192000 {
		bitsForLag++
	}
	return float64(1 + 5*4 + bitsForLag) // use_ltp + 5 Rice-coded taps (rough) + lag field
}

func residualEntropyBits(cfg Config, residual []int32) float64 {
	return searchEntropy(cfg, residual).Bits
}

func searchEntropy(cfg Config, residual []int32) EntropyResult {
	maxParam := types.MaxRiceParam(cfg.Resolution)
	if !cfg.BGMC {
		choice := rice.Choose(residual, maxParam, cfg.ExactEntropy, cfg.SBPart)
		return EntropyResult{Mode: types.EntropyRice, SubBlocks: choice.SubBlocks, RiceK: choice.Params, Bits: float64(choice.Bits)}
	}
	sb, params, bits := bgmc.EstimateCost(residual, maxParam)
	return EntropyResult{Mode: types.EntropyBGMC, SubBlocks: sb, BGMCParam: params, Bits: bits}
}
