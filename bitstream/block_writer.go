// Package bitstream implements the ALS block, frame, and config writers of
// spec §4.6-§4.7.
package bitstream

import (
	"github.com/go-als/alsenc/bitio"
	"github.com/go-als/alsenc/block"
	"github.com/go-als/alsenc/entropy/bgmc"
	"github.com/go-als/alsenc/ltp"
	"github.com/go-als/alsenc/predictor"
	"github.com/go-als/alsenc/types"
	"github.com/go-als/alsenc/util"
)

// StreamParams are the config fields the block writer needs from the
// immutable stream configuration (spec §3).
type StreamParams struct {
	Resolution  types.Resolution
	SampleRate  int
	MaxOrder    int
	AdaptOrder  bool
	SBPart      bool
	BGMC        bool
	LongTermPre bool
	CoefTable   types.CoefTable
}

// WriteBlock emits one block per §4.6's field order.
func WriteBlock(w *bitio.Writer, b *block.Block, sp StreamParams, isFirstSubblockOfRA bool) error {
	if b.Constant {
		if err := w.WriteBit(false); err != nil { // block_type=0
			return err
		}
		nonzero := b.ConstantValue != 0
		if err := w.WriteBit(nonzero); err != nil {
			return err
		}
		if err := w.WriteBit(b.JSBlock != types.JSIndependent); err != nil {
			return err
		}
		if err := w.WriteBits(0, 5); err != nil { // reserved
			return err
		}
		width := sp.Resolution.BitsPerSample()
		return w.WriteBits(uint32(b.ConstantValue), width)
	}

	if err := w.WriteBit(true); err != nil { // block_type=1
		return err
	}
	if err := w.WriteBit(b.JSBlock != types.JSIndependent); err != nil {
		return err
	}

	maxParam := types.MaxRiceParam(sp.Resolution)
	if err := writeSubBlocksAndParams(w, b, sp, maxParam); err != nil {
		return err
	}

	if err := w.WriteBit(b.ShiftLSBs > 0); err != nil {
		return err
	}
	if b.ShiftLSBs > 0 {
		if err := w.WriteBits(uint32(b.ShiftLSBs-1), 4); err != nil {
			return err
		}
	}

	if sp.AdaptOrder {
		bits := optOrderBits(b.Length, sp.MaxOrder)
		if err := w.WriteBits(uint32(b.OptOrder), bits); err != nil {
			return err
		}
	}

	if err := writeParcor(w, b.ParcorScaled, sp.CoefTable); err != nil {
		return err
	}

	if b.LTP != nil && b.LTP.UseLTP {
		if err := writeLTP(w, b.LTP, sp.SampleRate, b.OptOrder); err != nil {
			return err
		}
	} else if sp.LongTermPre {
		if err := w.WriteBit(false); err != nil {
			return err
		}
	}

	return writeResidual(w, b, sp, maxParam, isFirstSubblockOfRA)
}

// optOrderBits implements §4.6: ceil_log2(clip(length/8 - 1, 2, P+1)).
func optOrderBits(length, maxOrder int) int {
	v := util.Clip(length/8-1, 2, maxOrder+1)
	return util.Log2Ceil(v)
}

func writeSubBlocksAndParams(w *bitio.Writer, b *block.Block, sp StreamParams, maxParam int) error {
	needsField := sp.SBPart || sp.BGMC
	if needsField {
		// BGMC: 2 bits, code = log2(sub_blocks) selecting among {1,2,4,8}.
		// Rice: 1 bit, set for 4 sub-blocks and clear for 1.
		code := util.Log2Ceil(b.Entropy.SubBlocks)
		width := 1
		if sp.BGMC {
			width = 2
		} else {
			code >>= 1
		}
		if err := w.WriteBits(uint32(code), width); err != nil {
			return err
		}
	}

	if b.Entropy.Mode == types.EntropyBGMC {
		first := b.Entropy.BGMCParam[0]
		width := 8
		if sp.Resolution > types.Resolution16 {
			width = 9
		}
		if err := w.WriteBits(uint32(first.Byte()), width); err != nil {
			return err
		}
		prev := first.Byte()
		for _, p := range b.Entropy.BGMCParam[1:] {
			delta := p.Byte() - prev
			if err := w.WriteSignedRice(int32(delta), 2); err != nil {
				return err
			}
			prev = p.Byte()
		}
		return nil
	}

	width := 4
	if sp.Resolution > types.Resolution16 {
		width = 5
	}
	first := b.Entropy.RiceK[0]
	if err := w.WriteBits(uint32(first), width); err != nil {
		return err
	}
	prev := first
	for _, k := range b.Entropy.RiceK[1:] {
		if err := w.WriteSignedRice(int32(k-prev), 0); err != nil {
			return err
		}
		prev = k
	}
	return nil
}

func writeParcor(w *bitio.Writer, scaled []int32, table types.CoefTable) error {
	for i, v := range scaled {
		if table == types.CoefTableRaw {
			// raw 7-bit + 64 bias
			q := int32(v>>14) + 64
			if err := w.WriteBits(uint32(q), 7); err != nil {
				return err
			}
			continue
		}
		q := reconToQ(v, i)
		param, offset := predictor.CoefRiceParam(i, table)
		z := bitio.ZigZag(int32(q)) + uint32(offset)
		if err := w.WriteUnsignedRice(z, param); err != nil {
			return err
		}
	}
	return nil
}

// reconToQ inverts ReconstructParcor to recover the quantized code for
// bitstream emission: for i>=2, v = (q<<14)+(1<<13) so q = (v-(1<<13))>>14.
// For the companded indices 0 and 1 it searches the 7-bit code range for
// the code whose reconstruction equals v.
func reconToQ(v int32, i int) int {
	if i >= 2 {
		return int((v - (1 << 13)) >> 14)
	}
	for q := -64; q <= 63; q++ {
		if predictor.ReconstructParcor(q, i) == v {
			return q
		}
	}
	return int(v >> 14)
}

// writeLTP emits the LTP header per §4.6: 1 bit use_ltp, 5 taps as
// signed-Rice codes with parameters (1,2,2,2,1) — tap 2 instead uses an
// unsigned-Rice-parameter-2 index into the 16-entry gain table — then a
// sample-rate-dependent field for lag - max(4, opt_order+1).
func writeLTP(w *bitio.Writer, l *ltp.Info, sampleRate int, optOrder int) error {
	if err := w.WriteBit(true); err != nil {
		return err
	}
	riceParams := [5]int{1, 2, 2, 2, 1}
	for t, g := range l.Gains {
		if t == 2 {
			idx := ltp.GainIndex16(g)
			if err := w.WriteUnsignedRice(uint32(idx), 2); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteSignedRice(g, riceParams[t]); err != nil {
			return err
		}
	}
	lagBits := 8
	if sampleRate >= 96000 {
		lagBits++
	}
	if sampleRate >= 192000 {
		lagBits++
	}
	base := optOrder + 1
	if base < 4 {
		base = 4
	}
	return w.WriteBits(uint32(l.Lag-base), lagBits)
}

func writeResidual(w *bitio.Writer, b *block.Block, sp StreamParams, maxParam int, isFirstSubblockOfRA bool) error {
	if b.Entropy.Mode == types.EntropyBGMC {
		return writeBGMCResidual(w, b)
	}
	return writeRiceResidual(w, b, sp, maxParam, isFirstSubblockOfRA)
}

func subBlockBounds(length, n int) []int {
	bounds := make([]int, n+1)
	step := length / n
	for i := 0; i <= n; i++ {
		bounds[i] = i * step
	}
	return bounds
}

func writeRiceResidual(w *bitio.Writer, b *block.Block, sp StreamParams, maxParam int, isFirstSubblockOfRA bool) error {
	bounds := subBlockBounds(b.Length, b.Entropy.SubBlocks)
	for sub := 0; sub < b.Entropy.SubBlocks; sub++ {
		k := b.Entropy.RiceK[sub]
		start, end := bounds[sub], bounds[sub+1]
		n := start
		if sub == 0 && isFirstSubblockOfRA && b.RABlock {
			progressiveBits := sp.Resolution.BitsPerSample() - 4
			for ; n < end && n-start < b.OptOrder; n++ {
				param := progressiveBits
				switch n - start {
				case 0:
					param = util.Min(progressiveBits, maxParam)
				case 1:
					param = util.Min(k+3, maxParam)
				default:
					param = util.Min(k+1, maxParam)
				}
				if err := w.WriteSignedRice(b.Residual[n], param); err != nil {
					return err
				}
			}
		}
		for ; n < end; n++ {
			if err := w.WriteSignedRice(b.Residual[n], k); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeBGMCResidual(w *bitio.Writer, b *block.Block) error {
	bounds := subBlockBounds(b.Length, b.Entropy.SubBlocks)
	buf := make([]byte, 4*(b.Length+64))
	var enc bgmc.Encoder
	enc.Init(buf)
	for sub := 0; sub < b.Entropy.SubBlocks; sub++ {
		p := b.Entropy.BGMCParam[sub]
		start, end := bounds[sub], bounds[sub+1]
		if err := bgmc.EncodeResidualBlock(&enc, w, b.Residual[start:end], p, end-start); err != nil {
			return err
		}
	}
	enc.Done()
	return nil
}
