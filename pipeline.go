// pipeline.go implements the per-frame orchestration that wires the
// sub-packages together: sample staging, difference-signal generation,
// partition search, per-block parameter search, and bitstream emission
// (spec §2's numbered pipeline stages, §4.3's joint-stereo selector).

package alsenc

import (
	"github.com/go-als/alsenc/bitstream"
	"github.com/go-als/alsenc/block"
	"github.com/go-als/alsenc/partition"
	"github.com/go-als/alsenc/stereo"
	"github.com/go-als/alsenc/types"
)

// channelPlan is one channel's chosen tree plus per-leaf joint-stereo
// decisions, ready for the final per-block search pass.
type channelPlan struct {
	tree  *partition.Tree
	js    []types.JSInfo // parallel to tree.Leaves(), independent unless overridden
	leafs []partition.Leaf
}

// blockCfg returns the block.Config derived from the stream Config.
func (e *Encoder) blockCfg() block.Config {
	return block.Config{
		Resolution:      e.cfg.Resolution,
		SampleRate:      e.cfg.SampleRate,
		MaxOrder:        e.cfg.MaxOrder,
		AdaptOrder:      e.cfg.AdaptOrder,
		FullSearchOrder: e.cfg.FullSearchOrder,
		LongTermPred:    e.cfg.LongTermPrediction,
		LTPGainMode:     e.cfg.LTPGainMode,
		BGMC:            e.cfg.BGMC,
		SBPart:          e.cfg.SBPart,
		CoefTable:       e.cfg.CoefTable,
		ConstantTest:    true,
		ShiftTest:       true,
		ExactEntropy:    e.cfg.ExactEntropy,
	}
}

// searchLeaf runs the full per-block search for a block starting at
// offset within the current frame, using everything preceding it
// (carried history plus any earlier part of the frame) as prediction
// context, per the Lane.Window layout: full[:histLen] is history,
// full[histLen:] is the current frame.
func searchLeaf(cfg block.Config, full []int32, histLen, offset, length int, isRA bool) *block.Block {
	absHist := histLen + offset
	return block.Search(cfg, full[:absHist+length], absHist, length, isRA)
}

// sizeTableForChannel builds the bottom-up enumeration size table (spec
// §4.3) for one channel's own signal.
func sizeTableForChannel(cfg block.Config, full []int32, histLen, frameLen, depth int, isRAFrame bool) *partition.SizeTable {
	st := partition.NewSizeTable(depth, false)
	for level := 0; level <= depth; level++ {
		numBlocks := 1 << uint(level)
		blockLen := frameLen / numBlocks
		lo := numBlocks - 1
		for idx := 0; idx < numBlocks; idx++ {
			n := lo + idx
			offset := idx * blockLen
			length := blockLen
			if idx == numBlocks-1 {
				length = frameLen - offset
			}
			if length <= 0 {
				continue
			}
			isRA := isRAFrame && offset == 0
			b := searchLeaf(cfg, full, histLen, offset, length, isRA)
			st.BS[n] = b.Bits
		}
	}
	return st
}

// planChannel builds and merges a single channel's partition tree from
// its own size table (used both for mono channels and as the
// independent-coding baseline for joint-stereo pairs).
func planChannel(cfg block.Config, full []int32, histLen, frameLen, depth int, isRAFrame bool, strategy types.MergeStrategy) (*partition.Tree, *partition.SizeTable) {
	st := sizeTableForChannel(cfg, full, histLen, frameLen, depth, isRAFrame)
	t := partition.NewTree(depth)
	partition.Merge(t, st.BS, strategy)
	return t, st
}

// planPair builds a shared tree for a joint-stereo channel pair: at
// every node the combined cost is the cheaper of (both independent) or
// (one channel diff-coded), per §4.3's "both channels' subtree costs are
// summed at every node". It returns the shared tree, per-node js choice
// for channel a (JSIndependent or JSFirstDiff), and for channel b
// (JSIndependent or JSSecondDiff).
func planPair(cfg block.Config, fullA, fullB, fullDiff []int32, histLen, frameLen, depth int, isRAFrame bool, strategy types.MergeStrategy) (*partition.Tree, []types.JSInfo, []types.JSInfo, []float64) {
	n := partition.NumNodes(depth)
	combined := make([]float64, n)
	jsA := make([]types.JSInfo, n)
	jsB := make([]types.JSInfo, n)

	for level := 0; level <= depth; level++ {
		numBlocks := 1 << uint(level)
		blockLen := frameLen / numBlocks
		lo := numBlocks - 1
		for idx := 0; idx < numBlocks; idx++ {
			node := lo + idx
			offset := idx * blockLen
			length := blockLen
			if idx == numBlocks-1 {
				length = frameLen - offset
			}
			if length <= 0 {
				continue
			}
			isRA := isRAFrame && offset == 0

			costA := searchLeaf(cfg, fullA, histLen, offset, length, isRA).Bits
			costB := searchLeaf(cfg, fullB, histLen, offset, length, isRA).Bits
			costD := searchLeaf(cfg, fullDiff, histLen, offset, length, isRA).Bits

			bothIndep := costA + costB
			aDiff := costD + costB
			bDiff := costA + costD

			best := bothIndep
			jsA[node], jsB[node] = types.JSIndependent, types.JSIndependent
			if aDiff < best {
				best = aDiff
				jsA[node], jsB[node] = types.JSFirstDiff, types.JSIndependent
			}
			if bDiff < best {
				best = bDiff
				jsA[node], jsB[node] = types.JSIndependent, types.JSSecondDiff
			}
			combined[node] = best
		}
	}

	t := partition.NewTree(depth)
	partition.Merge(t, combined, strategy)
	return t, jsA, jsB, combined
}

// treeCost sums the size table's leaf costs over the tree's final leaves.
func treeCost(sizes []float64, leaves []partition.Leaf) float64 {
	var total float64
	for _, l := range leaves {
		total += sizes[l.Node]
	}
	return total
}

// planFrame decides, for every channel, its final partition tree and
// per-leaf joint-stereo choice, pairing up (0,1), (2,3), ... and leaving
// an odd trailing channel independent.
func (e *Encoder) planFrame(frameLen int, isRAFrame bool) []channelPlan {
	cfg := e.blockCfg()
	depth := e.cfg.BlockSwitchDepth
	plans := make([]channelPlan, e.cfg.Channels)

	c := 0
	for c < e.cfg.Channels {
		if e.cfg.JointStereo && c+1 < e.cfg.Channels {
			fullA := e.lanes[c].Window()
			fullB := e.lanes[c+1].Window()
			diff := stereo.Difference(fullA, fullB)

			indepTreeA, stA := planChannel(cfg, fullA, e.histLen, frameLen, depth, isRAFrame, e.cfg.MergeStrategy)
			indepTreeB, stB := planChannel(cfg, fullB, e.histLen, frameLen, depth, isRAFrame, e.cfg.MergeStrategy)
			leavesA := indepTreeA.Leaves(frameLen, frameLen)
			leavesB := indepTreeB.Leaves(frameLen, frameLen)
			costIndepA := treeCost(stA.BS, leavesA)
			costIndepB := treeCost(stB.BS, leavesB)

			jointTree, jsA, jsB, combinedCosts := planPair(cfg, fullA, fullB, diff, e.histLen, frameLen, depth, isRAFrame, e.cfg.MergeStrategy)
			jointLeaves := jointTree.Leaves(frameLen, frameLen)
			costJoint := treeCost(combinedCosts, jointLeaves)

			choice := stereo.ChoosePair(costIndepA, costIndepB, costJoint, bsInfoOverheadBits)
			if choice.Independent {
				plans[c] = channelPlan{tree: indepTreeA, js: allIndependent(len(leavesA)), leafs: leavesA}
				plans[c+1] = channelPlan{tree: indepTreeB, js: allIndependent(len(leavesB)), leafs: leavesB}
			} else {
				jsPerLeafA := make([]types.JSInfo, len(jointLeaves))
				jsPerLeafB := make([]types.JSInfo, len(jointLeaves))
				for i, l := range jointLeaves {
					jsPerLeafA[i] = jsA[l.Node]
					jsPerLeafB[i] = jsB[l.Node]
				}
				plans[c] = channelPlan{tree: jointTree, js: jsPerLeafA, leafs: jointLeaves}
				plans[c+1] = channelPlan{tree: jointTree, js: jsPerLeafB, leafs: jointLeaves}
			}
			c += 2
			continue
		}

		full := e.lanes[c].Window()
		tree, st := planChannel(cfg, full, e.histLen, frameLen, depth, isRAFrame, e.cfg.MergeStrategy)
		leaves := tree.Leaves(frameLen, frameLen)
		_ = st
		plans[c] = channelPlan{tree: tree, js: allIndependent(len(leaves)), leafs: leaves}
		c++
	}
	return plans
}

func allIndependent(n int) []types.JSInfo {
	js := make([]types.JSInfo, n)
	return js // zero value is types.JSIndependent
}

// bsInfoOverheadBits approximates the extra bits a shared joint tree's
// header costs over two independent per-channel trees (spec §4.3).
const bsInfoOverheadBits = 1.0

// searchFrame runs the final per-block search for every channel's chosen
// leaves, substituting the difference signal where a leaf's js choice
// requires it, and assembles bitstream.ChannelFrame values.
func (e *Encoder) searchFrame(plans []channelPlan, frameLen int, isRAFrame bool) []bitstream.ChannelFrame {
	cfg := e.blockCfg()
	out := make([]bitstream.ChannelFrame, e.cfg.Channels)

	diffCache := map[[2]int][]int32{}
	pairOf := func(c int) (int, bool, bool) {
		if c%2 == 0 && c+1 < e.cfg.Channels {
			return c + 1, true, false
		}
		if c%2 == 1 {
			return c - 1, false, true
		}
		return -1, false, false
	}

	for c := 0; c < e.cfg.Channels; c++ {
		plan := plans[c]
		blocks := make([]*block.Block, len(plan.leafs))
		for i, l := range plan.leafs {
			isRA := isRAFrame && l.Offset == 0
			js := plan.js[i]
			var full []int32
			switch js {
			case types.JSIndependent:
				full = e.lanes[c].Window()
			default:
				partner, _, _ := pairOf(c)
				key := [2]int{c, partner}
				if js == types.JSSecondDiff {
					key = [2]int{partner, c}
				}
				d, ok := diffCache[key]
				if !ok {
					a, b := c, partner
					if js == types.JSSecondDiff {
						a, b = partner, c
					}
					d = stereo.Difference(e.lanes[a].Window(), e.lanes[b].Window())
					diffCache[key] = d
				}
				full = d
			}
			b := searchLeaf(cfg, full, e.histLen, l.Offset, l.Length, isRA)
			b.JSBlock = js
			blocks[i] = b
		}
		out[c] = bitstream.ChannelFrame{BSInfo: plan.tree.BSInfo(), Blocks: blocks}
	}
	return out
}

// streamParams returns the bitstream.StreamParams derived from Config.
func (e *Encoder) streamParams() bitstream.StreamParams {
	return bitstream.StreamParams{
		Resolution:  e.cfg.Resolution,
		SampleRate:  e.cfg.SampleRate,
		MaxOrder:    e.cfg.MaxOrder,
		AdaptOrder:  e.cfg.AdaptOrder,
		SBPart:      e.cfg.SBPart,
		BGMC:        e.cfg.BGMC,
		LongTermPre: e.cfg.LongTermPrediction,
		CoefTable:   e.cfg.CoefTable,
	}
}

// advanceLanes shifts every channel lane's history window forward after
// a frame has been fully searched and written.
func (e *Encoder) advanceLanes() {
	for _, l := range e.lanes {
		l.Advance()
	}
}
