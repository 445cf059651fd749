// Package stereo implements the difference-signal generator and the
// independent-vs-joint coding decision for channel pairs (spec §4.2, §4.3).
package stereo

// Difference computes d[n] = c2[n] - c1[n] over aligned windows (history +
// current frame) of two channel lanes that share the same length, per
// spec §4.2.
func Difference(c1, c2 []int32) []int32 {
	n := len(c1)
	if len(c2) < n {
		n = len(c2)
	}
	d := make([]int32, n)
	for i := 0; i < n; i++ {
		d[i] = c2[i] - c1[i]
	}
	return d
}

// PairChoice is the outcome of the independent-vs-joint comparison for a
// channel pair (spec §4.3).
type PairChoice struct {
	Independent bool // true => independent_bs[c] set, each channel keeps its own tree
	CostIndep   float64
	CostJoint   float64
}

// ChoosePair compares cost_independent(c)+cost_independent(c+1)+overhead
// against cost_joint(pair), returning the cheaper option. Ties favor the
// joint (shared-tree) form, matching the merge engine's tie-break-toward-
// coarser rule in §4.3.
func ChoosePair(costIndepC, costIndepC1, costJoint, bsInfoOverhead float64) PairChoice {
	indep := costIndepC + costIndepC1 + bsInfoOverhead
	return PairChoice{
		Independent: indep < costJoint,
		CostIndep:   indep,
		CostJoint:   costJoint,
	}
}
