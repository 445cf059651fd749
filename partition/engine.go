package partition

import "github.com/go-als/alsenc/types"

// SizeTable holds the per-node encoded bit count computed by the bottom-up
// enumeration of §4.3: for every level 0..D, the frame is laid out as
// 2^level equal-length blocks and each is costed once via the full
// per-block search. bs_sizes[node] is the independent cost; js_sizes[node]
// is the cost if that block is instead coded from the difference signal
// (only meaningful for joint-stereo channels).
type SizeTable struct {
	BS []float64 // indexed by node
	JS []float64 // indexed by node, may be nil for a channel with no partner
}

// NewSizeTable allocates a table sized for a tree of the given depth.
func NewSizeTable(depth int, withJS bool) *SizeTable {
	n := NumNodes(depth)
	t := &SizeTable{BS: make([]float64, n)}
	if withJS {
		t.JS = make([]float64, n)
	}
	return t
}

// Merge prunes a freshly built all-split Tree according to strategy,
// choosing the tree that minimizes total cost per §4.3. sizes[node] holds
// the cost to encode node as a single leaf (BS, or BS+JS summed
// for a joint pair — callers combining two channels pre-sum into one
// SizeTable before calling Merge).
func Merge(t *Tree, sizes []float64, strategy types.MergeStrategy) {
	switch strategy {
	case types.MergeFullSearch:
		mergeFullSearch(t, sizes, 0)
	default:
		mergeBottomUp(t, sizes)
	}
}

// mergeBottomUp starts from the finest level and prunes a split parent
// whenever merging is not more expensive than keeping both children,
// working from the deepest internal level up to the root. Tie-breaking
// favors the merged (coarser) form, per §4.3.
func mergeBottomUp(t *Tree, sizes []float64) {
	for level := t.depth - 1; level >= 0; level-- {
		lo, hi := levelRange(level)
		for n := lo; n <= hi; n++ {
			if !t.Split(n) {
				continue
			}
			l, r := Left(n), Right(n)
			childrenCost := leafCost(t, sizes, l) + leafCost(t, sizes, r)
			if sizes[n] <= childrenCost {
				t.SetSplit(n, false)
			}
		}
	}
}

// leafCost returns the cost of the subtree rooted at n under the current
// split bits: sizes[n] if n is a leaf, otherwise the summed cost of its
// children's subtrees. Bottom-up pruning resolves deeper levels first, so a
// child that is still split here was kept split because that was cheaper.
func leafCost(t *Tree, sizes []float64, n int) float64 {
	if t.Split(n) {
		return leafCost(t, sizes, Left(n)) + leafCost(t, sizes, Right(n))
	}
	return sizes[n]
}

// mergeFullSearch recurses into both subtrees first (letting them prune
// themselves), then compares the sum of the (possibly still-split)
// children against keeping n whole, per §4.3's recursive definition.
func mergeFullSearch(t *Tree, sizes []float64, n int) float64 {
	if Level(n) >= t.depth {
		return sizes[n]
	}
	l, r := Left(n), Right(n)
	t.SetSplit(n, true)
	costL := mergeFullSearch(t, sizes, l)
	costR := mergeFullSearch(t, sizes, r)
	childrenCost := costL + costR
	if sizes[n] <= childrenCost {
		t.SetSplit(n, false)
		return sizes[n]
	}
	return childrenCost
}

func levelRange(level int) (lo, hi int) {
	lo = (1 << uint(level)) - 1
	hi = (1 << uint(level+1)) - 2
	return
}
