package partition

import (
	"testing"

	"github.com/go-als/alsenc/types"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		node, want int
	}{
		{0, 0}, {1, 1}, {2, 1}, {3, 2}, {6, 2}, {7, 3}, {14, 3}, {15, 4},
	}
	for _, c := range cases {
		if got := Level(c.node); got != c.want {
			t.Errorf("Level(%d) = %d, want %d", c.node, got, c.want)
		}
	}
}

func TestLeavesSumEqualsFrameSize(t *testing.T) {
	const N = 4096
	tr := NewTree(3)
	leaves := tr.Leaves(N, N)
	if got := Sum(leaves); got != N {
		t.Fatalf("Sum(leaves) = %d, want %d", got, N)
	}
	if len(leaves) != 8 {
		t.Fatalf("len(leaves) = %d, want 8 (finest level of depth 3)", len(leaves))
	}
}

func TestLeavesTruncatedShortFrame(t *testing.T) {
	const N = 4096
	short := N - 1
	tr := NewTree(2)
	leaves := tr.Leaves(short, N)
	if got := Sum(leaves); got != short {
		t.Fatalf("Sum(leaves) = %d, want %d", got, short)
	}
	last := leaves[len(leaves)-1]
	if last.Length == N/4 {
		t.Fatalf("expected last leaf truncated, got full length %d", last.Length)
	}
}

func TestMergeBottomUpPrunesWhenCheaper(t *testing.T) {
	tr := NewTree(1)
	sizes := make([]float64, NumNodes(1))
	sizes[0] = 100 // root: cheaper than children
	sizes[1] = 60
	sizes[2] = 60
	Merge(tr, sizes, types.MergeBottomUp)
	if tr.Split(0) {
		t.Fatalf("expected root pruned (merged)")
	}
}

func TestMergeBottomUpKeepsSplitWhenCheaper(t *testing.T) {
	tr := NewTree(1)
	sizes := make([]float64, NumNodes(1))
	sizes[0] = 200 // root: more expensive than children
	sizes[1] = 60
	sizes[2] = 60
	Merge(tr, sizes, types.MergeBottomUp)
	if !tr.Split(0) {
		t.Fatalf("expected root kept split")
	}
}

func TestFullSearchMatchesBottomUpOnSimpleTree(t *testing.T) {
	sizes := make([]float64, NumNodes(2))
	sizes[0] = 1000
	sizes[1], sizes[2] = 300, 300
	sizes[3], sizes[4], sizes[5], sizes[6] = 100, 100, 100, 100

	bu := NewTree(2)
	Merge(bu, sizes, types.MergeBottomUp)

	fs := NewTree(2)
	Merge(fs, sizes, types.MergeFullSearch)

	if bu.BSInfo() != fs.BSInfo() {
		t.Fatalf("bottom-up = %b, full-search = %b, expected same tree", bu.BSInfo(), fs.BSInfo())
	}
}
