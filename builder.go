package psmt

import (
	"fmt"
	"sort"

	multierror "github.com/hashicorp/go-multierror"
)

// LeafEntry is one (index, value) pair supplied to Build. Index must be at
// the tree's height.
type LeafEntry[V any] struct {
	Index TreeIndex
	Value V
}

// Build takes an unsorted, possibly-duplicate-containing leaf list and
// produces a fully padded Tree of the given height. Every HeightMismatch
// and DuplicateIndex violation is collected into a single
// *multierror.Error and returned together, rather than failing on the
// first bad leaf — a caller feeding in a large batch wants the whole
// verdict in one pass.
func Build[V, P any](height uint16, leaves []LeafEntry[V], caps Capabilities[V, P]) (*Tree[V, P], error) {
	if height == 0 || int(height) > MaxHeight {
		return nil, fmt.Errorf("%w: height %d", ErrInvalidHeight, height)
	}

	sorted := make([]LeafEntry[V], len(leaves))
	copy(sorted, leaves)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index.Compare(sorted[j].Index) < 0
	})

	var errs *multierror.Error
	for i, l := range sorted {
		if l.Index.Height != height {
			errs = multierror.Append(errs, fmt.Errorf("%w: leaf %d has height %d, want %d",
				ErrHeightMismatch, i, l.Index.Height, height))
		}
		if i > 0 && sorted[i-1].Index.Equal(l.Index) {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s", ErrDuplicateIndex, l.Index))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	t := &Tree[V, P]{
		Height: height,
		caps:   caps,
		nodes:  make(map[TreeIndex]V, 2*len(sorted)+1),
		leaves: make(map[TreeIndex]struct{}, len(sorted)),
	}

	root := TreeIndex{Height: 0}
	buildSubtree(t, root, sorted)
	return t, nil
}

// buildSubtree implements the Builder algorithm of the sparse-tree spec as
// a recursive divide-and-conquer fold: split the sorted leaf slice on the
// bit at the apex's depth, recurse on each half, and merge. An empty half
// short-circuits to a single materialized padding node without
// recursing further — that materialized node is exactly the "padding
// apex" of an empty subtree, located without walking bit by bit through
// the gap. This produces the same stored positions and the same
// asymptotic O(n*H) work as an explicit bottom-up stack walk with
// padding-apex insertion, and is simpler to get right for leaves supplied
// in arbitrary order.
func buildSubtree[V, P any](t *Tree[V, P], apex TreeIndex, leaves []LeafEntry[V]) V {
	if len(leaves) == 0 {
		v := t.caps.Padding(apex)
		t.store(apex, v)
		return v
	}
	if apex.Height == t.Height {
		v := leaves[0].Value
		t.storeLeaf(apex, v)
		return v
	}

	splitAt := sort.Search(len(leaves), func(i int) bool {
		return leaves[i].Index.Bit(apex.Height) == 1
	})

	leftIdx, _ := apex.Child(0)
	rightIdx, _ := apex.Child(1)
	leftVal := buildSubtree(t, leftIdx, leaves[:splitAt])
	rightVal := buildSubtree(t, rightIdx, leaves[splitAt:])

	merged := t.caps.Merge(leftVal, rightVal)
	t.store(apex, merged)
	return merged
}
