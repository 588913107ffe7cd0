package psmt

import (
	"fmt"
	"sort"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// parallelFanoutThreshold is the minimum number of leaves under a subtree
// before BuildParallel bothers handing the two child subtrees to separate
// goroutines. Below it the goroutine/errgroup overhead dwarfs the work.
const parallelFanoutThreshold = 256

// BuildParallel is the concurrent sibling of Build: same inputs, same
// byte-identical output, but the bottom-up fold for disjoint subtrees runs
// concurrently once a subtree's leaf count crosses
// parallelFanoutThreshold. Section 5 of the spec permits but does not
// require this; maxWorkers bounds how many subtree folds run at once
// (<= 0 means unbounded — every subtree above the threshold fans out).
//
// Concurrency is capped with our own semaphore rather than
// errgroup.Group.SetLimit: SetLimit makes Go block once the token pool is
// exhausted, but buildSubtreeParallel calls Go recursively from within
// goroutines it itself spawned — a goroutine holding the last token that
// then blocks on its own child's Go call can never release that token,
// deadlocking the whole build. TryAcquire never blocks: a subtree that
// can't get a token just folds serially in the calling goroutine instead
// of fanning out, which is always a safe, correct fallback.
func BuildParallel[V, P any](height uint16, leaves []LeafEntry[V], caps Capabilities[V, P], maxWorkers int) (*Tree[V, P], error) {
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

	var g errgroup.Group
	var sem *semaphore.Weighted
	if maxWorkers > 0 {
		sem = semaphore.NewWeighted(int64(maxWorkers))
	}
	var mu sync.Mutex

	root := TreeIndex{Height: 0}
	buildSubtreeParallel(&g, sem, t, &mu, root, sorted)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

// buildSubtreeParallel mirrors buildSubtree's recursion exactly, except
// that once a subtree is large enough to be worth it and a fan-out token
// is available, the left half's fold is handed to the errgroup while the
// right half is folded on the current goroutine; a per-call WaitGroup
// joins the two before Merge is called, so the result is identical to the
// serial Build regardless of scheduling. sem may be nil (unbounded
// fan-out); when non-nil, a subtree that can't TryAcquire a token falls
// back to folding both halves serially on the current goroutine rather
// than blocking for one.
func buildSubtreeParallel[V, P any](g *errgroup.Group, sem *semaphore.Weighted, t *Tree[V, P], mu *sync.Mutex, apex TreeIndex, leaves []LeafEntry[V]) V {
	if len(leaves) == 0 {
		v := t.caps.Padding(apex)
		mu.Lock()
		t.store(apex, v)
		mu.Unlock()
		return v
	}
	if apex.Height == t.Height {
		v := leaves[0].Value
		mu.Lock()
		t.storeLeaf(apex, v)
		mu.Unlock()
		return v
	}

	splitAt := sort.Search(len(leaves), func(i int) bool {
		return leaves[i].Index.Bit(apex.Height) == 1
	})
	leftIdx, _ := apex.Child(0)
	rightIdx, _ := apex.Child(1)
	leftLeaves, rightLeaves := leaves[:splitAt], leaves[splitAt:]

	fanOut := false
	if len(leaves) >= parallelFanoutThreshold {
		if sem == nil {
			fanOut = true
		} else {
			fanOut = sem.TryAcquire(1)
		}
	}

	var leftVal, rightVal V
	if fanOut {
		var wg sync.WaitGroup
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}
			leftVal = buildSubtreeParallel(g, sem, t, mu, leftIdx, leftLeaves)
			return nil
		})
		rightVal = buildSubtreeParallel(g, sem, t, mu, rightIdx, rightLeaves)
		wg.Wait()
	} else {
		leftVal = buildSubtreeParallel(g, sem, t, mu, leftIdx, leftLeaves)
		rightVal = buildSubtreeParallel(g, sem, t, mu, rightIdx, rightLeaves)
	}

	merged := t.caps.Merge(leftVal, rightVal)
	mu.Lock()
	t.store(apex, merged)
	mu.Unlock()
	return merged
}
