package psmt

import "github.com/gammazero/deque"

// dequeAdapter narrows gammazero/deque.Deque (pre-generics, interface{}
// element type) down to a TreeIndex-only stack, used by positionStack.
type dequeAdapter struct {
	d deque.Deque
}

func newDequeAdapter() *dequeAdapter {
	return &dequeAdapter{}
}

func (a *dequeAdapter) PushBack(v TreeIndex) {
	a.d.PushBack(v)
}

func (a *dequeAdapter) PopBack() TreeIndex {
	return a.d.PopBack().(TreeIndex)
}

func (a *dequeAdapter) Back() TreeIndex {
	return a.d.Back().(TreeIndex)
}

func (a *dequeAdapter) Len() int {
	return a.d.Len()
}
