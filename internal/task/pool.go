package task

import "github.com/lessen/rele/internal/sparse"

// Pool is the context's task free list: a slice of frames
// plus a singly-linked free chain threaded through Task.Next. Alloc
// reclaims from the chain before growing the slice; Free returns a frame
// to the chain for reuse by a later position or a later Match call.
type Pool struct {
	frames    []Task
	free      uint32
	numGroups int
	numNodes  int
}

// NewPool creates an empty pool sized for patterns with numGroups
// capturing groups (not counting group 0) over a tree of numNodes arena
// nodes; numNodes bounds each task's lazily-allocated loop-entry set.
func NewPool(numGroups, numNodes int) *Pool {
	return &Pool{free: NoTask, numGroups: numGroups, numNodes: numNodes}
}

// Alloc reclaims a frame from the free chain, or grows the pool if the
// chain is empty, resets it to its zero value (fresh captures, no
// counters, no cursor wait), and returns its index.
func (p *Pool) Alloc() uint32 {
	var idx uint32
	if p.free != NoTask {
		idx = p.free
		p.free = p.frames[idx].Next
	} else {
		p.frames = append(p.frames, Task{})
		idx = uint32(len(p.frames) - 1)
	}

	t := &p.frames[idx]
	*t = Task{numNodes: p.numNodes}
	if cap(t.Caps) >= p.numGroups+1 {
		t.Caps = t.Caps[:p.numGroups+1]
	} else {
		t.Caps = make([]Capture, p.numGroups+1)
	}
	for i := range t.Caps {
		t.Caps[i] = Capture{So: -1, Eo: -1}
	}
	return idx
}

// Spawn allocates a new frame as an independent copy of src, the way
// ALTERNATE/quantifier nodes fork a sibling hypothesis carrying the same
// captures and counter state.
func (p *Pool) Spawn(src uint32) uint32 {
	idx := p.Alloc()
	dst := &p.frames[idx]
	s := &p.frames[src]

	dst.Node = s.Node
	dst.Last = s.Last
	dst.Cursor = s.Cursor
	dst.sp = s.sp
	dst.counters = s.counters
	if s.iter != nil {
		dst.iterVal = append([]int32(nil), s.iterVal...)
		dst.iter = sparse.NewSparseSet(uint32(dst.numNodes))
		s.iter.Iter(func(node uint32) { dst.iter.Insert(node) })
	}
	copy(dst.Caps, s.Caps) // Alloc already sized dst.Caps to numGroups+1, matching s.Caps

	return idx
}

// Free returns idx to the head of the free chain.
func (p *Pool) Free(idx uint32) {
	p.frames[idx].Next = p.free
	p.free = idx
}

// Get returns a pointer to the frame at idx for in-place mutation.
func (p *Pool) Get(idx uint32) *Task {
	return &p.frames[idx]
}

// Reset discards every frame and empties the free chain — used after a
// Match call when the caller did not ask to keep tasks around.
func (p *Pool) Reset() {
	p.frames = p.frames[:0]
	p.free = NoTask
}

// FreeListEmpty reports whether the free chain currently holds no frames.
func (p *Pool) FreeListEmpty() bool {
	return p.free == NoTask
}

// Allocated reports whether any frame has ever been handed out since the
// last Reset.
func (p *Pool) Allocated() bool {
	return len(p.frames) > 0
}
