// Package task implements the walker's execution frames ("Task") and the
// free-list pool that recycles them across positions and across calls to
// Match on the same compiled pattern.
//
// The arena a task walks is immutable once compiled, so a per-node "iter"
// counter kept on the node itself has no home here — two tasks walking the
// same STAR node at the same cursor are independent hypotheses, and
// mutating a shared node would leak state between them. Each task instead
// carries its own record of where it last (re)entered a looping
// construct: a sparse.SparseSet flagging which nodes have been entered at
// all, paired with a parallel cursor-value array, both sized to the
// pattern's fixed node count and allocated only on a task's first loop
// entry.
package task

import "github.com/lessen/rele/internal/sparse"

// NoTask is the free-list/next-pointer sentinel meaning "no task".
const NoTask = ^uint32(0)

// StackSize is the fixed depth of a task's MULT counter stack; deeper
// {m,n} nesting is rejected at compile time by internal/compiler's
// validateMultDepth rather than grown unboundedly.
const StackSize = 3

// Capture is one (start, end) capture slot; -1 in either field means the
// group did not participate in the match.
type Capture struct {
	So, Eo int32
}

// counterFrame is one live {m,n} repetition count, tagged with the MULT
// node it belongs to (defensive bookkeeping; only Count drives behavior).
type counterFrame struct {
	Node  uint32
	Count uint16
}

// Task is one live hypothesis about where the pattern matches: a position
// in the tree (Node), the node it was last entered from (Last, used to
// derive which leg a CONCAT/GROUP/etc. step is returning from), the input
// byte offset it has reached (Cursor), a small counter stack for nested
// MULT quantifiers, and the capture slots accumulated so far.
//
// The original design suspends a task mid-match and resumes it on the next
// byte of a shared, single-pass input scan. Nothing here streams — Find and
// friends always hold the whole subject slice — so a task instead advances
// its own Cursor directly within one step call (a MATCHSTR compares and
// skips its whole span in one shot, rather than waiting byte by byte for a
// shared scan to catch up). See DESIGN.md for the equivalence argument.
type Task struct {
	Next uint32 // pool free-list / run-list link; NoTask if none

	Node uint32
	Last uint32

	Cursor int

	sp       int
	counters [StackSize]counterFrame

	numNodes int
	iter     *sparse.SparseSet
	iterVal  []int32

	Caps []Capture
}

// PushCounter allocates a new MULT counter frame, returning false if the
// stack is already at StackSize (should never happen: validateMultDepth
// rejects patterns that would need this at compile time).
func (t *Task) PushCounter(node uint32) bool {
	if t.sp >= StackSize {
		return false
	}
	t.counters[t.sp] = counterFrame{Node: node}
	t.sp++
	return true
}

// PopCounter discards the innermost MULT counter frame on return from its
// body.
func (t *Task) PopCounter() {
	if t.sp > 0 {
		t.sp--
	}
}

// Counter returns the innermost live counter frame's count, for the MULT
// node currently executing.
func (t *Task) Counter() uint16 {
	if t.sp == 0 {
		return 0
	}
	return t.counters[t.sp-1].Count
}

// IncCounter bumps the innermost counter frame.
func (t *Task) IncCounter() {
	if t.sp > 0 {
		t.counters[t.sp-1].Count++
	}
}

// SetCounter overwrites the innermost counter frame's count directly,
// used when a zero-width repetition body means the usual one-at-a-time
// increment would never reach min on its own.
func (t *Task) SetCounter(v uint16) {
	if t.sp > 0 {
		t.counters[t.sp-1].Count = v
	}
}

// EnteredAt records that the task (re)entered a looping node (PLUS, STAR,
// MULT, DOTSTAR, DOTPLUS) at the given cursor, returning false if it was
// already recorded at that same cursor — meaning this would be a
// zero-length iteration and the loop must terminate instead of re-firing.
func (t *Task) EnteredAt(node uint32, cursor int) bool {
	if t.iter == nil {
		t.iter = sparse.NewSparseSet(uint32(t.numNodes))
		t.iterVal = make([]int32, t.numNodes)
	}
	c := int32(cursor)
	if t.iter.Contains(node) && t.iterVal[node] == c {
		return false
	}
	t.iter.Insert(node)
	t.iterVal[node] = c
	return true
}
