package walker

import (
	"bytes"

	"github.com/lessen/rele/internal/arena"
	"github.com/lessen/rele/internal/charset"
	"github.com/lessen/rele/internal/task"
)

// direction is where a task's Last pointer places it relative to the node
// it is currently at: arriving from the node's parent (first entry), or
// returning from having finished one of its two children.
type direction int

const (
	fromParent direction = iota
	fromA
	fromB
)

// dir derives direction from Last without a dedicated enum field on Task:
// Last is always either the sentinel NoIdx (root entry), a real child index
// (returning from that child), or the parent's index (descending into this
// node) — and a node's own index is never equal to NoIdx, so the three
// cases never collide.
func dir(n *arena.Node, last uint32) direction {
	switch last {
	case n.A:
		if n.A != arena.NoIdx {
			return fromA
		}
	case n.B:
		if n.B != arena.NoIdx {
			return fromB
		}
	}
	return fromParent
}

// ascend moves a task from the node at cur back up to its parent, marking
// cur as the node just finished so the parent's own dir() call routes
// correctly.
func ascend(t *task.Task, a *arena.Arena, cur uint32) {
	t.Last = cur
	t.Node = a.Node(cur).Parent
}

type outcome int

const (
	outcomeDead outcome = iota
	outcomeDone
)

// run holds the state of one starting position's walk: the shared dedup
// set that stops two hypotheses from re-exploring the same (node, Last,
// cursor) state. Last is part of the key, so a task returning to a node at
// the cursor it entered with (after a zero-width child) is not taken for a
// repeat of its own entry.
type run struct {
	ctx     *Context
	pool    *task.Pool
	text    []byte
	visited map[visitState]struct{}
}

type visitState struct {
	node, last uint32
	cursor     int
}

// play drives a single task through the tree until it dies or reaches
// DONE, collecting every sibling it spawns along the way. Ghost
// (ascend/ghost-success) transitions loop internally — nothing outside
// this call needs to see them — since nothing in this engine streams
// input one byte at a time across a shared position.
func (r *run) play(idx uint32) (outcome, []uint32) {
	var spawned []uint32

	for {
		t := r.pool.Get(idx)
		key := visitState{node: t.Node, last: t.Last, cursor: t.Cursor}
		if _, seen := r.visited[key]; seen {
			return outcomeDead, spawned
		}
		r.visited[key] = struct{}{}

		n := r.ctx.A.Node(t.Node)
		switch n.Op {
		case arena.OpDone:
			return outcomeDone, spawned

		case arena.OpConcat:
			r.stepConcat(idx)

		case arena.OpGroup:
			r.stepGroup(idx)

		case arena.OpAlternate:
			if s := r.stepAlternate(idx); s != task.NoTask {
				spawned = append(spawned, s)
			}

		case arena.OpMatch:
			if !r.stepMatch(idx) {
				return outcomeDead, spawned
			}

		case arena.OpMatchStr:
			if !r.stepMatchStr(idx) {
				return outcomeDead, spawned
			}

		case arena.OpMatchSet:
			if !r.stepMatchSet(idx) {
				return outcomeDead, spawned
			}

		case arena.OpMatchGrp:
			if !r.stepMatchGrp(idx) {
				return outcomeDead, spawned
			}

		case arena.OpAnchor:
			if !r.stepAnchor(idx) {
				return outcomeDead, spawned
			}

		case arena.OpCRLF:
			if !r.stepCRLF(idx) {
				return outcomeDead, spawned
			}

		case arena.OpPlus:
			if s := r.stepPlus(idx); s != task.NoTask {
				spawned = append(spawned, s)
			}

		case arena.OpStar:
			if s := r.stepStar(idx); s != task.NoTask {
				spawned = append(spawned, s)
			}

		case arena.OpQuestion:
			if s := r.stepQuestion(idx); s != task.NoTask {
				spawned = append(spawned, s)
			}

		case arena.OpMult:
			if s := r.stepMult(idx); s != task.NoTask {
				spawned = append(spawned, s)
			}

		case arena.OpDotStar, arena.OpDotPlus:
			s, dead := r.stepDot(idx)
			if dead {
				return outcomeDead, spawned
			}
			if s != task.NoTask {
				spawned = append(spawned, s)
			}
		}
	}
}

func (r *run) stepConcat(idx uint32) {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)
	switch dir(n, t.Last) {
	case fromParent:
		t.Last = cur
		t.Node = n.A
	case fromA:
		t.Last = cur
		t.Node = n.B
	default:
		ascend(t, r.ctx.A, cur)
	}
}

// stepGroup records capture boundaries on entry/exit and handles the
// empty-body case `()`  — still allocated a group index so a zero-length
// capture is exposed.
func (r *run) stepGroup(idx uint32) {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	switch dir(n, t.Last) {
	case fromParent:
		if n.GroupIdx != arena.GroupNone {
			t.Caps[n.GroupIdx].So = int32(t.Cursor)
		}
		if n.B == arena.NoIdx {
			if n.GroupIdx != arena.GroupNone {
				t.Caps[n.GroupIdx].Eo = int32(t.Cursor)
			}
			ascend(t, r.ctx.A, cur)
			return
		}
		t.Last = cur
		t.Node = n.B
	default:
		if n.GroupIdx != arena.GroupNone {
			t.Caps[n.GroupIdx].Eo = int32(t.Cursor)
		}
		ascend(t, r.ctx.A, cur)
	}
}

// stepAlternate spawns a sibling into B and continues into A, so A is
// explored to exhaustion — including every quantifier/alternation inside
// it — before B is ever tried: leftmost-alternative priority, not
// longest-match priority.
func (r *run) stepAlternate(idx uint32) uint32 {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	if dir(n, t.Last) != fromParent {
		ascend(t, r.ctx.A, cur)
		return task.NoTask
	}

	spawned := task.NoTask
	if n.B != arena.NoIdx {
		spawned = r.pool.Spawn(idx)
		s := r.pool.Get(spawned)
		s.Last = cur
		s.Node = n.B
		t = r.pool.Get(idx) // Spawn may have grown the pool's backing array
	}
	if n.A != arena.NoIdx {
		t.Last = cur
		t.Node = n.A
	} else {
		ascend(t, r.ctx.A, cur)
	}
	return spawned
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}

func matchClass(class, b byte, newline bool) bool {
	switch class {
	case '.':
		return !(newline && b == '\n')
	case 'd':
		return charset.IsDigitByte(b)
	case 'D':
		return !charset.IsDigitByte(b)
	case 'w':
		return charset.IsWordByte(b)
	case 'W':
		return !charset.IsWordByte(b)
	case 's':
		return charset.IsSpaceByte(b)
	case 'S':
		return !charset.IsSpaceByte(b)
	}
	return false
}

func (r *run) stepMatch(idx uint32) bool {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)
	if t.Cursor >= len(r.text) {
		return false
	}
	b := r.text[t.Cursor]

	var ok bool
	if n.Ch1 != 0 {
		got := b
		if r.ctx.Caseless {
			got = foldByte(got)
		}
		ok = got == n.Ch1
	} else {
		ok = matchClass(n.Ch2, b, r.ctx.Newline)
	}
	if !ok {
		return false
	}
	t.Cursor++
	ascend(t, r.ctx.A, cur)
	return true
}

func (r *run) stepMatchStr(idx uint32) bool {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)
	lit := r.ctx.A.Bytes(n.StrOff, n.StrLen)

	end := t.Cursor + len(lit)
	if end > len(r.text) {
		return false
	}
	seg := r.text[t.Cursor:end]
	if r.ctx.Caseless {
		for i, c := range lit {
			if foldByte(seg[i]) != c {
				return false
			}
		}
	} else if !bytes.Equal(seg, lit) {
		return false
	}
	t.Cursor = end
	ascend(t, r.ctx.A, cur)
	return true
}

func (r *run) stepMatchSet(idx uint32) bool {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)
	if t.Cursor >= len(r.text) {
		return false
	}
	if !r.ctx.A.Sets[n.SetIdx].Test(r.text[t.Cursor]) {
		return false
	}
	t.Cursor++
	ascend(t, r.ctx.A, cur)
	return true
}

// stepMatchGrp implements a backreference. A group that never participated
// in the match (So/Eo still -1) can never be matched against, so the task
// dies: treating an unset reference as instant failure, rather than
// vacuous success, matches the intuition that "whatever group 2 captured"
// is meaningless if group 2 never ran.
func (r *run) stepMatchGrp(idx uint32) bool {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	ref := t.Caps[n.GrpRef]
	if ref.So < 0 || ref.Eo < 0 {
		return false
	}
	refLen := int(ref.Eo - ref.So)
	if refLen == 0 {
		ascend(t, r.ctx.A, cur)
		return true
	}

	end := t.Cursor + refLen
	if end > len(r.text) {
		return false
	}
	want := r.text[ref.So:ref.Eo]
	got := r.text[t.Cursor:end]
	if r.ctx.Caseless {
		for i := range want {
			if foldByte(want[i]) != foldByte(got[i]) {
				return false
			}
		}
	} else if !bytes.Equal(want, got) {
		return false
	}
	t.Cursor = end
	ascend(t, r.ctx.A, cur)
	return true
}

func anchorHolds(kind arena.AnchorKind, text []byte, pos int, newline bool) bool {
	switch kind {
	case arena.AnchorStart:
		return pos == 0
	case arena.AnchorEnd:
		return pos == len(text)
	case arena.AnchorBOL:
		return pos == 0 || (newline && text[pos-1] == '\n')
	case arena.AnchorEOL:
		return pos == len(text) || (newline && text[pos] == '\n')
	case arena.AnchorWordB, arena.AnchorNonWordB:
		before := pos > 0 && charset.IsWordByte(text[pos-1])
		after := pos < len(text) && charset.IsWordByte(text[pos])
		boundary := before != after
		if kind == arena.AnchorWordB {
			return boundary
		}
		return !boundary
	}
	return false
}

func (r *run) stepAnchor(idx uint32) bool {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)
	if !anchorHolds(n.Anchor, r.text, t.Cursor, r.ctx.Newline) {
		return false
	}
	ascend(t, r.ctx.A, cur)
	return true
}

// stepCRLF implements \R: a CRLF pair, or a lone \r or \n (8-bit-only
// operation rules out the wider Unicode newline set \R normally covers).
func (r *run) stepCRLF(idx uint32) bool {
	t := r.pool.Get(idx)
	cur := t.Node
	text := r.text
	pos := t.Cursor

	switch {
	case pos+1 < len(text) && text[pos] == '\r' && text[pos+1] == '\n':
		t.Cursor += 2
	case pos < len(text) && (text[pos] == '\n' || text[pos] == '\r'):
		t.Cursor++
	default:
		return false
	}
	ascend(t, r.ctx.A, cur)
	return true
}

// spawnBoth is the shared greedy/lazy fork used by STAR and QUESTION:
// spawn a sibling for the non-preferred branch, and steer the current
// task into whichever branch Lazy prefers.
func (r *run) spawnBoth(idx uint32, cur, body uint32, lazy bool) uint32 {
	spawned := r.pool.Spawn(idx)
	t := r.pool.Get(idx) // fetched after Spawn: it may have grown the pool's backing array
	s := r.pool.Get(spawned)
	if !lazy {
		ascend(s, r.ctx.A, cur)
		t.Last = cur
		t.Node = body
	} else {
		s.Last = cur
		s.Node = body
		ascend(t, r.ctx.A, cur)
	}
	return spawned
}

// stepPlus requires at least one iteration of B, then behaves like a STAR:
// on return, spawn the non-preferred choice between looping again and
// ascending, unless the iteration made zero progress (the zero-length-
// iteration rule), in which case it stops unconditionally.
func (r *run) stepPlus(idx uint32) uint32 {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	if dir(n, t.Last) == fromParent {
		t.EnteredAt(cur, t.Cursor)
		t.Last = cur
		t.Node = n.B
		return task.NoTask
	}

	if !t.EnteredAt(cur, t.Cursor) {
		ascend(t, r.ctx.A, cur)
		return task.NoTask
	}
	return r.spawnBoth(idx, cur, n.B, n.Lazy)
}

// stepStar forks at both entry and every return from B, stopping for good
// (no further spawn) the moment an iteration makes zero progress.
func (r *run) stepStar(idx uint32) uint32 {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	if dir(n, t.Last) == fromB {
		if !t.EnteredAt(cur, t.Cursor) {
			ascend(t, r.ctx.A, cur)
			return task.NoTask
		}
	} else {
		t.EnteredAt(cur, t.Cursor)
	}
	return r.spawnBoth(idx, cur, n.B, n.Lazy)
}

// stepQuestion is one-shot: it forks on entry, and any return from B just
// ascends — there is no second iteration to consider.
func (r *run) stepQuestion(idx uint32) uint32 {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	if dir(n, t.Last) != fromParent {
		ascend(t, r.ctx.A, cur)
		return task.NoTask
	}
	return r.spawnBoth(idx, cur, n.B, n.Lazy)
}

// stepMult drives a {min,max} repetition via the task's counter stack: climb
// unconditionally to min, fork between continuing and stopping from min to
// max, and ascend once max is reached. A zero-progress iteration jumps the
// counter straight to min instead of looping forever trying to earn it one
// at a time.
func (r *run) stepMult(idx uint32) uint32 {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	if dir(n, t.Last) == fromParent {
		t.PushCounter(cur)
		t.EnteredAt(cur, t.Cursor)
		t.Last = cur
		t.Node = n.B
		return task.NoTask
	}

	progressed := t.EnteredAt(cur, t.Cursor)
	count := t.Counter()
	if !progressed {
		if count < n.Min {
			count = n.Min
		}
		t.SetCounter(count)
		t.PopCounter()
		ascend(t, r.ctx.A, cur)
		return task.NoTask
	}
	t.IncCounter()
	count = t.Counter()

	if count < n.Min {
		t.Last = cur
		t.Node = n.B
		return task.NoTask
	}
	if count >= n.Max {
		t.PopCounter()
		ascend(t, r.ctx.A, cur)
		return task.NoTask
	}

	spawned := r.pool.Spawn(idx)
	t = r.pool.Get(idx) // Spawn may have grown the pool's backing array
	s := r.pool.Get(spawned)
	if !n.Lazy {
		s.PopCounter()
		ascend(s, r.ctx.A, cur)
		t.Last = cur
		t.Node = n.B
	} else {
		s.Last = cur
		s.Node = n.B
		t.PopCounter()
		ascend(t, r.ctx.A, cur)
	}
	return spawned
}

func (r *run) dotOK(pos int) bool {
	if pos >= len(r.text) {
		return false
	}
	return !(r.ctx.Newline && r.text[pos] == '\n')
}

// stepDot handles DOTSTAR/DOTPLUS. Unlike every other looping construct it
// has no B child to descend into — the "." test is intrinsic to the node —
// so there is no parent/child return to key direction off of; instead a
// task that has already looped back into this node once carries Last==its
// own index (only this self-loop ever produces that), which is otherwise
// impossible for any other node in the tree.
func (r *run) stepDot(idx uint32) (uint32, bool) {
	t := r.pool.Get(idx)
	n := r.ctx.A.Node(t.Node)
	if n.Match != arena.NoIdx {
		return r.stepDotHinted(idx)
	}
	return r.dotIterate(idx, r.dotOK(t.Cursor))
}

// stepDotHinted bounds the iteration by the last position at or after the
// mandatory minimum where the optimiser's next-literal hint could still
// hold — past that point continuing can never lead to an overall match, so
// there is nothing to gain by trying. This keeps the hinted path exactly as
// correct as the unhinted one while pruning the search instead of jumping
// straight to a single candidate with no fallback.
func (r *run) stepDotHinted(idx uint32) (uint32, bool) {
	t := r.pool.Get(idx)
	n := r.ctx.A.Node(t.Node)
	hint := r.ctx.A.Node(n.Match)

	minConsume := 0
	if n.Op == arena.OpDotPlus && t.Last != t.Node {
		minConsume = 1 // only the first, non-looping entry still owes a byte
	}
	limit, found := r.lastHintOccurrence(hint, t.Cursor+minConsume)
	if !found {
		return task.NoTask, true
	}
	canContinue := t.Cursor < limit && r.dotOK(t.Cursor)
	return r.dotIterate(idx, canContinue)
}

// dotIterate is the shared self-loop body for stepDot/stepDotHinted:
// canContinue tells it whether another "." consumption is even viable this
// round (bounds-checked, newline-excluded, and — in the hinted case —
// short of the hint's last possible occurrence).
func (r *run) dotIterate(idx uint32, canContinue bool) (uint32, bool) {
	t := r.pool.Get(idx)
	cur := t.Node
	n := r.ctx.A.Node(cur)

	looped := t.Last == cur
	if looped && !t.EnteredAt(cur, t.Cursor) {
		ascend(t, r.ctx.A, cur)
		return task.NoTask, false
	}
	if !looped {
		t.EnteredAt(cur, t.Cursor)
	}

	if n.Op == arena.OpDotPlus && !looped {
		if !canContinue {
			return task.NoTask, true
		}
		t.Cursor++
		t.Last = cur
		return task.NoTask, false
	}

	if !canContinue {
		ascend(t, r.ctx.A, cur)
		return task.NoTask, false
	}

	spawned := r.pool.Spawn(idx)
	t = r.pool.Get(idx) // Spawn may have grown the pool's backing array
	s := r.pool.Get(spawned)
	if !n.Lazy {
		ascend(s, r.ctx.A, cur)
		t.Cursor++
		t.Last = cur
	} else {
		s.Cursor++
		s.Last = cur
		ascend(t, r.ctx.A, cur)
	}
	return spawned, false
}

// lastHintOccurrence finds the rightmost position at or after from where
// hint's own test would succeed. It is a plain reverse linear scan, not a
// SIMD one — internal/simd only exposes forward primitives, and nothing in
// the retrieval pack offered a reverse equivalent.
func (r *run) lastHintOccurrence(hint *arena.Node, from int) (int, bool) {
	if from > len(r.text) {
		return 0, false
	}
	switch hint.Op {
	case arena.OpMatch:
		if hint.Ch1 != 0 {
			return r.lastByteOccurrence(hint.Ch1, from)
		}
		return r.lastClassOccurrence(hint.Ch2, from)
	case arena.OpMatchStr:
		return r.lastStringOccurrence(r.ctx.A.Bytes(hint.StrOff, hint.StrLen), from)
	case arena.OpMatchSet:
		return r.lastSetOccurrence(&r.ctx.A.Sets[hint.SetIdx], from)
	case arena.OpAnchor:
		return r.lastAnchorOccurrence(hint.Anchor, from)
	}
	return 0, false
}

func (r *run) lastByteOccurrence(want byte, from int) (int, bool) {
	for i := len(r.text) - 1; i >= from; i-- {
		got := r.text[i]
		if r.ctx.Caseless {
			got = foldByte(got)
		}
		if got == want {
			return i, true
		}
	}
	return 0, false
}

func (r *run) lastClassOccurrence(class byte, from int) (int, bool) {
	for i := len(r.text) - 1; i >= from; i-- {
		if matchClass(class, r.text[i], r.ctx.Newline) {
			return i, true
		}
	}
	return 0, false
}

func (r *run) lastStringOccurrence(lit []byte, from int) (int, bool) {
	if len(lit) == 0 || from+len(lit) > len(r.text) {
		return 0, false
	}
	for i := len(r.text) - len(lit); i >= from; i-- {
		ok := true
		for j, c := range lit {
			got := r.text[i+j]
			if r.ctx.Caseless {
				got = foldByte(got)
			}
			if got != c {
				ok = false
				break
			}
		}
		if ok {
			return i, true
		}
	}
	return 0, false
}

func (r *run) lastSetOccurrence(set *charset.Set, from int) (int, bool) {
	for i := len(r.text) - 1; i >= from; i-- {
		if set.Test(r.text[i]) {
			return i, true
		}
	}
	return 0, false
}

func (r *run) lastAnchorOccurrence(kind arena.AnchorKind, from int) (int, bool) {
	for i := len(r.text); i >= from; i-- {
		if anchorHolds(kind, r.text, i, r.ctx.Newline) {
			return i, true
		}
	}
	return 0, false
}
