// Package walker implements the engine's iterative tree walk: for each
// candidate starting position, a pool of Task hypotheses descends the
// compiled tree, spawning siblings at ALTERNATE and quantifier nodes and
// racing them for the first reach of the DONE node.
//
// A byte-at-a-time, single shared scan suspending each task mid-match is
// the natural structure for bounded-memory, streaming execution. Find and
// friends here always hold the whole subject slice in memory (no
// streaming is a stated non-goal), so a task instead advances its own
// cursor directly within one step call; MATCHSTR, for instance, compares
// and skips its whole span in one shot instead of waiting byte by byte for
// a shared scan to catch up. The tree shape, the spawn/priority rules and
// the acceptance rule are unchanged; only the mechanism that drives a task
// from one byte to the next is local instead of global. See DESIGN.md for
// the full argument.
package walker

import (
	"github.com/lessen/rele/internal/arena"
	"github.com/lessen/rele/internal/litset"
	"github.com/lessen/rele/internal/optimizer"
	"github.com/lessen/rele/internal/simd"
	"github.com/lessen/rele/internal/task"
)

// Context bundles everything the walker needs to execute a compiled
// pattern against a subject string: the tree itself, the optimiser's
// fast-start anchor, and the flags that change per-node semantics
// (caseless folding, newline-sensitive "." and "^"/"$").
type Context struct {
	A         *arena.Arena
	Root      uint32 // the outer GROUP node (group 0)
	NumGroups int     // capturing groups, not counting group 0

	Caseless bool
	Newline  bool

	// NoFastStart disables the outer-scan optimisation entirely, trying
	// every input position in order; this must never change which
	// captures are accepted, only how fast they are found.
	NoFastStart bool
	FastStart   optimizer.FastStart

	// Literals is the existence-only alternation prefilter built when
	// FastStart came back empty but the tree's outermost shape is a
	// 3-or-more-branch literal alternation (see
	// optimizer.CollectAlternationLiterals). Nil when not applicable.
	Literals *litset.Set
}

// NewPool creates a task pool sized for this pattern's capturing groups.
func (c *Context) NewPool() *task.Pool {
	return task.NewPool(c.NumGroups, len(c.A.Nodes))
}

// Match runs the walk against text, returning whether the pattern matched
// and, if so, the capture slots (index 0 is the whole match). When
// keepTasks is false the pool is fully reset after the call, emptying its
// free list; when true, whatever frames the walk allocated are left in
// place for the caller to inspect via the pool's own accounting.
func (c *Context) Match(pool *task.Pool, text []byte, keepTasks bool) (bool, []task.Capture) {
	ok, caps := c.search(pool, text)
	if !keepTasks {
		pool.Reset()
	}
	return ok, caps
}

func (c *Context) search(pool *task.Pool, text []byte) (bool, []task.Capture) {
	if !c.NoFastStart {
		switch c.FastStart.Kind {
		case optimizer.KindByte:
			return c.scanByte(pool, text)
		case optimizer.KindString:
			return c.scanString(pool, text)
		case optimizer.KindSet:
			return c.scanSet(pool, text)
		case optimizer.KindAnchor:
			return c.scanAnchor(pool, text)
		case optimizer.KindDotHead:
			return c.runAt(pool, text, 0)
		}
	}

	if c.Literals != nil && !c.Literals.ContainsAny(text) {
		return false, nil
	}

	for pos := 0; pos <= len(text); pos++ {
		if ok, caps := c.runAt(pool, text, pos); ok {
			return true, caps
		}
	}
	return false, nil
}

func (c *Context) scanByte(pool *task.Pool, text []byte) (bool, []task.Capture) {
	b := c.FastStart.Byte
	pos := 0
	for pos <= len(text) {
		idx := scanByteFold(text[pos:], b, c.FastStart.Caseless)
		if idx == -1 {
			return false, nil
		}
		pos += idx
		if ok, caps := c.runAt(pool, text, pos); ok {
			return true, caps
		}
		pos++
	}
	return false, nil
}

// scanByteFold is simd.Memchr widened to also match b's opposite case when
// caseless — literal bytes are folded to lowercase at compile time
// (internal/compiler's parseLiteralRun), so b here is always already
// lowercase when it's a letter.
func scanByteFold(text []byte, b byte, caseless bool) int {
	if caseless && b >= 'a' && b <= 'z' {
		return simd.Memchr2(text, b, b-32)
	}
	return simd.Memchr(text, b)
}

func (c *Context) scanString(pool *task.Pool, text []byte) (bool, []task.Capture) {
	needle := c.A.Bytes(c.FastStart.StrOff, c.FastStart.StrLen)
	pos := 0
	for pos+len(needle) <= len(text) {
		var idx int
		if c.FastStart.Caseless {
			idx = caselessIndex(text[pos:], needle)
		} else {
			idx = simd.Memmem(text[pos:], needle)
		}
		if idx == -1 {
			return false, nil
		}
		pos += idx
		if ok, caps := c.runAt(pool, text, pos); ok {
			return true, caps
		}
		pos++
	}
	return false, nil
}

// caselessIndex is simd.Memmem's fallback for the rare caseless
// fast-start-string case: needle is already lowercase (folded at compile
// time), so each haystack byte only needs folding, not the needle.
func caselessIndex(haystack, needle []byte) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j, c := range needle {
			if foldByte(haystack[i+j]) != c {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func (c *Context) scanSet(pool *task.Pool, text []byte) (bool, []task.Capture) {
	set := &c.A.Sets[c.FastStart.SetIdx]
	for pos := 0; pos < len(text); pos++ {
		if !set.Test(text[pos]) {
			continue
		}
		if ok, caps := c.runAt(pool, text, pos); ok {
			return true, caps
		}
	}
	return false, nil
}

func (c *Context) scanAnchor(pool *task.Pool, text []byte) (bool, []task.Capture) {
	for pos := 0; pos <= len(text); pos++ {
		if !anchorHolds(c.FastStart.Anchor, text, pos, c.Newline) {
			continue
		}
		if ok, caps := c.runAt(pool, text, pos); ok {
			return true, caps
		}
	}
	return false, nil
}

// runAt drives a single starting position's task pool to exhaustion: a
// FIFO queue seeded with one task at the outer GROUP, processed in
// priority order, where a spawned sibling is appended immediately after
// the spawning task (preserving greedy/lazy and alternation priority) and
// the first task to reach DONE wins outright.
func (c *Context) runAt(pool *task.Pool, text []byte, pos int) (bool, []task.Capture) {
	root := pool.Alloc()
	t := pool.Get(root)
	t.Node = c.Root
	t.Last = arena.NoIdx
	t.Cursor = pos
	t.Caps[0].So = int32(pos)

	rs := &run{ctx: c, pool: pool, text: text, visited: make(map[visitState]struct{}, 64)}

	queue := []uint32{root}
	for i := 0; i < len(queue); i++ {
		idx := queue[i]
		outcome, spawned := rs.play(idx)
		switch outcome {
		case outcomeDone:
			done := pool.Get(idx)
			done.Caps[0].Eo = int32(done.Cursor)
			caps := append([]task.Capture(nil), done.Caps...)
			pool.Free(idx)
			for _, s := range spawned {
				pool.Free(s)
			}
			for _, q := range queue[i+1:] {
				pool.Free(q)
			}
			return true, caps
		default:
			pool.Free(idx)
		}
		if len(spawned) > 0 {
			// Each spawn goes right after the spawning task, so a later
			// spawn lands ahead of the earlier ones.
			for l, h := 0, len(spawned)-1; l < h; l, h = l+1, h-1 {
				spawned[l], spawned[h] = spawned[h], spawned[l]
			}
			queue = append(queue[:i+1:i+1], append(spawned, queue[i+1:]...)...)
		}
	}
	return false, nil
}
