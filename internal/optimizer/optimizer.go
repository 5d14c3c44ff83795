// Package optimizer performs a single post-build tree walk: it picks a
// fast-start anchor for the outer scan loop and annotates DOTSTAR/DOTPLUS
// nodes with a "next literal" hint so the walker can stop a dot's
// byte-by-byte iteration at the last place that literal still occurs.
//
// Both outputs are read-only conveniences layered on top of a tree that
// already matches correctly without them: disabling either optimisation
// must never change which captures are accepted, only how fast they are
// found.
package optimizer

import "github.com/lessen/rele/internal/arena"

// Kind distinguishes the shapes a FastStart anchor can take.
type Kind uint8

const (
	// KindNone means no usable anchor was found; the walker must iterate
	// every input position.
	KindNone Kind = iota
	KindByte
	KindString
	KindSet
	KindAnchor
	// KindDotHead means the tree begins with DOTSTAR/DOTPLUS: the walker
	// invokes the per-position match exactly once at position 0 and lets
	// the node's own hint (or lack of one) drive everything else.
	KindDotHead
)

// FastStart is the optimiser's first output: an outer-scan strategy the
// walker can use instead of trying every input position.
type FastStart struct {
	Kind    Kind
	Node    uint32 // the node this anchor was derived from
	Byte    byte
	StrOff  uint32
	StrLen  uint32
	SetIdx  uint32
	Anchor  arena.AnchorKind
	Caseless bool
}

// Result bundles both optimiser outputs.
type Result struct {
	FastStart FastStart
}

// Optimize runs the fast-start search and the hint-annotation walk over
// the tree rooted at the outer GROUP's body, mutating Match fields
// in-place on DOTSTAR/DOTPLUS nodes.
func Optimize(a *arena.Arena, root uint32, caseless bool) Result {
	body := a.Node(root).B

	fs := findFastStart(a, body, caseless)
	annotateHints(a, body, arena.NoIdx)

	return Result{FastStart: fs}
}

// findFastStart descends the left spine through GROUP/CONCAT/PLUS/
// MULT(min>0) (a DOTSTAR/DOTPLUS on the spine yields KindDotHead), stopping at the first node that can erase forward
// progress (STAR, QUESTION, ALTERNATE, MULT with min=0) or that isn't a
// structural node at all.
func findFastStart(a *arena.Arena, idx uint32, caseless bool) FastStart {
	for idx != arena.NoIdx {
		n := a.Node(idx)
		switch n.Op {
		case arena.OpGroup:
			idx = n.B
		case arena.OpConcat:
			idx = n.A
		case arena.OpPlus:
			idx = n.B
		case arena.OpMult:
			if n.Min == 0 {
				return FastStart{}
			}
			idx = n.B
		case arena.OpMatch:
			if n.Ch1 != 0 {
				return FastStart{Kind: KindByte, Node: idx, Byte: n.Ch1, Caseless: caseless}
			}
			return FastStart{} // class codes aren't single-byte anchors
		case arena.OpMatchStr:
			return FastStart{Kind: KindString, Node: idx, StrOff: n.StrOff, StrLen: n.StrLen, Caseless: caseless}
		case arena.OpMatchSet:
			return FastStart{Kind: KindSet, Node: idx, SetIdx: n.SetIdx}
		case arena.OpAnchor:
			switch n.Anchor {
			case arena.AnchorEnd, arena.AnchorBOL, arena.AnchorEOL:
				return FastStart{Kind: KindAnchor, Node: idx, Anchor: n.Anchor}
			}
			return FastStart{}
		case arena.OpDotStar, arena.OpDotPlus:
			return FastStart{Kind: KindDotHead, Node: idx}
		default:
			return FastStart{}
		}
	}
	return FastStart{}
}

// annotateHints walks the tree forward (the order the walker itself would
// visit nodes in) carrying the index of a DOTSTAR/DOTPLUS still waiting
// for a hint. It returns the pending index so recursive calls can thread
// it through CONCAT chains.
func annotateHints(a *arena.Arena, idx uint32, pending uint32) uint32 {
	if idx == arena.NoIdx {
		return pending
	}
	n := a.Node(idx)

	switch n.Op {
	case arena.OpDotStar, arena.OpDotPlus:
		if pending == arena.NoIdx {
			pending = idx
		}
		return pending

	case arena.OpMatch, arena.OpMatchStr, arena.OpMatchSet, arena.OpAnchor:
		if pending != arena.NoIdx {
			a.Node(pending).Match = idx
			pending = arena.NoIdx
		}
		return pending

	case arena.OpConcat:
		pending = annotateHints(a, n.A, pending)
		return annotateHints(a, n.B, pending)

	case arena.OpGroup:
		return annotateHints(a, n.B, pending)

	case arena.OpPlus:
		// carried in, but a hint can't survive looping back through the
		// plus's body, so it's cleared once the body has been walked.
		annotateHints(a, n.B, pending)
		return arena.NoIdx

	case arena.OpMult:
		if n.Min == 0 {
			annotateHints(a, n.B, arena.NoIdx)
			return arena.NoIdx
		}
		annotateHints(a, n.B, pending)
		return arena.NoIdx

	case arena.OpStar, arena.OpQuestion:
		annotateHints(a, n.B, arena.NoIdx)
		return arena.NoIdx

	case arena.OpAlternate:
		annotateHints(a, n.A, arena.NoIdx)
		annotateHints(a, n.B, arena.NoIdx)
		return arena.NoIdx
	}

	return pending
}

// CollectAlternationLiterals walks a left-biased ALTERNATE chain (as
// parseAlternation builds it: A is one branch, B is the rest of the
// chain), descending first through the outer GROUP's CONCAT(pattern, DONE)
// wrapper and then through one leading GROUP wrapper, and returns every
// branch's literal bytes if every branch is a bare MATCH or MATCHSTR and
// nothing else. Returns nil if the shape doesn't apply or fewer than three
// branches qualify — this is the root/litset.Set enrichment's detection
// step, used only when findFastStart came back empty. root is the outer
// GROUP node (group 0), the same root Optimize itself is given.
func CollectAlternationLiterals(a *arena.Arena, root uint32) [][]byte {
	idx := a.Node(root).B
	if idx != arena.NoIdx && a.Node(idx).Op == arena.OpConcat {
		if b := a.Node(idx).B; b != arena.NoIdx && a.Node(b).Op == arena.OpDone {
			idx = a.Node(idx).A
		}
	}
	if idx != arena.NoIdx && a.Node(idx).Op == arena.OpGroup {
		idx = a.Node(idx).B
	}

	var lits [][]byte
	for idx != arena.NoIdx {
		n := a.Node(idx)
		if n.Op != arena.OpAlternate {
			lit, ok := pureLiteral(a, idx)
			if !ok {
				return nil
			}
			lits = append(lits, lit)
			break
		}
		lit, ok := pureLiteral(a, n.A)
		if !ok {
			return nil
		}
		lits = append(lits, lit)
		idx = n.B
	}

	if len(lits) < 3 {
		return nil
	}
	return lits
}

func pureLiteral(a *arena.Arena, idx uint32) ([]byte, bool) {
	if idx == arena.NoIdx {
		return nil, false
	}
	n := a.Node(idx)
	switch n.Op {
	case arena.OpMatch:
		if n.Ch1 == 0 {
			return nil, false
		}
		return []byte{n.Ch1}, true
	case arena.OpMatchStr:
		return a.Bytes(n.StrOff, n.StrLen), true
	}
	return nil, false
}
