// Package arena implements the engine's node model: a contiguous,
// exactly-sized store for tree nodes, character sets and literal-string
// bytes, allocated once per compiled pattern.
//
// All inter-node links are indices into the arena's Nodes slice, not
// pointers — the arena owns every node, and tasks (see internal/task) only
// ever borrow read-only references into it. This follows the "arena +
// indices in place of pointer graphs" design note: it removes lifetime
// coupling entirely and lets the whole compiled pattern live in one
// allocation.
package arena

import (
	"github.com/lessen/rele/internal/charset"
	"github.com/lessen/rele/internal/conv"
)

// NoIdx is the NOTUSED sentinel: it marks an A/B/Parent/Match link that is
// intentionally empty (an empty group's body, an anchor's unused legs).
const NoIdx = ^uint32(0)

// GroupNone marks a GROUP node as non-capturing.
const GroupNone = 0xFF

// MultUnbounded marks a MULT node's Max as "no upper bound" ({m,}).
const MultUnbounded = 0xFFFF

// Op is the operator tag of a Node.
type Op uint8

const (
	OpConcat Op = iota
	OpMatch
	OpMatchStr
	OpMatchSet
	OpMatchGrp
	OpPlus
	OpStar
	OpDotStar
	OpDotPlus
	OpQuestion
	OpMult
	OpGroup
	OpAlternate
	OpAnchor
	OpCRLF
	OpDone
)

func (op Op) String() string {
	switch op {
	case OpConcat:
		return "CONCAT"
	case OpMatch:
		return "MATCH"
	case OpMatchStr:
		return "MATCHSTR"
	case OpMatchSet:
		return "MATCHSET"
	case OpMatchGrp:
		return "MATCHGRP"
	case OpPlus:
		return "PLUS"
	case OpStar:
		return "STAR"
	case OpDotStar:
		return "DOTSTAR"
	case OpDotPlus:
		return "DOTPLUS"
	case OpQuestion:
		return "QUESTION"
	case OpMult:
		return "MULT"
	case OpGroup:
		return "GROUP"
	case OpAlternate:
		return "ALTERNATE"
	case OpAnchor:
		return "ANCHOR"
	case OpCRLF:
		return "CRLF"
	case OpDone:
		return "DONE"
	}
	return "?"
}

// AnchorKind distinguishes the six ANCHOR flavors.
type AnchorKind uint8

const (
	AnchorStart    AnchorKind = iota // \A — start of input
	AnchorEnd                       // \Z — end of input
	AnchorBOL                       // ^  — start of line (or input)
	AnchorEOL                       // $  — end of line (or input)
	AnchorWordB                     // \b — word boundary
	AnchorNonWordB                  // \B — non-word boundary
)

// Node is a tagged record over the engine's tree. Which payload fields are
// meaningful depends on Op:
//
//	MATCH:    Ch1 = literal byte (0 if using Ch2); Ch2 = class code (0 if using Ch1)
//	MATCHSTR: StrOff/StrLen = span into the arena's literal-string bytes
//	MATCHSET: SetIdx = index into Sets
//	MATCHGRP: GrpRef = backreferenced group index (1-255)
//	GROUP:    GroupIdx = capture index, or GroupNone
//	MULT:     Min/Max = repeat bounds, Max == MultUnbounded for "{m,}"
//	ANCHOR:   Anchor = anchor kind
//	PLUS/STAR/QUESTION/DOTSTAR/DOTPLUS/MULT: Lazy
//
// A, B and Parent are NoIdx when the corresponding leg is unused. Match is
// the optimiser's DOTSTAR/DOTPLUS next-literal hint (NoIdx if none chosen).
type Node struct {
	Op     Op
	A      uint32
	B      uint32
	Parent uint32
	Match  uint32

	Ch1, Ch2 byte
	GroupIdx uint8
	GrpRef   uint8
	SetIdx   uint32
	StrOff   uint32
	StrLen   uint32
	Min      uint16
	Max      uint16
	Lazy     bool
	Anchor   AnchorKind

	// ID is a stable per-node identifier used only by the DumpDOT debugging
	// affordance; match semantics never consult it.
	ID uint32
}

// Arena is the single, exactly-sized allocation backing a compiled pattern:
// all nodes, all character sets, and all fused literal-string bytes.
type Arena struct {
	Nodes []Node
	Sets  []charset.Set
	Str   []byte

	nodeCap, setCap, strCap int // the measuring pass's predicted capacities
}

// New allocates an Arena sized exactly to the measuring pass's predicted
// capacities. The builder must never append past these — doing so is an
// invariant violation (ErrInternal at the compiler layer), not silent
// growth.
func New(nodeCap, setCap, strCap int) *Arena {
	return &Arena{
		Nodes: make([]Node, 0, nodeCap),
		Sets:  make([]charset.Set, 0, setCap),
		Str:   make([]byte, 0, strCap),

		nodeCap: nodeCap, setCap: setCap, strCap: strCap,
	}
}

// Overflowed reports whether the builder has exceeded any of the
// measuring pass's predicted capacities (it never should; this is a
// cheap invariant check, not a growth path).
func (a *Arena) Overflowed() bool {
	return len(a.Nodes) > a.nodeCap || len(a.Sets) > a.setCap || len(a.Str) > a.strCap
}

// AddNode appends n to the arena and returns its index. n.ID is stamped
// with that same index so DumpDOT has a stable per-node label.
func (a *Arena) AddNode(n Node) uint32 {
	idx := conv.IntToUint32(len(a.Nodes))
	n.ID = idx
	a.Nodes = append(a.Nodes, n)
	return idx
}

// AddSet appends s to the arena and returns its index.
func (a *Arena) AddSet(s charset.Set) uint32 {
	idx := conv.IntToUint32(len(a.Sets))
	a.Sets = append(a.Sets, s)
	return idx
}

// AddString appends b to the literal-string arena and returns the (offset,
// length) span referencing it.
func (a *Arena) AddString(b []byte) (off, length uint32) {
	off = conv.IntToUint32(len(a.Str))
	a.Str = append(a.Str, b...)
	return off, conv.IntToUint32(len(b))
}

// Bytes returns the literal-string bytes spanned by a MATCHSTR node.
func (a *Arena) Bytes(off, length uint32) []byte {
	return a.Str[off : off+length]
}

// Node returns a pointer to the node at idx for in-place mutation during
// the build pass (e.g. attaching the optimiser's Match hint, or patching
// Parent once a parent is known).
func (a *Arena) Node(idx uint32) *Node {
	return &a.Nodes[idx]
}
