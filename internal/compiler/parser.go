// Package compiler implements the engine's two-pass tree builder: a
// measuring pass that computes exact arena capacities and a build pass
// that populates the arena with the finished binary tree.
//
// Both passes walk the identical grammar using the same recursive-descent
// code, parameterized by a mode that controls whether grammar productions
// only count what they would emit (measure) or actually allocate into the
// arena and link the tree (build). Running one code path twice, rather than
// hand-duplicating the walk, is what guarantees the measuring pass's counts
// can never drift from what the build pass actually does. Recursion here
// is bounded by an explicit DefaultMaxDepth rather than grown unboundedly — see
// DESIGN.md for the equivalence argument.
package compiler

import (
	"github.com/lessen/rele/internal/arena"
	"github.com/lessen/rele/internal/charset"
)

// DefaultMaxDepth bounds alternation/group/quantifier nesting recursion.
const DefaultMaxDepth = 1000

// MaxGroups is the largest number of capturing groups the engine supports:
// group indices are dense, start at 1, total at most 255.
const MaxGroups = 255

// MaxQuantifier is the largest explicit {m,n} bound.
const MaxQuantifier = 1000

type mode int

const (
	modeMeasure mode = iota
	modeBuild
)

type parser struct {
	pattern  []byte
	pos      int
	caseless bool
	newline  bool

	mode     mode
	depth    int
	maxDepth int

	// shared across both modes: syntactic group numbering must agree
	nextGroup int

	// measure-mode accumulators
	nodeCount int
	setCount  int
	strBytes  int

	// build-mode state, valid only when mode == modeBuild
	arena       *arena.Arena
	totalGroups int // group count computed by the prior measuring pass
}

// Result holds everything the build pass produced.
type Result struct {
	Arena     *arena.Arena
	Root      uint32 // index of the outer GROUP node (group 0)
	Done      uint32 // index of the (sole) DONE node
	NumGroups int    // capturing groups, not counting group 0
	Caseless  bool
	Newline   bool
}

// Compile runs the measuring pass followed by the build pass and returns
// the finished arena and root. caseless/newline mirror the Caseless/Newline
// compile flags; they affect literal folding and dot/anchor semantics
// baked in at build time.
func Compile(pattern string, caseless, newline bool) (*Result, error) {
	pat := []byte(pattern)

	m := &parser{pattern: pat, caseless: caseless, newline: newline, mode: modeMeasure, maxDepth: DefaultMaxDepth}
	if err := m.run(); err != nil {
		return nil, err
	}
	if m.nextGroup > MaxGroups {
		return nil, newErr(ErrSyntax, pattern, len(pat), "too many capturing groups (max 255)")
	}

	a := arena.New(m.nodeCount, m.setCount, m.strBytes)

	b := &parser{
		pattern: pat, caseless: caseless, newline: newline,
		mode: modeBuild, maxDepth: DefaultMaxDepth,
		arena: a, totalGroups: m.nextGroup,
	}
	root, done, err := b.run2()
	if err != nil {
		return nil, err
	}
	if a.Overflowed() {
		return nil, newErr(ErrInternal, pattern, 0, "arena capacity exceeded during build")
	}
	if err := validateMultDepth(a, root); err != nil {
		if ce, ok := err.(*Error); ok {
			ce.Pattern = pattern
		}
		return nil, err
	}

	return &Result{Arena: a, Root: root, Done: done, NumGroups: b.nextGroup, Caseless: caseless, Newline: newline}, nil
}

// run drives the measuring pass over the whole pattern (outer GROUP body,
// plus the trailing DONE and, for a non-empty body, the CONCAT joining the
// two), discarding the tree shape — only counts matter.
func (p *parser) run() error {
	p.newNode(arena.Node{}) // outer GROUP
	inner, err := p.parseAlternation()
	if err != nil {
		return err
	}
	if !p.atEnd() {
		return p.errSyntax("unexpected trailing input, likely an unmatched ')'")
	}
	p.newNode(arena.Node{}) // DONE
	if inner != arena.NoIdx {
		p.newNode(arena.Node{}) // CONCAT(body, DONE)
	}
	return nil
}

// run2 drives the build pass, returning the outer GROUP's index (group 0,
// the tree root) and the sole DONE node's index.
func (p *parser) run2() (root, done uint32, err error) {
	inner, err := p.parseAlternation()
	if err != nil {
		return arena.NoIdx, arena.NoIdx, err
	}
	if !p.atEnd() {
		return arena.NoIdx, arena.NoIdx, p.errSyntax("unexpected trailing input, likely an unmatched ')'")
	}

	done = p.newNode(arena.Node{Op: arena.OpDone, A: arena.NoIdx, B: arena.NoIdx})

	body := done
	if inner != arena.NoIdx {
		body = p.newNode(arena.Node{Op: arena.OpConcat, A: inner, B: done})
		p.setParent(inner, body)
		p.setParent(done, body)
	}

	root = p.newNode(arena.Node{Op: arena.OpGroup, A: arena.NoIdx, B: body, GroupIdx: 0, Parent: arena.NoIdx})
	p.setParent(body, root)

	return root, done, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.pattern) }

func (p *parser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.pattern[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.pattern) {
		return 0
	}
	return p.pattern[p.pos+off]
}

// --- emission helpers, mode-aware ---

// newNode accounts for one more node in measure mode (returning 0, never
// consulted), or actually appends n to the arena in build mode, returning
// its real index. In build mode the legs of leaf operators are set to
// NoIdx, and every node starts with no optimiser hint (Match = NoIdx).
func (p *parser) newNode(n arena.Node) uint32 {
	if p.mode == modeMeasure {
		p.nodeCount++
		return 0
	}
	switch n.Op {
	case arena.OpMatch, arena.OpMatchStr, arena.OpMatchSet, arena.OpMatchGrp,
		arena.OpAnchor, arena.OpCRLF, arena.OpDone, arena.OpDotStar, arena.OpDotPlus:
		n.A, n.B = arena.NoIdx, arena.NoIdx
	}
	n.Match = arena.NoIdx
	return p.arena.AddNode(n)
}

func (p *parser) setParent(child, parent uint32) {
	if p.mode == modeBuild {
		p.arena.Node(child).Parent = parent
	}
}

func (p *parser) addSet(s charset.Set) uint32 {
	if p.mode == modeMeasure {
		p.setCount++
		return 0
	}
	return p.arena.AddSet(s)
}

func (p *parser) addString(b []byte) (off, length uint32) {
	if p.mode == modeMeasure {
		p.strBytes += len(b)
		return 0, 0
	}
	return p.arena.AddString(b)
}

func (p *parser) errSyntax(msg string) error {
	return newErr(ErrSyntax, string(p.pattern), p.pos, msg)
}
