package rele

import (
	"fmt"
	"io"

	"github.com/lessen/rele/internal/arena"
)

// DumpDOT writes a Graphviz DOT rendering of the compiled tree to w, one
// node per arena.Node, edges labeled "A"/"B" for the legs that are in use.
// It is a debugging affordance only; match semantics never consult it.
func (r *Regexp) DumpDOT(w io.Writer) error {
	a := r.ctx.A
	if _, err := fmt.Fprintf(w, "digraph rele {\n  label=%q;\n", r.pattern); err != nil {
		return err
	}
	for idx := range a.Nodes {
		n := a.Node(uint32(idx))
		if _, err := fmt.Fprintf(w, "  n%d [label=%q];\n", n.ID, dotLabel(a, n)); err != nil {
			return err
		}
		if n.A != arena.NoIdx {
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"A\"];\n", n.ID, a.Node(n.A).ID); err != nil {
				return err
			}
		}
		if n.B != arena.NoIdx {
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"B\"];\n", n.ID, a.Node(n.B).ID); err != nil {
				return err
			}
		}
		if n.Match != arena.NoIdx {
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=\"hint\", style=dashed];\n", n.ID, a.Node(n.Match).ID); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// dotLabel renders the payload fields relevant to n.Op, per the field table
// documented on arena.Node.
func dotLabel(a *arena.Arena, n *arena.Node) string {
	switch n.Op {
	case arena.OpMatch:
		if n.Ch1 != 0 {
			return fmt.Sprintf("MATCH %q", n.Ch1)
		}
		return fmt.Sprintf("MATCH class=%d", n.Ch2)
	case arena.OpMatchStr:
		return fmt.Sprintf("MATCHSTR %q", a.Bytes(n.StrOff, n.StrLen))
	case arena.OpMatchSet:
		return fmt.Sprintf("MATCHSET #%d", n.SetIdx)
	case arena.OpMatchGrp:
		return fmt.Sprintf("MATCHGRP \\%d", n.GrpRef)
	case arena.OpGroup:
		if n.GroupIdx == arena.GroupNone {
			return "GROUP (non-capturing)"
		}
		return fmt.Sprintf("GROUP #%d", n.GroupIdx)
	case arena.OpMult:
		max := "inf"
		if n.Max != arena.MultUnbounded {
			max = fmt.Sprintf("%d", n.Max)
		}
		return fmt.Sprintf("MULT {%d,%s} lazy=%v", n.Min, max, n.Lazy)
	case arena.OpAnchor:
		return fmt.Sprintf("ANCHOR %v", n.Anchor)
	case arena.OpPlus, arena.OpStar, arena.OpQuestion, arena.OpDotStar, arena.OpDotPlus:
		return fmt.Sprintf("%s lazy=%v", n.Op, n.Lazy)
	default:
		return n.Op.String()
	}
}
