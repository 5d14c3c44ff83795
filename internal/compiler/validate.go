package compiler

import "github.com/lessen/rele/internal/arena"

// maxMultDepth mirrors task.StackSize: a task carries a fixed 3-slot
// counter stack, one slot per concurrently-active {m,n} quantifier on its
// path from root to cursor. Patterns nesting a fourth MULT inside three
// already-active ones cannot be walked with a fixed-size task and must be
// rejected at compile time rather than grown unboundedly.
const maxMultDepth = 3

// validateMultDepth walks the finished tree checking that no path from
// root to any leaf nests more than maxMultDepth MULT nodes. PLUS/STAR/
// QUESTION don't consume a counter slot (only zero-length detection, no
// counted repetition) and so don't count against the budget.
func validateMultDepth(a *arena.Arena, root uint32) error {
	return walkMultDepth(a, root, 0)
}

func walkMultDepth(a *arena.Arena, idx uint32, depth int) error {
	if idx == arena.NoIdx {
		return nil
	}
	n := a.Node(idx)

	if n.Op == arena.OpMult {
		depth++
		if depth > maxMultDepth {
			return newErr(ErrSyntax, "", 0, "quantifiers of the form {m,n} nested more than 3 deep")
		}
	}

	if err := walkMultDepth(a, n.A, depth); err != nil {
		return err
	}
	return walkMultDepth(a, n.B, depth)
}
