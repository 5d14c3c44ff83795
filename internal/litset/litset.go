// Package litset is an "is it even worth scanning" pre-filter for
// patterns whose fast-start search (internal/optimizer) couldn't pin down
// a single anchor, but whose root is a wide alternation of plain literal
// branches — e.g. `(cat|car|cart|dog|fox|...)`. Aho-Corasick multi-literal
// matching answers "does any of these literals occur anywhere in the
// text" in one linear pass, which is cheaper than letting the walker
// spawn a task at every input position only to have all of them die
// immediately.
//
// github.com/itgcl/ahocorasick's public API reports which literal(s)
// occurred, or just whether any did — it does not report positions. That
// shapes this package into a pure existence check: Set.ContainsAny can
// only ever short-circuit a scan to "no match", never pick a match start
// itself. The ordinary per-position walk still runs, and still decides,
// whenever the filter says a literal is present: fast-start on/off always
// yields identical captures because this path never changes which
// position the walker accepts, only whether it tries.
package litset

import "github.com/itgcl/ahocorasick"

// Set wraps a built Aho-Corasick automaton over a pattern's literal
// alternatives. A nil *Set always reports true (no pre-filter to apply).
type Set struct {
	m        *ahocorasick.Matcher
	caseless bool
}

// New builds a Set over literals. Returns nil if there are fewer than two
// literals — not worth the automaton's construction cost. caseless must
// match the Caseless flag the pattern was compiled with: literals are
// already folded to lowercase ASCII by the compiler's literal-run parsing
// when caseless, and ContainsAny folds the scanned text the same way, since
// ahocorasick.Matcher.Contains itself does plain byte matching.
func New(literals [][]byte, caseless bool) *Set {
	if len(literals) < 2 {
		return nil
	}
	return &Set{m: ahocorasick.NewMatcher(literals), caseless: caseless}
}

// ContainsAny reports whether any of the Set's literals occurs anywhere in
// text. A nil Set always reports true.
func (s *Set) ContainsAny(text []byte) bool {
	if s == nil {
		return true
	}
	if s.caseless {
		text = foldASCII(text)
	}
	return s.m.Contains(text)
}

func foldASCII(text []byte) []byte {
	folded := make([]byte, len(text))
	for i, b := range text {
		if b >= 'A' && b <= 'Z' {
			b += 32
		}
		folded[i] = b
	}
	return folded
}
