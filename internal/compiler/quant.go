package compiler

import (
	"github.com/lessen/rele/internal/arena"
	"github.com/lessen/rele/internal/conv"
)

// quantSpec is a parsed repetition bound, independent of which Op it will
// eventually be lowered to.
type quantSpec struct {
	min  uint16
	max  uint16
	lazy bool
}

// tryParseQuantifier looks ahead from p.pos (without consuming anything)
// for one of ? + * {m} {m,} {m,n}, optionally followed by a lazy '?'. It
// reports the total byte length of the match so the caller can advance
// p.pos itself once it has decided to consume it.
func (p *parser) tryParseQuantifier() (q quantSpec, length int, ok bool, err error) {
	switch p.peek() {
	case '?':
		return p.finishSimpleQuant(0, 1, 1)
	case '+':
		return p.finishSimpleQuant(1, arena.MultUnbounded, 1)
	case '*':
		return p.finishSimpleQuant(0, arena.MultUnbounded, 1)
	case '{':
		return p.tryParseBraceQuant()
	}
	return quantSpec{}, 0, false, nil
}

func (p *parser) finishSimpleQuant(min, max uint16, base int) (quantSpec, int, bool, error) {
	length := base
	lazy := false
	if p.peekAt(base) == '?' {
		lazy = true
		length++
	}
	return quantSpec{min: min, max: max, lazy: lazy}, length, true, nil
}

// tryParseBraceQuant parses {m}, {m,} or {m,n}. If the braced content
// doesn't look like a quantifier at all (no leading digit), it reports
// ok=false so the caller treats '{' as an ordinary literal byte.
func (p *parser) tryParseBraceQuant() (quantSpec, int, bool, error) {
	if !(p.peekAt(1) >= '0' && p.peekAt(1) <= '9') {
		return quantSpec{}, 0, false, nil
	}

	i := 1
	minStart := i
	for p.peekAt(i) >= '0' && p.peekAt(i) <= '9' {
		i++
	}
	if hasLeadingZero(p, minStart, i) {
		return quantSpec{}, 0, false, newErr(ErrMalformedQuantifier, string(p.pattern), p.pos, "quantifier bound has a leading zero")
	}
	min := atoiClampPeek(p, minStart, i)

	max := min
	if p.peekAt(i) == ',' {
		i++
		if p.peekAt(i) >= '0' && p.peekAt(i) <= '9' {
			maxStart := i
			for p.peekAt(i) >= '0' && p.peekAt(i) <= '9' {
				i++
			}
			if hasLeadingZero(p, maxStart, i) {
				return quantSpec{}, 0, false, newErr(ErrMalformedQuantifier, string(p.pattern), p.pos, "quantifier bound has a leading zero")
			}
			max = atoiClampPeek(p, maxStart, i)
		} else {
			max = arena.MultUnbounded
		}
	}

	if p.peekAt(i) != '}' {
		return quantSpec{}, 0, false, p.errSyntax("malformed {m,n} quantifier")
	}
	i++ // include '}'

	if max != arena.MultUnbounded && (min > MaxQuantifier || max > MaxQuantifier || min > max) {
		return quantSpec{}, 0, false, newErr(ErrMalformedQuantifier, string(p.pattern), p.pos, "quantifier bounds out of range")
	}
	if min > MaxQuantifier {
		return quantSpec{}, 0, false, newErr(ErrMalformedQuantifier, string(p.pattern), p.pos, "quantifier bounds out of range")
	}

	lazy := false
	if p.peekAt(i) == '?' {
		lazy = true
		i++
	}

	return quantSpec{min: min, max: max, lazy: lazy}, i, true, nil
}

// hasLeadingZero reports whether the digit run p.pattern[from:to] is more
// than one digit long and starts with '0' — "{01,2}" and "{1,02}" are
// malformed even though the digits themselves are in range.
func hasLeadingZero(p *parser, from, to int) bool {
	return to-from > 1 && p.peekAt(from) == '0'
}

func atoiClampPeek(p *parser, from, to int) uint16 {
	n := 0
	for i := from; i < to; i++ {
		n = n*10 + int(p.peekAt(i)-'0')
		if n > MaxQuantifier {
			n = MaxQuantifier + 1 // sentinel over the limit; caller rejects
			break
		}
	}
	return conv.IntToUint16(n)
}
