// Package rele provides a regular-expression engine built around a
// two-pass arena compiler and an iterative, task-pool-based tree walker.
//
// The public API is compatible with stdlib regexp where the underlying
// engine supports it: byte/string search, capture groups, FindAll, and
// the usual Index/Submatch variants.
//
// Basic usage:
//
//	re, err := rele.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	match := re.Find([]byte("hello 123 world"))
//	fmt.Println(string(match)) // "123"
//
// Compile flags select caseless matching, newline-sensitive "." and
// "^"/"$", and optimisation overrides:
//
//	re, err := rele.CompileFlags(`^foo$`, rele.Caseless|rele.Newline)
package rele

import (
	"sync"

	"github.com/lessen/rele/internal/compiler"
	"github.com/lessen/rele/internal/litset"
	"github.com/lessen/rele/internal/optimizer"
	"github.com/lessen/rele/internal/task"
	"github.com/lessen/rele/internal/walker"
)

// Capture is one (start, end) byte-offset pair from a held match; So and Eo
// are both -1 when the group did not participate in the match.
type Capture struct {
	So, Eo int
}

// MatchFlags selects per-call options for Match.
type MatchFlags uint32

const (
	// KeepTasks holds the pool and its accumulated captures open past the
	// Match call instead of resetting them immediately, so Group/Groups can
	// inspect them afterward. The held state must be released with
	// Release before the next KeepTasks call on the same Regexp.
	KeepTasks MatchFlags = 1 << iota
)

// Flags selects compile-time options for CompileFlags.
type Flags uint8

const (
	// Caseless folds ASCII letters on both sides of every comparison.
	Caseless Flags = 1 << iota
	// Newline makes "." refuse to match '\n' and "^"/"$" match at
	// internal line boundaries in addition to the subject's start/end.
	Newline
	// NoFastStart disables the outer-scan optimisation, trying every
	// input position in order. Matching semantics never change; only
	// speed does.
	NoFastStart
)

// Regexp represents a compiled regular expression.
//
// A Regexp is safe to use concurrently from multiple goroutines for every
// method except a Match call made with the KeepTasks flag: that call holds
// a pool out of the sync.Pool under heldMu until Release, and Group/Groups
// read that same held state, so a KeepTasks session must be released before
// a second one is started on the same Regexp from another goroutine.
type Regexp struct {
	pattern   string
	flags     Flags
	numGroups int
	ctx       *walker.Context
	pools     sync.Pool

	heldMu sync.Mutex
	held   *heldMatch
}

// heldMatch is the pool and captures kept alive by a KeepTasks Match call
// until the caller inspects them via Group/Groups and calls Release.
type heldMatch struct {
	pool *task.Pool
	caps []task.Capture
}

// Compile compiles a regular expression pattern with no flags set.
// Syntax is a Perl-style subset over 8-bit bytes: no Unicode classes,
// lookaround, named groups or inline flags such as (?i). Returns an error
// if the pattern is invalid.
func Compile(pattern string) (*Regexp, error) {
	return CompileFlags(pattern, 0)
}

// MustCompile compiles a pattern and panics if it fails.
func MustCompile(pattern string) *Regexp {
	re, err := Compile(pattern)
	if err != nil {
		panic("rele: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// MustCompileFlags compiles a pattern with the given flags and panics if
// it fails.
func MustCompileFlags(pattern string, flags Flags) *Regexp {
	re, err := CompileFlags(pattern, flags)
	if err != nil {
		panic("rele: CompileFlags(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileFlags compiles pattern with the given Flags.
func CompileFlags(pattern string, flags Flags) (*Regexp, error) {
	caseless := flags&Caseless != 0
	newline := flags&Newline != 0

	res, err := compiler.Compile(pattern, caseless, newline)
	if err != nil {
		return nil, err
	}

	opt := optimizer.Optimize(res.Arena, res.Root, res.Caseless)

	var lits *litset.Set
	if opt.FastStart.Kind == optimizer.KindNone {
		if branches := optimizer.CollectAlternationLiterals(res.Arena, res.Root); branches != nil {
			lits = litset.New(branches, res.Caseless)
		}
	}

	ctx := &walker.Context{
		A:           res.Arena,
		Root:        res.Root,
		NumGroups:   res.NumGroups,
		Caseless:    res.Caseless,
		Newline:     res.Newline,
		NoFastStart: flags&NoFastStart != 0,
		FastStart:   opt.FastStart,
		Literals:    lits,
	}

	re := &Regexp{pattern: pattern, flags: flags, numGroups: res.NumGroups, ctx: ctx}
	re.pools.New = func() any { return ctx.NewPool() }
	return re, nil
}

func (r *Regexp) borrow() *task.Pool {
	return r.pools.Get().(*task.Pool)
}

func (r *Regexp) release(p *task.Pool) {
	r.pools.Put(p)
}

// Match reports whether text contains any match of the pattern. When flags
// includes KeepTasks, the pool and its captures are held open past this
// call for later inspection via Group/Groups; the caller must then call
// Release once done, and must not start another KeepTasks Match on the
// same Regexp before doing so.
func (r *Regexp) Match(text []byte, flags MatchFlags) bool {
	keepTasks := flags&KeepTasks != 0
	if keepTasks {
		r.heldMu.Lock()
		defer r.heldMu.Unlock()
		if r.held != nil {
			r.release(r.held.pool)
			r.held = nil
		}
		p := r.borrow()
		ok, caps := r.ctx.Match(p, text, true)
		r.held = &heldMatch{pool: p, caps: caps}
		return ok
	}

	p := r.borrow()
	defer r.release(p)
	ok, _ := r.ctx.Match(p, text, false)
	return ok
}

// MatchString reports whether s contains any match of the pattern.
func (r *Regexp) MatchString(s string) bool {
	return r.Match([]byte(s), 0)
}

// Group returns the ith capture slot from the most recent KeepTasks Match,
// or {-1, -1} if there is no held match or i is out of range. Group 0 is
// the whole match.
func (r *Regexp) Group(i int) Capture {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	if r.held == nil || i < 0 || i >= len(r.held.caps) {
		return Capture{So: -1, Eo: -1}
	}
	c := r.held.caps[i]
	return Capture{So: int(c.So), Eo: int(c.Eo)}
}

// Groups returns every capture slot from the most recent KeepTasks Match,
// index 0 being the whole match, or nil if there is no held match.
func (r *Regexp) Groups() []Capture {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	if r.held == nil {
		return nil
	}
	out := make([]Capture, len(r.held.caps))
	for i, c := range r.held.caps {
		out[i] = Capture{So: int(c.So), Eo: int(c.Eo)}
	}
	return out
}

// Release frees the pool and captures held by the most recent KeepTasks
// Match. It is a no-op if there is no held match. Calling it is mandatory
// before the next KeepTasks Match on the same Regexp.
func (r *Regexp) Release() {
	r.heldMu.Lock()
	defer r.heldMu.Unlock()
	if r.held == nil {
		return
	}
	r.held.pool.Reset()
	r.release(r.held.pool)
	r.held = nil
}

// Find returns the leftmost match in b, or nil if there is none.
func (r *Regexp) Find(b []byte) []byte {
	idx := r.FindIndex(b)
	if idx == nil {
		return nil
	}
	return b[idx[0]:idx[1]]
}

// FindString returns the leftmost match in s, or "" if there is none.
func (r *Regexp) FindString(s string) string {
	m := r.Find([]byte(s))
	if m == nil {
		return ""
	}
	return string(m)
}

// FindIndex returns a two-element slice giving the byte offsets of the
// leftmost match in b, or nil if there is none.
func (r *Regexp) FindIndex(b []byte) []int {
	p := r.borrow()
	defer r.release(p)
	ok, caps := r.ctx.Match(p, b, false)
	if !ok {
		return nil
	}
	return []int{int(caps[0].So), int(caps[0].Eo)}
}

// FindStringIndex returns the byte offsets of the leftmost match in s.
func (r *Regexp) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAll returns all non-overlapping matches of the pattern in b. If
// n >= 0 it returns at most n matches; n < 0 means no limit.
func (r *Regexp) FindAll(b []byte, n int) [][]byte {
	idxs := r.FindAllIndex(b, n)
	if idxs == nil {
		return nil
	}
	out := make([][]byte, len(idxs))
	for i, loc := range idxs {
		out[i] = b[loc[0]:loc[1]]
	}
	return out
}

// FindAllIndex returns the byte-offset pairs of all non-overlapping
// matches of the pattern in b.
func (r *Regexp) FindAllIndex(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}
	p := r.borrow()
	defer r.release(p)

	var out [][]int
	pos := 0
	for pos <= len(b) {
		ok, caps := r.ctx.Match(p, b[pos:], false)
		if !ok {
			break
		}
		start := pos + int(caps[0].So)
		end := pos + int(caps[0].Eo)
		out = append(out, []int{start, end})
		if end > pos {
			pos = end
		} else {
			pos++
		}
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// FindAllString returns all non-overlapping matches of the pattern in s.
func (r *Regexp) FindAllString(s string, n int) []string {
	matches := r.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = string(m)
	}
	return out
}

// String returns the source pattern used to compile the expression.
func (r *Regexp) String() string {
	return r.pattern
}

// NumSubexp returns the number of capturing groups, not counting the
// whole-match group 0.
func (r *Regexp) NumSubexp() int {
	return r.numGroups
}

// FindSubmatch returns the leftmost match and its capture groups.
// Result[0] is the whole match; result[i] is the ith group. A group
// that did not participate in the match is reported as nil.
func (r *Regexp) FindSubmatch(b []byte) [][]byte {
	idx := r.FindSubmatchIndex(b)
	if idx == nil {
		return nil
	}
	out := make([][]byte, len(idx)/2)
	for i := range out {
		so, eo := idx[2*i], idx[2*i+1]
		if so < 0 || eo < 0 {
			continue
		}
		out[i] = b[so:eo]
	}
	return out
}

// FindStringSubmatch is FindSubmatch for strings.
func (r *Regexp) FindStringSubmatch(s string) []string {
	idx := r.FindSubmatchIndex([]byte(s))
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx)/2)
	for i := range out {
		so, eo := idx[2*i], idx[2*i+1]
		if so < 0 || eo < 0 {
			continue
		}
		out[i] = s[so:eo]
	}
	return out
}

// FindSubmatchIndex returns index pairs for the leftmost match and its
// capture groups. Result[2*i:2*i+2] is the ith group's (start, end);
// an unmatched group is (-1, -1).
func (r *Regexp) FindSubmatchIndex(b []byte) []int {
	p := r.borrow()
	defer r.release(p)
	ok, caps := r.ctx.Match(p, b, false)
	if !ok {
		return nil
	}
	out := make([]int, len(caps)*2)
	for i, c := range caps {
		out[2*i] = int(c.So)
		out[2*i+1] = int(c.Eo)
	}
	return out
}

// FindStringSubmatchIndex is FindSubmatchIndex for strings.
func (r *Regexp) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}
