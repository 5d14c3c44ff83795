package compiler

import (
	"errors"
	"testing"

	"github.com/lessen/rele/internal/arena"
)

func TestCompileValid(t *testing.T) {
	tests := []string{
		`abc`,
		`a|b|c`,
		`a*b+c?`,
		`a{2,4}`,
		`a{2,}`,
		`(abc)`,
		`(a)(b)\1\2`,
		`\d+\w*\s?`,
		`[a-z0-9_]+`,
		`[^abc]`,
		`^start$`,
		`\bword\B`,
		`a.*b`,
		`.+`,
		`\R`,
	}
	for _, pat := range tests {
		res, err := Compile(pat, false, false)
		if err != nil {
			t.Errorf("Compile(%q): unexpected error: %v", pat, err)
			continue
		}
		if res.Arena == nil || res.Root == arena.NoIdx {
			t.Errorf("Compile(%q): missing arena/root", pat)
		}
		if res.Arena.Overflowed() {
			t.Errorf("Compile(%q): arena overflowed its measuring-pass capacity", pat)
		}
	}
}

func TestCompileCapturesGroupCount(t *testing.T) {
	res, err := Compile(`(a)(b(c))`, false, false)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.NumGroups != 3 {
		t.Errorf("NumGroups = %d, want 3", res.NumGroups)
	}
}

func TestCompileFlagsCarried(t *testing.T) {
	res, err := Compile(`abc`, true, true)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !res.Caseless || !res.Newline {
		t.Errorf("Caseless/Newline not carried through: %+v", res)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		pattern string
		sentinel error
	}{
		{"(abc", ErrSyntax},
		{"a{3,1}", ErrMalformedQuantifier},
		{"a{1001}", ErrMalformedQuantifier},
		{"a{01,2}", ErrMalformedQuantifier},
		{"a{1,02}", ErrMalformedQuantifier},
		{"[a-", ErrMalformedSet},
		{"[z-a]", ErrMalformedSet},
		{`\9`, ErrBadGroupReference},
		{`\g{}`, ErrBadGroupReference},
	}
	for _, tt := range tests {
		_, err := Compile(tt.pattern, false, false)
		if err == nil {
			t.Errorf("Compile(%q): expected error", tt.pattern)
			continue
		}
		if _, ok := err.(*Error); !ok {
			t.Errorf("Compile(%q): error is not *compiler.Error: %v", tt.pattern, err)
			continue
		}
		if !errors.Is(err, tt.sentinel) {
			t.Errorf("Compile(%q): errors.Is(err, %v) = false, want true (err: %v)", tt.pattern, tt.sentinel, err)
		}
	}
}

func TestCompileRejectsDeepMultNesting(t *testing.T) {
	// Four levels of nested {m,n} quantifiers exceed the fixed 3-slot
	// counter stack each task carries.
	_, err := Compile(`((((a{1,2}){1,2}){1,2}){1,2})`, false, false)
	if err == nil {
		t.Fatal("expected an error for MULT nesting deeper than 3")
	}
}

func TestCompileBackreferenceToUndefinedGroup(t *testing.T) {
	_, err := Compile(`(a)\2`, false, false)
	if err == nil {
		t.Fatal("expected error referencing an undefined group")
	}
}
