package rele

import (
	"reflect"
	"strings"
	"testing"
)

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		pattern string
	}{
		{"("},
		{"a{2,1}"},
		{"[a-"},
		{`\g{9}`},
		{"a{1001}"},
	}
	for _, tt := range tests {
		if _, err := Compile(tt.pattern); err == nil {
			t.Errorf("Compile(%q): expected error, got nil", tt.pattern)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{`\d+`, "hello 123", true},
		{`\d+`, "hello", false},
		{`^abc$`, "abc", true},
		{`^abc$`, "abcd", false},
		{`a*`, "", true},
		{`a+`, "", false},
		{`(ab)+`, "ababab", true},
		{`colou?r`, "color", true},
		{`colou?r`, "colour", true},
		{`colou?r`, "colouur", false},
		{`a{2,4}`, "aaa", true},
		{`a{2,4}`, "a", false},
		{`[a-z]+@[a-z]+\.[a-z]+`, "user@example.com", true},
		{`cat|dog|bird`, "I have a dog", true},
		{`cat|dog|bird`, "I have a fish", false},
	}
	for _, tt := range tests {
		re, err := Compile(tt.pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tt.pattern, err)
		}
		if got := re.MatchString(tt.input); got != tt.want {
			t.Errorf("Compile(%q).MatchString(%q) = %v, want %v", tt.pattern, tt.input, got, tt.want)
		}
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		pattern, input, want string
	}{
		{`\d+`, "age: 42 years", "42"},
		{`\d+`, "no digits here", ""},
		{`a.*b`, "xaybzb", "aybzb"},
		{`a.*?b`, "xaybzb", "ayb"},
	}
	for _, tt := range tests {
		re := MustCompile(tt.pattern)
		if got := re.FindString(tt.input); got != tt.want {
			t.Errorf("Compile(%q).FindString(%q) = %q, want %q", tt.pattern, tt.input, got, tt.want)
		}
	}
}

func TestFindCaseless(t *testing.T) {
	re := MustCompileFlags(`HELLO`, Caseless)
	if !re.MatchString("say hello there") {
		t.Fatal("expected caseless match")
	}
}

// TestFindCaselessAlternationLiterals exercises the litset prefilter path:
// a bare 3-branch literal alternation has no fast-start anchor (ALTERNATE
// isn't one findFastStart recognizes), so CompileFlags builds a
// litset.Set over "cat"/"dog"/"bird" and every match goes through
// Context.Literals.ContainsAny against the raw input before the per-position
// walk runs.
func TestFindCaselessAlternationLiterals(t *testing.T) {
	re := MustCompileFlags(`cat|dog|bird`, Caseless)
	tests := []struct {
		input string
		want  bool
	}{
		{"I HAVE A DOG", true},
		{"a CaT sat there", true},
		{"BIRD watching", true},
		{"I HAVE A FISH", false},
	}
	for _, tt := range tests {
		if got := re.MatchString(tt.input); got != tt.want {
			t.Errorf("MatchString(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFindNewline(t *testing.T) {
	re := MustCompileFlags(`^b`, Newline)
	if !re.MatchString("a\nb") {
		t.Error("expected ^ to match after a newline with Newline flag set")
	}
	re2 := MustCompile(`^b`)
	if re2.MatchString("a\nb") {
		t.Error("expected ^ not to match after a newline without Newline flag")
	}
}

func TestFindAll(t *testing.T) {
	re := MustCompile(`\d+`)
	got := re.FindAllString("1 22 333", -1)
	want := []string{"1", "22", "333"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindAllString = %v, want %v", got, want)
	}

	limited := re.FindAllString("1 22 333", 2)
	if !reflect.DeepEqual(limited, want[:2]) {
		t.Errorf("FindAllString(n=2) = %v, want %v", limited, want[:2])
	}
}

func TestFindSubmatch(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)\.(\w+)`)
	got := re.FindStringSubmatch("contact user@example.com today")
	want := []string{"user@example.com", "user", "example", "com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindStringSubmatch = %v, want %v", got, want)
	}
	if n := re.NumSubexp(); n != 3 {
		t.Errorf("NumSubexp = %d, want 3", n)
	}
}

func TestFindSubmatchOptionalGroup(t *testing.T) {
	re := MustCompile(`(a)(b)?`)
	got := re.FindStringSubmatch("a")
	if got[1] != "a" || got[2] != "" {
		t.Errorf("unexpected submatch result %v", got)
	}
	idx := re.FindSubmatchIndex([]byte("a"))
	if idx[4] != -1 || idx[5] != -1 {
		t.Errorf("unmatched group should report -1,-1, got %d,%d", idx[4], idx[5])
	}
}

func TestBackreference(t *testing.T) {
	re := MustCompile(`(\w+) \1`)
	if !re.MatchString("hello hello") {
		t.Error("expected backreference match")
	}
	if re.MatchString("hello world") {
		t.Error("expected backreference mismatch to fail")
	}
}

func TestWordBoundary(t *testing.T) {
	re := MustCompile(`\bcat\b`)
	if !re.MatchString("the cat sat") {
		t.Error("expected word-boundary match")
	}
	if re.MatchString("concatenate") {
		t.Error("expected no match inside a larger word")
	}
}

// TestFastStartEquivalence checks an invariant directly: toggling the
// outer-scan optimisation never changes which match is found.
func TestFastStartEquivalence(t *testing.T) {
	patterns := []string{`\d+`, `a.*b`, `a.*?b`, `foo|bar|baz`, `^start`, `end$`}
	input := "xxstart aaa foo 123 endbar yyy"
	for _, pat := range patterns {
		withOpt := MustCompile(pat)
		noOpt := MustCompileFlags(pat, NoFastStart)

		gotOpt := withOpt.FindStringIndex(input)
		gotNoOpt := noOpt.FindStringIndex(input)
		if !reflect.DeepEqual(gotOpt, gotNoOpt) {
			t.Errorf("pattern %q: fast-start result %v != no-fast-start result %v", pat, gotOpt, gotNoOpt)
		}
	}
}

func TestLeftmostAlternationPriority(t *testing.T) {
	re := MustCompile(`a|ab`)
	if got := re.FindString("ab"); got != "a" {
		t.Errorf("FindString = %q, want %q (leftmost alternative wins over longer one)", got, "a")
	}
}

func TestString(t *testing.T) {
	re := MustCompile(`\d+`)
	if re.String() != `\d+` {
		t.Errorf("String() = %q, want %q", re.String(), `\d+`)
	}
}

func TestMatchKeepTasksGroups(t *testing.T) {
	re := MustCompile(`(\w+)@(\w+)\.(\w+)`)
	if !re.Match([]byte("contact user@example.com today"), KeepTasks) {
		t.Fatal("expected a match")
	}
	defer re.Release()

	whole := re.Group(0)
	if whole.So != 8 || whole.Eo != 24 {
		t.Errorf("Group(0) = %+v, want {8 24}", whole)
	}

	groups := re.Groups()
	if len(groups) != 4 {
		t.Fatalf("Groups() returned %d captures, want 4", len(groups))
	}
	if got := "user@example.com"[groups[1].So-8 : groups[1].Eo-8]; got != "user" {
		t.Errorf("Group(1) slice = %q, want %q", got, "user")
	}
}

func TestMatchWithoutKeepTasksHasNoHeldGroups(t *testing.T) {
	re := MustCompile(`\d+`)
	if !re.Match([]byte("42"), 0) {
		t.Fatal("expected a match")
	}
	if got := re.Groups(); got != nil {
		t.Errorf("Groups() after a non-KeepTasks Match = %v, want nil", got)
	}
	if g := re.Group(0); g.So != -1 || g.Eo != -1 {
		t.Errorf("Group(0) after a non-KeepTasks Match = %+v, want {-1 -1}", g)
	}
}

func TestReleaseThenSecondKeepTasksMatch(t *testing.T) {
	re := MustCompile(`\d+`)
	if !re.Match([]byte("a1"), KeepTasks) {
		t.Fatal("expected first match")
	}
	re.Release()
	if g := re.Group(0); g.So != -1 {
		t.Errorf("Group(0) after Release = %+v, want So=-1", g)
	}

	if !re.Match([]byte("b22"), KeepTasks) {
		t.Fatal("expected second match")
	}
	defer re.Release()
	if g := re.Group(0); g.So != 1 || g.Eo != 3 {
		t.Errorf("Group(0) after second KeepTasks match = %+v, want {1 3}", g)
	}
}

func TestDumpDOT(t *testing.T) {
	re := MustCompile(`(a)b+`)
	var sb strings.Builder
	if err := re.DumpDOT(&sb); err != nil {
		t.Fatalf("DumpDOT: %v", err)
	}
	out := sb.String()
	if !strings.HasPrefix(out, "digraph rele {") {
		t.Errorf("DumpDOT output doesn't start with the digraph header: %q", out)
	}
	if !strings.Contains(out, "GROUP") || !strings.Contains(out, "PLUS") {
		t.Errorf("DumpDOT output missing expected node labels: %s", out)
	}
}
