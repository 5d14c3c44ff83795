package litset

import "testing"

func TestNewBelowThreshold(t *testing.T) {
	if s := New([][]byte{[]byte("cat")}, false); s != nil {
		t.Error("New with fewer than 2 literals should return nil (no filter)")
	}
	if s := New(nil, false); s != nil {
		t.Error("New with no literals should return nil")
	}
}

func TestNilSetAlwaysContains(t *testing.T) {
	var s *Set
	if !s.ContainsAny([]byte("anything at all")) {
		t.Error("a nil Set must always report true")
	}
}

func TestContainsAny(t *testing.T) {
	s := New([][]byte{[]byte("cat"), []byte("dog"), []byte("bird")}, false)
	if s == nil {
		t.Fatal("expected a non-nil Set for 3 literals")
	}
	if !s.ContainsAny([]byte("I have a dog")) {
		t.Error("expected a hit for 'dog'")
	}
	if s.ContainsAny([]byte("I have a fish")) {
		t.Error("expected no hit for text containing none of the literals")
	}
}

func TestContainsAnyCaseless(t *testing.T) {
	// Literals arrive already folded to lowercase, mirroring what
	// internal/compiler's literal-run parsing does when compiling a
	// caseless pattern.
	s := New([][]byte{[]byte("cat"), []byte("dog"), []byte("bird")}, true)
	if s == nil {
		t.Fatal("expected a non-nil Set for 3 literals")
	}
	if !s.ContainsAny([]byte("I HAVE A DOG")) {
		t.Error("expected a caseless hit for 'DOG' against lowercase literal 'dog'")
	}
	if !s.ContainsAny([]byte("a CaT sat")) {
		t.Error("expected a caseless hit for mixed-case 'CaT'")
	}
	if s.ContainsAny([]byte("I HAVE A FISH")) {
		t.Error("expected no hit for text containing none of the literals")
	}
}
