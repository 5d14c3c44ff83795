package arena

import (
	"testing"

	"github.com/lessen/rele/internal/charset"
)

func TestAddNodeSetString(t *testing.T) {
	a := New(4, 2, 8)

	i0 := a.AddNode(Node{Op: OpMatch, Ch1: 'x'})
	i1 := a.AddNode(Node{Op: OpDone})
	if i0 != 0 || i1 != 1 {
		t.Fatalf("node indices = %d, %d, want 0, 1", i0, i1)
	}
	if a.Node(i0).Ch1 != 'x' {
		t.Errorf("Node(0).Ch1 = %q, want 'x'", a.Node(i0).Ch1)
	}

	setIdx := a.AddSet(charset.Set{})
	if setIdx != 0 {
		t.Errorf("set index = %d, want 0", setIdx)
	}

	off, n := a.AddString([]byte("hello"))
	if off != 0 || n != 5 {
		t.Errorf("AddString = (%d, %d), want (0, 5)", off, n)
	}
	if string(a.Bytes(off, n)) != "hello" {
		t.Errorf("Bytes = %q, want %q", a.Bytes(off, n), "hello")
	}
}

func TestOverflowed(t *testing.T) {
	a := New(1, 0, 0)
	if a.Overflowed() {
		t.Fatal("fresh arena within capacity should not be overflowed")
	}
	a.AddNode(Node{})
	a.AddNode(Node{}) // exceeds the predicted capacity of 1
	if !a.Overflowed() {
		t.Error("arena growing past its predicted node capacity should report Overflowed")
	}
}

func TestNoIdxSentinel(t *testing.T) {
	if NoIdx != ^uint32(0) {
		t.Errorf("NoIdx = %d, want max uint32", NoIdx)
	}
}
