package conv

import "testing"

func TestIntToUint32(t *testing.T) {
	if got := IntToUint32(42); got != 42 {
		t.Errorf("IntToUint32(42) = %d, want 42", got)
	}
}

func TestIntToUint32NegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("IntToUint32(-1) should panic")
		}
	}()
	IntToUint32(-1)
}

func TestIntToUint16(t *testing.T) {
	if got := IntToUint16(1000); got != 1000 {
		t.Errorf("IntToUint16(1000) = %d, want 1000", got)
	}
}

func TestIntToUint16OverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("IntToUint16(70000) should panic")
		}
	}()
	IntToUint16(70000)
}

func TestUint64ToUint32(t *testing.T) {
	if got := Uint64ToUint32(100); got != 100 {
		t.Errorf("Uint64ToUint32(100) = %d, want 100", got)
	}
}

func TestUint64ToUint32OverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Uint64ToUint32(1<<40) should panic")
		}
	}()
	Uint64ToUint32(1 << 40)
}

func TestUint64ToUint16(t *testing.T) {
	if got := Uint64ToUint16(5); got != 5 {
		t.Errorf("Uint64ToUint16(5) = %d, want 5", got)
	}
}

func TestUint64ToUint16OverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Uint64ToUint16(1<<20) should panic")
		}
	}()
	Uint64ToUint16(1 << 20)
}
