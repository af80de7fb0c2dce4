package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 3)
	bm.Set(0, 0)
	bm.Set(33, 2)
	if !bm.Get(0, 0) || !bm.Get(33, 2) {
		t.Error("set bits not read back")
	}
	if bm.Get(33, 1) || bm.Get(1, 0) {
		t.Error("unset bits read as set")
	}
	if bm.Width() != 40 || bm.Height() != 3 {
		t.Errorf("size %dx%d, want 40x3", bm.Width(), bm.Height())
	}
}

func TestBitMatrixString(t *testing.T) {
	bm := NewBitMatrixWithSize(2, 2)
	bm.Set(1, 0)
	bm.Set(0, 1)
	if got, want := bm.String(), "  X \nX   \n"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}
