package bitutil

import "testing"

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(70)
	for _, i := range []int{0, 31, 32, 69} {
		ba.Set(i)
	}
	for i := 0; i < 70; i++ {
		want := i == 0 || i == 31 || i == 32 || i == 69
		if ba.Get(i) != want {
			t.Errorf("Get(%d) = %v, want %v", i, ba.Get(i), want)
		}
	}
}

func TestBitArrayGetNextSet(t *testing.T) {
	ba := NewBitArray(100)
	ba.Set(5)
	ba.Set(64)
	tests := []struct{ from, want int }{
		{0, 5}, {5, 5}, {6, 64}, {65, 100}, {100, 100},
	}
	for _, tt := range tests {
		if got := ba.GetNextSet(tt.from); got != tt.want {
			t.Errorf("GetNextSet(%d) = %d, want %d", tt.from, got, tt.want)
		}
	}
}

func TestBitArrayXor(t *testing.T) {
	a := NewBitArray(40)
	b := NewBitArray(40)
	a.Set(1)
	a.Set(35)
	b.Set(35)
	b.Set(7)
	a.Xor(b)
	if !a.Get(1) || !a.Get(7) || a.Get(35) {
		t.Errorf("xor result wrong: 1=%v 7=%v 35=%v", a.Get(1), a.Get(7), a.Get(35))
	}
}

func TestBitArrayXorSizeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Xor of different sizes did not panic")
		}
	}()
	NewBitArray(10).Xor(NewBitArray(11))
}
