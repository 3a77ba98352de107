package core

import "testing"

func TestByteGridWrap(t *testing.T) {
	g := NewByteGrid(5, 3)
	cases := []struct{ x, y, wx, wy int }{
		{-1, 0, 4, 0},
		{5, 0, 0, 0},
		{-6, -1, 4, 2},
		{12, 7, 2, 1},
	}
	for _, tc := range cases {
		x, y := g.Wrap(tc.x, tc.y)
		if x != tc.wx || y != tc.wy {
			t.Fatalf("Wrap(%d,%d) = (%d,%d), want (%d,%d)", tc.x, tc.y, x, y, tc.wx, tc.wy)
		}
	}
}

func TestByteGridRowAndClone(t *testing.T) {
	g := NewByteGrid(3, 2)
	g.Set(2, 1, 9)
	if got := g.Row(1)[2]; got != 9 {
		t.Fatalf("Row(1)[2] = %d, want 9", got)
	}
	c := g.Clone()
	if !c.Equal(g) {
		t.Fatal("clone differs from original")
	}
	c.Set(0, 0, 1)
	if g.At(0, 0) != 0 {
		t.Fatal("clone shares storage with original")
	}
}

func TestWrapByteGridRejectsMismatch(t *testing.T) {
	if WrapByteGrid(2, 2, make([]uint8, 3)) != nil {
		t.Fatal("expected nil for mismatched length")
	}
	if g := WrapByteGrid(2, 2, make([]uint8, 4)); g == nil || g.W != 2 {
		t.Fatal("expected grid for matching length")
	}
}
