package spod

import "testing"

func TestFlatIndexColumnMajor(t *testing.T) {
	shape := []int{2, 3}
	// column-major: first index fastest.
	cases := []struct {
		coords []int
		want   int
	}{
		{[]int{0, 0}, 0},
		{[]int{1, 0}, 1},
		{[]int{0, 1}, 2},
		{[]int{1, 1}, 3},
		{[]int{0, 2}, 4},
		{[]int{1, 2}, 5},
	}
	for _, c := range cases {
		got := flatIndex(shape, c.coords)
		if got != c.want {
			t.Errorf("flatIndex(%v, %v) = %d, want %d", shape, c.coords, got, c.want)
		}
		back := unflatIndex(shape, c.want)
		for i := range back {
			if back[i] != c.coords[i] {
				t.Errorf("unflatIndex(%v, %d) = %v, want %v", shape, c.want, back, c.coords)
			}
		}
	}
}

func TestNDArraySetAt(t *testing.T) {
	a := NewNDArray([]int{2, 2})
	a.Set(complex(1, 2), 0, 0)
	a.Set(complex(3, 4), 1, 1)
	if a.At(0, 0) != complex(1, 2) {
		t.Errorf("At(0,0) = %v, want 1+2i", a.At(0, 0))
	}
	if a.At(1, 1) != complex(3, 4) {
		t.Errorf("At(1,1) = %v, want 3+4i", a.At(1, 1))
	}
	if a.At(0, 1) != 0 {
		t.Errorf("At(0,1) = %v, want 0", a.At(0, 1))
	}
}

func TestNDArrayRoundTripCoords(t *testing.T) {
	a := NewNDArray([]int{3, 2})
	for flat := 0; flat < len(a.Data); flat++ {
		coords := a.Coords(flat)
		if flatIndex(a.Shape, coords) != flat {
			t.Errorf("round trip failed for flat=%d: coords=%v", flat, coords)
		}
	}
}
