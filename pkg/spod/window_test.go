package spod

import (
	"math"
	"testing"
)

func TestHammingEndpoints(t *testing.T) {
	w := Hamming(8)
	if len(w) != 8 {
		t.Fatalf("expected length 8, got %d", len(w))
	}
	// w[0] = 0.54 - 0.46*cos(0) = 0.08
	if math.Abs(w[0]-0.08) > 1e-9 {
		t.Errorf("w[0] = %v, want 0.08", w[0])
	}
	// Symmetric: w[k] == w[N-1-k]
	for k := 0; k < len(w); k++ {
		if math.Abs(w[k]-w[len(w)-1-k]) > 1e-9 {
			t.Errorf("window not symmetric at k=%d: w[k]=%v, w[N-1-k]=%v", k, w[k], w[len(w)-1-k])
		}
	}
}

func TestHammingSingleSample(t *testing.T) {
	w := Hamming(1)
	if len(w) != 1 || w[0] != 1 {
		t.Errorf("Hamming(1) = %v, want [1]", w)
	}
}

func TestWindowGain(t *testing.T) {
	w := []float64{1, 1, 1, 1}
	g := WindowGain(w)
	if math.Abs(g-1) > 1e-12 {
		t.Errorf("gain for all-ones window = %v, want 1", g)
	}

	w2 := []float64{0.5, 0.5}
	g2 := WindowGain(w2)
	if math.Abs(g2-2) > 1e-12 {
		t.Errorf("gain for all-0.5 window = %v, want 2", g2)
	}
}
