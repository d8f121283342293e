package ibd

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestDiversity(t *testing.T) {
	if d := Diversity([]float64{0.5, 0.5}); math.Abs(d-0.5) > 1e-12 {
		t.Fatalf("diversity = %g, want 0.5", d)
	}
	if d := Diversity([]float64{1, 0}); d != 0 {
		t.Fatalf("diversity of a fixed marker = %g, want 0", d)
	}
	// Padding zeros contribute nothing.
	if d := Diversity([]float64{0.3, 0.7, 0, 0}); math.Abs(d-(1-0.09-0.49)) > 1e-12 {
		t.Fatalf("diversity = %g, want %g", d, 1-0.09-0.49)
	}
}

func TestEffectiveCardinalityUniform(t *testing.T) {
	row := []float64{0.25, 0.25, 0.25, 0.25}
	if ec := EffectiveCardinality(row); ec != 4 {
		t.Fatalf("effective cardinality = %g, want exactly 4 for equifrequent alleles", ec)
	}
}

func TestEffectiveCardinalityBelowCardinality(t *testing.T) {
	// Unequal frequencies push the effective count below the plain count.
	ec := EffectiveCardinality([]float64{0.9, 0.05, 0.05})
	if ec >= 3 || ec <= 1 {
		t.Fatalf("effective cardinality = %g, want inside (1, 3)", ec)
	}
}

func TestNewPanelShapeMismatch(t *testing.T) {
	fs := mat.NewDense(2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	if _, err := NewPanel(fs, []float64{1e5}); err == nil {
		t.Fatalf("mismatched distance vector accepted")
	}
}

func TestNAllelesStopsAtPadding(t *testing.T) {
	fs := mat.NewDense(2, 4, []float64{
		0.3, 0.7, 0, 0,
		0.25, 0.25, 0.25, 0.25,
	})
	if n := nAlleles(fs, 0); n != 2 {
		t.Fatalf("nAlleles(row 0) = %d, want 2", n)
	}
	if n := nAlleles(fs, 1); n != 4 {
		t.Fatalf("nAlleles(row 1) = %d, want 4", n)
	}
}
