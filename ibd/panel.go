package ibd

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// Frequencies at or below this threshold are treated as structural zeros.
	// The number of alleles at a marker is the count of leading entries above it.
	NonZeroThreshold = 1e-20

	// DefaultMaxDeviation is the largest tolerated |rowsum - 1| of a frequency row.
	DefaultMaxDeviation = 1e-5

	// DefaultEpsilon is the default per-alternative-allele genotyping error rate.
	DefaultEpsilon = 0.001

	// DefaultRho is the default recombination rate per base pair.
	DefaultRho = 7.4e-7
)

// MissingAllele marks an absent genotype call. Rows containing it are not
// legal estimator input.
const MissingAllele = -1

//Panel holds the marker data every computation reads: a marker-by-allele
//frequency matrix and the inter-marker distances. Rows of Freqs are
//right-padded with zeros when a marker has fewer than Kmax alleles.
//Dists[t] is the distance from marker t to marker t+1; entries between
//markers on different chromosomes are +Inf and the last entry is unused.
//A Panel is read-only once built.
type Panel struct {
	Freqs *mat.Dense
	Dists []float64
}

//NewPanel wraps the frequency matrix and the distance vector after checking
//that their marker dimensions agree.
func NewPanel(freqs *mat.Dense, dists []float64) (*Panel, error) {
	if freqs == nil {
		return nil, errors.New("nil frequency matrix")
	}
	m, _ := freqs.Dims()
	if m == 0 {
		return nil, errors.New("empty frequency matrix")
	}
	if len(dists) != m {
		return nil, errors.New("frequency matrix and distance vector disagree on the number of markers")
	}
	return &Panel{Freqs: freqs, Dists: dists}, nil
}

//NMarkers returns the number of markers in the panel.
func (panel *Panel) NMarkers() int {
	m, _ := panel.Freqs.Dims()
	return m
}

//nAlleles counts the leading non-zero frequencies of row t. The scan stops
//at the first entry at or below NonZeroThreshold, matching the cardinality
//inference of the likelihood recursion.
func nAlleles(fs *mat.Dense, t int) int {
	_, kmax := fs.Dims()
	n := 0
	for n < kmax && fs.At(t, n) > NonZeroThreshold {
		n++
	}
	return n
}

//Diversity returns the probability that two random draws from the given
//frequency row differ: 1 - sum of squared frequencies.
func Diversity(freqs []float64) float64 {
	return 1 - floats.Dot(freqs, freqs)
}

//EffectiveCardinality returns the allele count adjusted for unequal
//frequencies: the inverse of the sum of squared frequencies. It equals the
//plain cardinality exactly when the alleles are equifrequent.
func EffectiveCardinality(freqs []float64) float64 {
	s := floats.Dot(freqs, freqs)
	if s == 0 {
		return math.NaN()
	}
	return 1 / s
}

//Diversities computes the per-marker diversity of the panel.
func (panel *Panel) Diversities() []float64 {
	m, _ := panel.Freqs.Dims()
	out := make([]float64, m)
	for t := 0; t < m; t++ {
		out[t] = Diversity(panel.Freqs.RawRowView(t))
	}
	return out
}

//EffectiveCardinalities computes the per-marker effective cardinality of the panel.
func (panel *Panel) EffectiveCardinalities() []float64 {
	m, _ := panel.Freqs.Dims()
	out := make([]float64, m)
	for t := 0; t < m; t++ {
		out[t] = EffectiveCardinality(panel.Freqs.RawRowView(t))
	}
	return out
}
