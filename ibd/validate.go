package ibd

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//PanelCheck is the outcome of frequency validation. NAlleles caches the
//per-marker count of leading non-zero frequencies so downstream genotype
//compatibility checks do not rescan the matrix.
type PanelCheck struct {
	NAlleles []int
	Warnings []Warning
}

//ValidateFrequencies checks the structural invariants of a frequency matrix
//before any likelihood computation touches it. The checks are staged: the
//range check runs first because negative entries would corrupt the
//zero-ordering test, then the ordering check, then the row sums.
//maxDeviation <= 0 selects DefaultMaxDeviation.
func ValidateFrequencies(fs *mat.Dense, maxDeviation float64) (*PanelCheck, error) {
	if fs == nil {
		return nil, &ValidationError{Marker: -1, Reason: "nil matrix"}
	}
	if maxDeviation <= 0 {
		maxDeviation = DefaultMaxDeviation
	}
	m, kmax := fs.Dims()
	if m == 0 || kmax == 0 {
		return nil, &ValidationError{Marker: -1, Reason: "empty matrix"}
	}

	for t := 0; t < m; t++ {
		for g := 0; g < kmax; g++ {
			v := fs.At(t, g)
			if v < 0 || v > 1 || math.IsNaN(v) {
				return nil, &ValidationError{Marker: t, Reason: fmt.Sprintf("frequency %g outside [0, 1]", v)}
			}
		}
	}

	check := &PanelCheck{NAlleles: make([]int, m)}
	for t := 0; t < m; t++ {
		n := nAlleles(fs, t)
		if n == 0 {
			return nil, &ValidationError{Marker: t, Reason: "row has no non-zero frequencies"}
		}
		// Right-padding invariant: once a zero is seen, the rest of the row
		// must be zero as well.
		for g := n; g < kmax; g++ {
			if fs.At(t, g) > NonZeroThreshold {
				return nil, &ValidationError{Marker: t, Reason: fmt.Sprintf("zero frequency at column %d precedes non-zero at column %d", n, g)}
			}
		}
		check.NAlleles[t] = n
	}

	for t := 0; t < m; t++ {
		dev := math.Abs(floats.Sum(fs.RawRowView(t)) - 1)
		if dev > maxDeviation {
			return nil, &ValidationError{Marker: t, Reason: fmt.Sprintf("frequencies sum to 1%+g", dev)}
		}
		if dev > NonZeroThreshold {
			check.Warnings = append(check.Warnings, Warning{
				Kind:    WarnRowSumDeviation,
				Marker:  t,
				Message: fmt.Sprintf("frequency sum deviates from 1 by %g", dev),
			})
		}
		if check.NAlleles[t] == 1 {
			check.Warnings = append(check.Warnings, Warning{
				Kind:    WarnDegenerateMarker,
				Marker:  t,
				Message: "single-allele marker carries no information",
			})
		}
	}

	return check, nil
}
