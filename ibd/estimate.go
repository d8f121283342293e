package ibd

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

//EstimateOptions collects the tunables of maximum-likelihood estimation.
//Zero values select the package defaults.
type EstimateOptions struct {
	Epsilon      float64
	Rho          float64
	KInit        float64
	RInit        float64
	MaxDeviation float64

	// ZeroEpsilon distinguishes an intentional epsilon of zero from an
	// unset field.
	ZeroEpsilon bool
}

//DefaultEstimateOptions returns the canonical settings: epsilon 0.001,
//rho 7.4e-7, optimizer started at (k, r) = (50, 0.5).
func DefaultEstimateOptions() EstimateOptions {
	return EstimateOptions{
		Epsilon:      DefaultEpsilon,
		Rho:          DefaultRho,
		KInit:        50,
		RInit:        0.5,
		MaxDeviation: DefaultMaxDeviation,
	}
}

func (opts EstimateOptions) withDefaults() EstimateOptions {
	def := DefaultEstimateOptions()
	if opts.Epsilon == 0 && !opts.ZeroEpsilon {
		opts.Epsilon = def.Epsilon
	}
	if opts.Rho == 0 {
		opts.Rho = def.Rho
	}
	if opts.KInit == 0 {
		opts.KInit = def.KInit
	}
	if opts.RInit == 0 {
		opts.RInit = def.RInit
	}
	if opts.MaxDeviation == 0 {
		opts.MaxDeviation = def.MaxDeviation
	}
	return opts
}

//Estimate is the maximum-likelihood fit of the switch rate and the
//relatedness, together with the warnings collected along the way.
type Estimate struct {
	KHat   float64
	RHat   float64
	LogLik float64

	// Number of likelihood evaluations the optimizer spent.
	FuncEvaluations int

	Warnings []Warning
}

//EstimateRelatedness fits (k, r) to one observed genotype pair by
//minimizing the negative log-likelihood with Nelder-Mead. The frequency
//matrix is validated first and the validator's warnings are passed through.
//Genotypes must be complete; an observed allele outside a marker's
//non-zero frequencies is fatal when epsilon is zero and a warning
//otherwise. No bounds are imposed on the optimizer: LogLikelihood encodes
//infeasible parameter regions as -Inf.
func EstimateRelatedness(panel *Panel, ys [][2]int, opts EstimateOptions) (*Estimate, error) {
	opts = opts.withDefaults()

	check, err := ValidateFrequencies(panel.Freqs, opts.MaxDeviation)
	if err != nil {
		return nil, err
	}
	warnings := check.Warnings

	m := panel.NMarkers()
	if len(ys) != m {
		return nil, &DataError{Marker: -1, Sample: -1, Reason: fmt.Sprintf("%d genotype rows for %d markers", len(ys), m)}
	}
	for t := 0; t < m; t++ {
		for i := 0; i < 2; i++ {
			if ys[t][i] < 0 {
				return nil, &DataError{Marker: t, Sample: i, Reason: "missing allele call"}
			}
			if ys[t][i] >= check.NAlleles[t] {
				if opts.Epsilon == 0 {
					return nil, &ModelInfeasibleError{Marker: t, Sample: i, Allele: ys[t][i], NAlleles: check.NAlleles[t]}
				}
				warnings = append(warnings, Warning{
					Kind:    WarnAlleleOutsidePanel,
					Marker:  t,
					Message: fmt.Sprintf("allele %d outside the %d panel alleles; attributed to genotyping error", ys[t][i], check.NAlleles[t]),
				})
			}
		}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return -LogLikelihood(x[0], x[1], ys, panel.Freqs, panel.Dists, opts.Epsilon, opts.Rho)
		},
	}

	result, err := optimize.Minimize(problem, []float64{opts.KInit, opts.RInit}, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("likelihood optimization: %w", err)
	}

	if result.X[0] == opts.KInit && result.X[1] == opts.RInit {
		warnings = append(warnings, Warning{
			Kind:    WarnOptimizerStalled,
			Marker:  -1,
			Message: "optimum equals the starting point; the data may be uninformative",
		})
	}

	return &Estimate{
		KHat:            result.X[0],
		RHat:            result.X[1],
		LogLik:          -result.F,
		FuncEvaluations: result.FuncEvaluations,
		Warnings:        warnings,
	}, nil
}
