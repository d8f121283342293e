package ibd

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// The latent IBD indicator is a two-state Markov chain along the markers.
// Its initial distribution is (1-r, r) and the transition matrix between
// markers t and t+1 depends on the distance separating them:
//
//	a01 = r * (1 - exp(-k*rho*d))        enter IBD
//	a11 = r + (1-r) * exp(-k*rho*d)      stay in IBD
//
// An infinite distance (chromosome boundary) zeroes the exponential, so the
// chain restarts from (1-r, r) on the next marker.
func transitionProbs(k, r, rho, dist float64) (a01, a11 float64) {
	decay := math.Exp(-k * rho * dist)
	a01 = r * (1 - decay)
	a11 = r + (1-r)*decay
	return
}

//LogLikelihood evaluates the log-likelihood of one observed genotype pair
//under the hidden Markov model of identity by descent, using the forward
//algorithm. ys holds the two samples' allele calls per marker, fs the
//marker-by-allele frequency matrix (rows right-padded with zeros), dists
//the inter-marker distances, epsilon the genotyping error rate and rho the
//recombination rate per distance unit.
//
//The true genotypes are integrated out marker by marker: under IBD the two
//samples share one true allele drawn from the marker frequencies, otherwise
//the true alleles are independent draws, and each observed call passes
//through the error model independently.
//
//The function never fails. Infeasible parameters (r outside [0, 1] or
//negative k) and contradictory data (a marker whose observations have zero
//probability) yield -Inf, which lets a derivative-free optimizer probe
//outside the feasible region without special-casing.
func LogLikelihood(k, r float64, ys [][2]int, fs *mat.Dense, dists []float64, epsilon, rho float64) float64 {
	if r < 0 || r > 1 || k < 0 {
		return math.Inf(-1)
	}

	m := len(ys)
	loglik := 0.0

	// Predictive distribution of the latent state given past observations.
	pred0, pred1 := 1-r, r

	for t := 0; t < m; t++ {
		n := nAlleles(fs, t)
		keep := 1 - float64(n-1)*epsilon

		// Likelihood of the two calls given no IBD: independent true alleles,
		// double sum over ordered allele pairs.
		lk0 := 0.0
		for g := 0; g < n; g++ {
			pi := fs.At(t, g) * obsProbKeep(ys[t][0], g, keep, epsilon)
			for gp := 0; gp < n; gp++ {
				lk0 += pi * fs.At(t, gp) * obsProbKeep(ys[t][1], gp, keep, epsilon)
			}
		}

		// Likelihood given IBD: the true alleles coincide, so only matching
		// pairs carry mass.
		lk1 := 0.0
		for g := 0; g < n; g++ {
			lk1 += fs.At(t, g) *
				obsProbKeep(ys[t][0], g, keep, epsilon) *
				obsProbKeep(ys[t][1], g, keep, epsilon)
		}

		// Bayes update; the normalizing constant is the marker's marginal
		// likelihood p(y_t | y_1..y_{t-1}).
		filt0 := pred0 * lk0
		filt1 := pred1 * lk1
		marginal := filt0 + filt1
		if !(marginal > 0) {
			// Only contradictory inputs reach here, e.g. an observed allele
			// with zero frequency while epsilon is zero.
			return math.Inf(-1)
		}
		loglik += math.Log(marginal)

		if t < m-1 {
			filt1 /= marginal
			a01, a11 := transitionProbs(k, r, rho, dists[t])
			pred1 = (1-filt1)*a01 + filt1*a11
			pred0 = 1 - pred1
		}
	}

	return loglik
}

// obsProbKeep is the genotyping error model: the true allele is reported
// with probability keep = 1 - (n-1)*epsilon and each of the other n-1
// alleles with probability epsilon.
func obsProbKeep(observed, truth int, keep, epsilon float64) float64 {
	if observed == truth {
		return keep
	}
	return epsilon
}
