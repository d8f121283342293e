package ibd

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

//SimParams collects the generative model parameters for one simulated
//genotype pair.
type SimParams struct {
	K       float64
	R       float64
	Epsilon float64
	Rho     float64
}

//DefaultSimParams fills the nuisance constants with their package defaults.
func DefaultSimParams(k, r float64) SimParams {
	return SimParams{K: k, R: r, Epsilon: DefaultEpsilon, Rho: DefaultRho}
}

//Simulate draws one genotype pair from the hidden Markov model that
//LogLikelihood evaluates. The latent IBD chain starts as Bernoulli(r) and
//moves with the transition probabilities of transitionProbs, so simulator
//and likelihood cannot drift apart. True alleles are categorical draws from
//the marker frequencies, shared between the samples under IBD, and each
//call then passes independently through the genotyping error model.
//
//Pass a seeded source for reproducible output; a nil source is seeded from
//the wall clock.
func Simulate(panel *Panel, par SimParams, src rand.Source) ([][2]int, error) {
	if _, err := ValidateFrequencies(panel.Freqs, 0); err != nil {
		return nil, err
	}
	if par.R < 0 || par.R > 1 {
		return nil, fmt.Errorf("relatedness %g outside [0, 1]", par.R)
	}
	if par.K < 0 {
		return nil, fmt.Errorf("negative switch rate %g", par.K)
	}
	if par.Epsilon < 0 {
		return nil, fmt.Errorf("negative error rate %g", par.Epsilon)
	}
	m := panel.NMarkers()
	if len(panel.Dists) != m {
		return nil, fmt.Errorf("distance vector has %d entries for %d markers", len(panel.Dists), m)
	}

	src = newSource(src)
	rng := rand.New(src)
	bern := distuv.Bernoulli{P: par.R, Src: src}

	ys := make([][2]int, m)
	ibd := int(bern.Rand())
	for t := 0; t < m; t++ {
		if t > 0 {
			a01, a11 := transitionProbs(par.K, par.R, par.Rho, panel.Dists[t-1])
			p := a01
			if ibd == 1 {
				p = a11
			}
			if rng.Float64() < p {
				ibd = 1
			} else {
				ibd = 0
			}
		}

		n := nAlleles(panel.Freqs, t)
		errMass := float64(n-1) * par.Epsilon
		if errMass > 1 {
			return nil, fmt.Errorf("error mass %g exceeds 1 at marker %d", errMass, t)
		}

		cat := distuv.NewCategorical(panel.Freqs.RawRowView(t)[:n], src)
		gi := int(cat.Rand())
		gj := gi
		if ibd == 0 {
			gj = int(cat.Rand())
		}

		ys[t][0] = miscall(gi, n, errMass, rng)
		ys[t][1] = miscall(gj, n, errMass, rng)
	}

	return ys, nil
}

// miscall applies the observation error model: with probability
// (n-1)*epsilon the call is replaced by a uniform draw over the other
// alleles.
func miscall(truth, n int, errMass float64, rng *rand.Rand) int {
	if n < 2 || rng.Float64() >= errMass {
		return truth
	}
	other := rng.Intn(n - 1)
	if other >= truth {
		other++
	}
	return other
}
