package ibd

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// newEquifreqPanel builds m biallelic markers with equal frequencies and a
// constant inter-marker distance; the last distance entry is unused and
// left infinite.
func newEquifreqPanel(m int, dist float64) *Panel {
	data := make([]float64, 2*m)
	dists := make([]float64, m)
	for t := 0; t < m; t++ {
		data[2*t] = 0.5
		data[2*t+1] = 0.5
		dists[t] = dist
	}
	dists[m-1] = math.Inf(1)
	return &Panel{Freqs: mat.NewDense(m, 2, data), Dists: dists}
}

func TestLogLikelihoodInfeasibleParameters(t *testing.T) {
	panel := newEquifreqPanel(3, 1e5)
	ys := [][2]int{{0, 0}, {1, 1}, {0, 1}}

	for _, par := range []struct{ k, r float64 }{
		{-1, 0.5},
		{5, -0.01},
		{5, 1.01},
	} {
		ll := LogLikelihood(par.k, par.r, ys, panel.Freqs, panel.Dists, DefaultEpsilon, DefaultRho)
		if !math.IsInf(ll, -1) {
			t.Fatalf("k=%g r=%g: got %g, want -Inf", par.k, par.r, ll)
		}
	}
}

func TestLogLikelihoodSingleMarkerFullIBD(t *testing.T) {
	panel := newEquifreqPanel(1, 0)
	ys := [][2]int{{0, 0}}

	// Under r=1 and no genotyping error the pair marginal is just the
	// probability of drawing either allele.
	ll := LogLikelihood(5, 1, ys, panel.Freqs, panel.Dists, 0, DefaultRho)
	want := math.Log(0.5)
	if math.Abs(ll-want) > 1e-12 {
		t.Fatalf("loglik = %.15f, want %.15f", ll, want)
	}
}

func TestLogLikelihoodSingleMarkerUnrelated(t *testing.T) {
	panel := newEquifreqPanel(1, 0)

	// r=0: the two calls are independent draws.
	ll := LogLikelihood(5, 0, [][2]int{{0, 1}}, panel.Freqs, panel.Dists, 0, DefaultRho)
	want := math.Log(0.25)
	if math.Abs(ll-want) > 1e-12 {
		t.Fatalf("loglik = %.15f, want %.15f", ll, want)
	}
}

func TestLogLikelihoodSingleMarkerMixture(t *testing.T) {
	panel := newEquifreqPanel(1, 0)

	// r=0.25: marginal = 0.75*0.25 + 0.25*0.5.
	ll := LogLikelihood(5, 0.25, [][2]int{{0, 0}}, panel.Freqs, panel.Dists, 0, DefaultRho)
	want := math.Log(0.3125)
	if math.Abs(ll-want) > 1e-12 {
		t.Fatalf("loglik = %.15f, want %.15f", ll, want)
	}
}

func TestLogLikelihoodErrorModel(t *testing.T) {
	fs := mat.NewDense(1, 2, []float64{0.8, 0.2})
	dists := []float64{math.Inf(1)}
	epsilon := 0.05

	// r=0, both calls 0: each call marginal is 0.8*0.95 + 0.2*0.05 = 0.77.
	ll := LogLikelihood(3, 0, [][2]int{{0, 0}}, fs, dists, epsilon, DefaultRho)
	want := 2 * math.Log(0.77)
	if math.Abs(ll-want) > 1e-12 {
		t.Fatalf("loglik = %.15f, want %.15f", ll, want)
	}
}

func TestLogLikelihoodChromosomeBoundaryFactorizes(t *testing.T) {
	// With an infinite distance between two markers the chain restarts, so
	// the joint log-likelihood is the sum of the per-marker ones.
	fs := mat.NewDense(2, 2, []float64{
		0.7, 0.3,
		0.2, 0.8,
	})
	dists := []float64{math.Inf(1), math.Inf(1)}
	ys := [][2]int{{0, 0}, {1, 0}}
	k, r, epsilon := 10.0, 0.3, 0.001

	joint := LogLikelihood(k, r, ys, fs, dists, epsilon, DefaultRho)

	first := LogLikelihood(k, r, ys[:1], mat.NewDense(1, 2, []float64{0.7, 0.3}), dists[:1], epsilon, DefaultRho)
	second := LogLikelihood(k, r, ys[1:], mat.NewDense(1, 2, []float64{0.2, 0.8}), dists[1:], epsilon, DefaultRho)

	if math.Abs(joint-(first+second)) > 1e-12 {
		t.Fatalf("joint = %.15f, sum of parts = %.15f", joint, first+second)
	}
}

func TestLogLikelihoodContradictoryDataIsMinusInf(t *testing.T) {
	// Allele 1 observed while the marker only carries allele 0 and
	// epsilon is zero: probability zero, not NaN.
	fs := mat.NewDense(1, 2, []float64{1, 0})
	dists := []float64{math.Inf(1)}

	ll := LogLikelihood(5, 0.5, [][2]int{{1, 0}}, fs, dists, 0, DefaultRho)
	if !math.IsInf(ll, -1) {
		t.Fatalf("got %g, want -Inf", ll)
	}
}

func TestLogLikelihoodMoreMarkersMoreInformation(t *testing.T) {
	// Sanity on the recursion: under r=0 with far-apart markers the
	// log-likelihood of all-matching calls decreases linearly with the
	// marker count.
	one := newEquifreqPanel(1, 1e12)
	ten := newEquifreqPanel(10, 1e12)

	ysOne := [][2]int{{0, 0}}
	ysTen := make([][2]int, 10)

	llOne := LogLikelihood(5, 0, ysOne, one.Freqs, one.Dists, 0, DefaultRho)
	llTen := LogLikelihood(5, 0, ysTen, ten.Freqs, ten.Dists, 0, DefaultRho)

	if math.Abs(llTen-10*llOne) > 1e-9 {
		t.Fatalf("llTen = %.12f, want %.12f", llTen, 10*llOne)
	}
}
