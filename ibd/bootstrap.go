package ibd

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

//BootstrapOptions collects the tunables of the parametric bootstrap.
//Zero values select the defaults: 95% confidence, 100 replicates, one
//worker per CPU.
type BootstrapOptions struct {
	// Confidence level in percent.
	Confidence float64

	NBoot   int
	Workers int

	// Seed of the master random stream. Together with NBoot it fixes the
	// multiset of replicate outcomes for any worker count.
	Seed uint64

	// Estimation settings reused by every replicate; epsilon and rho also
	// parameterize the replicate simulations.
	Est EstimateOptions
}

//DefaultBootstrapOptions returns the canonical bootstrap settings.
func DefaultBootstrapOptions() BootstrapOptions {
	return BootstrapOptions{
		Confidence: 95,
		NBoot:      100,
		Workers:    runtime.NumCPU(),
		Est:        DefaultEstimateOptions(),
	}
}

func (opts BootstrapOptions) withDefaults() BootstrapOptions {
	if opts.Confidence == 0 {
		opts.Confidence = 95
	}
	if opts.NBoot == 0 {
		opts.NBoot = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	opts.Est = opts.Est.withDefaults()
	return opts
}

//Interval is one confidence interval.
type Interval struct {
	Lower, Upper float64
}

//BootstrapCI holds the bootstrap confidence intervals for the switch rate
//and the relatedness, plus the nboot-by-2 matrix of replicate estimates
//(columns k, r) they were reduced from.
type BootstrapCI struct {
	K, R       Interval
	Replicates *mat.Dense
}

// replicateTask simulates one genotype pair at the fitted parameters and
// re-estimates. Each task owns a private slot of the shared result slices
// and its own seeded random stream, so tasks never contend.
type replicateTask struct {
	panel *Panel
	sim   SimParams
	est   EstimateOptions
	seed  uint64
	index int
	ks    []float64
	rs    []float64
	errs  []error
}

func (task *replicateTask) Run() {
	src := rand.NewSource(task.seed)
	ys, err := Simulate(task.panel, task.sim, src)
	if err != nil {
		task.errs[task.index] = err
		return
	}
	est, err := EstimateRelatedness(task.panel, ys, task.est)
	if err != nil {
		task.errs[task.index] = err
		return
	}
	task.ks[task.index] = est.KHat
	task.rs[task.index] = est.RHat
}

//Bootstrap quantifies the uncertainty of a fitted (khat, rhat) by the
//parametric bootstrap: each replicate simulates a genotype pair at the
//fitted parameters and re-estimates with the caller's estimation settings,
//then the replicate estimates are reduced to empirical quantile bounds.
//
//Replicates are independent and run on a worker pool; Workers of one runs
//them inline, which tests use for determinism. Every replicate draws from
//a stream seeded by replicateSeed(Seed, index), so the outcome multiset is
//identical no matter how the work is partitioned.
func Bootstrap(panel *Panel, khat, rhat float64, opts BootstrapOptions) (*BootstrapCI, error) {
	opts = opts.withDefaults()

	if _, err := ValidateFrequencies(panel.Freqs, opts.Est.MaxDeviation); err != nil {
		return nil, err
	}

	sim := SimParams{K: khat, R: rhat, Epsilon: opts.Est.Epsilon, Rho: opts.Est.Rho}

	ks := make([]float64, opts.NBoot)
	rs := make([]float64, opts.NBoot)
	errs := make([]error, opts.NBoot)

	tasks := make([]replicateTask, opts.NBoot)
	for i := range tasks {
		tasks[i] = replicateTask{
			panel: panel,
			sim:   sim,
			est:   opts.Est,
			seed:  replicateSeed(opts.Seed, i),
			index: i,
			ks:    ks,
			rs:    rs,
			errs:  errs,
		}
	}

	if opts.Workers == 1 {
		for i := range tasks {
			tasks[i].Run()
		}
	} else {
		pool := NewPool(opts.Workers)
		for i := range tasks {
			pool.AddTask(&tasks[i])
		}
		pool.Close()
		pool.WaitAll()
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	alpha := 1 - opts.Confidence/100
	ci := &BootstrapCI{}
	var err error
	if ci.K, err = quantileBounds("k", ks, alpha); err != nil {
		return nil, err
	}
	if ci.R, err = quantileBounds("r", rs, alpha); err != nil {
		return nil, err
	}

	ci.Replicates = mat.NewDense(opts.NBoot, 2, nil)
	for i := 0; i < opts.NBoot; i++ {
		ci.Replicates.Set(i, 0, ks[i])
		ci.Replicates.Set(i, 1, rs[i])
	}

	return ci, nil
}

// quantileBounds reduces one parameter's replicate estimates to the
// (alpha/2, 1-alpha/2) empirical quantiles. The reduction sorts, so it is
// independent of replicate execution order.
func quantileBounds(name string, values []float64, alpha float64) (Interval, error) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	iv := Interval{
		Lower: stat.Quantile(alpha/2, stat.Empirical, sorted, nil),
		Upper: stat.Quantile(1-alpha/2, stat.Empirical, sorted, nil),
	}
	if math.IsNaN(iv.Lower) || math.IsNaN(iv.Upper) {
		return iv, &BootstrapDegenerateError{Param: name}
	}
	return iv, nil
}
