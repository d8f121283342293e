package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"os"

	"github.com/sbinet/npyio"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/rdormann/ibdpanel/ibd"
)

func handleError(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	handleError(err)
	defer func() { handleError(file.Close()) }()

	decoder := json.NewDecoder(file)
	handleError(decoder.Decode(out))
}

func readNpy(fileName string) *mat.Dense {
	f, err := os.Open(fileName)
	handleError(err)
	defer func() { handleError(f.Close()) }()

	r, err := npyio.NewReader(f)
	handleError(err)

	denseMat := &mat.Dense{}
	handleError(r.Read(denseMat))
	return denseMat
}

func writeNpy(fileName string, denseMat *mat.Dense) {
	f, err := os.Create(fileName)
	handleError(err)
	defer func() { handleError(f.Close()) }()

	handleError(npyio.Write(f, denseMat))
}

func writeJSON(fileName string, out interface{}) {
	f, err := os.Create(fileName)
	handleError(err)
	defer func() { handleError(f.Close()) }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	handleError(encoder.Encode(out))
}

// loadPanel reads the frequency matrix and the distance vector. Distances
// are stored as an m x 1 array; non-finite sentinels (values below zero or
// NaN upstream exports sometimes use) are mapped to +Inf.
func loadPanel(freqsFile, distsFile string) *ibd.Panel {
	log.Print("\ttry to load frequencies <", freqsFile, ">")
	freqs := readNpy(freqsFile)
	log.Print("\ttry to load distances <", distsFile, ">")
	distMat := readNpy(distsFile)

	h, _ := distMat.Dims()
	dists := make([]float64, h)
	for t := 0; t < h; t++ {
		v := distMat.At(t, 0)
		if v < 0 || math.IsNaN(v) {
			v = math.Inf(1)
		}
		dists[t] = v
	}

	panel, err := ibd.NewPanel(freqs, dists)
	handleError(err)
	return panel
}

// loadGenotypes converts an m x 2 float array of calls into integer allele
// indices; negative entries stay missing.
func loadGenotypes(fileName string) [][2]int {
	log.Print("\ttry to load genotypes <", fileName, ">")
	gm := readNpy(fileName)
	h, w := gm.Dims()
	if w != 2 {
		log.Fatalf("genotype matrix must have 2 columns, got %d", w)
	}
	ys := make([][2]int, h)
	for t := 0; t < h; t++ {
		for i := 0; i < 2; i++ {
			v := gm.At(t, i)
			if v < 0 || math.IsNaN(v) {
				ys[t][i] = ibd.MissingAllele
			} else {
				ys[t][i] = int(math.Round(v))
			}
		}
	}
	return ys
}

func logWarnings(warnings []ibd.Warning) {
	for _, w := range warnings {
		log.Print("warning: ", w)
	}
}

type EstimateConfig struct {
	FreqsFile     string  `json:"filename_freqs"`
	DistsFile     string  `json:"filename_dists"`
	GenotypesFile string  `json:"filename_genotypes"`
	Epsilon       float64 `json:"epsilon"`
	ZeroEpsilon   bool    `json:"zero_epsilon"`
	Rho           float64 `json:"rho"`
	KInit         float64 `json:"k_init"`
	RInit         float64 `json:"r_init"`
	OutFile       string  `json:"filename_out"`
}

func estimate(srcConfig string) {
	var config EstimateConfig
	decodeConfig(srcConfig, &config)

	panel := loadPanel(config.FreqsFile, config.DistsFile)
	ys := loadGenotypes(config.GenotypesFile)

	est, err := ibd.EstimateRelatedness(panel, ys, ibd.EstimateOptions{
		Epsilon:     config.Epsilon,
		ZeroEpsilon: config.ZeroEpsilon,
		Rho:         config.Rho,
		KInit:       config.KInit,
		RInit:       config.RInit,
	})
	handleError(err)
	logWarnings(est.Warnings)

	log.Printf("khat = %g, rhat = %g, loglik = %g (%d evaluations)",
		est.KHat, est.RHat, est.LogLik, est.FuncEvaluations)
	writeJSON(config.OutFile, est)
}

type SimulateConfig struct {
	FreqsFile string  `json:"filename_freqs"`
	DistsFile string  `json:"filename_dists"`
	K         float64 `json:"k"`
	R         float64 `json:"r"`
	Epsilon   float64 `json:"epsilon"`
	Rho       float64 `json:"rho"`
	Seed      uint64  `json:"seed"`
	OutFile   string  `json:"filename_out"`
}

func simulate(srcConfig string) {
	var config SimulateConfig
	decodeConfig(srcConfig, &config)

	panel := loadPanel(config.FreqsFile, config.DistsFile)

	par := ibd.DefaultSimParams(config.K, config.R)
	if config.Epsilon != 0 {
		par.Epsilon = config.Epsilon
	}
	if config.Rho != 0 {
		par.Rho = config.Rho
	}

	var src rand.Source
	if config.Seed != 0 {
		src = rand.NewSource(config.Seed)
	}

	ys, err := ibd.Simulate(panel, par, src)
	handleError(err)

	out := mat.NewDense(len(ys), 2, nil)
	for t, row := range ys {
		out.Set(t, 0, float64(row[0]))
		out.Set(t, 1, float64(row[1]))
	}
	writeNpy(config.OutFile, out)
}

type BootstrapConfig struct {
	FreqsFile  string  `json:"filename_freqs"`
	DistsFile  string  `json:"filename_dists"`
	KHat       float64 `json:"k_hat"`
	RHat       float64 `json:"r_hat"`
	Confidence float64 `json:"confidence"`
	NBoot      int     `json:"n_boot"`
	Workers    int     `json:"workers"`
	Seed       uint64  `json:"seed"`
	Epsilon    float64 `json:"epsilon"`
	Rho        float64 `json:"rho"`
	OutFile    string  `json:"filename_out"`
}

func bootstrap(srcConfig string) {
	var config BootstrapConfig
	decodeConfig(srcConfig, &config)

	panel := loadPanel(config.FreqsFile, config.DistsFile)

	ci, err := ibd.Bootstrap(panel, config.KHat, config.RHat, ibd.BootstrapOptions{
		Confidence: config.Confidence,
		NBoot:      config.NBoot,
		Workers:    config.Workers,
		Seed:       config.Seed,
		Est: ibd.EstimateOptions{
			Epsilon: config.Epsilon,
			Rho:     config.Rho,
		},
	})
	handleError(err)

	log.Printf("k in [%g, %g], r in [%g, %g]", ci.K.Lower, ci.K.Upper, ci.R.Lower, ci.R.Upper)
	writeJSON(config.OutFile, map[string]ibd.Interval{"k": ci.K, "r": ci.R})
}

type SummaryConfig struct {
	FreqsFile string `json:"filename_freqs"`
	DistsFile string `json:"filename_dists"`
	OutFile   string `json:"filename_out"`
}

func summary(srcConfig string) {
	var config SummaryConfig
	decodeConfig(srcConfig, &config)

	panel := loadPanel(config.FreqsFile, config.DistsFile)
	check, err := ibd.ValidateFrequencies(panel.Freqs, 0)
	handleError(err)
	logWarnings(check.Warnings)

	m := panel.NMarkers()
	out := mat.NewDense(m, 3, nil)
	diversities := panel.Diversities()
	cardinalities := panel.EffectiveCardinalities()
	for t := 0; t < m; t++ {
		out.Set(t, 0, float64(check.NAlleles[t]))
		out.Set(t, 1, diversities[t])
		out.Set(t, 2, cardinalities[t])
	}
	writeNpy(config.OutFile, out)
}

func main() {
	runMode := flag.String("mode", "estimate", "one of 'estimate', 'simulate', 'bootstrap' or 'summary'")
	config := flag.String("config", "ibdpanel_config.json", "a config file for the run of the program")

	flag.Parse()

	run, ok := map[string]func(string){
		"estimate":  estimate,
		"simulate":  simulate,
		"bootstrap": bootstrap,
		"summary":   summary,
	}[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}
	run(*config)
}
