package ibd

import "fmt"

//ValidationError reports a frequency matrix that violates a structural
//invariant: an out-of-range entry, a zero preceding a non-zero entry within
//a row, or a row sum too far from one. Marker is -1 when the defect is not
//tied to a single row.
type ValidationError struct {
	Marker int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Marker < 0 {
		return "invalid frequency matrix: " + e.Reason
	}
	return fmt.Sprintf("invalid frequency matrix at marker %d: %s", e.Marker, e.Reason)
}

//DataError reports defective genotype data, such as a missing call or a
//shape mismatch with the panel.
type DataError struct {
	Marker int
	Sample int
	Reason string
}

func (e *DataError) Error() string {
	if e.Marker < 0 {
		return "invalid genotype data: " + e.Reason
	}
	return fmt.Sprintf("invalid genotype data at marker %d, sample %d: %s", e.Marker, e.Sample, e.Reason)
}

//ModelInfeasibleError reports an observed allele whose frequency is a
//structural zero while the genotyping error rate is zero, so the data have
//probability zero under every parameter value.
type ModelInfeasibleError struct {
	Marker   int
	Sample   int
	Allele   int
	NAlleles int
}

func (e *ModelInfeasibleError) Error() string {
	return fmt.Sprintf("allele %d observed at marker %d, sample %d, but the marker has only %d alleles and epsilon is zero",
		e.Allele, e.Marker, e.Sample, e.NAlleles)
}

//BootstrapDegenerateError reports a confidence bound that came out as NaN,
//which means replicate estimation degenerated.
type BootstrapDegenerateError struct {
	Param string
}

func (e *BootstrapDegenerateError) Error() string {
	return "bootstrap produced a NaN confidence bound for " + e.Param
}

//WarningKind labels the recoverable conditions the package reports.
type WarningKind int

const (
	// Row sum deviates from one, but within the fatal tolerance.
	WarnRowSumDeviation WarningKind = iota

	// A marker carries a single allele with frequency one and is uninformative.
	WarnDegenerateMarker

	// An observed allele lies outside the marker's non-zero frequencies;
	// only explainable by genotyping error, so epsilon must be positive.
	WarnAlleleOutsidePanel

	// The optimizer returned exactly its starting point.
	WarnOptimizerStalled
)

//Warning is a recoverable condition surfaced to the caller alongside a
//result. Marker is -1 when the warning is not tied to a single marker.
type Warning struct {
	Kind    WarningKind
	Marker  int
	Message string
}

func (w Warning) String() string {
	if w.Marker < 0 {
		return w.Message
	}
	return fmt.Sprintf("marker %d: %s", w.Marker, w.Message)
}
