package domain

import "time"

// Resolution is the pipeline's complete output for one product: the
// category/title/brand decision plus filled aspects. The orchestration
// layer receives either this, whole, or an explicit failure - never a
// partially-constructed object.
type Resolution struct {
	// Draft is the disambiguation result.
	Draft ListingDraft

	// Candidates is the retrieval output the decision was drawn from.
	Candidates CandidateSet

	// Aspects are the filled category aspect values.
	Aspects FilledAspects

	// MissingRequired lists required aspect names the filler could not
	// cover. Reportable, not fatal.
	MissingRequired []string
}

// ProductResult is one product's outcome within a batch run.
type ProductResult struct {
	// ID is the per-result identifier within the run.
	ID string

	// Title is the input product title, kept for reporting.
	Title string

	// Resolution is set on success.
	Resolution *Resolution

	// Err is the failure reason on error. Empty on success.
	Err string

	// Elapsed is how long this product's pipeline run took.
	Elapsed time.Duration
}

// Failed reports whether this product's run failed.
func (r ProductResult) Failed() bool {
	return r.Err != ""
}

// BatchReport summarises one batch run.
type BatchReport struct {
	// RunID identifies the batch run.
	RunID string

	// Results holds one entry per input product, in input order.
	Results []ProductResult

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded counts the products that resolved.
func (b BatchReport) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// Failed counts the products that did not resolve.
func (b BatchReport) Failed() int {
	return len(b.Results) - b.Succeeded()
}
