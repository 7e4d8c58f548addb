package model

// SweepFailure records a post the sweep could not publish.
type SweepFailure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// SweepReport summarises one publish-scheduled run. It is returned to the
// triggering cron service and otherwise only consumed by monitoring.
type SweepReport struct {
	Checked   int            `json:"checked"`
	Published []string       `json:"published"`
	Failed    []SweepFailure `json:"failed"`
}

// AudioResult is the outcome of a cache-or-compute synthesis. When URL is
// set the artifact is served from the blob store; otherwise Audio carries
// the raw bytes for the degraded direct-response path.
type AudioResult struct {
	URL    string
	Cached bool
	Audio  []byte
}
