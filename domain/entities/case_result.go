package entities

import "time"

// CaseStatus represents the outcome of a single test case
type CaseStatus string

const (
	CaseStatusOK      CaseStatus = "ok"
	CaseStatusFail    CaseStatus = "FAIL"
	CaseStatusError   CaseStatus = "ERROR"
	CaseStatusSkipped CaseStatus = "skipped"
)

// CaseResult represents the result of running one test case
type CaseResult struct {
	Name     string        `json:"name"`
	Doc      string        `json:"doc,omitempty"`
	Status   CaseStatus    `json:"status"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Report aggregates the results of a suite run
type Report struct {
	Results  []CaseResult  `json:"results"`
	Duration time.Duration `json:"duration"`
}

// Count - returns how many results have the given status
func (r *Report) Count(status CaseStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Ran - returns the number of cases that actually executed
func (r *Report) Ran() int {
	return len(r.Results) - r.Count(CaseStatusSkipped)
}

// OK - reports whether no case failed or errored
func (r *Report) OK() bool {
	return r.Count(CaseStatusFail) == 0 && r.Count(CaseStatusError) == 0
}

// ExitCode - returns the process exit code for the run
func (r *Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}
