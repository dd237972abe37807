package importer

import "fmt"

// DefaultMaxErrors caps Result.Errors when the caller does not choose a limit.
const DefaultMaxErrors = 50

// Result summarises one import call.
// Failed is exact; Errors holds at most the configured number of messages.
type Result struct {
	TotalRows  int      `json:"total_rows"`
	Created    int      `json:"created"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`

	maxErrors int
}

func newResult(maxErrors int) *Result {
	return &Result{Errors: []string{}, maxErrors: maxErrors}
}

func (r *Result) fail(err error) {
	r.Failed++
	if len(r.Errors) < r.maxErrors {
		r.Errors = append(r.Errors, err.Error())
	}
}

func (r *Result) failf(format string, args ...any) {
	r.fail(fmt.Errorf(format, args...))
}
