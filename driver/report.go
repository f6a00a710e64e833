package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/fragscan/errs"
)

// Result summarizes the search of one accession.
type Result struct {
	Accession string
	Buffers   uint64
	Matches   uint64
	Duration  time.Duration
	// Err is the error that aborted the accession, nil on success.
	Err error
}

// Kind classifies Err.
func (r Result) Kind() errs.Kind {
	return errs.KindOf(r.Err)
}

// Report holds one Result per distinct accession, in request order.
type Report struct {
	Results []Result
}

// Matches returns the total number of matches.
func (r *Report) Matches() uint64 {
	var n uint64
	for _, res := range r.Results {
		n += res.Matches
	}

	return n
}

// Failed returns the results of accessions that did not complete.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}

	return failed
}

// Err joins the errors of failed accessions, or returns nil.
func (r *Report) Err() error {
	var all []error
	for _, res := range r.Failed() {
		all = append(all, fmt.Errorf("%s: %w", res.Accession, res.Err))
	}

	return errors.Join(all...)
}
