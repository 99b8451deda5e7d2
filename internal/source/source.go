// Package source provides the candidate collaborators the engine reads from:
// the parsing service's HTTP API and local JSON files.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/candidate-ranker/internal/types"
)

// ErrNotFound is returned by Get when no candidate has the requested id.
var ErrNotFound = errors.New("candidate not found")

// Source lists and looks up candidate records.
type Source interface {
	List(ctx context.Context) ([]types.CandidateRecord, error)
	Get(ctx context.Context, id int64) (*types.CandidateRecord, error)
}

// FetchError represents a failure talking to a candidate source.
// Retryable is set for failures a later attempt may not hit (network errors, 429, 5xx).
type FetchError struct {
	URL        string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is a FetchError worth retrying.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable
}

// findByID returns the record with id from records, or ErrNotFound.
func findByID(records []types.CandidateRecord, id int64) (*types.CandidateRecord, error) {
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}
