package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/candidate-ranker/internal/criteria"
	"github.com/jonathan/candidate-ranker/internal/source"
)

// ErrCandidateNotFound indicates no candidate has the requested id
type ErrCandidateNotFound struct {
	ID int64
}

func (e *ErrCandidateNotFound) Error() string {
	return fmt.Sprintf("candidate not found: %d", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSourceUnavailable indicates the candidate source could not be read.
// The query is not attempted; the client may retry when Retryable is set.
type ErrSourceUnavailable struct {
	Retryable bool
	Cause     error
}

func (e *ErrSourceUnavailable) Error() string {
	if e.Retryable {
		return fmt.Sprintf("candidate source unavailable, please retry: %v", e.Cause)
	}
	return fmt.Sprintf("candidate source unavailable: %v", e.Cause)
}

func (e *ErrSourceUnavailable) Unwrap() error {
	return e.Cause
}

// sourceError wraps a source failure, keeping a not-found result distinct.
func sourceError(id int64, err error) error {
	if errors.Is(err, source.ErrNotFound) {
		return &ErrCandidateNotFound{ID: id}
	}
	return &ErrSourceUnavailable{Retryable: source.IsRetryable(err), Cause: err}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrCandidateNotFound
		validation  *ErrValidation
		requestErr  *criteria.RequestError
		unavailable *ErrSourceUnavailable
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &requestErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
