package queue

import (
	"errors"
	"net/http"
)

// Domain errors for queue operations.
var (
	ErrNotFound          = errors.New("queue item not found")
	ErrDuplicate         = errors.New("open queue item already exists for this candidate")
	ErrAlreadyDecided    = errors.New("queue item already has a terminal decision")
	ErrInvalidTransition = errors.New("queue item is not in a state that allows this transition")
	ErrInvalidDecision   = errors.New("decision must be approved or rejected with reviewed_by")
	ErrInvalidCandidate  = errors.New("invalid candidate")
	ErrInvalidRequest    = errors.New("invalid request")
)

// MapHTTPStatus maps queue domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrAlreadyDecided) || errors.Is(err, ErrInvalidTransition) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidDecision) || errors.Is(err, ErrInvalidCandidate) || errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
