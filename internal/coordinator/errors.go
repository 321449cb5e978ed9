package coordinator

import (
	"errors"
	"net/http"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("discovery run already in progress")

// MapHTTPStatus maps coordinator errors, including queue errors surfaced by
// decisions, to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrRunInProgress) {
		return http.StatusConflict
	}
	return queue.MapHTTPStatus(err)
}
