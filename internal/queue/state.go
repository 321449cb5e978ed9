package queue

// Status is a queue item's position in the review state machine:
//
//	pending -> enriching -> reviewing -> approved | rejected
//
// Approved and rejected are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEnriching Status = "enriching"
	StatusReviewing Status = "reviewing"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusEnriching},
	StatusEnriching: {StatusEnriching, StatusReviewing},
	StatusReviewing: {StatusApproved, StatusRejected},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusEnriching, StatusReviewing, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Open reports whether items in s participate in deduplication.
func (s Status) Open() bool {
	return s.Valid() && !s.Terminal()
}

// CanTransition reports whether from -> to is a legal move.
// Enriching -> enriching is allowed so an interrupted enrichment can be retried.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
