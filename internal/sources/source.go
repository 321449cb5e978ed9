// Package sources tracks per-source reliability: run bookkeeping for each
// watcher and review outcomes that feed an exponential moving average score.
package sources

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source is the durable record of one named discovery source.
type Source struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	SourceType       string         `json:"source_type"`
	ReliabilityScore float64        `json:"reliability_score"`
	LastRun          *time.Time     `json:"last_run,omitempty"`
	TotalDiscoveries int            `json:"total_discoveries"`
	TotalApproved    int            `json:"total_approved"`
	TotalRejected    int            `json:"total_rejected"`
	IsEnabled        bool           `json:"is_enabled"`
	Config           map[string]any `json:"config"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ApprovalRate is TotalApproved / TotalDiscoveries, or 0 before any discoveries.
func (s Source) ApprovalRate() float64 {
	if s.TotalDiscoveries <= 0 {
		return 0
	}
	return float64(s.TotalApproved) / float64(s.TotalDiscoveries)
}

// MarshalJSON adds the derived approval_rate.
func (s Source) MarshalJSON() ([]byte, error) {
	type source Source
	return json.Marshal(struct {
		source
		ApprovalRate float64 `json:"approval_rate"`
	}{
		source:       source(s),
		ApprovalRate: s.ApprovalRate(),
	})
}

// RunCommand records one successful watcher run.
type RunCommand struct {
	Name       string
	SourceType string
	Config     map[string]any
	RanAt      time.Time

	// NewItems is the number of candidates that created queue items.
	NewItems int

	// Candidates and MeanConfidence describe everything the watcher returned.
	// They seed the score of a source seen for the first time.
	Candidates     int
	MeanConfidence float64
}

// EnabledRequest toggles whether the coordinator runs a source.
type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}
