// Package catalog is the boundary to the curated tool catalog. It reads the
// names of tools already curated and records approved discoveries in an
// outbox the catalog ingests from.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
)

// Provenance identifies where an approved record came from.
type Provenance struct {
	Source          string    `json:"source"`
	DiscoveredAt    time.Time `json:"discovered_at"`
	ConfidenceScore float64   `json:"confidence_score"`
	ReviewedBy      string    `json:"reviewed_by,omitempty"`
}

// Record is the normalized form of an approved queue item.
type Record struct {
	ItemType        watchers.ItemType `json:"item_type"`
	Name            string            `json:"name"`
	URL             string            `json:"url,omitempty"`
	Description     string            `json:"description,omitempty"`
	SourceTool      string            `json:"source_tool,omitempty"`
	TargetTool      string            `json:"target_tool,omitempty"`
	InteractionType string            `json:"interaction_type,omitempty"`
	Provenance      Provenance        `json:"provenance"`
	Enriched        map[string]any    `json:"enriched,omitempty"`
}

// Submission is one outbox row.
type Submission struct {
	ID          uuid.UUID `json:"id"`
	QueueItemID uuid.UUID `json:"queue_item_id"`
	Record      Record    `json:"record"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewRecord normalizes an approved item. Reviewer edits are already applied
// to the item's columns; enrichment fills in a missing url or description.
func NewRecord(it queue.Item) Record {
	rec := Record{
		ItemType:    it.ItemType,
		Name:        it.DisplayName(),
		URL:         value(it.ToolURL),
		Description: value(it.ToolDescription),
		Provenance: Provenance{
			Source:          it.Source,
			DiscoveredAt:    it.DiscoveredAt.UTC(),
			ConfidenceScore: it.ConfidenceScore,
			ReviewedBy:      value(it.ReviewedBy),
		},
		Enriched: it.EnrichedData,
	}

	if it.ItemType == watchers.ItemInteraction {
		rec.SourceTool = value(it.SourceTool)
		rec.TargetTool = value(it.TargetTool)
		rec.InteractionType = value(it.InteractionType)
	}

	if rec.URL == "" {
		rec.URL = enrichedString(it.EnrichedData, "url")
	}
	if rec.Description == "" {
		rec.Description = enrichedString(it.EnrichedData, "description")
	}

	return rec
}

func enrichedString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
