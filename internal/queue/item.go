// Package queue implements the discovery queue: the durable store of
// candidate tools and interactions awaiting enrichment and human review.
// It owns deduplication, status transitions and reviewer feedback capture.
package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
)

// Item is a durable discovery work item.
type Item struct {
	ID              uuid.UUID         `json:"id"`
	ItemType        watchers.ItemType `json:"item_type"`
	Source          string            `json:"source"`
	Status          Status            `json:"status"`
	DedupKey        string            `json:"dedup_key"`
	ToolName        *string           `json:"tool_name,omitempty"`
	ToolURL         *string           `json:"tool_url,omitempty"`
	ToolDescription *string           `json:"tool_description,omitempty"`
	SourceTool      *string           `json:"source_tool,omitempty"`
	TargetTool      *string           `json:"target_tool,omitempty"`
	InteractionType *string           `json:"interaction_type,omitempty"`
	RawData         []RawEntry        `json:"raw_data"`
	EnrichedData    map[string]any    `json:"enriched_data,omitempty"`
	ConfidenceScore float64           `json:"confidence_score"`
	Priority        int               `json:"priority"`
	DiscoveredAt    time.Time         `json:"discovered_at"`
	EnrichedAt      *time.Time        `json:"enriched_at,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	ReviewedBy      *string           `json:"reviewed_by,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// DisplayName returns the tool name, or "source -> target" for interactions.
func (i *Item) DisplayName() string {
	if i.ItemType == watchers.ItemInteraction {
		return deref(i.SourceTool) + " -> " + deref(i.TargetTool)
	}
	return deref(i.ToolName)
}

// RawEntry is one watcher report merged into an item. Entries are only ever appended.
type RawEntry struct {
	Source       string          `json:"source"`
	DiscoveredAt time.Time       `json:"discovered_at"`
	Confidence   float64         `json:"confidence"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// Edits are reviewer corrections applied on a terminal decision.
type Edits struct {
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DecideCommand carries a reviewer's terminal decision.
type DecideCommand struct {
	Status          Status  `json:"status"`
	ReviewedBy      string  `json:"reviewed_by"`
	Notes           *string `json:"notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	Edits           *Edits  `json:"edits,omitempty"`
}

// InsertResult reports whether Insert created a new item or merged into an open one.
type InsertResult struct {
	Item    *Item `json:"item"`
	Created bool  `json:"created"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Validate checks that the command is a well-formed terminal decision.
func (c DecideCommand) Validate() error {
	if c.Status != StatusApproved && c.Status != StatusRejected {
		return fmt.Errorf("%w: status %q", ErrInvalidDecision, c.Status)
	}
	if strings.TrimSpace(c.ReviewedBy) == "" {
		return fmt.Errorf("%w: reviewed_by is required", ErrInvalidDecision)
	}
	if c.Edits != nil {
		if c.Edits.Name != nil && strings.TrimSpace(*c.Edits.Name) == "" {
			return fmt.Errorf("%w: edited name is empty", ErrInvalidDecision)
		}
	}
	return nil
}
