// Package watchers polls external sources for candidate research tools.
// Each Watcher reports candidates newer than a cutoff; it never writes to the
// discovery queue and never assigns a final decision.
package watchers

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ItemType distinguishes tool candidates from tool-to-tool interactions.
type ItemType string

const (
	ItemTool        ItemType = "tool"
	ItemInteraction ItemType = "interaction"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemTool || t == ItemInteraction
}

// Interaction identifies a directed relationship between two tools.
type Interaction struct {
	SourceTool string `json:"source_tool"`
	TargetTool string `json:"target_tool"`
	Type       string `json:"interaction_type"`
}

// Candidate is a single unreviewed discovery produced by a watcher.
// RawData is preserved verbatim for reviewers.
type Candidate struct {
	Source       string          `json:"source"`
	ItemType     ItemType        `json:"item_type"`
	Name         string          `json:"name"`
	URL          string          `json:"url,omitempty"`
	Description  string          `json:"description,omitempty"`
	DiscoveredAt time.Time       `json:"discovered_at"`
	Confidence   float64         `json:"confidence"`
	RawData      json.RawMessage `json:"raw_data,omitempty"`
	Interaction  *Interaction    `json:"interaction,omitempty"`
}

// Candidate validation errors.
var (
	ErrMissingName        = errors.New("candidate name required")
	ErrInvalidItemType    = errors.New("invalid item type")
	ErrInvalidConfidence  = errors.New("confidence must be within [0, 1]")
	ErrMissingInteraction = errors.New("interaction candidate requires source_tool, target_tool and interaction_type")
)

// Validate checks the structural invariants of a candidate.
func (c Candidate) Validate() error {
	if !c.ItemType.Valid() {
		return ErrInvalidItemType
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return ErrInvalidConfidence
	}
	if c.ItemType == ItemInteraction {
		if c.Interaction == nil || c.Interaction.SourceTool == "" ||
			c.Interaction.TargetTool == "" || c.Interaction.Type == "" {
			return ErrMissingInteraction
		}
		return nil
	}
	if c.Name == "" {
		return ErrMissingName
	}
	return nil
}

// Watcher polls one external source.
type Watcher interface {
	// Name is the unique source name recorded by the reliability tracker.
	Name() string
	// SourceType classifies the watcher (rss, github, literature).
	SourceType() string
	// Config returns the watcher's effective settings for bookkeeping.
	Config() map[string]any
	// CheckForUpdates returns candidates published after since.
	// A zero since selects the watcher's default lookback window.
	CheckForUpdates(ctx context.Context, since time.Time) ([]Candidate, error)
}

// Source type identifiers.
const (
	TypeFeed       = "rss"
	TypeCodeSearch = "github"
	TypeLiterature = "literature"
)

func resolveSince(since time.Time, now time.Time, lookback time.Duration) time.Time {
	if since.IsZero() {
		return now.Add(-lookback).UTC()
	}
	return since.UTC()
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
