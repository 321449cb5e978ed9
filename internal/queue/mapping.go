package queue

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/repository"
)

var projection = projectItem(query.NewProjectionMap("public", "discovery_queue", "q"))

// rankedProjection orders enrichment work by the originating source's
// reliability; items from sources without a row rank as neutral.
var rankedProjection = projectItem(query.NewProjectionMap("public", "discovery_queue", "q")).
	Join("public", "discovery_sources", "s", "LEFT JOIN", "s.name = q.source").
	Expr("SourceReliability", "COALESCE(s.reliability_score, 0.5)")

func projectItem(p *query.ProjectionMap) *query.ProjectionMap {
	return p.
		Project("id", "ID").
		Project("item_type", "ItemType").
		Project("source", "Source").
		Project("status", "Status").
		Project("dedup_key", "DedupKey").
		Project("tool_name", "ToolName").
		Project("tool_url", "ToolURL").
		Project("tool_description", "ToolDescription").
		Project("source_tool", "SourceTool").
		Project("target_tool", "TargetTool").
		Project("interaction_type", "InteractionType").
		Project("raw_data", "RawData").
		Project("enriched_data", "EnrichedData").
		Project("confidence_score", "ConfidenceScore").
		Project("priority", "Priority").
		Project("discovered_at", "DiscoveredAt").
		Project("enriched_at", "EnrichedAt").
		Project("reviewed_at", "ReviewedAt").
		Project("reviewed_by", "ReviewedBy").
		Project("notes", "Notes").
		Project("rejection_reason", "RejectionReason").
		Project("updated_at", "UpdatedAt")
}

var defaultSort = []query.SortField{
	{Field: "Priority", Descending: true},
	{Field: "DiscoveredAt", Descending: false},
}

// Filters contains optional filtering criteria for queue queries.
// Status, ItemType and Source match exactly; ToolName matches case-insensitively.
// MinConfidence keeps items scored at or above it.
type Filters struct {
	Status        *string  `json:"status,omitempty"`
	ItemType      *string  `json:"item_type,omitempty"`
	Source        *string  `json:"source,omitempty"`
	ToolName      *string  `json:"tool_name,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("ItemType", f.ItemType).
		WhereEquals("Source", f.Source).
		WhereContains("ToolName", f.ToolName).
		WhereAtLeast("ConfidenceScore", f.MinConfidence)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if t := values.Get("item_type"); t != "" {
		f.ItemType = &t
	}
	if src := values.Get("source"); src != "" {
		f.Source = &src
	}
	if n := values.Get("tool_name"); n != "" {
		f.ToolName = &n
	}
	if c, err := strconv.ParseFloat(values.Get("min_confidence"), 64); err == nil {
		f.MinConfidence = &c
	}

	return f
}

func scanItem(s repository.Scanner) (Item, error) {
	var (
		it       Item
		raw      []byte
		enriched []byte
	)
	err := s.Scan(
		&it.ID,
		&it.ItemType,
		&it.Source,
		&it.Status,
		&it.DedupKey,
		&it.ToolName,
		&it.ToolURL,
		&it.ToolDescription,
		&it.SourceTool,
		&it.TargetTool,
		&it.InteractionType,
		&raw,
		&enriched,
		&it.ConfidenceScore,
		&it.Priority,
		&it.DiscoveredAt,
		&it.EnrichedAt,
		&it.ReviewedAt,
		&it.ReviewedBy,
		&it.Notes,
		&it.RejectionReason,
		&it.UpdatedAt,
	)
	if err != nil {
		return it, err
	}

	it.RawData = []RawEntry{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &it.RawData); err != nil {
			return it, fmt.Errorf("decode raw_data: %w", err)
		}
	}
	if len(enriched) > 0 {
		if err := json.Unmarshal(enriched, &it.EnrichedData); err != nil {
			return it, fmt.Errorf("decode enriched_data: %w", err)
		}
	}

	it.DiscoveredAt = it.DiscoveredAt.UTC()
	it.UpdatedAt = it.UpdatedAt.UTC()
	it.EnrichedAt = utcPtr(it.EnrichedAt)
	it.ReviewedAt = utcPtr(it.ReviewedAt)

	return it, nil
}

func candidateColumns(c watchers.Candidate) (name, url, desc, srcTool, tgtTool, kind *string) {
	if c.ItemType == watchers.ItemInteraction && c.Interaction != nil {
		return nil, optional(c.URL), optional(c.Description),
			&c.Interaction.SourceTool, &c.Interaction.TargetTool, &c.Interaction.Type
	}
	return &c.Name, optional(c.URL), optional(c.Description), nil, nil, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
