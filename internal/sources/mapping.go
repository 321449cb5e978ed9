package sources

import (
	"encoding/json"
	"fmt"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "discovery_sources", "s").
	Project("id", "ID").
	Project("name", "Name").
	Project("source_type", "SourceType").
	Project("reliability_score", "ReliabilityScore").
	Project("last_run", "LastRun").
	Project("total_discoveries", "TotalDiscoveries").
	Project("total_approved", "TotalApproved").
	Project("total_rejected", "TotalRejected").
	Project("is_enabled", "IsEnabled").
	Project("config", "Config").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

func scanSource(s repository.Scanner) (Source, error) {
	var (
		src    Source
		config []byte
	)
	err := s.Scan(
		&src.ID,
		&src.Name,
		&src.SourceType,
		&src.ReliabilityScore,
		&src.LastRun,
		&src.TotalDiscoveries,
		&src.TotalApproved,
		&src.TotalRejected,
		&src.IsEnabled,
		&config,
		&src.CreatedAt,
		&src.UpdatedAt,
	)
	if err != nil {
		return src, err
	}

	src.Config = map[string]any{}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &src.Config); err != nil {
			return src, fmt.Errorf("decode config: %w", err)
		}
	}

	if src.LastRun != nil {
		t := src.LastRun.UTC()
		src.LastRun = &t
	}
	src.CreatedAt = src.CreatedAt.UTC()
	src.UpdatedAt = src.UpdatedAt.UTC()

	return src, nil
}
