package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "catalog_submissions", "cs").
	Project("id", "ID").
	Project("queue_item_id", "QueueItemID").
	Project("record", "Record").
	Project("submitted_at", "SubmittedAt")

var defaultSort = query.SortField{Field: "SubmittedAt", Descending: true}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub    Submission
		record []byte
	)
	if err := s.Scan(&sub.ID, &sub.QueueItemID, &record, &sub.SubmittedAt); err != nil {
		return sub, err
	}
	if err := json.Unmarshal(record, &sub.Record); err != nil {
		return sub, fmt.Errorf("decode record: %w", err)
	}
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	return sub, nil
}

// namesQuery builds the SELECT that reads curated tool names. table is
// "schema.table" or "table" and column a bare column name; both are quoted.
func namesQuery(table, column string) (string, error) {
	parts := strings.Split(table, ".")
	if len(parts) > 2 || column == "" {
		return "", fmt.Errorf("%w: %q.%q", ErrInvalidTable, table, column)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidTable, table)
		}
	}

	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s IS NOT NULL",
		pgx.Identifier{column}.Sanitize(),
		pgx.Identifier(parts).Sanitize(),
		pgx.Identifier{column}.Sanitize(),
	), nil
}
