package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a queue repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "queue"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Item], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "ToolName", "ToolDescription", "SourceTool", "TargetTool")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count queue items: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query queue items: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Item, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	it, err := repository.QueryOne(ctx, r.db, q, args, scanItem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &it, nil
}

func (r *repo) Insert(ctx context.Context, c watchers.Candidate) (*InsertResult, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	key := DedupKey(c)
	if key == "" {
		return nil, fmt.Errorf("%w: name normalizes to empty key", ErrInvalidCandidate)
	}

	entry := NewRawEntry(c)

	result, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (InsertResult, error) {
		// Serializes compare-and-insert per dedup key.
		if err := repository.LockKey(ctx, tx, string(c.ItemType)+":"+key); err != nil {
			return InsertResult{}, err
		}

		existing, err := r.findOpen(ctx, tx, c.ItemType, key)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return InsertResult{}, err
		}

		if err == nil {
			merged, err := r.merge(ctx, tx, existing, c, entry)
			if err != nil {
				return InsertResult{}, err
			}
			return InsertResult{Item: &merged, Created: false}, nil
		}

		created, err := r.create(ctx, tx, c, key, entry)
		if err != nil {
			return InsertResult{}, err
		}
		return InsertResult{Item: &created, Created: true}, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if result.Created {
		r.logger.Info(
			"queue item created",
			"id", result.Item.ID,
			"item_type", result.Item.ItemType,
			"name", result.Item.DisplayName(),
			"source", result.Item.Source,
		)
	} else {
		r.logger.Debug(
			"candidate merged into open item",
			"id", result.Item.ID,
			"name", result.Item.DisplayName(),
			"source", c.Source,
		)
	}

	return &result, nil
}

func (r *repo) findOpen(ctx context.Context, tx *sql.Tx, itemType watchers.ItemType, key string) (Item, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ItemType", string(itemType)).
		WhereEquals("DedupKey", key).
		WhereIn("Status", []any{
			string(StatusPending),
			string(StatusEnriching),
			string(StatusReviewing),
		}).
		BuildSingleOrNull()

	return repository.QueryOne(ctx, tx, q+" FOR UPDATE", args, scanItem)
}

func (r *repo) merge(ctx context.Context, tx *sql.Tx, existing Item, c watchers.Candidate, entry RawEntry) (Item, error) {
	raw, err := json.Marshal(MergeRawData(existing.RawData, entry))
	if err != nil {
		return Item{}, fmt.Errorf("encode raw_data: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET raw_data = $2,
			confidence_score = GREATEST(q.confidence_score, $3),
			priority = GREATEST(q.priority, $4),
			tool_url = COALESCE(q.tool_url, $5),
			tool_description = COALESCE(q.tool_description, $6),
			updated_at = NOW()
		WHERE q.id = $1
		RETURNING %s`,
		projection.Table(),
		projection.Columns(),
	)

	args := []any{
		existing.ID,
		raw,
		c.Confidence,
		PriorityFor(c.Confidence),
		optional(c.URL),
		optional(c.Description),
	}

	return repository.QueryOne(ctx, tx, q, args, scanItem)
}

func (r *repo) create(ctx context.Context, tx *sql.Tx, c watchers.Candidate, key string, entry RawEntry) (Item, error) {
	raw, err := json.Marshal([]RawEntry{entry})
	if err != nil {
		return Item{}, fmt.Errorf("encode raw_data: %w", err)
	}

	name, url, desc, srcTool, tgtTool, kind := candidateColumns(c)

	q := fmt.Sprintf(`
		INSERT INTO public.discovery_queue AS q (
			id, item_type, source, status, dedup_key,
			tool_name, tool_url, tool_description,
			source_tool, target_tool, interaction_type,
			raw_data, confidence_score, priority, discovered_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s`,
		projection.Columns(),
	)

	args := []any{
		uuid.New(),
		string(c.ItemType),
		c.Source,
		string(StatusPending),
		key,
		name,
		url,
		desc,
		srcTool,
		tgtTool,
		kind,
		raw,
		c.Confidence,
		PriorityFor(c.Confidence),
		c.DiscoveredAt.UTC(),
	}

	return repository.QueryOne(ctx, tx, q, args, scanItem)
}

func (r *repo) PendingForEnrichment(ctx context.Context, limit int) ([]Item, error) {
	q, args := query.
		NewBuilder(rankedProjection).
		WhereIn("Status", []any{string(StatusPending), string(StatusEnriching)}).
		OrderByFields([]query.SortField{
			{Field: "Priority", Descending: true},
			{Field: "SourceReliability", Descending: true},
			{Field: "DiscoveredAt", Descending: false},
		}).
		Build()

	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	items, err := repository.QueryMany(ctx, r.db, q, args, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query pending items: %w", err)
	}
	return items, nil
}

func (r *repo) BeginEnrichment(ctx context.Context, id uuid.UUID) (*Item, error) {
	q := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, updated_at = NOW()
		WHERE q.id = $1 AND q.status IN ($3, $4)
		RETURNING %s`,
		projection.Table(),
		projection.Columns(),
	)

	args := []any{id, string(StatusEnriching), string(StatusPending), string(StatusEnriching)}
	return r.transition(ctx, id, q, args)
}

func (r *repo) CompleteEnrichment(ctx context.Context, id uuid.UUID, data map[string]any) (*Item, error) {
	enriched, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode enriched_data: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, enriched_data = $3, enriched_at = NOW(), updated_at = NOW()
		WHERE q.id = $1 AND q.status = $4
		RETURNING %s`,
		projection.Table(),
		projection.Columns(),
	)

	args := []any{id, string(StatusReviewing), enriched, string(StatusEnriching)}
	it, err := r.transition(ctx, id, q, args)
	if err != nil {
		return nil, err
	}

	r.logger.Info("queue item ready for review", "id", it.ID, "name", it.DisplayName())
	return it, nil
}

func (r *repo) Decide(ctx context.Context, id uuid.UUID, cmd DecideCommand) (*Item, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var edits Edits
	if cmd.Edits != nil {
		edits = *cmd.Edits
	}

	var reason *string
	if cmd.Status == StatusRejected {
		reason = cmd.RejectionReason
	}

	q := fmt.Sprintf(`
		UPDATE %s
		SET status = $2,
			reviewed_by = $3,
			reviewed_at = NOW(),
			notes = COALESCE($4, q.notes),
			rejection_reason = $5,
			tool_name = CASE WHEN q.item_type = 'tool' THEN COALESCE($6, q.tool_name) ELSE q.tool_name END,
			tool_url = COALESCE($7, q.tool_url),
			tool_description = COALESCE($8, q.tool_description),
			updated_at = NOW()
		WHERE q.id = $1 AND q.status = $9
		RETURNING %s`,
		projection.Table(),
		projection.Columns(),
	)

	args := []any{
		id,
		string(cmd.Status),
		cmd.ReviewedBy,
		cmd.Notes,
		reason,
		edits.Name,
		edits.URL,
		edits.Description,
		string(StatusReviewing),
	}

	it, err := r.transition(ctx, id, q, args)
	if err != nil {
		return nil, err
	}

	r.logger.Info(
		"queue item decided",
		"id", it.ID,
		"status", it.Status,
		"reviewed_by", cmd.ReviewedBy,
		"source", it.Source,
	)
	return it, nil
}

func (r *repo) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Item, error) {
	q := fmt.Sprintf(`
		UPDATE %s
		SET notes = $2, updated_at = NOW()
		WHERE q.id = $1
		RETURNING %s`,
		projection.Table(),
		projection.Columns(),
	)

	it, err := repository.QueryOne(ctx, r.db, q, []any{id, notes}, scanItem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &it, nil
}

// transition runs a guarded status update. When the guard matches no row the
// current item is loaded to distinguish a missing item from an illegal move.
func (r *repo) transition(ctx context.Context, id uuid.UUID, q string, args []any) (*Item, error) {
	it, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Item, error) {
		return repository.QueryOne(ctx, tx, q, args, scanItem)
	})
	if err == nil {
		return &it, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	current, findErr := r.Find(ctx, id)
	if findErr != nil {
		return nil, findErr
	}

	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: item %s is %s", ErrAlreadyDecided, id, current.Status)
	}
	return nil, fmt.Errorf("%w: item %s is %s", ErrInvalidTransition, id, current.Status)
}
