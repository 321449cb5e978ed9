package sources

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/repository"
)

type repo struct {
	db        *sql.DB
	logger    *slog.Logger
	smoothing float64
}

// New creates a source repository. smoothing is the EMA weight applied on
// each review decision.
func New(db *sql.DB, logger *slog.Logger, smoothing float64) System {
	return &repo{
		db:        db,
		logger:    logger.With("system", "sources"),
		smoothing: smoothing,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Source, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	srcs, err := repository.QueryMany(ctx, r.db, q, args, scanSource)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	return srcs, nil
}

func (r *repo) Find(ctx context.Context, name string) (*Source, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Name", name)

	src, err := repository.QueryOne(ctx, r.db, q, args, scanSource)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &src, nil
}

func (r *repo) RecordRun(ctx context.Context, cmd RunCommand) (*Source, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("%w: source name is required", ErrInvalidRequest)
	}

	config, err := json.Marshal(cmd.Config)
	if err != nil {
		return nil, fmt.Errorf("encode source config: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO public.discovery_sources AS s (
			id, name, source_type, reliability_score, last_run, total_discoveries, config
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET source_type = EXCLUDED.source_type,
			last_run = EXCLUDED.last_run,
			total_discoveries = s.total_discoveries + EXCLUDED.total_discoveries,
			config = EXCLUDED.config,
			updated_at = NOW()
		RETURNING %s`,
		projection.Columns(),
	)

	args := []any{
		uuid.New(),
		cmd.Name,
		cmd.SourceType,
		SeedScore(cmd.MeanConfidence, cmd.Candidates),
		cmd.RanAt.UTC(),
		max(cmd.NewItems, 0),
		config,
	}

	src, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSource)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"source run recorded",
		"source", src.Name,
		"new_items", cmd.NewItems,
		"total_discoveries", src.TotalDiscoveries,
	)
	return &src, nil
}

func (r *repo) RecordDecision(ctx context.Context, name string, approved bool) (*Source, error) {
	src, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		q, args := query.NewBuilder(projection).BuildSingle("Name", name)
		current, err := repository.QueryOne(ctx, tx, q+" FOR UPDATE", args, scanSource)
		if err != nil {
			return Source{}, err
		}

		score := UpdateScore(current.ReliabilityScore, approved, r.smoothing)

		column := "total_rejected"
		if approved {
			column = "total_approved"
		}

		update := fmt.Sprintf(`
			UPDATE %s
			SET %s = s.%s + 1, reliability_score = $2, updated_at = NOW()
			WHERE s.id = $1
			RETURNING %s`,
			projection.Table(),
			column, column,
			projection.Columns(),
		)

		return repository.QueryOne(ctx, tx, update, []any{current.ID, score}, scanSource)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"source reliability updated",
		"source", src.Name,
		"approved", approved,
		"reliability_score", src.ReliabilityScore,
	)
	return &src, nil
}

func (r *repo) SetEnabled(ctx context.Context, name string, enabled bool) (*Source, error) {
	q := fmt.Sprintf(`
		UPDATE %s
		SET is_enabled = $2, updated_at = NOW()
		WHERE s.name = $1
		RETURNING %s`,
		projection.Table(),
		projection.Columns(),
	)

	src, err := repository.QueryOne(ctx, r.db, q, []any{name, enabled}, scanSource)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("source toggled", "source", name, "enabled", enabled)
	return &src, nil
}
