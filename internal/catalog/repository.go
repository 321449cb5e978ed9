package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	table      string
	column     string
}

// New creates a catalog adapter reading curated names from table.column.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config, table, column string) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "catalog"),
		pagination: pagination,
		table:      table,
		column:     column,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Names(ctx context.Context) (map[string]struct{}, error) {
	q, err := namesQuery(r.table, r.column)
	if err != nil {
		return nil, err
	}

	names, err := repository.QueryMany(ctx, r.db, q, nil, func(s repository.Scanner) (string, error) {
		var name string
		err := s.Scan(&name)
		return name, err
	})
	if err != nil {
		return nil, fmt.Errorf("read catalog names: %w", err)
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if key := queue.NormalizeName(n); key != "" {
			set[key] = struct{}{}
		}
	}
	return set, nil
}

func (r *repo) Submit(ctx context.Context, it queue.Item) (bool, error) {
	if it.Status != queue.StatusApproved {
		return false, fmt.Errorf("%w: item %s is %s", ErrNotApproved, it.ID, it.Status)
	}

	record, err := json.Marshal(NewRecord(it))
	if err != nil {
		return false, fmt.Errorf("encode catalog record: %w", err)
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO public.catalog_submissions (id, queue_item_id, item_type, record)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (queue_item_id) DO NOTHING`,
			uuid.New(), it.ID, string(it.ItemType), record,
		)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	})
	if err != nil {
		return false, fmt.Errorf("submit catalog record: %w", err)
	}

	if created {
		r.logger.Info("catalog record submitted", "item_id", it.ID, "name", it.DisplayName())
	}
	return created, nil
}

func (r *repo) Unsubmitted(ctx context.Context, limit int) ([]uuid.UUID, error) {
	q := `
		SELECT q.id
		FROM public.discovery_queue q
		LEFT JOIN public.catalog_submissions cs ON cs.queue_item_id = q.id
		WHERE q.status = $1 AND cs.id IS NULL
		ORDER BY q.reviewed_at`

	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	ids, err := repository.QueryMany(ctx, r.db, q, []any{string(queue.StatusApproved)}, func(s repository.Scanner) (uuid.UUID, error) {
		var id uuid.UUID
		err := s.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("query unsubmitted approvals: %w", err)
	}
	return ids, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Submission], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	subs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	result := pagination.NewPageResult(subs, total, page.Page, page.PageSize)
	return &result, nil
}
