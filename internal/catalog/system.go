package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
)

// System is the coordinator's view of the curated catalog.
type System interface {
	Handler() *Handler

	// Names returns the normalized names of tools already in the catalog.
	Names(ctx context.Context) (map[string]struct{}, error)

	// Submit records an approved item in the outbox. Submitting the same item
	// twice is a no-op; created reports whether a row was written.
	Submit(ctx context.Context, it queue.Item) (created bool, err error)

	// Unsubmitted returns approved items with no outbox row.
	Unsubmitted(ctx context.Context, limit int) ([]uuid.UUID, error)

	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Submission], error)
}
