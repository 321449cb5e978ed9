package queue

import (
	"context"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
)

// System defines the public contract for discovery queue operations.
// Status changes happen only through the guarded transition methods.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Item], error)

	Find(ctx context.Context, id uuid.UUID) (*Item, error)

	// Insert validates c and either creates a pending item or merges c into
	// the open item sharing its item type and dedup key.
	Insert(ctx context.Context, c watchers.Candidate) (*InsertResult, error)

	// PendingForEnrichment returns pending and enriching items, highest priority first.
	PendingForEnrichment(ctx context.Context, limit int) ([]Item, error)

	BeginEnrichment(ctx context.Context, id uuid.UUID) (*Item, error)
	CompleteEnrichment(ctx context.Context, id uuid.UUID, data map[string]any) (*Item, error)

	// Decide moves a reviewing item to approved or rejected.
	Decide(ctx context.Context, id uuid.UUID, cmd DecideCommand) (*Item, error)

	// UpdateNotes is the only mutation permitted on terminal items.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*Item, error)
}
