package coordinator

import (
	"context"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
)

// ApplyDecision records a reviewer's terminal decision, credits the outcome
// to the item's source, and on approval submits the catalog record.
//
// The queue transition is authoritative. A failed reliability update is
// logged; a failed catalog submission is retried by the next run's reconcile.
func (c *Coordinator) ApplyDecision(ctx context.Context, id uuid.UUID, cmd queue.DecideCommand) (*queue.Item, error) {
	it, err := c.queue.Decide(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	approved := it.Status == queue.StatusApproved
	metricDecisions.WithLabelValues(it.Source, string(it.Status)).Inc()

	logger := c.logger.With("item_id", it.ID, "source", it.Source)

	if _, err := c.sources.RecordDecision(ctx, it.Source, approved); err != nil {
		logger.Error("reliability update failed", "approved", approved, "error", err)
	}

	if approved {
		if _, err := c.catalog.Submit(ctx, *it); err != nil {
			logger.Warn("catalog submission failed, will reconcile", "error", err)
		}
	}

	return it, nil
}
