package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
)

// enrichPending advances pending and interrupted items through enrichment,
// highest priority first, with at most Workers items in flight. A failed item
// stays in enriching and is picked up again next run.
func (c *Coordinator) enrichPending(ctx context.Context) EnrichmentReport {
	var report EnrichmentReport

	if ctx.Err() != nil {
		return report
	}

	items, err := c.queue.PendingForEnrichment(ctx, c.opts.BatchSize)
	if err != nil {
		c.logger.Error("load pending items failed", "error", err)
		return report
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for _, it := range items {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			err := c.enrichItem(gctx, it)
			recordEnrichment(err)

			mu.Lock()
			report.Attempted++
			if err != nil {
				report.Failed++
			} else {
				report.Enriched++
			}
			mu.Unlock()

			return nil
		})
	}
	g.Wait()

	return report
}

func (c *Coordinator) enrichItem(ctx context.Context, it queue.Item) error {
	logger := c.logger.With("item_id", it.ID, "name", it.DisplayName())

	current, err := c.queue.BeginEnrichment(ctx, it.ID)
	if err != nil {
		if errors.Is(err, queue.ErrInvalidTransition) || errors.Is(err, queue.ErrAlreadyDecided) {
			logger.Debug("item no longer awaiting enrichment", "error", err)
		} else {
			logger.Error("begin enrichment failed", "error", err)
		}
		return err
	}

	data, err := c.enrichmentDocument(ctx, *current)
	if err != nil {
		logger.Warn("enrichment failed, item left for retry", "error", err)
		return err
	}

	if _, err := c.queue.CompleteEnrichment(ctx, current.ID, data); err != nil {
		logger.Error("complete enrichment failed", "error", err)
		return err
	}

	return nil
}

// enrichmentDocument enriches a tool by name, or both endpoints of an
// interaction, one endpoint after the other.
func (c *Coordinator) enrichmentDocument(ctx context.Context, it queue.Item) (map[string]any, error) {
	if it.ItemType != watchers.ItemInteraction {
		rec, err := c.enricher.Enrich(ctx, derefString(it.ToolName))
		if err != nil {
			return nil, err
		}
		return rec.Document(), nil
	}

	src, err := c.enricher.Enrich(ctx, derefString(it.SourceTool))
	if err != nil {
		return nil, fmt.Errorf("source tool: %w", err)
	}

	tgt, err := c.enricher.Enrich(ctx, derefString(it.TargetTool))
	if err != nil {
		return nil, fmt.Errorf("target tool: %w", err)
	}

	return map[string]any{
		"source_tool": src.Document(),
		"target_tool": tgt.Document(),
	}, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
