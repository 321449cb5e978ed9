package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
)

type watcherResult struct {
	watcher    watchers.Watcher
	skipped    bool
	candidates []watchers.Candidate
	err        error
}

// Run performs one discovery run: watchers, queue insertion, source
// bookkeeping, enrichment, and catalog reconciliation. A failing watcher or
// item never aborts the run. Run returns ErrRunInProgress if another run is
// active and an error only when run state cannot be loaded.
func (c *Coordinator) Run(ctx context.Context) (*RunReport, error) {
	if !c.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.running.Unlock()

	return c.run(ctx, uuid.New())
}

// Start launches a run in the background and returns its id. The run is
// bound to ctx, not to the caller's request. Wait blocks until it returns.
func (c *Coordinator) Start(ctx context.Context) (uuid.UUID, error) {
	if !c.running.TryLock() {
		return uuid.Nil, ErrRunInProgress
	}

	id := uuid.New()
	c.wg.Go(func() {
		defer c.running.Unlock()
		if _, err := c.run(ctx, id); err != nil {
			c.logger.Error("discovery run failed", "run_id", id, "error", err)
		}
	})

	return id, nil
}

// Wait blocks until every run launched by Start has returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) run(ctx context.Context, id uuid.UUID) (*RunReport, error) {
	if c.opts.RunBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.RunBudget)
		defer cancel()
	}

	report := &RunReport{ID: id, StartedAt: c.now()}
	logger := c.logger.With("run_id", id)
	logger.Info("discovery run started")

	defer func() {
		report.FinishedAt = c.now()
		report.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		metricRunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
		c.setLatest(report)
	}()

	known, err := c.sources.List(ctx)
	if err != nil {
		metricRuns.WithLabelValues("error").Inc()
		return report, fmt.Errorf("load sources: %w", err)
	}

	byName := make(map[string]sources.Source, len(known))
	for _, s := range known {
		byName[s.Name] = s
	}

	cataloged, err := c.catalog.Names(ctx)
	if err != nil {
		logger.Warn("catalog names unavailable, skipping catalog dedup", "error", err)
		cataloged = map[string]struct{}{}
	}

	results := c.collect(ctx, byName)

	for _, res := range results {
		wr := c.ingest(ctx, id, res, cataloged)
		report.Watchers = append(report.Watchers, wr)
	}

	report.Enrichment = c.enrichPending(ctx)
	report.Reconciled = c.reconcile(ctx)

	outcome := "ok"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		outcome = "timeout"
		logger.Warn("discovery run exceeded budget", "budget", c.opts.RunBudget)
	}
	metricRuns.WithLabelValues(outcome).Inc()

	logger.Info(
		"discovery run finished",
		"watchers", len(report.Watchers),
		"enriched", report.Enrichment.Enriched,
		"enrichment_failures", report.Enrichment.Failed,
		"reconciled", report.Reconciled,
	)

	return report, nil
}

// collect runs every enabled watcher concurrently. Results keep registry order.
func (c *Coordinator) collect(ctx context.Context, known map[string]sources.Source) []watcherResult {
	list := c.watchers.List()
	results := make([]watcherResult, len(list))

	var g errgroup.Group
	for i, w := range list {
		results[i].watcher = w

		src, seen := known[w.Name()]
		if seen && !src.IsEnabled {
			results[i].skipped = true
			continue
		}

		var since time.Time
		if seen && src.LastRun != nil {
			since = *src.LastRun
		}

		g.Go(func() error {
			candidates, err := w.CheckForUpdates(ctx, since)
			results[i].candidates = candidates
			results[i].err = err
			return nil
		})
	}
	g.Wait()

	return results
}

// ingest inserts one watcher's candidates and records the run for its source.
// Inserts are sequential; the queue serializes concurrent inserts per key.
func (c *Coordinator) ingest(
	ctx context.Context,
	runID uuid.UUID,
	res watcherResult,
	cataloged map[string]struct{},
) WatcherReport {
	name := res.watcher.Name()
	wr := WatcherReport{Name: name, Skipped: res.skipped}
	logger := c.logger.With("run_id", runID, "watcher", name)

	if res.skipped {
		logger.Info("source disabled, skipping")
		return wr
	}

	recordWatcherRun(name, res.err)
	if res.err != nil {
		wr.Error = res.err.Error()
		logger.Warn("watcher failed", "error", res.err)
		return wr
	}

	wr.Candidates = len(res.candidates)
	var confidence float64

	for _, cand := range res.candidates {
		if ctx.Err() != nil {
			break
		}

		if cand.Source == "" {
			cand.Source = name
		}
		confidence += cand.Confidence

		if err := cand.Validate(); err != nil {
			wr.Invalid++
			recordCandidate(name, outcomeInvalid)
			logger.Info("candidate discarded", "name", cand.Name, "error", err)
			continue
		}

		if cand.ItemType == watchers.ItemTool {
			if _, ok := cataloged[queue.DedupKey(cand)]; ok {
				wr.Cataloged++
				recordCandidate(name, outcomeCataloged)
				logger.Debug("candidate already cataloged", "name", cand.Name)
				continue
			}
		}

		result, err := c.queue.Insert(ctx, cand)
		if errors.Is(err, queue.ErrInvalidCandidate) {
			wr.Invalid++
			recordCandidate(name, outcomeInvalid)
			logger.Info("candidate discarded", "name", cand.Name, "error", err)
			continue
		}
		if err != nil {
			wr.Failed++
			recordCandidate(name, outcomeFailed)
			logger.Error("queue insert failed", "name", cand.Name, "error", err)
			continue
		}

		if result.Created {
			wr.Created++
			recordCandidate(name, outcomeCreated)
		} else {
			wr.Merged++
			recordCandidate(name, outcomeMerged)
		}
	}

	mean := 0.0
	if len(res.candidates) > 0 {
		mean = confidence / float64(len(res.candidates))
	}

	if _, err := c.sources.RecordRun(ctx, sources.RunCommand{
		Name:           name,
		SourceType:     res.watcher.SourceType(),
		Config:         res.watcher.Config(),
		RanAt:          c.now(),
		NewItems:       wr.Created,
		Candidates:     len(res.candidates),
		MeanConfidence: mean,
	}); err != nil {
		logger.Error("record source run failed", "error", err)
	}

	c.archiveRun(ctx, runID, name, res.candidates)

	logger.Info(
		"watcher ingested",
		"candidates", wr.Candidates,
		"created", wr.Created,
		"merged", wr.Merged,
		"invalid", wr.Invalid,
		"cataloged", wr.Cataloged,
		"failed", wr.Failed,
	)
	return wr
}

// ArchiveKey is the blob key of one watcher's candidates in a run.
func ArchiveKey(runID uuid.UUID, watcher string) string {
	return fmt.Sprintf("runs/%s/%s.json", runID, watcher)
}

func (c *Coordinator) archiveRun(ctx context.Context, runID uuid.UUID, watcher string, candidates []watchers.Candidate) {
	if c.archive == nil || len(candidates) == 0 {
		return
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		c.logger.Warn("encode run archive failed", "watcher", watcher, "error", err)
		return
	}

	key := ArchiveKey(runID, watcher)
	if err := c.archive.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		c.logger.Warn("run archive upload failed", "key", key, "error", err)
	}
}

// reconcile resubmits approved items whose catalog submission failed earlier.
func (c *Coordinator) reconcile(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	ids, err := c.catalog.Unsubmitted(ctx, c.opts.ReconcileLimit)
	if err != nil {
		c.logger.Warn("catalog reconcile skipped", "error", err)
		return 0
	}

	submitted := 0
	for _, id := range ids {
		it, err := c.queue.Find(ctx, id)
		if err != nil {
			c.logger.Warn("catalog reconcile lookup failed", "item_id", id, "error", err)
			continue
		}
		created, err := c.catalog.Submit(ctx, *it)
		if err != nil {
			c.logger.Warn("catalog reconcile submit failed", "item_id", id, "error", err)
			continue
		}
		if created {
			submitted++
		}
	}
	return submitted
}
