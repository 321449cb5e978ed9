// Package coordinator orchestrates discovery runs: watcher fan-out,
// deduplicated queue insertion, enrichment, and reviewer decisions. It is the
// only writer of queue status other than the reviewer's terminal decision.
package coordinator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/catalog"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/enrichment"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
)

// Archive stores raw run payloads. storage.System satisfies it.
type Archive interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
}

// Options tune a Coordinator.
type Options struct {
	// RunBudget bounds the wall-clock time of one run. Zero means no budget.
	RunBudget time.Duration

	// Workers bounds concurrent item enrichment.
	Workers int

	// BatchSize caps the items enriched per run. Zero means all pending items.
	BatchSize int

	// ReconcileLimit caps catalog resubmissions per run.
	ReconcileLimit int
}

func (o *Options) normalize() {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.ReconcileLimit < 1 {
		o.ReconcileLimit = 100
	}
}

// Deps are the collaborators a Coordinator drives.
type Deps struct {
	Watchers *watchers.Registry
	Queue    queue.System
	Sources  sources.System
	Catalog  catalog.System
	Enricher enrichment.Enricher

	// Archive may be nil, in which case run payloads are not archived.
	Archive Archive
}

// Coordinator runs discovery and applies reviewer decisions. At most one run
// is active at a time.
type Coordinator struct {
	watchers *watchers.Registry
	queue    queue.System
	sources  sources.System
	catalog  catalog.System
	enricher enrichment.Enricher
	archive  Archive
	opts     Options
	logger   *slog.Logger
	now      func() time.Time

	running sync.Mutex
	wg      sync.WaitGroup

	mu     sync.RWMutex
	latest *RunReport
}

// New creates a Coordinator.
func New(deps Deps, opts Options, logger *slog.Logger) *Coordinator {
	opts.normalize()
	return &Coordinator{
		watchers: deps.Watchers,
		queue:    deps.Queue,
		sources:  deps.Sources,
		catalog:  deps.Catalog,
		enricher: deps.Enricher,
		archive:  deps.Archive,
		opts:     opts,
		logger:   logger.With("system", "coordinator"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RunReport summarizes one coordinator run.
type RunReport struct {
	ID         uuid.UUID        `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Watchers   []WatcherReport  `json:"watchers"`
	Enrichment EnrichmentReport `json:"enrichment"`
	Reconciled int              `json:"reconciled"`
	TimedOut   bool             `json:"timed_out"`
	Errors     []string         `json:"errors,omitempty"`
}

// WatcherReport summarizes one watcher's contribution to a run.
type WatcherReport struct {
	Name       string `json:"name"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
	Candidates int    `json:"candidates"`
	Created    int    `json:"created"`
	Merged     int    `json:"merged"`
	Invalid    int    `json:"invalid"`
	Cataloged  int    `json:"cataloged"`
	Failed     int    `json:"failed"`
}

// EnrichmentReport counts enrichment outcomes in a run.
type EnrichmentReport struct {
	Attempted int `json:"attempted"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
}

// Latest returns the report of the most recent completed run, or nil.
func (c *Coordinator) Latest() *RunReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

func (c *Coordinator) setLatest(r *RunReport) {
	c.mu.Lock()
	c.latest = r
	c.mu.Unlock()
}
