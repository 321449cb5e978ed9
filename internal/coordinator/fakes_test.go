package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/catalog"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/enrichment"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// memQueue is an in-memory queue.System with the same dedup and transition rules.
type memQueue struct {
	mu    sync.Mutex
	items map[uuid.UUID]*queue.Item
	order []uuid.UUID

	insertErr func(watchers.Candidate) error
}

func newMemQueue() *memQueue {
	return &memQueue{items: make(map[uuid.UUID]*queue.Item)}
}

func (q *memQueue) Handler() *queue.Handler { return nil }

func (q *memQueue) List(context.Context, pagination.PageRequest, queue.Filters) (*pagination.PageResult[queue.Item], error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := make([]queue.Item, 0, len(q.order))
	for _, id := range q.order {
		items = append(items, *q.items[id])
	}
	result := pagination.NewPageResult(items, len(items), 1, max(len(items), 1))
	return &result, nil
}

func (q *memQueue) Find(_ context.Context, id uuid.UUID) (*queue.Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	it, ok := q.items[id]
	if !ok {
		return nil, queue.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (q *memQueue) Insert(_ context.Context, c watchers.Candidate) (*queue.InsertResult, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Join(queue.ErrInvalidCandidate, err)
	}
	if q.insertErr != nil {
		if err := q.insertErr(c); err != nil {
			return nil, err
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	key := queue.DedupKey(c)
	entry := queue.NewRawEntry(c)

	for _, id := range q.order {
		it := q.items[id]
		if it.ItemType == c.ItemType && it.DedupKey == key && it.Status.Open() {
			it.RawData = queue.MergeRawData(it.RawData, entry)
			it.ConfidenceScore = max(it.ConfidenceScore, c.Confidence)
			it.Priority = max(it.Priority, queue.PriorityFor(c.Confidence))
			cp := *it
			return &queue.InsertResult{Item: &cp, Created: false}, nil
		}
	}

	it := &queue.Item{
		ID:              uuid.New(),
		ItemType:        c.ItemType,
		Source:          c.Source,
		Status:          queue.StatusPending,
		DedupKey:        key,
		RawData:         []queue.RawEntry{entry},
		ConfidenceScore: c.Confidence,
		Priority:        queue.PriorityFor(c.Confidence),
		DiscoveredAt:    c.DiscoveredAt,
	}
	if c.ItemType == watchers.ItemInteraction {
		it.SourceTool = ptr(c.Interaction.SourceTool)
		it.TargetTool = ptr(c.Interaction.TargetTool)
		it.InteractionType = ptr(c.Interaction.Type)
	} else {
		it.ToolName = ptr(c.Name)
	}

	q.items[it.ID] = it
	q.order = append(q.order, it.ID)
	cp := *it
	return &queue.InsertResult{Item: &cp, Created: true}, nil
}

func (q *memQueue) PendingForEnrichment(_ context.Context, limit int) ([]queue.Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var items []queue.Item
	for _, id := range q.order {
		it := q.items[id]
		if it.Status == queue.StatusPending || it.Status == queue.StatusEnriching {
			items = append(items, *it)
		}
	}
	slices.SortStableFunc(items, func(a, b queue.Item) int { return b.Priority - a.Priority })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (q *memQueue) move(id uuid.UUID, to queue.Status, apply func(*queue.Item)) (*queue.Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, ok := q.items[id]
	if !ok {
		return nil, queue.ErrNotFound
	}
	if !queue.CanTransition(it.Status, to) {
		if it.Status.Terminal() {
			return nil, queue.ErrAlreadyDecided
		}
		return nil, queue.ErrInvalidTransition
	}
	it.Status = to
	if apply != nil {
		apply(it)
	}
	cp := *it
	return &cp, nil
}

func (q *memQueue) BeginEnrichment(_ context.Context, id uuid.UUID) (*queue.Item, error) {
	return q.move(id, queue.StatusEnriching, nil)
}

func (q *memQueue) CompleteEnrichment(_ context.Context, id uuid.UUID, data map[string]any) (*queue.Item, error) {
	return q.move(id, queue.StatusReviewing, func(it *queue.Item) {
		now := time.Now().UTC()
		it.EnrichedData = data
		it.EnrichedAt = &now
	})
}

func (q *memQueue) Decide(_ context.Context, id uuid.UUID, cmd queue.DecideCommand) (*queue.Item, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return q.move(id, cmd.Status, func(it *queue.Item) {
		now := time.Now().UTC()
		it.ReviewedAt = &now
		it.ReviewedBy = ptr(cmd.ReviewedBy)
		it.RejectionReason = cmd.RejectionReason
		if cmd.Edits != nil && cmd.Edits.Name != nil {
			it.ToolName = cmd.Edits.Name
		}
	})
}

func (q *memQueue) UpdateNotes(_ context.Context, id uuid.UUID, notes string) (*queue.Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	it, ok := q.items[id]
	if !ok {
		return nil, queue.ErrNotFound
	}
	it.Notes = &notes
	cp := *it
	return &cp, nil
}

func (q *memQueue) all() []queue.Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := make([]queue.Item, 0, len(q.order))
	for _, id := range q.order {
		items = append(items, *q.items[id])
	}
	return items
}

func (q *memQueue) setStatus(id uuid.UUID, s queue.Status) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[id].Status = s
}

// memSources is an in-memory sources.System using the real score functions.
type memSources struct {
	mu        sync.Mutex
	srcs      map[string]*sources.Source
	smoothing float64
	runs      []sources.RunCommand
}

func newMemSources() *memSources {
	return &memSources{srcs: make(map[string]*sources.Source), smoothing: sources.DefaultSmoothing}
}

func (s *memSources) Handler() *sources.Handler { return nil }

func (s *memSources) List(context.Context) ([]sources.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]sources.Source, 0, len(s.srcs))
	for _, src := range s.srcs {
		list = append(list, *src)
	}
	return list, nil
}

func (s *memSources) Find(_ context.Context, name string) (*sources.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.srcs[name]
	if !ok {
		return nil, sources.ErrNotFound
	}
	cp := *src
	return &cp, nil
}

func (s *memSources) RecordRun(_ context.Context, cmd sources.RunCommand) (*sources.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, cmd)

	src, ok := s.srcs[cmd.Name]
	if !ok {
		src = &sources.Source{
			ID:               uuid.New(),
			Name:             cmd.Name,
			SourceType:       cmd.SourceType,
			ReliabilityScore: sources.SeedScore(cmd.MeanConfidence, cmd.Candidates),
			IsEnabled:        true,
		}
		s.srcs[cmd.Name] = src
	}
	ran := cmd.RanAt
	src.LastRun = &ran
	src.TotalDiscoveries += cmd.NewItems
	cp := *src
	return &cp, nil
}

func (s *memSources) RecordDecision(_ context.Context, name string, approved bool) (*sources.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.srcs[name]
	if !ok {
		return nil, sources.ErrNotFound
	}
	if approved {
		src.TotalApproved++
	} else {
		src.TotalRejected++
	}
	src.ReliabilityScore = sources.UpdateScore(src.ReliabilityScore, approved, s.smoothing)
	cp := *src
	return &cp, nil
}

func (s *memSources) SetEnabled(_ context.Context, name string, enabled bool) (*sources.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.srcs[name]
	if !ok {
		return nil, sources.ErrNotFound
	}
	src.IsEnabled = enabled
	cp := *src
	return &cp, nil
}

func (s *memSources) put(src sources.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srcs[src.Name] = &src
}

// memCatalog records submissions in memory.
type memCatalog struct {
	mu        sync.Mutex
	names     map[string]struct{}
	namesErr  error
	submitted map[uuid.UUID]catalog.Record
	submitErr error
}

func newMemCatalog(names ...string) *memCatalog {
	set := make(map[string]struct{})
	for _, n := range names {
		set[queue.NormalizeName(n)] = struct{}{}
	}
	return &memCatalog{names: set, submitted: make(map[uuid.UUID]catalog.Record)}
}

func (c *memCatalog) Handler() *catalog.Handler { return nil }

func (c *memCatalog) Names(context.Context) (map[string]struct{}, error) {
	if c.namesErr != nil {
		return nil, c.namesErr
	}
	return c.names, nil
}

func (c *memCatalog) Submit(_ context.Context, it queue.Item) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.submitErr != nil {
		return false, c.submitErr
	}
	if _, ok := c.submitted[it.ID]; ok {
		return false, nil
	}
	c.submitted[it.ID] = catalog.NewRecord(it)
	return true, nil
}

func (c *memCatalog) Unsubmitted(context.Context, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (c *memCatalog) List(context.Context, pagination.PageRequest) (*pagination.PageResult[catalog.Submission], error) {
	result := pagination.NewPageResult([]catalog.Submission{}, 0, 1, 1)
	return &result, nil
}

// stubWatcher returns fixed candidates and records the cutoff it was given.
type stubWatcher struct {
	name       string
	kind       string
	candidates []watchers.Candidate
	err        error
	block      bool

	mu     sync.Mutex
	calls  int
	since  time.Time
	called chan struct{}
}

func (w *stubWatcher) Name() string           { return w.name }
func (w *stubWatcher) SourceType() string     { return w.kind }
func (w *stubWatcher) Config() map[string]any { return map[string]any{"stub": true} }

func (w *stubWatcher) CheckForUpdates(ctx context.Context, since time.Time) ([]watchers.Candidate, error) {
	w.mu.Lock()
	w.calls++
	w.since = since
	w.mu.Unlock()

	if w.called != nil {
		close(w.called)
	}
	if w.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return w.candidates, w.err
}

func (w *stubWatcher) callCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// stubEnricher fails for names in fail.
type stubEnricher struct {
	mu    sync.Mutex
	fail  map[string]bool
	names []string
}

func (e *stubEnricher) Enrich(_ context.Context, name string) (*enrichment.Record, error) {
	e.mu.Lock()
	e.names = append(e.names, name)
	e.mu.Unlock()

	if e.fail[name] {
		return nil, enrichment.ErrAllProvidersFailed
	}
	return &enrichment.Record{
		Name:        name,
		Description: name + " description",
		Topics:      []string{},
		Sources:     []string{"stub"},
	}, nil
}

// memArchive records uploaded keys.
type memArchive struct {
	mu   sync.Mutex
	keys map[string][]byte
}

func (a *memArchive) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.keys == nil {
		a.keys = make(map[string][]byte)
	}
	a.keys[key] = data
	return nil
}
