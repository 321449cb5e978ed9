package watchers

import (
	"context"
	"time"
)

// LiteratureWatcher is the extension point for publication-database polling.
// It currently reports nothing.
type LiteratureWatcher struct {
	name string
}

// NewLiteratureWatcher creates a LiteratureWatcher registered under name.
func NewLiteratureWatcher(name string) *LiteratureWatcher {
	if name == "" {
		name = "literature"
	}
	return &LiteratureWatcher{name: name}
}

func (w *LiteratureWatcher) Name() string           { return w.name }
func (w *LiteratureWatcher) SourceType() string     { return TypeLiterature }
func (w *LiteratureWatcher) Config() map[string]any { return map[string]any{} }

func (w *LiteratureWatcher) CheckForUpdates(ctx context.Context, _ time.Time) ([]Candidate, error) {
	return []Candidate{}, ctx.Err()
}
