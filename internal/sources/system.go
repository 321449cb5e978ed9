package sources

import "context"

// System defines the reliability tracker contract. All counters and scores
// for a source change only through RecordRun and RecordDecision.
type System interface {
	Handler() *Handler

	List(ctx context.Context) ([]Source, error)
	Find(ctx context.Context, name string) (*Source, error)

	// RecordRun creates the source on its first successful run, then updates
	// last_run and adds NewItems to total_discoveries.
	RecordRun(ctx context.Context, cmd RunCommand) (*Source, error)

	// RecordDecision counts a terminal review outcome and updates the score.
	RecordDecision(ctx context.Context, name string, approved bool) (*Source, error)

	SetEnabled(ctx context.Context, name string, enabled bool) (*Source, error)
}
