package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/fetch"
)

// ErrAllProvidersFailed is returned when every live provider errored for a
// name and at least one of those errors is transient. The caller leaves the
// item in place to retry on a later run.
var ErrAllProvidersFailed = errors.New("all enrichment providers failed")

// Enricher produces a merged record for a tool name.
type Enricher interface {
	Enrich(ctx context.Context, name string) (*Record, error)
}

// Pipeline queries providers sequentially for one name and merges the results.
// Each provider's client enforces its own inter-call delay, so concurrent
// pipelines sharing providers stay under each provider's rate limit.
type Pipeline struct {
	curated   *Curated
	providers []Provider
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline. Providers are queried in the given order;
// merge precedence is fixed by provider Kind regardless of query order.
func NewPipeline(curated *Curated, providers []Provider, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		curated:   curated,
		providers: providers,
		logger:    logger.With("system", "enrichment"),
	}
}

// Enrich returns the curated record on an exact, case-sensitive match.
// Otherwise each provider is asked in turn; failures and misses contribute
// nothing. An error is returned only when the context ends or every provider
// failed with a transient error among them. Permanent failures alone yield a
// name-only record.
func (p *Pipeline) Enrich(ctx context.Context, name string) (*Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("enrich: empty name")
	}

	if rec, ok := p.curated.Lookup(name); ok {
		p.logger.Debug("curated match", "name", name)
		return rec, nil
	}

	contributions := make([]Contribution, 0, len(p.providers))
	failures, transient := 0, 0

	for _, provider := range p.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := provider.Lookup(ctx, name)
		if err != nil {
			failures++
			if fetch.IsTransient(err) {
				transient++
			}
			p.logProviderError(provider.Name(), name, err)
			continue
		}
		if result == nil {
			p.logger.Debug("no provider match", "provider", provider.Name(), "name", name)
			continue
		}

		contributions = append(contributions, Contribution{
			Provider: provider.Name(),
			Kind:     provider.Kind(),
			Result:   result,
		})
	}

	if len(p.providers) > 0 && failures == len(p.providers) && transient > 0 {
		return nil, fmt.Errorf("enrich %q: %w", name, ErrAllProvidersFailed)
	}

	return Merge(name, contributions), nil
}

func (p *Pipeline) logProviderError(provider, name string, err error) {
	if fetch.IsTransient(err) {
		p.logger.Warn("provider unavailable", "provider", provider, "name", name, "error", err)
		return
	}
	p.logger.Warn("provider lookup failed", "provider", provider, "name", name, "error", err)
}
