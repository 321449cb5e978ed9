package api

import (
	"fmt"
	"log/slog"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/enrichment"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/fetch"
)

// newClient returns a fetch client with its own limiter, so each provider
// is spaced independently by the configured delay.
func newClient(cfg *config.HTTPConfig) *fetch.Client {
	return fetch.New(fetch.Options{
		Timeout:      cfg.TimeoutDuration(),
		Interval:     cfg.DelayDuration(),
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxResponseBytes(),
	})
}

// NewWatchers registers every enabled watcher.
func NewWatchers(cfg *config.DiscoveryConfig, logger *slog.Logger) (*watchers.Registry, error) {
	reg := watchers.NewRegistry()

	if cfg.Feeds.IsEnabled() {
		feeds := make([]watchers.FeedSource, 0, len(cfg.Feeds.Sources))
		for _, f := range cfg.Feeds.Sources {
			feeds = append(feeds, watchers.FeedSource{URL: f.URL, Reliability: f.Reliability})
		}
		w := watchers.NewFeedWatcher(watchers.FeedOptions{
			Name:     cfg.Feeds.Name,
			Feeds:    feeds,
			Keywords: cfg.Keywords,
			Lookback: cfg.Feeds.LookbackDuration(),
		}, newClient(&cfg.HTTP), logger)
		if err := reg.Register(w); err != nil {
			return nil, err
		}
	}

	if cfg.GitHub.IsEnabled() {
		w := watchers.NewGitHubWatcher(watchers.GitHubOptions{
			Name:     cfg.GitHub.Name,
			BaseURL:  cfg.GitHub.BaseURL,
			Token:    cfg.GitHub.Token,
			Topics:   cfg.GitHub.Topics,
			Queries:  cfg.GitHub.Queries,
			PerPage:  cfg.GitHub.PerPage,
			Lookback: cfg.GitHub.LookbackDuration(),
		}, newClient(&cfg.HTTP), logger)
		if err := reg.Register(w); err != nil {
			return nil, err
		}
	}

	if cfg.Literature.IsEnabled() {
		if err := reg.Register(watchers.NewLiteratureWatcher(cfg.Literature.Name)); err != nil {
			return nil, err
		}
	}

	if len(reg.List()) == 0 {
		return nil, fmt.Errorf("no watchers enabled")
	}
	return reg, nil
}

// NewEnricher builds the enrichment pipeline: curated entries first, then
// the domain registry, code hosting and knowledge graph providers.
func NewEnricher(cfg *config.DiscoveryConfig, logger *slog.Logger) *enrichment.Pipeline {
	var tables [][]enrichment.CuratedEntry
	if !cfg.Enrichment.SkipBuiltinCurated {
		tables = append(tables, enrichment.DefaultCurated)
	}

	custom := make([]enrichment.CuratedEntry, 0, len(cfg.Enrichment.Curated))
	for _, c := range cfg.Enrichment.Curated {
		custom = append(custom, enrichment.CuratedEntry{
			Name:         c.Name,
			Description:  c.Description,
			URL:          c.URL,
			License:      c.License,
			IsOpenSource: c.IsOpenSource,
			Topics:       c.Topics,
		})
	}
	tables = append(tables, custom)

	providers := []enrichment.Provider{
		enrichment.NewBioToolsProvider(cfg.Enrichment.BioToolsBaseURL, newClient(&cfg.HTTP)),
		enrichment.NewGitHubProvider(cfg.GitHub.BaseURL, cfg.GitHub.Token, newClient(&cfg.HTTP)),
		enrichment.NewWikidataProvider(cfg.Enrichment.WikidataBaseURL, newClient(&cfg.HTTP)),
	}

	return enrichment.NewPipeline(enrichment.NewCurated(tables...), providers, logger)
}
