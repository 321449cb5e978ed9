package watchers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/fetch"
)

// feedConfidenceFactor discounts feed reliability: a headline is weak evidence.
const feedConfidenceFactor = 0.6

// FeedSource is one RSS or Atom endpoint with its configured base reliability.
type FeedSource struct {
	URL         string
	Reliability float64
}

// FeedOptions configures a FeedWatcher.
type FeedOptions struct {
	Name     string
	Feeds    []FeedSource
	Keywords []string
	Lookback time.Duration
}

// FeedWatcher polls RSS/Atom feeds for headlines announcing tools.
type FeedWatcher struct {
	name     string
	feeds    []FeedSource
	keywords []string
	lookback time.Duration
	client   *fetch.Client
	logger   *slog.Logger
	now      func() time.Time
}

// NewFeedWatcher creates a FeedWatcher. Empty keywords select DefaultKeywords;
// a zero lookback selects one day.
func NewFeedWatcher(opts FeedOptions, client *fetch.Client, logger *slog.Logger) *FeedWatcher {
	if opts.Name == "" {
		opts.Name = "rss_feeds"
	}
	if len(opts.Keywords) == 0 {
		opts.Keywords = DefaultKeywords
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 24 * time.Hour
	}
	return &FeedWatcher{
		name:     opts.Name,
		feeds:    opts.Feeds,
		keywords: opts.Keywords,
		lookback: opts.Lookback,
		client:   client,
		logger:   logger.With("watcher", opts.Name),
		now:      time.Now,
	}
}

func (w *FeedWatcher) Name() string       { return w.name }
func (w *FeedWatcher) SourceType() string { return TypeFeed }

func (w *FeedWatcher) Config() map[string]any {
	feeds := make([]map[string]any, len(w.feeds))
	for i, f := range w.feeds {
		feeds[i] = map[string]any{"url": f.URL, "reliability": f.Reliability}
	}
	return map[string]any{
		"feeds":    feeds,
		"keywords": w.keywords,
		"lookback": w.lookback.String(),
	}
}

// CheckForUpdates fetches every configured feed. A feed that fails to fetch
// or parse is logged and skipped; the remaining feeds still contribute.
func (w *FeedWatcher) CheckForUpdates(ctx context.Context, since time.Time) ([]Candidate, error) {
	cutoff := resolveSince(since, w.now(), w.lookback)
	candidates := make([]Candidate, 0)
	parser := gofeed.NewParser()

	for _, src := range w.feeds {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		feed, err := w.fetchFeed(ctx, parser, src.URL)
		if err != nil {
			w.logger.Warn("feed skipped", "url", src.URL, "error", err)
			continue
		}

		found := w.scanFeed(feed, src, cutoff)
		w.logger.Debug("feed scanned", "url", src.URL, "entries", len(feed.Items), "candidates", len(found))
		candidates = append(candidates, found...)
	}

	return candidates, nil
}

func (w *FeedWatcher) fetchFeed(ctx context.Context, parser *gofeed.Parser, url string) (*gofeed.Feed, error) {
	body, err := w.client.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (w *FeedWatcher) scanFeed(feed *gofeed.Feed, src FeedSource, cutoff time.Time) []Candidate {
	found := make([]Candidate, 0)
	confidence := feedConfidence(src.Reliability)

	for _, item := range feed.Items {
		published := entryTime(item)
		if published == nil || !published.After(cutoff) {
			continue
		}

		summary := PlainText(item.Description)
		if summary == "" {
			summary = PlainText(item.Content)
		}

		if !MatchesKeywords(item.Title+" "+summary, w.keywords) {
			continue
		}

		name := ExtractToolName(item.Title)
		if name == "" {
			continue
		}

		found = append(found, Candidate{
			Source:       w.name,
			ItemType:     ItemTool,
			Name:         name,
			URL:          item.Link,
			Description:  summary,
			DiscoveredAt: w.now().UTC(),
			Confidence:   confidence,
			RawData: mustJSON(map[string]any{
				"feed_url":    src.URL,
				"feed_title":  feed.Title,
				"entry_title": item.Title,
				"entry_link":  item.Link,
				"entry_guid":  item.GUID,
				"published":   published.UTC().Format(time.RFC3339),
				"summary":     summary,
			}),
		})
	}

	return found
}

func entryTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

func feedConfidence(reliability float64) float64 {
	c := math.Max(0, math.Min(1, reliability)) * feedConfidenceFactor
	return math.Round(c*10000) / 10000
}
