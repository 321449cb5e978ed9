package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/formatting"
)

const (
	EnvDiscoveryInterval     = "MALDRETH_DISCOVERY_INTERVAL"
	EnvDiscoveryRunOnStartup = "MALDRETH_DISCOVERY_RUN_ON_STARTUP"
	EnvDiscoveryRunBudget    = "MALDRETH_DISCOVERY_RUN_BUDGET"
	EnvDiscoveryWorkers      = "MALDRETH_DISCOVERY_WORKERS"
	EnvDiscoveryBatchSize    = "MALDRETH_DISCOVERY_BATCH_SIZE"
	EnvDiscoverySmoothing    = "MALDRETH_DISCOVERY_SMOOTHING"
	EnvDiscoveryKeywords     = "MALDRETH_DISCOVERY_KEYWORDS"

	EnvHTTPTimeout         = "MALDRETH_HTTP_TIMEOUT"
	EnvHTTPUserAgent       = "MALDRETH_HTTP_USER_AGENT"
	EnvHTTPMaxResponseSize = "MALDRETH_HTTP_MAX_RESPONSE_SIZE"
	EnvHTTPDelay           = "MALDRETH_HTTP_DELAY"

	EnvGitHubToken   = "MALDRETH_GITHUB_TOKEN"
	EnvGitHubBaseURL = "MALDRETH_GITHUB_BASE_URL"
	EnvGitHubTopics  = "MALDRETH_GITHUB_TOPICS"
	EnvGitHubQueries = "MALDRETH_GITHUB_QUERIES"

	EnvCatalogTable  = "MALDRETH_CATALOG_TABLE"
	EnvCatalogColumn = "MALDRETH_CATALOG_COLUMN"
)

// DefaultFeeds are polled when no feeds are configured.
var DefaultFeeds = []FeedSourceConfig{
	{URL: "https://www.nature.com/sdata.rss", Reliability: 0.8},
	{URL: "https://rss.arxiv.org/rss/cs.DL", Reliability: 0.6},
}

// DiscoveryConfig holds the schedule, watcher and enrichment settings of the
// discovery pipeline. An Interval of "0s" disables the in-process scheduler,
// leaving runs to an external trigger.
type DiscoveryConfig struct {
	Interval     string  `toml:"interval"`
	RunOnStartup bool    `toml:"run_on_startup"`
	RunBudget    string  `toml:"run_budget"`
	Workers      int     `toml:"workers"`
	BatchSize    int     `toml:"batch_size"`
	Smoothing    float64 `toml:"smoothing"`

	Keywords []string `toml:"keywords"`

	HTTP       HTTPConfig       `toml:"http"`
	Feeds      FeedsConfig      `toml:"feeds"`
	GitHub     GitHubConfig     `toml:"github"`
	Literature LiteratureConfig `toml:"literature"`
	Enrichment EnrichmentConfig `toml:"enrichment"`
	Catalog    CatalogConfig    `toml:"catalog"`
}

// HTTPConfig applies to every outbound client. Delay is the minimum spacing
// between two calls to the same provider.
type HTTPConfig struct {
	Timeout         string `toml:"timeout"`
	UserAgent       string `toml:"user_agent"`
	MaxResponseSize string `toml:"max_response_size"`
	Delay           string `toml:"delay"`
}

// FeedSourceConfig is one RSS or Atom endpoint.
type FeedSourceConfig struct {
	URL         string  `toml:"url"`
	Reliability float64 `toml:"reliability"`
}

// FeedsConfig configures the feed watcher.
type FeedsConfig struct {
	Enabled  *bool              `toml:"enabled"`
	Name     string             `toml:"name"`
	Lookback string             `toml:"lookback"`
	Sources  []FeedSourceConfig `toml:"sources"`
}

// GitHubConfig configures the code-search watcher and the code-hosting
// enrichment provider, which share credentials.
type GitHubConfig struct {
	Enabled  *bool    `toml:"enabled"`
	Name     string   `toml:"name"`
	BaseURL  string   `toml:"base_url"`
	Token    string   `toml:"-"`
	Topics   []string `toml:"topics"`
	Queries  []string `toml:"queries"`
	PerPage  int      `toml:"per_page"`
	Lookback string   `toml:"lookback"`
}

// LiteratureConfig configures the literature watcher.
type LiteratureConfig struct {
	Enabled *bool  `toml:"enabled"`
	Name    string `toml:"name"`
}

// CuratedConfig is a hand-maintained enrichment entry.
type CuratedConfig struct {
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	URL          string   `toml:"url"`
	License      string   `toml:"license"`
	IsOpenSource *bool    `toml:"is_open_source"`
	Topics       []string `toml:"topics"`
}

// EnrichmentConfig holds provider endpoints and the curated table. Builtin
// curated entries are used unless SkipBuiltinCurated is set.
type EnrichmentConfig struct {
	WikidataBaseURL    string          `toml:"wikidata_base_url"`
	BioToolsBaseURL    string          `toml:"biotools_base_url"`
	SkipBuiltinCurated bool            `toml:"skip_builtin_curated"`
	Curated            []CuratedConfig `toml:"curated"`
}

// CatalogConfig names the curated catalog table read for existing tool names.
type CatalogConfig struct {
	Table          string `toml:"table"`
	Column         string `toml:"column"`
	ReconcileLimit int    `toml:"reconcile_limit"`
}

func (c *DiscoveryConfig) IntervalDuration() time.Duration  { return mustDuration(c.Interval) }
func (c *DiscoveryConfig) RunBudgetDuration() time.Duration { return mustDuration(c.RunBudget) }

func (c *HTTPConfig) TimeoutDuration() time.Duration { return mustDuration(c.Timeout) }
func (c *HTTPConfig) DelayDuration() time.Duration   { return mustDuration(c.Delay) }

// MaxResponseBytes returns MaxResponseSize in bytes.
func (c *HTTPConfig) MaxResponseBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxResponseSize)
	if err != nil {
		return 5 * 1024 * 1024
	}
	return n
}

func (c *FeedsConfig) IsEnabled() bool                 { return enabled(c.Enabled) }
func (c *FeedsConfig) LookbackDuration() time.Duration { return mustDuration(c.Lookback) }

func (c *GitHubConfig) IsEnabled() bool                 { return enabled(c.Enabled) }
func (c *GitHubConfig) LookbackDuration() time.Duration { return mustDuration(c.Lookback) }

func (c *LiteratureConfig) IsEnabled() bool { return enabled(c.Enabled) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *DiscoveryConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. RunOnStartup can be turned
// on by an overlay but not off.
func (c *DiscoveryConfig) Merge(overlay *DiscoveryConfig) {
	mergeString(&c.Interval, overlay.Interval)
	mergeString(&c.RunBudget, overlay.RunBudget)
	mergeSlice(&c.Keywords, overlay.Keywords)
	if overlay.RunOnStartup {
		c.RunOnStartup = true
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.Smoothing != 0 {
		c.Smoothing = overlay.Smoothing
	}

	mergeString(&c.HTTP.Timeout, overlay.HTTP.Timeout)
	mergeString(&c.HTTP.UserAgent, overlay.HTTP.UserAgent)
	mergeString(&c.HTTP.MaxResponseSize, overlay.HTTP.MaxResponseSize)
	mergeString(&c.HTTP.Delay, overlay.HTTP.Delay)

	mergeBool(&c.Feeds.Enabled, overlay.Feeds.Enabled)
	mergeString(&c.Feeds.Name, overlay.Feeds.Name)
	mergeString(&c.Feeds.Lookback, overlay.Feeds.Lookback)
	mergeSlice(&c.Feeds.Sources, overlay.Feeds.Sources)

	mergeBool(&c.GitHub.Enabled, overlay.GitHub.Enabled)
	mergeString(&c.GitHub.Name, overlay.GitHub.Name)
	mergeString(&c.GitHub.BaseURL, overlay.GitHub.BaseURL)
	mergeString(&c.GitHub.Lookback, overlay.GitHub.Lookback)
	mergeSlice(&c.GitHub.Topics, overlay.GitHub.Topics)
	mergeSlice(&c.GitHub.Queries, overlay.GitHub.Queries)
	if overlay.GitHub.PerPage != 0 {
		c.GitHub.PerPage = overlay.GitHub.PerPage
	}

	mergeBool(&c.Literature.Enabled, overlay.Literature.Enabled)
	mergeString(&c.Literature.Name, overlay.Literature.Name)

	mergeString(&c.Enrichment.WikidataBaseURL, overlay.Enrichment.WikidataBaseURL)
	mergeString(&c.Enrichment.BioToolsBaseURL, overlay.Enrichment.BioToolsBaseURL)
	mergeSlice(&c.Enrichment.Curated, overlay.Enrichment.Curated)
	if overlay.Enrichment.SkipBuiltinCurated {
		c.Enrichment.SkipBuiltinCurated = true
	}

	mergeString(&c.Catalog.Table, overlay.Catalog.Table)
	mergeString(&c.Catalog.Column, overlay.Catalog.Column)
	if overlay.Catalog.ReconcileLimit != 0 {
		c.Catalog.ReconcileLimit = overlay.Catalog.ReconcileLimit
	}
}

func (c *DiscoveryConfig) loadDefaults() {
	defaultString(&c.Interval, "24h")
	defaultString(&c.RunBudget, "30m")
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
	if c.Smoothing == 0 {
		c.Smoothing = 0.2
	}

	defaultString(&c.HTTP.Timeout, "15s")
	defaultString(&c.HTTP.UserAgent, "maldreth-discovery")
	defaultString(&c.HTTP.MaxResponseSize, "5MB")
	defaultString(&c.HTTP.Delay, "1s")

	defaultString(&c.Feeds.Name, "rss_feeds")
	defaultString(&c.Feeds.Lookback, "24h")
	if c.Feeds.Sources == nil {
		c.Feeds.Sources = DefaultFeeds
	}

	defaultString(&c.GitHub.Name, "github")
	defaultString(&c.GitHub.BaseURL, "https://api.github.com")
	defaultString(&c.GitHub.Lookback, "168h")
	if c.GitHub.PerPage == 0 {
		c.GitHub.PerPage = 30
	}

	defaultString(&c.Literature.Name, "literature")

	defaultString(&c.Enrichment.WikidataBaseURL, "https://www.wikidata.org")
	defaultString(&c.Enrichment.BioToolsBaseURL, "https://bio.tools")

	defaultString(&c.Catalog.Table, "public.tools")
	defaultString(&c.Catalog.Column, "name")
	if c.Catalog.ReconcileLimit == 0 {
		c.Catalog.ReconcileLimit = 100
	}
}

func (c *DiscoveryConfig) loadEnv() {
	envString(&c.Interval, EnvDiscoveryInterval)
	envBool(&c.RunOnStartup, EnvDiscoveryRunOnStartup)
	envString(&c.RunBudget, EnvDiscoveryRunBudget)
	envInt(&c.Workers, EnvDiscoveryWorkers)
	envInt(&c.BatchSize, EnvDiscoveryBatchSize)
	envFloat(&c.Smoothing, EnvDiscoverySmoothing)
	envList(&c.Keywords, EnvDiscoveryKeywords)

	envString(&c.HTTP.Timeout, EnvHTTPTimeout)
	envString(&c.HTTP.UserAgent, EnvHTTPUserAgent)
	envString(&c.HTTP.MaxResponseSize, EnvHTTPMaxResponseSize)
	envString(&c.HTTP.Delay, EnvHTTPDelay)

	envString(&c.GitHub.Token, EnvGitHubToken)
	envString(&c.GitHub.BaseURL, EnvGitHubBaseURL)
	envList(&c.GitHub.Topics, EnvGitHubTopics)
	envList(&c.GitHub.Queries, EnvGitHubQueries)

	envString(&c.Catalog.Table, EnvCatalogTable)
	envString(&c.Catalog.Column, EnvCatalogColumn)
}

func (c *DiscoveryConfig) validate() error {
	if err := validateDurations(map[string]string{
		"interval":        c.Interval,
		"run_budget":      c.RunBudget,
		"http.timeout":    c.HTTP.Timeout,
		"http.delay":      c.HTTP.Delay,
		"feeds.lookback":  c.Feeds.Lookback,
		"github.lookback": c.GitHub.Lookback,
	}); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative: %d", c.BatchSize)
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		return fmt.Errorf("smoothing must be in (0, 1]: %v", c.Smoothing)
	}
	if _, err := formatting.ParseBytes(c.HTTP.MaxResponseSize); err != nil {
		return fmt.Errorf("invalid http.max_response_size: %w", err)
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be in [1, 100]: %d", c.GitHub.PerPage)
	}
	for i, f := range c.Feeds.Sources {
		if err := f.validate(); err != nil {
			return fmt.Errorf("feeds.sources[%d]: %w", i, err)
		}
	}
	for i, e := range c.Enrichment.Curated {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("enrichment.curated[%d]: name required", i)
		}
	}
	if c.Catalog.Table == "" || c.Catalog.Column == "" {
		return errors.New("catalog table and column required")
	}
	return nil
}

func (f FeedSourceConfig) validate() error {
	u, err := url.Parse(f.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", f.URL)
	}
	if f.Reliability < 0 || f.Reliability > 1 {
		return fmt.Errorf("reliability must be in [0, 1]: %v", f.Reliability)
	}
	return nil
}

func mergeBool(dst **bool, v *bool) {
	if v != nil {
		*dst = v
	}
}

func enabled(b *bool) bool {
	return b == nil || *b
}
