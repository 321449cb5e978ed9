package watchers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/fetch"
)

// Defaults for the code-hosting search watcher.
var (
	DefaultTopics = []string{
		"research-data-management",
		"open-science",
		"reproducible-research",
		"research-software",
		"scientific-workflows",
		"fair-data",
		"bioinformatics",
	}

	DefaultQueries = []string{
		"research data management tool",
		"scientific data repository",
		"data curation platform",
	}

	// ResearchLanguages are primary languages accepted as research-relevant.
	ResearchLanguages = []string{
		"Python", "R", "Julia", "Java", "JavaScript", "TypeScript",
		"Go", "C++", "Rust", "Scala", "MATLAB", "Jupyter Notebook",
	}

	researchTerms = []string{"research", "data", "scientific", "science", "analysis", "analytics"}
)

// Repository is the subset of a code-hosting search result the heuristics read.
type Repository struct {
	FullName    string   `json:"full_name"`
	Name        string   `json:"name"`
	HTMLURL     string   `json:"html_url"`
	Description string   `json:"description"`
	Homepage    string   `json:"homepage"`
	Stars       int      `json:"stargazers_count"`
	Fork        bool     `json:"fork"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	PushedAt    string   `json:"pushed_at"`
	License     *struct {
		SPDXID string `json:"spdx_id"`
		Name   string `json:"name"`
	} `json:"license"`
}

type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []Repository `json:"items"`
}

// GitHubOptions configures a GitHubWatcher.
type GitHubOptions struct {
	Name     string
	BaseURL  string
	Token    string
	Topics   []string
	Queries  []string
	PerPage  int
	Lookback time.Duration
}

// GitHubWatcher searches a code-hosting API for recently pushed research repositories.
type GitHubWatcher struct {
	name     string
	baseURL  string
	token    string
	topics   []string
	queries  []string
	perPage  int
	lookback time.Duration
	client   *fetch.Client
	logger   *slog.Logger
	now      func() time.Time
}

// NewGitHubWatcher creates a GitHubWatcher with defaults applied for empty options.
func NewGitHubWatcher(opts GitHubOptions, client *fetch.Client, logger *slog.Logger) *GitHubWatcher {
	if opts.Name == "" {
		opts.Name = "github"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.github.com"
	}
	if opts.Topics == nil {
		opts.Topics = DefaultTopics
	}
	if opts.Queries == nil {
		opts.Queries = DefaultQueries
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 30
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 7 * 24 * time.Hour
	}
	return &GitHubWatcher{
		name:     opts.Name,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		topics:   opts.Topics,
		queries:  opts.Queries,
		perPage:  opts.PerPage,
		lookback: opts.Lookback,
		client:   client,
		logger:   logger.With("watcher", opts.Name),
		now:      time.Now,
	}
}

func (w *GitHubWatcher) Name() string       { return w.name }
func (w *GitHubWatcher) SourceType() string { return TypeCodeSearch }

func (w *GitHubWatcher) Config() map[string]any {
	return map[string]any{
		"base_url": w.baseURL,
		"topics":   w.topics,
		"queries":  w.queries,
		"per_page": w.perPage,
		"lookback": w.lookback.String(),
	}
}

// CheckForUpdates runs every topic and query pass. A rate-limited or failed
// pass is logged and skipped. Results are deduplicated by repository URL.
func (w *GitHubWatcher) CheckForUpdates(ctx context.Context, since time.Time) ([]Candidate, error) {
	cutoff := resolveSince(since, w.now(), w.lookback)
	pushed := "pushed:>" + cutoff.Format("2006-01-02")

	searches := make([]string, 0, len(w.topics)+len(w.queries))
	for _, topic := range w.topics {
		searches = append(searches, fmt.Sprintf("topic:%s %s", topic, pushed))
	}
	for _, q := range w.queries {
		searches = append(searches, fmt.Sprintf("%s %s", q, pushed))
	}

	seen := make(map[string]struct{})
	candidates := make([]Candidate, 0)

	for _, q := range searches {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		repos, err := w.search(ctx, q)
		if err != nil {
			if errors.Is(err, fetch.ErrRateLimited) {
				w.logger.Warn("search rate limited", "query", q, "error", err)
			} else {
				w.logger.Warn("search failed", "query", q, "error", err)
			}
			continue
		}

		for _, repo := range repos {
			if repo.HTMLURL == "" {
				continue
			}
			if _, dup := seen[repo.HTMLURL]; dup {
				continue
			}
			if !IsResearchTool(repo) {
				continue
			}
			seen[repo.HTMLURL] = struct{}{}
			candidates = append(candidates, w.candidate(repo, q))
		}
	}

	return candidates, nil
}

func (w *GitHubWatcher) search(ctx context.Context, q string) ([]Repository, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("sort", "updated")
	params.Set("order", "desc")
	params.Set("per_page", fmt.Sprintf("%d", w.perPage))

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if w.token != "" {
		header.Set("Authorization", "Bearer "+w.token)
	}

	var resp searchResponse
	if err := w.client.GetJSON(ctx, w.baseURL+"/search/repositories?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (w *GitHubWatcher) candidate(repo Repository, query string) Candidate {
	name := repo.Name
	if name == "" {
		name = repo.FullName
	}
	return Candidate{
		Source:       w.name,
		ItemType:     ItemTool,
		Name:         name,
		URL:          repo.HTMLURL,
		Description:  repo.Description,
		DiscoveredAt: w.now().UTC(),
		Confidence:   RepositoryConfidence(repo),
		RawData: mustJSON(map[string]any{
			"full_name":  repo.FullName,
			"html_url":   repo.HTMLURL,
			"homepage":   repo.Homepage,
			"stars":      repo.Stars,
			"language":   repo.Language,
			"topics":     repo.Topics,
			"license":    repo.licenseID(),
			"fork":       repo.Fork,
			"pushed_at":  repo.PushedAt,
			"matched_by": query,
		}),
	}
}

// IsResearchTool applies the two-of-five acceptance heuristic.
func IsResearchTool(repo Repository) bool {
	signals := 0
	if containsResearchTerm(repo.Description) {
		signals++
	}
	if repo.Stars > 20 {
		signals++
	}
	if hasWhitelistedTopic(repo.Topics) {
		signals++
	}
	if !repo.Fork {
		signals++
	}
	if slices.Contains(ResearchLanguages, repo.Language) {
		signals++
	}
	return signals >= 2
}

// RepositoryConfidence scores a repository from 0.5 with additive bonuses, capped at 1.0.
func RepositoryConfidence(repo Repository) float64 {
	c := 0.5
	switch {
	case repo.Stars > 100:
		c += 0.2
	case repo.Stars > 50:
		c += 0.1
	}
	if repo.licenseID() != "" {
		c += 0.1
	}
	if strings.TrimSpace(repo.Homepage) != "" {
		c += 0.1
	}
	if hasWhitelistedTopic(repo.Topics) {
		c += 0.1
	}
	c = math.Round(c*100) / 100
	return math.Min(c, 1.0)
}

func (r Repository) licenseID() string {
	if r.License == nil {
		return ""
	}
	if r.License.SPDXID != "" {
		return r.License.SPDXID
	}
	return r.License.Name
}

func containsResearchTerm(description string) bool {
	lower := strings.ToLower(description)
	for _, term := range researchTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func hasWhitelistedTopic(topics []string) bool {
	for _, t := range topics {
		if slices.Contains(DefaultTopics, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
