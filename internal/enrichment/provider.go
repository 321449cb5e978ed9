package enrichment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/fetch"
)

// Provider looks a tool name up in one external metadata source.
// Lookup returns (nil, nil) when the provider has no matching entry.
type Provider interface {
	Name() string
	Kind() Kind
	Lookup(ctx context.Context, name string) (*Result, error)
}

// GitHubProvider reads repository metadata from a code-hosting search API.
type GitHubProvider struct {
	baseURL string
	token   string
	client  *fetch.Client
}

// NewGitHubProvider creates a GitHubProvider. An empty baseURL selects api.github.com.
func NewGitHubProvider(baseURL, token string, client *fetch.Client) *GitHubProvider {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &GitHubProvider{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

func (p *GitHubProvider) Name() string { return "github" }
func (p *GitHubProvider) Kind() Kind   { return KindCodeHosting }

func (p *GitHubProvider) Lookup(ctx context.Context, name string) (*Result, error) {
	params := url.Values{}
	params.Set("q", name+" in:name")
	params.Set("sort", "stars")
	params.Set("per_page", "5")

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if p.token != "" {
		header.Set("Authorization", "Bearer "+p.token)
	}

	var resp struct {
		Items []struct {
			Name        string   `json:"name"`
			FullName    string   `json:"full_name"`
			HTMLURL     string   `json:"html_url"`
			Description string   `json:"description"`
			Homepage    string   `json:"homepage"`
			Stars       int      `json:"stargazers_count"`
			Language    string   `json:"language"`
			Topics      []string `json:"topics"`
			License     *struct {
				SPDXID string `json:"spdx_id"`
			} `json:"license"`
		} `json:"items"`
	}
	if err := p.client.GetJSON(ctx, p.baseURL+"/search/repositories?"+params.Encode(), header, &resp); err != nil {
		return nil, notFoundAsNil(err)
	}

	for _, item := range resp.Items {
		if !strings.EqualFold(item.Name, name) {
			continue
		}
		r := &Result{
			Description: item.Description,
			URL:         item.Homepage,
			Topics:      item.Topics,
			Extras: map[string]any{
				"repository": item.HTMLURL,
				"stars":      item.Stars,
				"language":   item.Language,
			},
		}
		if r.URL == "" {
			r.URL = item.HTMLURL
		}
		if item.License != nil && item.License.SPDXID != "" && item.License.SPDXID != "NOASSERTION" {
			r.License = item.License.SPDXID
			r.IsOpenSource = boolPtr(true)
		}
		return r, nil
	}
	return nil, nil
}

// WikidataProvider resolves a name against the Wikidata entity search.
type WikidataProvider struct {
	baseURL string
	client  *fetch.Client
}

// NewWikidataProvider creates a WikidataProvider. An empty baseURL selects www.wikidata.org.
func NewWikidataProvider(baseURL string, client *fetch.Client) *WikidataProvider {
	if baseURL == "" {
		baseURL = "https://www.wikidata.org"
	}
	return &WikidataProvider{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *WikidataProvider) Name() string { return "wikidata" }
func (p *WikidataProvider) Kind() Kind   { return KindKnowledgeGraph }

func (p *WikidataProvider) Lookup(ctx context.Context, name string) (*Result, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", name)
	params.Set("language", "en")
	params.Set("type", "item")
	params.Set("limit", "5")
	params.Set("format", "json")

	var resp struct {
		Search []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			Description string `json:"description"`
			ConceptURI  string `json:"concepturi"`
		} `json:"search"`
	}
	if err := p.client.GetJSON(ctx, p.baseURL+"/w/api.php?"+params.Encode(), nil, &resp); err != nil {
		return nil, notFoundAsNil(err)
	}

	for _, hit := range resp.Search {
		if !strings.EqualFold(hit.Label, name) {
			continue
		}
		return &Result{
			Description: hit.Description,
			Extras: map[string]any{
				"wikidata_id":  hit.ID,
				"wikidata_uri": hit.ConceptURI,
			},
		}, nil
	}
	return nil, nil
}

// BioToolsProvider queries the bio.tools life-science tool registry.
type BioToolsProvider struct {
	baseURL string
	client  *fetch.Client
}

// NewBioToolsProvider creates a BioToolsProvider. An empty baseURL selects bio.tools.
func NewBioToolsProvider(baseURL string, client *fetch.Client) *BioToolsProvider {
	if baseURL == "" {
		baseURL = "https://bio.tools"
	}
	return &BioToolsProvider{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *BioToolsProvider) Name() string { return "bio.tools" }
func (p *BioToolsProvider) Kind() Kind   { return KindDomainRegistry }

func (p *BioToolsProvider) Lookup(ctx context.Context, name string) (*Result, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("format", "json")

	var resp struct {
		List []struct {
			Name        string `json:"name"`
			BiotoolsID  string `json:"biotoolsID"`
			Description string `json:"description"`
			Homepage    string `json:"homepage"`
			License     string `json:"license"`
			Topic       []struct {
				Term string `json:"term"`
			} `json:"topic"`
		} `json:"list"`
	}
	if err := p.client.GetJSON(ctx, p.baseURL+"/api/t/?"+params.Encode(), nil, &resp); err != nil {
		return nil, notFoundAsNil(err)
	}

	for _, tool := range resp.List {
		if !strings.EqualFold(tool.Name, name) {
			continue
		}
		topics := make([]string, 0, len(tool.Topic))
		for _, t := range tool.Topic {
			topics = append(topics, t.Term)
		}
		r := &Result{
			Description: tool.Description,
			URL:         tool.Homepage,
			License:     tool.License,
			Topics:      topics,
			Extras:      map[string]any{"biotools_id": tool.BiotoolsID},
		}
		switch {
		case tool.License == "Proprietary":
			r.IsOpenSource = boolPtr(false)
		case tool.License != "" && tool.License != "Not licensed":
			r.IsOpenSource = boolPtr(true)
		}
		return r, nil
	}
	return nil, nil
}

func notFoundAsNil(err error) error {
	if errors.Is(err, fetch.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("lookup: %w", err)
}
