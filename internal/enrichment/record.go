// Package enrichment merges metadata about a tool name from independent
// providers into a single normalized record.
package enrichment

import (
	"encoding/json"
	"slices"
	"sort"
	"strings"
)

// Record is the merged enrichment output stored on a queue item.
type Record struct {
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	URL          string         `json:"url,omitempty"`
	IsOpenSource *bool          `json:"is_open_source,omitempty"`
	License      string         `json:"license,omitempty"`
	Topics       []string       `json:"topics"`
	Sources      []string       `json:"sources"`
	Extras       map[string]any `json:"extras,omitempty"`
}

// Document converts the record into the schema-less form persisted as enriched_data.
func (r *Record) Document() map[string]any {
	data, err := json.Marshal(r)
	if err != nil {
		return map[string]any{"name": r.Name}
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return map[string]any{"name": r.Name}
	}
	return doc
}

// Result is one provider's partial view of a tool.
type Result struct {
	Description  string
	URL          string
	IsOpenSource *bool
	License      string
	Topics       []string
	Extras       map[string]any
}

// Kind orders providers for scalar-field precedence. Lower values win.
type Kind int

const (
	KindDomainRegistry Kind = iota
	KindCodeHosting
	KindKnowledgeGraph
)

// Contribution pairs a provider's result with its identity.
type Contribution struct {
	Provider string
	Kind     Kind
	Result   *Result
}

// Merge combines contributions under the fixed precedence
// domain registry > code hosting > knowledge graph. Scalar fields take the
// first non-empty value in precedence order; topics are unioned; sources list
// every contributing provider in precedence order. Nil results are ignored.
func Merge(name string, contributions []Contribution) *Record {
	ordered := make([]Contribution, 0, len(contributions))
	for _, c := range contributions {
		if c.Result != nil {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Kind < ordered[j].Kind })

	rec := &Record{
		Name:    name,
		Topics:  []string{},
		Sources: []string{},
	}
	seen := make(map[string]struct{})

	for _, c := range ordered {
		r := c.Result
		if rec.Description == "" {
			rec.Description = strings.TrimSpace(r.Description)
		}
		if rec.URL == "" {
			rec.URL = strings.TrimSpace(r.URL)
		}
		if rec.License == "" {
			rec.License = strings.TrimSpace(r.License)
		}
		if rec.IsOpenSource == nil && r.IsOpenSource != nil {
			v := *r.IsOpenSource
			rec.IsOpenSource = &v
		}
		for _, t := range r.Topics {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rec.Topics = append(rec.Topics, key)
		}
		for k, v := range r.Extras {
			if rec.Extras == nil {
				rec.Extras = make(map[string]any)
			}
			if _, taken := rec.Extras[k]; !taken {
				rec.Extras[k] = v
			}
		}
		if !slices.Contains(rec.Sources, c.Provider) {
			rec.Sources = append(rec.Sources, c.Provider)
		}
	}

	sort.Strings(rec.Topics)
	return rec
}

func boolPtr(b bool) *bool { return &b }
