package enrichment

// CuratedSource is recorded in Sources for records served from the curated table.
const CuratedSource = "curated"

// CuratedEntry is hand-maintained metadata for a well-known tool.
type CuratedEntry struct {
	Name         string
	Description  string
	URL          string
	License      string
	IsOpenSource *bool
	Topics       []string
}

// DefaultCurated seeds the curated table with tools whose provider results are
// known to be ambiguous.
var DefaultCurated = []CuratedEntry{
	{
		Name:         "Zenodo",
		Description:  "General-purpose open repository for research outputs operated by CERN.",
		URL:          "https://zenodo.org",
		License:      "MIT",
		IsOpenSource: boolPtr(true),
		Topics:       []string{"data repository", "open science"},
	},
	{
		Name:         "Dataverse",
		Description:  "Open source research data repository software.",
		URL:          "https://dataverse.org",
		License:      "Apache-2.0",
		IsOpenSource: boolPtr(true),
		Topics:       []string{"data repository", "research data management"},
	},
	{
		Name:         "REDCap",
		Description:  "Secure web application for building and managing online surveys and databases.",
		URL:          "https://projectredcap.org",
		License:      "Proprietary",
		IsOpenSource: boolPtr(false),
		Topics:       []string{"data collection"},
	},
	{
		Name:         "Jupyter",
		Description:  "Interactive computing notebooks for data science and research.",
		URL:          "https://jupyter.org",
		License:      "BSD-3-Clause",
		IsOpenSource: boolPtr(true),
		Topics:       []string{"notebooks", "analysis"},
	},
	{
		Name:         "OSF",
		Description:  "Open Science Framework for managing research projects and sharing outputs.",
		URL:          "https://osf.io",
		License:      "Apache-2.0",
		IsOpenSource: boolPtr(true),
		Topics:       []string{"project management", "open science"},
	},
}

// Curated is an exact, case-sensitive name lookup that bypasses live providers.
type Curated struct {
	entries map[string]CuratedEntry
}

// NewCurated builds a table from entries. Later entries replace earlier ones with the same name.
func NewCurated(entries ...[]CuratedEntry) *Curated {
	c := &Curated{entries: make(map[string]CuratedEntry)}
	for _, set := range entries {
		for _, e := range set {
			if e.Name == "" {
				continue
			}
			c.entries[e.Name] = e
		}
	}
	return c
}

// Lookup returns the curated record for name, matching exactly.
func (c *Curated) Lookup(name string) (*Record, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return Merge(name, []Contribution{{
		Provider: CuratedSource,
		Kind:     KindDomainRegistry,
		Result: &Result{
			Description:  e.Description,
			URL:          e.URL,
			License:      e.License,
			IsOpenSource: e.IsOpenSource,
			Topics:       e.Topics,
		},
	}}), true
}

// Len returns the number of curated names.
func (c *Curated) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}
