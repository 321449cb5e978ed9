package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/openapi"
)

func TestFromConfig(t *testing.T) {
	cfg := &openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	spec := openapi.FromConfig(cfg, "1.2.0")
	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi = %q", spec.OpenAPI)
	}
	if spec.Info.Title != "MALDRETH Discovery API" || spec.Info.Version != "1.2.0" || spec.Info.Description == "" {
		t.Errorf("info = %+v", spec.Info)
	}
	for _, name := range []string{"BadRequest", "NotFound", "Conflict"} {
		if spec.Components.Responses[name] == nil {
			t.Errorf("missing %s response", name)
		}
	}
}

func TestConfigEnvAndMerge(t *testing.T) {
	t.Setenv("MALDRETH_TEST_OPENAPI_TITLE", "From Env")

	cfg := &openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "MALDRETH_TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "From Env" {
		t.Errorf("title = %q", cfg.Title)
	}

	cfg.Merge(&openapi.Config{Description: "overlay"})
	if cfg.Title != "From Env" || cfg.Description != "overlay" {
		t.Errorf("merge = %+v", cfg)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     openapi.Config
		wantErr bool
	}{
		{"defaults only", openapi.Config{}, false},
		{"contact url", openapi.Config{ContactName: "MaLDReTH WG", ContactURL: "https://www.rd-alliance.org/groups/maldreth"}, false},
		{"relative contact url", openapi.Config{ContactURL: "/contact"}, true},
		{"license with url", openapi.Config{License: "MIT", LicenseURL: "https://opensource.org/licenses/MIT"}, false},
		{"license url without name", openapi.Config{LicenseURL: "https://opensource.org/licenses/MIT"}, true},
		{"bad license url", openapi.Config{License: "MIT", LicenseURL: "not a url"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("Finalize err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromConfigContactAndLicense(t *testing.T) {
	t.Setenv("MALDRETH_TEST_OPENAPI_LICENSE", "Apache-2.0")

	cfg := &openapi.Config{ContactName: "Discovery maintainers", ContactURL: "https://example.org/maldreth"}
	if err := cfg.Finalize(&openapi.ConfigEnv{License: "MALDRETH_TEST_OPENAPI_LICENSE"}); err != nil {
		t.Fatal(err)
	}

	spec := openapi.FromConfig(cfg, "1.0.0")
	if spec.Info.Contact == nil || spec.Info.Contact.URL != "https://example.org/maldreth" {
		t.Errorf("contact = %+v", spec.Info.Contact)
	}
	if spec.Info.License == nil || spec.Info.License.Name != "Apache-2.0" {
		t.Errorf("license = %+v", spec.Info.License)
	}

	bare := openapi.FromConfig(&openapi.Config{Title: "t"}, "v")
	if bare.Info.Contact != nil || bare.Info.License != nil {
		t.Errorf("bare info = %+v", bare.Info)
	}

	data, err := json.Marshal(bare.Info)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["license"]; ok {
		t.Error("empty license serialized")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("t", "v")
	get := &openapi.Operation{Summary: "get"}
	post := &openapi.Operation{Summary: "post"}

	spec.AddOperation("get", "/queue", get)
	spec.AddOperation(http.MethodPost, "/queue", post)
	spec.AddOperation(http.MethodPatch, "/queue", &openapi.Operation{})

	item := spec.Paths["/queue"]
	if item.Get != get || item.Post != post {
		t.Errorf("item = %+v", item)
	}
	if item.Put != nil || item.Delete != nil {
		t.Error("unsupported method should be ignored")
	}
}

func TestPathTemplate(t *testing.T) {
	tests := map[string]string{
		"":                   "/",
		"/queue/{id}":        "/queue/{id}",
		"/runs/{key...}":     "/runs/{key}",
		"/sources/{name}/ok": "/sources/{name}/ok",
	}
	for in, want := range tests {
		if got := openapi.PathTemplate(in); got != want {
			t.Errorf("PathTemplate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParams(t *testing.T) {
	id := openapi.PathParam("id", "Queue item ID")
	if id.In != "path" || !id.Required || id.Schema.Format != "uuid" {
		t.Errorf("PathParam = %+v", id)
	}

	name := openapi.StringPathParam("name", "Source name")
	if name.Schema.Format != "" || !name.Required {
		t.Errorf("StringPathParam = %+v", name)
	}

	q := openapi.QueryParam("status", "string", "Status filter", false)
	if q.In != "query" || q.Required {
		t.Errorf("QueryParam = %+v", q)
	}
}

func TestPageOf(t *testing.T) {
	s := openapi.PageOf("QueueItem")
	if s.Properties["data"].Items.Ref != "#/components/schemas/QueueItem" {
		t.Errorf("data items ref = %q", s.Properties["data"].Items.Ref)
	}
	if s.Properties["has_next"].Type != "boolean" {
		t.Error("has_next should be boolean")
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("t", "v")
	spec.AddOperation(http.MethodGet, "/queue", &openapi.Operation{
		Summary:   "List",
		Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("Page", "QueueItem")},
	})

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}

	var doc struct {
		Paths map[string]map[string]struct {
			Responses map[string]json.RawMessage `json:"responses"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Paths["/queue"]["get"].Responses["200"]; !ok {
		t.Errorf("served document missing /queue get 200: %s", rec.Body.String())
	}
}
