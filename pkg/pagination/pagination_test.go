package pagination_test

import (
	"encoding/json"
	"net/url"
	"slices"
	"testing"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/query"
)

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := pagination.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
			t.Errorf("got %+v, want {20 100}", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("MALDRETH_TEST_PAGE_SIZE", "50")
		t.Setenv("MALDRETH_TEST_MAX_PAGE", "200")

		cfg := pagination.Config{}
		err := cfg.Finalize(&pagination.ConfigEnv{
			DefaultPageSize: "MALDRETH_TEST_PAGE_SIZE",
			MaxPageSize:     "MALDRETH_TEST_MAX_PAGE",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
			t.Errorf("got %+v, want {50 200}", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		if err := cfg.Finalize(nil); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	base.Merge(&pagination.Config{DefaultPageSize: 50})

	if base.DefaultPageSize != 50 || base.MaxPageSize != 100 {
		t.Errorf("got %+v, want {50 100}", base)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

	tests := []struct {
		name         string
		values       url.Values
		wantPage     int
		wantPageSize int
		wantSearch   string
		wantSort     []query.SortField
	}{
		{
			name: "all params",
			values: url.Values{
				"page":      {"2"},
				"page_size": {"15"},
				"search":    {"  vault "},
				"sort":      {"-priority,discovered_at"},
			},
			wantPage:     2,
			wantPageSize: 15,
			wantSearch:   "vault",
			wantSort:     []query.SortField{{Field: "priority", Descending: true}, {Field: "discovered_at"}},
		},
		{
			name:         "empty gets defaults",
			values:       url.Values{},
			wantPage:     1,
			wantPageSize: 20,
		},
		{
			name:         "garbage numbers get defaults",
			values:       url.Values{"page": {"x"}, "page_size": {"-3"}},
			wantPage:     1,
			wantPageSize: 20,
		},
		{
			name:         "page size clamped",
			values:       url.Values{"page_size": {"500"}},
			wantPage:     1,
			wantPageSize: 100,
		},
		{
			name:         "blank search ignored",
			values:       url.Values{"search": {"   "}},
			wantPage:     1,
			wantPageSize: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.PageRequestFromQuery(tt.values, cfg)
			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("page = %d/%d, want %d/%d", req.Page, req.PageSize, tt.wantPage, tt.wantPageSize)
			}
			gotSearch := ""
			if req.Search != nil {
				gotSearch = *req.Search
			}
			if gotSearch != tt.wantSearch {
				t.Errorf("Search = %q, want %q", gotSearch, tt.wantSearch)
			}
			if !slices.Equal(req.Sort, tt.wantSort) {
				t.Errorf("Sort = %v, want %v", req.Sort, tt.wantSort)
			}
			if want := (tt.wantPage - 1) * tt.wantPageSize; req.Offset() != want {
				t.Errorf("Offset() = %d, want %d", req.Offset(), want)
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  pagination.SortFields
	}{
		{"string form", `"-priority,tool_name"`, pagination.SortFields{{Field: "priority", Descending: true}, {Field: "tool_name"}}},
		{"array form", `[{"Field":"tool_name","Descending":true}]`, pagination.SortFields{{Field: "tool_name", Descending: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got pagination.SortFields
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	var bad pagination.SortFields
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("expected error for numeric sort")
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name          string
		data          []string
		total         int
		page          int
		pageSize      int
		wantPages     int
		wantHasNext   bool
		wantDataCount int
	}{
		{"exact division", []string{"a", "b"}, 40, 1, 20, 2, true, 2},
		{"remainder rounds up", []string{"a"}, 41, 3, 20, 3, false, 1},
		{"empty total has one page", nil, 0, 1, 20, 1, false, 0},
		{"zero page size", []string{"a", "b", "c"}, 3, 1, 0, 1, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pagination.NewPageResult(tt.data, tt.total, tt.page, tt.pageSize)
			if got.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", got.TotalPages, tt.wantPages)
			}
			if got.HasNext != tt.wantHasNext {
				t.Errorf("HasNext = %v, want %v", got.HasNext, tt.wantHasNext)
			}
			if got.Data == nil || len(got.Data) != tt.wantDataCount {
				t.Errorf("Data = %v, want %d non-nil items", got.Data, tt.wantDataCount)
			}
		})
	}
}

func TestConfigFinalizeInvalidEnv(t *testing.T) {
	t.Setenv("MALDRETH_TEST_PAGE_SIZE", "lots")

	cfg := pagination.Config{}
	if err := cfg.Finalize(&pagination.ConfigEnv{DefaultPageSize: "MALDRETH_TEST_PAGE_SIZE"}); err == nil {
		t.Fatal("expected error for malformed env value")
	}
}

func TestConfigPageSize(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

	for requested, want := range map[int]int{-1: 20, 0: 20, 1: 1, 100: 100, 500: 100} {
		if got := cfg.PageSize(requested); got != want {
			t.Errorf("PageSize(%d) = %d, want %d", requested, got, want)
		}
	}
}
