package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/dbtest"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/pagination"
)

func newRepo(t *testing.T) queue.System {
	t.Helper()
	db := dbtest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return queue.New(db, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func toolCandidate(source, name string, confidence float64, payload string) watchers.Candidate {
	return watchers.Candidate{
		Source:       source,
		ItemType:     watchers.ItemTool,
		Name:         name,
		DiscoveredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Confidence:   confidence,
		RawData:      json.RawMessage(payload),
	}
}

func TestRepositoryInsertMergesOpenItem(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first, err := repo.Insert(ctx, toolCandidate("rss_feeds", "DataVault", 0.4, `{"title":"DataVault"}`))
	if err != nil {
		t.Fatalf("Insert first: %v", err)
	}
	if !first.Created {
		t.Fatal("first insert did not create an item")
	}
	if first.Item.ToolURL != nil {
		t.Errorf("tool_url = %v, want nil", *first.Item.ToolURL)
	}

	richer := toolCandidate("github_repos", "data-vault", 0.9, `{"repo":"org/data-vault"}`)
	richer.URL = "https://datavault.example.org"
	richer.Description = "Secure archive for research data"

	second, err := repo.Insert(ctx, richer)
	if err != nil {
		t.Fatalf("Insert second: %v", err)
	}
	if second.Created || second.Item.ID != first.Item.ID {
		t.Fatalf("second insert created=%v id=%s, want merge into %s", second.Created, second.Item.ID, first.Item.ID)
	}

	weaker := toolCandidate("rss_feeds", "Data Vault", 0.2, `{"title":"DataVault"}`)
	weaker.URL = "https://elsewhere.example.org"

	third, err := repo.Insert(ctx, weaker)
	if err != nil {
		t.Fatalf("Insert third: %v", err)
	}

	it := third.Item
	if it.ConfidenceScore != 0.9 {
		t.Errorf("confidence = %v, want 0.9", it.ConfidenceScore)
	}
	if it.Priority != 9 {
		t.Errorf("priority = %d, want 9", it.Priority)
	}
	if it.ToolURL == nil || *it.ToolURL != "https://datavault.example.org" {
		t.Errorf("tool_url = %v, want first non-empty url", it.ToolURL)
	}
	if it.ToolDescription == nil || *it.ToolDescription != "Secure archive for research data" {
		t.Errorf("tool_description = %v", it.ToolDescription)
	}
	if len(it.RawData) != 2 {
		t.Errorf("raw entries = %d, want 2", len(it.RawData))
	}
	if it.ToolName == nil || *it.ToolName != "DataVault" {
		t.Errorf("tool_name = %v, want first seen name", it.ToolName)
	}
}

func TestRepositoryConcurrentInsertCreatesOnce(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := range n {
		wg.Go(func() {
			c := toolCandidate("rss_feeds", "Zenodo Sandbox", 0.5, fmt.Sprintf(`{"n":%d}`, i))
			res, err := repo.Insert(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if res.Created {
				created++
			}
		})
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("insert errors: %v", errs)
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}

	page, err := repo.List(ctx, pagination.PageRequest{Page: 1, PageSize: 20}, queue.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
	if got := len(page.Data[0].RawData); got != n {
		t.Errorf("raw entries = %d, want %d", got, n)
	}
}

func TestRepositoryDecide(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	res, err := repo.Insert(ctx, toolCandidate("rss_feeds", "DataVault", 0.6, `{}`))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	id := res.Item.ID

	approve := queue.DecideCommand{Status: queue.StatusApproved, ReviewedBy: "curator"}

	if _, err := repo.Decide(ctx, id, approve); !errors.Is(err, queue.ErrInvalidTransition) {
		t.Errorf("Decide pending err = %v, want ErrInvalidTransition", err)
	}

	if _, err := repo.BeginEnrichment(ctx, id); err != nil {
		t.Fatalf("BeginEnrichment: %v", err)
	}
	if _, err := repo.CompleteEnrichment(ctx, id, map[string]any{"homepage": "https://datavault.example.org"}); err != nil {
		t.Fatalf("CompleteEnrichment: %v", err)
	}

	approve.Edits = &queue.Edits{Name: ptr("Data Vault")}
	decided, err := repo.Decide(ctx, id, approve)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if decided.Status != queue.StatusApproved {
		t.Errorf("status = %s, want approved", decided.Status)
	}
	if decided.ReviewedBy == nil || *decided.ReviewedBy != "curator" || decided.ReviewedAt == nil {
		t.Errorf("review stamp = %v %v", decided.ReviewedBy, decided.ReviewedAt)
	}
	if decided.ToolName == nil || *decided.ToolName != "Data Vault" {
		t.Errorf("tool_name = %v, want edited name", decided.ToolName)
	}

	t.Run("terminal item", func(t *testing.T) {
		reject := queue.DecideCommand{Status: queue.StatusRejected, ReviewedBy: "other", RejectionReason: ptr("duplicate")}
		_, err := repo.Decide(ctx, id, reject)
		if !errors.Is(err, queue.ErrAlreadyDecided) {
			t.Fatalf("err = %v, want ErrAlreadyDecided", err)
		}
		if got := queue.MapHTTPStatus(err); got != http.StatusConflict {
			t.Errorf("status = %d, want 409", got)
		}

		current, err := repo.Find(ctx, id)
		if err != nil {
			t.Fatalf("Find: %v", err)
		}
		if current.Status != queue.StatusApproved || *current.ReviewedBy != "curator" {
			t.Errorf("terminal item changed: %s by %v", current.Status, *current.ReviewedBy)
		}
	})

	t.Run("missing item", func(t *testing.T) {
		if _, err := repo.Decide(ctx, uuid.New(), approve); !errors.Is(err, queue.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("rediscovery after decision opens a new item", func(t *testing.T) {
		again, err := repo.Insert(ctx, toolCandidate("github_repos", "datavault", 0.7, `{}`))
		if err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if !again.Created || again.Item.ID == id {
			t.Errorf("created=%v id=%s, want a new item", again.Created, again.Item.ID)
		}
	})
}
