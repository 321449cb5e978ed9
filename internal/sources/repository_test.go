package sources_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/dbtest"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
)

func newRepo(t *testing.T) sources.System {
	t.Helper()
	db := dbtest.Open(t)
	return sources.New(db, slog.New(slog.NewTextHandler(io.Discard, nil)), sources.DefaultSmoothing)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRepositoryRecordRun(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	src, err := repo.RecordRun(ctx, sources.RunCommand{
		Name:           "rss_feeds",
		SourceType:     "rss",
		Config:         map[string]any{"feeds": 3},
		RanAt:          first,
		NewItems:       3,
		Candidates:     4,
		MeanConfidence: 0.8,
	})
	if err != nil {
		t.Fatalf("RecordRun first: %v", err)
	}
	if !near(src.ReliabilityScore, 0.8) {
		t.Errorf("seeded score = %v, want 0.8", src.ReliabilityScore)
	}
	if src.TotalDiscoveries != 3 || !src.IsEnabled {
		t.Errorf("source = %+v", src)
	}

	second := first.Add(6 * time.Hour)
	src, err = repo.RecordRun(ctx, sources.RunCommand{
		Name:           "rss_feeds",
		SourceType:     "rss",
		RanAt:          second,
		NewItems:       2,
		Candidates:     10,
		MeanConfidence: 0.1,
	})
	if err != nil {
		t.Fatalf("RecordRun second: %v", err)
	}
	if src.TotalDiscoveries != 5 {
		t.Errorf("total_discoveries = %d, want 5", src.TotalDiscoveries)
	}
	if !near(src.ReliabilityScore, 0.8) {
		t.Errorf("score = %v, later runs must not reseed", src.ReliabilityScore)
	}
	if src.LastRun == nil || !src.LastRun.Equal(second) {
		t.Errorf("last_run = %v, want %v", src.LastRun, second)
	}

	t.Run("empty run seeds neutral", func(t *testing.T) {
		quiet, err := repo.RecordRun(ctx, sources.RunCommand{Name: "github_repos", SourceType: "github", RanAt: first})
		if err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
		if !near(quiet.ReliabilityScore, sources.NeutralScore) || quiet.TotalDiscoveries != 0 {
			t.Errorf("source = %+v", quiet)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		if _, err := repo.RecordRun(ctx, sources.RunCommand{RanAt: first}); !errors.Is(err, sources.ErrInvalidRequest) {
			t.Errorf("err = %v, want ErrInvalidRequest", err)
		}
	})
}

func TestRepositoryRecordDecision(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.RecordDecision(ctx, "unknown", true); !errors.Is(err, sources.ErrNotFound) {
		t.Errorf("unknown source err = %v, want ErrNotFound", err)
	}

	if _, err := repo.RecordRun(ctx, sources.RunCommand{
		Name:       "literature_search",
		SourceType: "literature",
		RanAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		NewItems:   4,
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	want := sources.NeutralScore
	steps := []bool{true, true, false}
	for _, approved := range steps {
		src, err := repo.RecordDecision(ctx, "literature_search", approved)
		if err != nil {
			t.Fatalf("RecordDecision(%v): %v", approved, err)
		}
		want = sources.UpdateScore(want, approved, sources.DefaultSmoothing)
		if !near(src.ReliabilityScore, want) {
			t.Errorf("score after %v = %v, want %v", approved, src.ReliabilityScore, want)
		}
	}

	src, err := repo.Find(ctx, "literature_search")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if src.TotalApproved != 2 || src.TotalRejected != 1 {
		t.Errorf("approved=%d rejected=%d, want 2 and 1", src.TotalApproved, src.TotalRejected)
	}
	if src.TotalDiscoveries != 4 {
		t.Errorf("total_discoveries = %d, decisions must not change it", src.TotalDiscoveries)
	}
}

func TestRepositorySetEnabled(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	if _, err := repo.SetEnabled(ctx, "rss_feeds", false); !errors.Is(err, sources.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if _, err := repo.RecordRun(ctx, sources.RunCommand{Name: "rss_feeds", SourceType: "rss", RanAt: time.Now()}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	src, err := repo.SetEnabled(ctx, "rss_feeds", false)
	if err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if src.IsEnabled {
		t.Error("source still enabled")
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].IsEnabled {
		t.Errorf("list = %+v", all)
	}
}
