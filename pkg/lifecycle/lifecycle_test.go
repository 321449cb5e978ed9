package lifecycle_test

import (
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/lifecycle"
)

type flag struct{ ok atomic.Bool }

func (f *flag) Ready() bool { return f.ok.Load() }

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Fatal("ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Fatal("not ready after WaitForStartup with no checks")
	}

	db, archive := &flag{}, &flag{}
	archive.ok.Store(true)
	lc.AddCheck("database", db)
	lc.AddCheck("archive", archive)

	if lc.Ready() {
		t.Error("ready with a failing check")
	}
	if got := lc.NotReady(); !slices.Equal(got, []string{"database"}) {
		t.Errorf("NotReady = %v, want [database]", got)
	}

	db.ok.Store(true)
	if !lc.Ready() {
		t.Errorf("not ready with all checks passing: %v", lc.NotReady())
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() { count.Add(1) })
	}
	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdown(t *testing.T) {
	t.Run("hooks run after cancel", func(t *testing.T) {
		lc := lifecycle.New()

		var cleaned atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			cleaned.Store(true)
		})

		if err := lc.Shutdown(5 * time.Second); err != nil {
			t.Fatalf("Shutdown: %v", err)
		}
		if !cleaned.Load() {
			t.Error("shutdown hook did not execute")
		}
		if lc.Context().Err() == nil {
			t.Error("context not cancelled")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		lc := lifecycle.New()
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			time.Sleep(500 * time.Millisecond)
		})

		if err := lc.Shutdown(50 * time.Millisecond); err == nil {
			t.Error("expected timeout error")
		}
	})
}
