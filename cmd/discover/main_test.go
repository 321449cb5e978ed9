package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/coordinator"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func parseDecision(t *testing.T, args ...string) (queue.DecideCommand, error) {
	t.Helper()
	f := pflag.NewFlagSet("decide", pflag.ContinueOnError)
	addDecisionFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return decisionFromFlags(f)
}

func TestDecisionFromFlags(t *testing.T) {
	t.Run("approval with edits", func(t *testing.T) {
		cmd, err := parseDecision(t, "--status", "approved", "--by", "alice", "--name", "DataVault")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Status != queue.StatusApproved || cmd.ReviewedBy != "alice" {
			t.Errorf("cmd = %+v", cmd)
		}
		if cmd.Edits == nil || cmd.Edits.Name == nil || *cmd.Edits.Name != "DataVault" {
			t.Fatalf("edits = %+v, want name DataVault", cmd.Edits)
		}
		if cmd.Edits.URL != nil || cmd.Edits.Description != nil {
			t.Errorf("unset edit flags should stay nil: %+v", cmd.Edits)
		}
	})

	t.Run("rejection without edits", func(t *testing.T) {
		cmd, err := parseDecision(t, "--status", "rejected", "--by", "bob", "--reason", "duplicate")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Edits != nil {
			t.Errorf("edits = %+v, want nil", cmd.Edits)
		}
		if cmd.RejectionReason == nil || *cmd.RejectionReason != "duplicate" {
			t.Errorf("reason = %v", cmd.RejectionReason)
		}
		if cmd.Notes != nil {
			t.Errorf("notes = %v, want nil", cmd.Notes)
		}
	})

	invalid := []struct {
		name string
		args []string
	}{
		{"non-terminal status", []string{"--status", "reviewing", "--by", "alice"}},
		{"missing reviewer", []string{"--status", "approved", "--by", " "}},
		{"explicit empty name", []string{"--status", "approved", "--by", "alice", "--name", ""}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDecision(t, tt.args...)
			if !errors.Is(err, queue.ErrInvalidDecision) {
				t.Errorf("err = %v, want ErrInvalidDecision", err)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := &coordinator.RunReport{
		ID:         uuid.New(),
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Watchers: []coordinator.WatcherReport{
			{Name: "feeds", Candidates: 4, Created: 3, Merged: 1},
			{Name: "github", Error: "rate limited"},
			{Name: "literature", Skipped: true},
		},
		Enrichment: coordinator.EnrichmentReport{Attempted: 3, Enriched: 2, Failed: 1},
		Reconciled: 2,
		TimedOut:   true,
		Errors:     []string{"github: rate limited"},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()

	for _, want := range []string{
		report.ID.String(),
		"1.5s",
		"failed: rate limited",
		"skipped",
		"Enrichment: 3 attempted, 2 enriched, 1 failed",
		"Reconciled: 2",
		"Run budget exhausted",
		"error: github: rate limited",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSources(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		printSources(&buf, nil)
		if !strings.Contains(buf.String(), "No sources") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("rows", func(t *testing.T) {
		last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		var buf bytes.Buffer
		printSources(&buf, []sources.Source{
			{Name: "feeds", SourceType: "feed", ReliabilityScore: 0.625, LastRun: &last, IsEnabled: true},
			{Name: "github", SourceType: "github", ReliabilityScore: 0.5},
		})
		out := buf.String()
		for _, want := range []string{"0.625", "2026-03-01T12:00:00Z", "never", "yes", "no"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestPrintDecision(t *testing.T) {
	name, by := "DataVault", "alice"
	var buf bytes.Buffer
	printDecision(&buf, &queue.Item{ID: uuid.New(), ToolName: &name, Status: queue.StatusApproved, ReviewedBy: &by})

	out := buf.String()
	if !strings.Contains(out, `"DataVault" approved by alice`) {
		t.Errorf("output = %q", out)
	}
}

func TestNeedsDomain(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"run"}, true},
		{[]string{"sources"}, true},
		{[]string{"decide", "x"}, true},
		{[]string{"help", "run"}, false},
		{[]string{"completion", "bash"}, false},
	}

	rootCmd.InitDefaultHelpCmd()
	rootCmd.InitDefaultCompletionCmd()

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			cmd, _, err := rootCmd.Find(tt.args)
			if err != nil {
				t.Fatalf("Find(%v): %v", tt.args, err)
			}
			if got := needsDomain(cmd); got != tt.want {
				t.Errorf("needsDomain(%s) = %v, want %v", cmd.CommandPath(), got, tt.want)
			}
		})
	}
}
