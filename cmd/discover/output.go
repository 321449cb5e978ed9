package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/coordinator"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/sources"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *coordinator.RunReport) {
	fmt.Fprintf(w, "%s %s (%s)\n", bold("Run"), r.ID, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WATCHER\tCANDIDATES\tCREATED\tMERGED\tINVALID\tCATALOGED\tFAILED\tSTATUS")
	for _, wr := range r.Watchers {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			wr.Name, wr.Candidates, wr.Created, wr.Merged, wr.Invalid, wr.Cataloged, wr.Failed, watcherStatus(wr))
	}
	tw.Flush()

	e := r.Enrichment
	fmt.Fprintf(w, "Enrichment: %d attempted, %s enriched, %s failed\n",
		e.Attempted, green(e.Enriched), failedCount(e.Failed))
	if r.Reconciled > 0 {
		fmt.Fprintf(w, "Reconciled: %d catalog submissions\n", r.Reconciled)
	}
	if r.TimedOut {
		fmt.Fprintln(w, yellow("Run budget exhausted before all stages finished"))
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "%s %s\n", red("error:"), msg)
	}
}

func watcherStatus(wr coordinator.WatcherReport) string {
	switch {
	case wr.Error != "":
		return red("failed: " + wr.Error)
	case wr.Skipped:
		return gray("skipped")
	default:
		return green("ok")
	}
}

func failedCount(n int) string {
	if n == 0 {
		return "0"
	}
	return red(n)
}

func printSources(w io.Writer, list []sources.Source) {
	if len(list) == 0 {
		fmt.Fprintln(w, gray("No sources recorded yet"))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tRELIABILITY\tDISCOVERIES\tAPPROVED\tREJECTED\tLAST RUN\tENABLED")
	for _, s := range list {
		lastRun := "never"
		if s.LastRun != nil {
			lastRun = s.LastRun.UTC().Format(time.RFC3339)
		}
		enabled := green("yes")
		if !s.IsEnabled {
			enabled = gray("no")
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%d\t%d\t%d\t%s\t%s\n",
			s.Name, s.SourceType, s.ReliabilityScore, s.TotalDiscoveries,
			s.TotalApproved, s.TotalRejected, lastRun, enabled)
	}
	tw.Flush()
}

func printDecision(w io.Writer, it *queue.Item) {
	mark := green("✓")
	if it.Status == queue.StatusRejected {
		mark = yellow("✗")
	}
	by := ""
	if it.ReviewedBy != nil {
		by = " by " + *it.ReviewedBy
	}
	fmt.Fprintf(w, "%s %s %q %s%s\n", mark, it.ID, it.DisplayName(), it.Status, by)
}
