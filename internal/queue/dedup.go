package queue

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"unicode"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/watchers"
)

// NormalizeName lower-cases s and drops everything but letters and digits,
// so "Data Vault", "data-vault" and "dataVault" compare equal.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DedupKey returns the key open items are matched on within an item type:
// the normalized name for tools, the normalized (source, target, type)
// triple for interactions.
func DedupKey(c watchers.Candidate) string {
	if c.ItemType == watchers.ItemInteraction && c.Interaction != nil {
		return strings.Join([]string{
			NormalizeName(c.Interaction.SourceTool),
			NormalizeName(c.Interaction.TargetTool),
			NormalizeName(c.Interaction.Type),
		}, "|")
	}
	return NormalizeName(c.Name)
}

// NewRawEntry wraps a candidate's payload for storage.
func NewRawEntry(c watchers.Candidate) RawEntry {
	return RawEntry{
		Source:       c.Source,
		DiscoveredAt: c.DiscoveredAt.UTC(),
		Confidence:   c.Confidence,
		Payload:      c.RawData,
	}
}

// MergeRawData appends entry to existing. Existing entries are never
// modified or removed; an entry identical in source and payload to one already
// present is not stored twice.
func MergeRawData(existing []RawEntry, entry RawEntry) []RawEntry {
	merged := make([]RawEntry, len(existing), len(existing)+1)
	copy(merged, existing)

	for _, e := range existing {
		if e.Source == entry.Source && bytes.Equal(compact(e.Payload), compact(entry.Payload)) {
			return merged
		}
	}
	return append(merged, entry)
}

// PriorityFor maps a confidence in [0,1] linearly onto the 1..10 review priority.
func PriorityFor(confidence float64) int {
	p := int(math.Round(confidence * 10))
	return max(1, min(10, p))
}

func compact(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
