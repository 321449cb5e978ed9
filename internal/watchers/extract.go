package watchers

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxFallbackNameRunes = 50

// DefaultKeywords is the keyword set applied by feed watchers when none is configured.
var DefaultKeywords = []string{
	"tool",
	"software",
	"platform",
	"repository",
	"database",
	"framework",
	"library",
	"package",
	"pipeline",
	"workflow",
	"infrastructure",
	"open source",
	"open-source",
}

// Quotes must open at a word boundary so apostrophes inside words are not taken as delimiters.
var quotedPattern = regexp.MustCompile(`(?:^|[\s(\[:])["“'‘]([^"”'’]+?)["”'’](?:$|[\s).,:;!?\]])`)

// ExtractToolName guesses a tool name from a headline: a quoted substring
// first, then the first title-cased word longer than three letters, then the
// truncated headline itself.
func ExtractToolName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}

	if m := quotedPattern.FindStringSubmatch(title); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}

	for _, field := range strings.Fields(title) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		first, _ := utf8.DecodeRuneInString(word)
		if unicode.IsUpper(first) && utf8.RuneCountInString(word) > 3 {
			return word
		}
	}

	return truncateRunes(title, maxFallbackNameRunes)
}

// MatchesKeywords reports whether text contains any keyword, case-insensitively.
func MatchesKeywords(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// PlainText strips markup from an HTML fragment and collapses whitespace.
// Input that fails to parse is returned with whitespace collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
