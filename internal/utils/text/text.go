// Package text provides helpers for turning HTML fragments into plain text.
// It is shared by the e-mail dispatcher (text/plain alternative part) and
// the feed importer (article subtitles).
package text

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
func CountRunes(s string) int {
	return len([]rune(s))
}

// Truncate shortens s to at most max runes, appending "…" when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// blockTags end a line when converting HTML to text.
var blockTags = "p, div, br, li, h1, h2, h3, h4, h5, h6, tr, hr"

// HTMLToText extracts readable text from an HTML fragment or document.
// Block elements become line breaks, runs of blank lines are collapsed and
// <script>/<style> content is dropped. Input that fails to parse is returned trimmed.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style, head").Remove()
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		label := strings.TrimSpace(s.Text())
		if href != "" && label != "" && label != href && !strings.HasPrefix(href, "#") {
			s.SetText(label + " (" + href + ")")
		}
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Snippet returns the first max runes of the text content of an HTML fragment on one line.
func Snippet(html string, max int) string {
	return Truncate(strings.Join(strings.Fields(HTMLToText(html)), " "), max)
}

// LimitWords keeps at most max whitespace-separated words of s and reports
// whether anything was cut.
func LimitWords(s string, max int) (string, bool) {
	words := strings.Fields(s)
	if max <= 0 || len(words) <= max {
		return strings.Join(words, " "), false
	}
	return strings.Join(words[:max], " ") + "…", true
}
