// Package normalize cleans raw report text lines and splits them into tokens.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	reCRLF      = regexp.MustCompile(`\r\n?`)
	reFormFeeds = regexp.MustCompile(`\n?\f\n?`)
)

// foldDash maps every dash punctuation rune and the minus sign onto '-'.
func foldDash(r rune) rune {
	if r == '−' || unicode.Is(unicode.Pd, r) {
		return '-'
	}
	return r
}

var dashFolder = runes.Map(foldDash)

// Line folds dash variants to '-', collapses Unicode whitespace runs to one
// space and trims. Every other rune is kept as printed. Whitespace-only
// input yields "".
func Line(s string) string {
	if s == "" {
		return s
	}
	out, _, err := transform.String(dashFolder, s)
	if err != nil {
		// transform only fails on invalid state; fall back to the raw line
		out = strings.Map(foldDash, s)
	}
	return strings.Join(strings.Fields(out), " ")
}

// Tokens splits a line on runs of whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// Pages splits an extracted text blob into pages (form feed separated) of
// raw lines. A trailing empty page left by a final form feed is dropped.
func Pages(text string) [][]string {
	if text == "" {
		return nil
	}
	text = reCRLF.ReplaceAllString(text, "\n")
	raw := reFormFeeds.Split(text, -1)
	if n := len(raw); n > 1 && strings.TrimSpace(raw[n-1]) == "" {
		raw = raw[:n-1]
	}
	pages := make([][]string, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, strings.Split(strings.TrimSuffix(p, "\n"), "\n"))
	}
	return pages
}
