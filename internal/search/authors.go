// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// authorPatterns are tried in order; the first that matches wins.
var authorPatterns = []*regexp.Regexp{
	// "by X, Y and Z", "Authors: X, Y", "written by X".
	regexp.MustCompile(`(?i)(?:by|authors?|written by)[:\s]+([^,.]+(?:,\s*[^,.]+)*)`),
	// A short line directly above a line naming an institution.
	regexp.MustCompile(`(?i)(?:^|\n)([^\n]{10,50})\n.*?(?:university|institute|college|lab)`),
}

var (
	authorSeparator = regexp.MustCompile(`,\s*|\s+and\s+`)
	markupHint      = regexp.MustCompile(`(?i)<(?:html|body|p|div|br|span|a|li|ul|h[1-6]|table|article|section)\b`)
)

// minAuthorLen drops fragments such as initials or stray words.
const minAuthorLen = 3

// ExtractAuthors guesses author names from a free-text blob such as a web
// page's content. It is a heuristic: it returns an empty slice when no
// pattern matches and may return false positives when one does.
func ExtractAuthors(content string) []string {
	text := plainText(content)
	for _, re := range authorPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		authors := []string{}
		for _, part := range authorSeparator.Split(m[1], -1) {
			name := strings.TrimSpace(part)
			if utf8.RuneCountInString(name) >= minAuthorLen {
				authors = append(authors, name)
			}
		}
		return authors
	}
	return []string{}
}

// plainText reduces HTML to its text, keeping a line break after each block
// element so line-oriented patterns still apply. Plain text is returned
// unchanged.
func plainText(content string) string {
	if !markupHint.MatchString(content) {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer").AppendHtml("\n")
	return doc.Text()
}
