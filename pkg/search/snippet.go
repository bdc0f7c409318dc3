package search

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis marks text omitted from either side of a snippet.
const Ellipsis = "..."

// Snippet is a bounded window of a document body around the first match.
type Snippet struct {
	// Found is false when no form of the query occurs in the body; the
	// snippet then holds the leading words of the body in Before.
	Found bool
	// Before and After are the whole context words around the match.
	Before []string
	After  []string
	// Prefix and Suffix are the rest of the word the match sits in, when the
	// match does not start or end on a word boundary.
	Prefix string
	Match  string
	Suffix string
	// LeadingEllipsis and TrailingEllipsis report omitted text.
	LeadingEllipsis  bool
	TrailingEllipsis bool
}

// Extract finds the first case-insensitive occurrence of query in body,
// retrying with each clitic-prefixed form, and keeps up to n whole words on
// each side. Without a match the leading 2n words are kept.
func Extract(body, query string, n int) Snippet {
	if n < 0 {
		n = 0
	}

	start, end := -1, -1
	for _, form := range Forms(query) {
		if form == "" {
			continue
		}
		if start, end = indexFold(body, form); start >= 0 {
			break
		}
	}

	if start < 0 {
		words := strings.Fields(body)
		limit := min(2*n, len(words))
		return Snippet{
			Before:           words[:limit],
			TrailingEllipsis: len(words) > limit,
		}
	}

	before, after := body[:start], body[end:]
	prefix := trailingWord(before)
	suffix := leadingWord(after)
	before = before[:len(before)-len(prefix)]
	after = after[len(suffix):]

	wordsBefore := strings.Fields(before)
	wordsAfter := strings.Fields(after)

	s := Snippet{
		Found:  true,
		Prefix: prefix,
		Match:  body[start:end],
		Suffix: suffix,
	}
	if len(wordsBefore) > n {
		s.LeadingEllipsis = true
		wordsBefore = wordsBefore[len(wordsBefore)-n:]
	}
	if len(wordsAfter) > n {
		s.TrailingEllipsis = true
		wordsAfter = wordsAfter[:n]
	}
	s.Before = wordsBefore
	s.After = wordsAfter
	return s
}

// Render joins the snippet, passing text through escape and the matched span
// through emphasize.
func (s Snippet) Render(escape, emphasize func(string) string) string {
	var parts []string
	if s.LeadingEllipsis {
		parts = append(parts, Ellipsis)
	}
	for _, w := range s.Before {
		parts = append(parts, escape(w))
	}
	if s.Found {
		parts = append(parts, escape(s.Prefix)+emphasize(escape(s.Match))+escape(s.Suffix))
		for _, w := range s.After {
			parts = append(parts, escape(w))
		}
	}
	if s.TrailingEllipsis {
		parts = append(parts, Ellipsis)
	}
	return strings.Join(parts, " ")
}

// HTML renders the snippet for the Telegram HTML parse mode.
func (s Snippet) HTML() string {
	return s.Render(html.EscapeString, func(m string) string {
		return "<b>" + m + "</b>"
	})
}

// Text renders the snippet with the match wrapped in emphasis markers.
func (s Snippet) Text(marker string) string {
	return s.Render(func(t string) string { return t }, func(m string) string {
		return marker + m + marker
	})
}

// indexFold returns the byte span of the first case-insensitive occurrence
// of substr in s, or -1, -1.
func indexFold(s, substr string) (int, int) {
	n := utf8.RuneCountInString(substr)
	if n == 0 {
		return -1, -1
	}
	for i := range s {
		j, count := i, 0
		for j < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[j:])
			j += size
			count++
		}
		if count < n {
			break
		}
		if strings.EqualFold(s[i:j], substr) {
			return i, j
		}
	}
	return -1, -1
}

func trailingWord(s string) string {
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[i+size:]
}

func leadingWord(s string) string {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s
	}
	return s[:i]
}
