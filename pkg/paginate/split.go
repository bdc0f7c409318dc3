// Package paginate cuts long formatted documents into transport-sized
// chunks and keeps the remaining chunks of each delivered document until the
// reader asks for them.
//
// Lengths are counted in runes, which is how the transport counts message
// characters for the scripts in the corpus.
package paginate

import (
	"unicode"
)

// Split cuts text into chunks of at most maxLen runes. Each cut happens at
// the last newline within the window, else the last space, else at maxLen.
// A cut at maxLen never splits an HTML entity such as &amp;. Whitespace at the start of the following chunk is dropped. Empty
// input yields no chunks.
func Split(text string, maxLen int) []string {
	chunks := []string{}
	if text == "" {
		return chunks
	}
	if maxLen <= 0 {
		return append(chunks, text)
	}

	r := []rune(text)
	for len(r) > maxLen {
		pos := breakPoint(r, maxLen)
		chunks = append(chunks, string(r[:pos]))
		r = trimLeftSpace(r[pos:])
	}
	// Only whitespace can be left over after a cut; never emit it on its own.
	if len(r) > 0 || len(chunks) == 0 {
		chunks = append(chunks, string(r))
	}
	return chunks
}

// breakPoint returns where to cut r so the head fits in limit runes.
func breakPoint(r []rune, limit int) int {
	if limit >= len(r) {
		return len(r)
	}
	window := r[:limit]
	pos := lastIndex(window, '\n')
	if pos == -1 {
		pos = lastIndex(window, ' ')
	}
	if pos <= 0 {
		pos = entityBoundary(window)
	}
	return pos
}

// entityBoundary moves a hard cut at the end of window back to the start of
// an HTML entity the cut would otherwise split.
func entityBoundary(window []rune) int {
	amp := lastIndex(window, '&')
	if amp <= 0 || lastIndex(window[amp:], ';') != -1 {
		return len(window)
	}
	return amp
}

func lastIndex(r []rune, c rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == c {
			return i
		}
	}
	return -1
}

func trimLeftSpace(r []rune) []rune {
	i := 0
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return r[i:]
}

func runeLen(s string) int {
	return len([]rune(s))
}
