package paginate

import (
	"fmt"
	"html"
	"strings"

	"github.com/rubiojr/kashif/pkg/core"
)

const (
	// PlaceholderTitle reserves room for the first page's title before the
	// page count is known. It is at least as long as any real first-page
	// title for up to 99 pages.
	PlaceholderTitle = "<b>الجزء الأول من 99</b>\n\n"
	// SafetyMargin is subtracted from the first page's budget on top of the
	// placeholder. Tunable; lowering it risks first pages over the limit.
	SafetyMargin = 20

	missingGroup   = "غير متوفر"
	missingBody    = "النص غير متوفر"
	missingQuality = "الصحة غير متوفرة"
)

// Layout formats documents into pages for the detail view.
type Layout struct {
	// MaxLen is the chunk budget.
	MaxLen int
}

// Header is the document heading shown at the top of the first page.
func Header(doc core.Document) string {
	return fmt.Sprintf("📖 <b>الكتاب:</b> %s\n\n📜 <b>الحديث:</b>\n", html.EscapeString(orDefault(doc.GroupTag, missingGroup)))
}

// Footer is the grading line closing the last page.
func Footer(doc core.Document) string {
	return fmt.Sprintf("\n\n\n⚖️ <b>الصحة:</b> %s", html.EscapeString(orDefault(doc.QualityTag, missingQuality)))
}

// Pages lays out doc in two passes. The first pass splits header, body and
// footer against a budget that reserves PlaceholderTitle and SafetyMargin on
// the first page, which fixes the page count. The second pass puts the real
// titles in front of the already computed chunks.
func (l Layout) Pages(doc core.Document) []string {
	return Titled(l.chunks(doc))
}

func (l Layout) chunks(doc core.Document) []string {
	header := Header(doc)
	footer := Footer(doc)
	body := html.EscapeString(orDefault(doc.Body, missingBody))

	space := l.MaxLen - runeLen(header) - runeLen(PlaceholderTitle) - SafetyMargin
	if space < 1 {
		space = 1
	}

	bodyLen := runeLen(body)
	switch {
	case bodyLen+runeLen(footer) <= space:
		return []string{header + body + footer}
	case bodyLen <= space:
		return append([]string{header + body}, Split(strings.TrimSpace(footer), l.MaxLen)...)
	default:
		r := []rune(body)
		pos := breakPoint(r, space)
		first := header + string(r[:pos])
		rest := string(trimLeftSpace(r[pos:])) + footer
		return append([]string{first}, Split(rest, l.MaxLen)...)
	}
}

// Titled prefixes every chunk with its "part i of n" title. A single chunk
// is returned untouched.
func Titled(chunks []string) []string {
	if len(chunks) <= 1 {
		return chunks
	}
	pages := make([]string, len(chunks))
	for i, c := range chunks {
		pages[i] = Title(i+1, len(chunks)) + c
	}
	return pages
}

// Title renders the heading of page pos (1-based) out of total.
func Title(pos, total int) string {
	return fmt.Sprintf("<b>الجزء %s من %d</b>\n\n", Ordinal(pos), total)
}

// MaxTitleLen is the longest title Titled can put in front of a page of a
// document with at most 99 pages. Continuation pages are split at MaxLen, so
// the transport limit has to leave this much room above it.
func MaxTitleLen() int {
	longest := 0
	for pos := 1; pos <= 99; pos++ {
		if n := runeLen(Title(pos, 99)); n > longest {
			longest = n
		}
	}
	return longest
}

// CheckLength returns core.ErrCompositionOverflow when msg exceeds limit
// runes.
func CheckLength(msg string, limit int) error {
	if n := runeLen(msg); n > limit {
		return fmt.Errorf("%w: %d > %d", core.ErrCompositionOverflow, n, limit)
	}
	return nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
