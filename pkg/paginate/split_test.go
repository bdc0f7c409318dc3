package paginate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEmpty(t *testing.T) {
	assert.Equal(t, []string{}, Split("", 10))
}

func TestSplitShort(t *testing.T) {
	assert.Equal(t, []string{"hello"}, Split("hello", 10))
	assert.Equal(t, []string{"0123456789"}, Split("0123456789", 10))
}

func TestSplitPrefersNewline(t *testing.T) {
	text := "aaa bbb\nccc ddd eee"
	chunks := Split(text, 12)
	assert.Equal(t, []string{"aaa bbb", "ccc ddd eee"}, chunks)
}

func TestSplitFallsBackToSpace(t *testing.T) {
	chunks := Split("aaaa bbbb cccc", 10)
	assert.Equal(t, []string{"aaaa bbbb", "cccc"}, chunks)
}

func TestSplitHardCut(t *testing.T) {
	chunks := Split(strings.Repeat("x", 25), 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, chunks)
}

func TestSplitBreakAtOffsetZeroIsHardCut(t *testing.T) {
	chunks := Split(" abcdefghijkl", 5)
	require.NotEmpty(t, chunks)
	assert.Equal(t, " abcd", chunks[0])
}

func TestSplitCountsRunes(t *testing.T) {
	// Ten Arabic letters take twenty bytes but only ten runes.
	word := "ابتثجحخدذر"
	chunks := Split(word+" "+word, 10)
	assert.Equal(t, []string{word, word}, chunks)
}

func TestSplitProperties(t *testing.T) {
	paragraph := strings.Repeat("قال رسول الله صلى الله عليه وآله العلم نور ", 40)
	texts := []string{
		paragraph,
		paragraph + "\n\n" + paragraph,
		strings.Repeat("كلمة", 500),
		strings.ReplaceAll(paragraph, " ", "\n"),
	}

	for _, text := range texts {
		for _, maxLen := range []int{7, 50, 333, 4000} {
			chunks := Split(text, maxLen)
			require.NotEmpty(t, chunks)

			for i, c := range chunks {
				assert.LessOrEqual(t, runeLen(c), maxLen, "chunk %d too long", i)
			}

			// Rebuilding ignoring whitespace gives back the input.
			assert.Equal(t, squash(text), squash(strings.Join(chunks, "")))
		}
	}
}

func TestSplitNoWhitespaceOnlyTail(t *testing.T) {
	chunks := Split("aaaa\n      ", 5)
	assert.Equal(t, []string{"aaaa"}, chunks)
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestSplitHardCutKeepsEntities(t *testing.T) {
	text := strings.Repeat("&amp;", 20)
	for _, maxLen := range []int{7, 12, 13, 33} {
		chunks := Split(text, maxLen)
		for i, c := range chunks {
			assert.LessOrEqual(t, runeLen(c), maxLen, "chunk %d too long", i)
			assert.Equal(t, strings.Count(c, "&"), strings.Count(c, "&amp;"), "chunk %d splits an entity: %q", i, c)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	}
}
