package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContextWindow(t *testing.T) {
	body := "بسم الله والله قال الحكمة كذا وكذا في الدنيا"

	s := Extract(body, "الحكمة", 2)
	require.True(t, s.Found)
	assert.Equal(t, "والله قال", strings.Join(s.Before, " "))
	assert.Equal(t, "كذا وكذا", strings.Join(s.After, " "))
	assert.True(t, s.LeadingEllipsis)
	assert.True(t, s.TrailingEllipsis)

	assert.Equal(t, "... والله قال <b>الحكمة</b> كذا وكذا ...", s.HTML())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		query    string
		n        int
		expected string
	}{
		{
			name:     "no text omitted",
			body:     "قال الحكمة نور",
			query:    "الحكمة",
			n:        2,
			expected: "قال *الحكمة* نور",
		},
		{
			name:     "match at start",
			body:     "الحكمة ضالة المؤمن يأخذها حيث وجدها",
			query:    "الحكمة",
			n:        2,
			expected: "*الحكمة* ضالة المؤمن ...",
		},
		{
			name:     "match at end",
			body:     "من أراد الدنيا والآخرة فعليه بالعلم",
			query:    "بالعلم",
			n:        3,
			expected: "... الدنيا والآخرة فعليه *بالعلم*",
		},
		{
			name:     "prefixed form",
			body:     "قال الإمام وللعلم أهل",
			query:    "للعلم",
			n:        1,
			expected: "... الإمام و*للعلم* أهل",
		},
		{
			name:     "match glued to a clitic",
			body:     "هذا كلام فالصبر مفتاح الفرج",
			query:    "الصبر",
			n:        1,
			expected: "... كلام ف*الصبر* مفتاح ...",
		},
		{
			name:     "case insensitive",
			body:     "the Prophet said knowledge is light",
			query:    "prophet",
			n:        1,
			expected: "the *Prophet* said ...",
		},
		{
			name:     "match inside a longer word",
			body:     "first second thirdword fourth",
			query:    "ird",
			n:        1,
			expected: "... second th*ird*word fourth",
		},
		{
			name:     "fallback to leading words",
			body:     "one two three four five six seven",
			query:    "absent",
			n:        2,
			expected: "one two three four ...",
		},
		{
			name:     "fallback short body",
			body:     "one two",
			query:    "absent",
			n:        2,
			expected: "one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extract(tt.body, tt.query, tt.n).Text("*"))
		})
	}
}

func TestSnippetHTMLEscapes(t *testing.T) {
	s := Extract("a <script> b & c", "b", 1)
	assert.Equal(t, "... &lt;script&gt; <b>b</b> &amp; ...", s.HTML())
}

func TestIndexFold(t *testing.T) {
	start, end := indexFold("Hello World", "WORLD")
	assert.Equal(t, 6, start)
	assert.Equal(t, 11, end)

	start, _ = indexFold("abc", "abcd")
	assert.Equal(t, -1, start, "longer needle")

	start, end = indexFold("السلام عليكم", "عليكم")
	require.GreaterOrEqual(t, start, 0)
	assert.Equal(t, "عليكم", "السلام عليكم"[start:end])
}
