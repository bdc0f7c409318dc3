package search

import (
	"fmt"
	"strings"

	"github.com/rubiojr/kashif/pkg/core"
)

// Forms returns the literal query followed by each clitic-prefixed form, in
// the fixed clitic order.
func Forms(query string) []string {
	forms := make([]string, 0, len(core.Clitics)+1)
	forms = append(forms, query)
	for _, c := range core.Clitics {
		forms = append(forms, c+query)
	}
	return forms
}

// Expand builds an FTS5 expression matching the literal query or any of its
// prefixed forms, e.g. "علم" OR "وعلم" OR "فعلم" ... Each form is a quoted
// phrase, so operators typed by the user are matched literally.
func Expand(query string) (string, error) {
	query = core.NormalizeQuery(query)
	if query == "" {
		return "", core.ErrEmptyQuery
	}

	forms := Forms(query)
	parts := make([]string, len(forms))
	for i, f := range forms {
		parts[i] = quote(f)
	}
	return strings.Join(parts, " OR "), nil
}

func quote(term string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(term, `"`, `""`))
}
