// Package search turns a user query into an ordered list of logical document
// ids and builds the context snippets shown for each hit.
//
// # Overview
//
// Corpus text stores surface word forms verbatim, so a bare query misses
// every occurrence where the word carries an attached clitic (و ف ب ل ك).
// The package recovers those hits without morphological analysis by
// expanding the query into a boolean OR over the literal form and each
// prefixed form, then collapsing the index rows back to one entry per
// logical document.
//
// # Pipeline
//
//   - Expand: builds the FTS5 match expression from a trimmed query
//   - Service.Search: consults the result cache, runs the expression on a
//     miss, deduplicates and stores the ordered ids
//   - Deduplicate: keeps the first occurrence of each logical id in rank
//     order
//   - Extract: locates the query (or a prefixed form) in a body and keeps a
//     bounded window of whole words around it
//
// # Usage
//
//	svc := search.NewService(index, resultCache)
//	ids, err := svc.Search(ctx, "الحكمة")
//	if errors.Is(err, core.ErrIndexQuery) {
//		// treated as zero results
//	}
//
//	snippet := search.Extract(doc.Body, "الحكمة", 5)
//	fmt.Println(snippet.HTML())
//
// # Error Handling
//
// Cache failures never surface: the cache reports them as misses. Index
// failures, including malformed expressions, are returned wrapped in
// core.ErrIndexQuery and are never cached.
package search
