package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/kashif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "kashif.db"))
	require.NoError(t, err, "opening index")
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seedDocuments(t *testing.T, idx *Index) {
	t.Helper()
	docs := []core.Document{
		{LogicalID: "1", GroupTag: "الكافي", Body: "قال رسول الله العلم نور", QualityTag: "صحيح"},
		{LogicalID: "2", GroupTag: "الكافي", Body: "طلب العلم فريضة على كل مسلم"},
		{LogicalID: "3", GroupTag: "التهذيب", Body: "الصلاة عمود الدين"},
		{LogicalID: "1", GroupTag: "الكافي", Body: "وبالعلم يعرف الحق والعلم نور"},
	}
	require.NoError(t, idx.InsertBatch(context.Background(), docs), "seeding documents")
}

func TestMatchQuery(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)

	hits, err := idx.MatchQuery(context.Background(), `"العلم" OR "والعلم"`)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	ids := map[string]int{}
	for _, h := range hits {
		assert.NotZero(t, h.RowRef, "row reference for hit %+v", h)
		ids[h.LogicalID]++
	}
	assert.Equal(t, map[string]int{"1": 2, "2": 1}, ids)
}

func TestMatchQueryNoRows(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)

	hits, err := idx.MatchQuery(context.Background(), `"غير_موجود"`)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMatchQueryMalformedExpression(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)

	_, err := idx.MatchQuery(context.Background(), `"unterminated`)
	assert.ErrorIs(t, err, core.ErrIndexQuery)
}

func TestGet(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)
	ctx := context.Background()

	doc, err := idx.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "قال رسول الله العلم نور", doc.Body, "first stored row wins")
	assert.Equal(t, "الكافي", doc.GroupTag)
	assert.Equal(t, "صحيح", doc.QualityTag)

	doc, err = idx.Get(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, doc.QualityTag)

	_, err = idx.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCounts(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	seedDocuments(t, idx)
	require.NoError(t, idx.Insert(ctx, core.Document{LogicalID: "4", GroupTag: "الكافي", Body: "نص"}))

	n, err = idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = idx.CountDistinct(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestOptimizeAndCheckpoint(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)
	ctx := context.Background()

	assert.NoError(t, idx.Optimize(ctx))
	assert.NoError(t, idx.WALCheckpoint(ctx))
}

func TestMaintenance(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)
	ctx := context.Background()

	assert.NoError(t, idx.IntegrityCheck(ctx))
	assert.NoError(t, idx.FTSIntegrityCheck(ctx))
	assert.NoError(t, idx.FTSRebuild(ctx))
	assert.NoError(t, idx.Analyze(ctx))
	assert.NoError(t, idx.Vacuum(ctx))

	hits, err := idx.MatchQuery(ctx, `"الصلاة"`)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	// Row ids survive rebuild and vacuum, so id lookups still resolve.
	doc, err := idx.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "الصلاة عمود الدين", doc.Body)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kashif.db")
	idx, err := Open(path)
	require.NoError(t, err)
	seedDocuments(t, idx)
	idx.Close()

	idx, err = Open(path)
	require.NoError(t, err, "reopening")
	defer idx.Close()

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestReplaceBatch(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)
	ctx := context.Background()

	require.NoError(t, idx.Insert(ctx, core.Document{LogicalID: "approved-1", GroupTag: "مضاف", Body: "نص مضاف"}))

	err := idx.ReplaceBatch(ctx, []core.Document{
		{LogicalID: "1", GroupTag: "الكافي", Body: "نص جديد"},
		{LogicalID: "4", GroupTag: "التهذيب", Body: "الصبر مفتاح الفرج"},
	})
	require.NoError(t, err)

	// Both stored rows for "1" are replaced by a single one.
	total, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	doc, err := idx.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "نص جديد", doc.Body)

	_, err = idx.Get(ctx, "approved-1")
	assert.NoError(t, err, "unrelated document survives")
}

func TestGetUsesIDLookup(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)

	rows, err := idx.db.Query("EXPLAIN QUERY PLAN "+getDocumentSQL, "1")
	require.NoError(t, err)
	defer rows.Close()

	var plan []string
	for rows.Next() {
		var id, parent, notused int
		var detail string
		require.NoError(t, rows.Scan(&id, &parent, &notused, &detail))
		plan = append(plan, detail)
	}
	require.NoError(t, rows.Err())

	found := false
	for _, step := range plan {
		if strings.HasPrefix(step, "SEARCH d ") {
			found = true
		}
	}
	assert.True(t, found, "expected an indexed search on document_ids, got plan %q", plan)
}

func TestIDLookupFollowsWrites(t *testing.T) {
	idx := openTestIndex(t)
	seedDocuments(t, idx)
	ctx := context.Background()

	require.NoError(t, idx.ReplaceBatch(ctx, []core.Document{{LogicalID: "3", GroupTag: "التهذيب", Body: "نص بديل"}}))

	var mapped int
	require.NoError(t, idx.db.QueryRow("SELECT COUNT(*) FROM document_ids").Scan(&mapped))
	assert.Equal(t, 3, mapped)

	var dangling int
	err := idx.db.QueryRow(`
		SELECT COUNT(*) FROM document_ids d
		WHERE NOT EXISTS (SELECT 1 FROM documents_fts f WHERE f.rowid = d.fts_rowid)`).Scan(&dangling)
	require.NoError(t, err)
	assert.Zero(t, dangling)

	doc, err := idx.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "نص بديل", doc.Body)
}
