package importer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rubiojr/kashif/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = `[
	{"id": 12, "book": "الكافي", "arabicText": "1 - طلب العلم فريضة", "majlisiGrading": "صحيح"},
	{"id": "b-7", "book": "التهذيب", "arabicText": "  ٢ الصبر مفتاح الفرج  "},
	{"book": "الكافي", "arabicText": "15ـ العلم نور"},
	{"id": 99, "book": "الكافي", "arabicText": "42 . "},
	{"book": "الكافي", "arabicText": "الحياء من الإيمان"}
]`

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1 - طلب العلم", "طلب العلم"},
		{"  15ـ العلم نور", "العلم نور"},
		{"3.الصلاة", "الصلاة"},
		{"٢٣ - الصبر", "الصبر"},
		{"بلا رقم", "بلا رقم"},
		{"42 . ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), "CleanText(%q)", tt.in)
	}
}

func TestParse(t *testing.T) {
	docs, res, err := Parse(strings.NewReader(corpus))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Read)
	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, docs, 4)

	assert.Equal(t, "12", docs[0].LogicalID)
	assert.Equal(t, "طلب العلم فريضة", docs[0].Body)
	assert.Equal(t, "صحيح", docs[0].QualityTag)

	assert.Equal(t, "b-7", docs[1].LogicalID)
	assert.Equal(t, "الصبر مفتاح الفرج", docs[1].Body)
	assert.Empty(t, docs[1].QualityTag)

	assert.Equal(t, "gen_2", docs[2].LogicalID)
	assert.Equal(t, "العلم نور", docs[2].Body)

	// The skipped entry does not consume a generated number.
	assert.Equal(t, "gen_3", docs[3].LogicalID)
}

func TestParseInvalidJSON(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func openIndex(t *testing.T) *storage.Index {
	t.Helper()
	idx, err := storage.Open(filepath.Join(t.TempDir(), "kashif.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func writeCorpus(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func TestImportFileFormats(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"corpus.json", func(t *testing.T) []byte { return []byte(corpus) }},
		{"corpus.json.gz", func(t *testing.T) []byte { return gzipped(t, []byte(corpus)) }},
		{"corpus.json.zst", func(t *testing.T) []byte { return zstded(t, []byte(corpus)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := openIndex(t)
			path := writeCorpus(t, tt.name, tt.data(t))

			res, err := New(idx).ImportFile(context.Background(), path, false)
			require.NoError(t, err)
			assert.Equal(t, 4, res.Imported)

			n, err := idx.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 4, n)

			doc, err := idx.Get(context.Background(), "12")
			require.NoError(t, err)
			assert.Equal(t, "الكافي", doc.GroupTag)
		})
	}
}

func TestImportSkipsPopulatedIndex(t *testing.T) {
	idx := openIndex(t)
	path := writeCorpus(t, "corpus.json", []byte(corpus))
	im := New(idx)
	ctx := context.Background()

	_, err := im.ImportFile(ctx, path, false)
	require.NoError(t, err)

	res, err := im.ImportFile(ctx, path, false)
	require.NoError(t, err)
	assert.True(t, res.AlreadyPopulated)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestForcedImportReplaces(t *testing.T) {
	idx := openIndex(t)
	path := writeCorpus(t, "corpus.json", []byte(corpus))
	im := New(idx)
	ctx := context.Background()

	_, err := im.ImportFile(ctx, path, false)
	require.NoError(t, err)

	res, err := im.ImportFile(ctx, path, true)
	require.NoError(t, err)
	assert.False(t, res.AlreadyPopulated)
	assert.Equal(t, 4, res.Imported)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n, "forced import must not duplicate rows")
}

func TestImportMissingFile(t *testing.T) {
	idx := openIndex(t)
	_, err := New(idx).ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"), false)
	assert.Error(t, err)
}

func TestWatchReimportsOnWrite(t *testing.T) {
	idx := openIndex(t)
	path := writeCorpus(t, "corpus.json", []byte(`[{"id": 1, "book": "الكافي", "arabicText": "العلم نور"}]`))
	im := New(idx)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan Result, 4)
	done := make(chan error, 1)
	go func() {
		done <- im.Watch(ctx, path, func(res Result, err error) {
			if err == nil {
				results <- res
			}
		})
	}()

	// Give the watcher time to register before touching the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0644))

	select {
	case res := <-results:
		assert.Equal(t, 4, res.Imported)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for re-import")
	}

	cancel()
	require.NoError(t, <-done)

	n, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
