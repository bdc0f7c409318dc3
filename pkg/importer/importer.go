// Package importer loads the JSON corpus into the full-text index.
//
// The corpus is a JSON array of objects with the fields id, book,
// arabicText and majlisiGrading. Files ending in .gz or .zst are
// decompressed on the fly.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/log"
)

var logger = log.ForService("importer")

// numbering matches the running number some sources prefix to the text,
// in Western or Arabic-Indic digits.
var numbering = regexp.MustCompile(`^[\s\p{Z}]*\p{Nd}+[\s\p{Z}ـ.-]*`)

// Index is where imported documents go.
type Index interface {
	Count(ctx context.Context) (int, error)
	InsertBatch(ctx context.Context, docs []core.Document) error
	ReplaceBatch(ctx context.Context, docs []core.Document) error
}

type record struct {
	ID      json.RawMessage `json:"id"`
	Book    string          `json:"book"`
	Text    string          `json:"arabicText"`
	Grading string          `json:"majlisiGrading"`
}

// Result summarizes an import run.
type Result struct {
	Read     int
	Imported int
	Skipped  int
	// AlreadyPopulated is set when nothing was done because the index
	// already held documents.
	AlreadyPopulated bool
}

// Importer loads corpus files into an Index.
type Importer struct {
	index Index
}

func New(index Index) *Importer {
	return &Importer{index: index}
}

// ImportFile loads path. Unless force is set an index that already holds
// documents is left untouched. A forced import replaces documents sharing
// an id with the corpus and leaves the rest alone.
func (im *Importer) ImportFile(ctx context.Context, path string, force bool) (Result, error) {
	if !force {
		n, err := im.index.Count(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("checking index: %w", err)
		}
		if n > 0 {
			logger.Infof("index already holds %d documents, skipping import", n)
			return Result{AlreadyPopulated: true}, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	r, err := decompress(f, path)
	if err != nil {
		return Result{}, err
	}
	defer r.Close()

	docs, res, err := Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	if force {
		err = im.index.ReplaceBatch(ctx, docs)
	} else {
		err = im.index.InsertBatch(ctx, docs)
	}
	if err != nil {
		return Result{}, fmt.Errorf("storing documents: %w", err)
	}

	logger.Infof("imported %d documents from %s (%d skipped)", res.Imported, path, res.Skipped)
	return res, nil
}

// Parse decodes a corpus and cleans every entry. Entries whose text is
// empty after cleaning are skipped; entries without an id get gen_<n>,
// where n is the number of documents accepted so far.
func Parse(r io.Reader) ([]core.Document, Result, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, Result{}, err
	}

	res := Result{Read: len(records)}
	docs := make([]core.Document, 0, len(records))
	for _, rec := range records {
		body := CleanText(rec.Text)
		if body == "" {
			res.Skipped++
			continue
		}
		id := logicalID(rec.ID)
		if id == "" {
			id = fmt.Sprintf("gen_%d", len(docs))
		}
		docs = append(docs, core.Document{
			LogicalID:  id,
			GroupTag:   strings.TrimSpace(rec.Book),
			Body:       body,
			QualityTag: strings.TrimSpace(rec.Grading),
		})
	}
	res.Imported = len(docs)
	return docs, res, nil
}

// CleanText strips leading numbering and surrounding whitespace.
func CleanText(text string) string {
	return strings.TrimSpace(numbering.ReplaceAllString(text, ""))
}

// logicalID renders a JSON id, string or number, as text.
func logicalID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}

func decompress(f io.Reader, path string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream: %w", err)
		}
		return zr, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(f), nil
	}
}
