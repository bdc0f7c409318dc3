package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rubiojr/kashif/pkg/core"
)

const (
	insertDocumentSQL = `
	INSERT INTO documents_fts (logical_id, group_tag, body, quality_tag)
	VALUES (?, ?, ?, ?)`
	// The first row stored for a logical id is the one lookups return.
	mapDocumentSQL = `
	INSERT OR IGNORE INTO document_ids (logical_id, fts_rowid)
	VALUES (?, ?)`
	getDocumentSQL = `
	SELECT f.logical_id, f.group_tag, f.body, f.quality_tag
	FROM document_ids d
	JOIN documents_fts f ON f.rowid = d.fts_rowid
	WHERE d.logical_id = ?`
)

// documentWriter inserts documents into the FTS table and keeps the
// logical id lookup table in step.
type documentWriter struct {
	insert *sql.Stmt
	mapID  *sql.Stmt
}

func newDocumentWriter(ctx context.Context, tx *sql.Tx) (*documentWriter, error) {
	insert, err := tx.PrepareContext(ctx, insertDocumentSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	mapID, err := tx.PrepareContext(ctx, mapDocumentSQL)
	if err != nil {
		closeStmt(insert)
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	return &documentWriter{insert: insert, mapID: mapID}, nil
}

func (w *documentWriter) write(ctx context.Context, doc core.Document) error {
	res, err := w.insert.ExecContext(ctx, doc.LogicalID, doc.GroupTag, doc.Body, nullable(doc.QualityTag))
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.LogicalID, err)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading rowid of %s: %w", doc.LogicalID, err)
	}
	if _, err := w.mapID.ExecContext(ctx, doc.LogicalID, rowid); err != nil {
		return fmt.Errorf("mapping document %s: %w", doc.LogicalID, err)
	}
	return nil
}

func (w *documentWriter) close() {
	closeStmt(w.insert)
	closeStmt(w.mapID)
}

func closeStmt(stmt *sql.Stmt) {
	if err := stmt.Close(); err != nil {
		logger.Warnf("failed to close statement: %v", err)
	}
}

// Insert adds one document to the index.
func (i *Index) Insert(ctx context.Context, doc core.Document) error {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	return i.InsertBatch(ctx, []core.Document{doc})
}

// InsertBatch adds documents in a single transaction. Bulk imports are not
// bounded by the per-query timeout.
func (i *Index) InsertBatch(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	w, err := newDocumentWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.close()

	for _, doc := range docs {
		if err := w.write(ctx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	committed = true
	return nil
}

// ReplaceBatch inserts docs, first removing any stored rows that share a
// logical id with one of them. Rows with other ids, such as approved
// submissions, are kept.
func (i *Index) ReplaceBatch(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warnf("failed to rollback transaction: %v", err)
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS replaced_ids (id TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("creating id table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM replaced_ids`); err != nil {
		return fmt.Errorf("clearing id table: %w", err)
	}
	for _, doc := range docs {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO replaced_ids (id) VALUES (?)`, doc.LogicalID); err != nil {
			return fmt.Errorf("staging id %s: %w", doc.LogicalID, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE logical_id IN (SELECT id FROM replaced_ids)`)
	if err != nil {
		return fmt.Errorf("removing replaced documents: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		logger.Debugf("replacing %d stored rows", n)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_ids WHERE logical_id IN (SELECT id FROM replaced_ids)`); err != nil {
		return fmt.Errorf("unmapping replaced documents: %w", err)
	}

	w, err := newDocumentWriter(ctx, tx)
	if err != nil {
		return err
	}
	defer w.close()

	for _, doc := range docs {
		if err := w.write(ctx, doc); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	committed = true
	return nil
}

// MatchQuery runs an FTS5 match expression and returns hits in rank order.
// Any failure, including a malformed expression, is reported as
// core.ErrIndexQuery.
func (i *Index) MatchQuery(ctx context.Context, expression string) ([]core.SearchHit, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, `
		SELECT rowid, logical_id
		FROM documents_fts
		WHERE documents_fts MATCH ?
		ORDER BY rank`, expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexQuery, err)
	}
	defer closeRows(rows)

	var hits []core.SearchHit
	for rows.Next() {
		var hit core.SearchHit
		var logicalID sql.NullString
		if err := rows.Scan(&hit.RowRef, &logicalID); err != nil {
			return nil, fmt.Errorf("%w: scanning hit: %v", core.ErrIndexQuery, err)
		}
		if !logicalID.Valid || logicalID.String == "" {
			logger.Warnf("skipping row %d without logical id", hit.RowRef)
			continue
		}
		hit.LogicalID = logicalID.String
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexQuery, err)
	}

	return hits, nil
}

// Get returns the first stored row for logicalID.
func (i *Index) Get(ctx context.Context, logicalID string) (core.Document, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var doc core.Document
	var groupTag, body, qualityTag sql.NullString
	err := i.db.QueryRowContext(ctx, getDocumentSQL, logicalID).Scan(&doc.LogicalID, &groupTag, &body, &qualityTag)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("document %s: %w", logicalID, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("fetching document %s: %w", logicalID, err)
	}

	doc.GroupTag = groupTag.String
	doc.Body = body.String
	doc.QualityTag = qualityTag.String
	return doc, nil
}

// Count returns the number of indexed rows.
func (i *Index) Count(ctx context.Context) (int, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var n int
	if err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents_fts").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// CountDistinct returns the number of distinct logical documents.
func (i *Index) CountDistinct(ctx context.Context) (int, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var n int
	if err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM document_ids").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting distinct documents: %w", err)
	}
	return n, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
