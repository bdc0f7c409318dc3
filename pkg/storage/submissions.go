package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/kashif/pkg/core"
)

// SaveSubmission queues a submission for moderation and returns its id.
func (i *Index) SaveSubmission(ctx context.Context, sub core.Submission) (int64, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	submittedAt := sub.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	res, err := i.db.ExecContext(ctx, `
		INSERT INTO pending_submissions (submitter_id, submitter_username, group_tag, body, quality_tag, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.SubmitterID, nullable(sub.SubmitterUsername), sub.GroupTag, sub.Body, nullable(sub.QualityTag),
		submittedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("saving submission: %w", err)
	}
	return res.LastInsertId()
}

// Submission loads a pending submission.
func (i *Index) Submission(ctx context.Context, id int64) (core.Submission, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var sub core.Submission
	var username, qualityTag, submittedAt sql.NullString
	var approvalID sql.NullInt64
	err := i.db.QueryRowContext(ctx, `
		SELECT submission_id, submitter_id, submitter_username, group_tag, body, quality_tag, submitted_at, approval_message_id
		FROM pending_submissions
		WHERE submission_id = ?`, id).Scan(
		&sub.ID, &sub.SubmitterID, &username, &sub.GroupTag, &sub.Body, &qualityTag, &submittedAt, &approvalID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Submission{}, fmt.Errorf("submission %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Submission{}, fmt.Errorf("loading submission %d: %w", id, err)
	}

	sub.SubmitterUsername = username.String
	sub.QualityTag = qualityTag.String
	sub.ApprovalMessageID = int(approvalID.Int64)
	if submittedAt.Valid {
		if t, err := time.Parse(time.RFC3339, submittedAt.String); err == nil {
			sub.SubmittedAt = t
		}
	}
	return sub, nil
}

// PendingSubmissions lists queued submissions, oldest first.
func (i *Index) PendingSubmissions(ctx context.Context) ([]core.Submission, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rows, err := i.db.QueryContext(ctx, "SELECT submission_id FROM pending_submissions ORDER BY submission_id")
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			closeRows(rows)
			return nil, err
		}
		ids = append(ids, id)
	}
	closeRows(rows)

	subs := make([]core.Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := i.Submission(ctx, id)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// SetApprovalMessage remembers the moderator message carrying the
// approve/reject buttons.
func (i *Index) SetApprovalMessage(ctx context.Context, id int64, messageID int) error {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	res, err := i.db.ExecContext(ctx,
		"UPDATE pending_submissions SET approval_message_id = ? WHERE submission_id = ?", messageID, id)
	if err != nil {
		return fmt.Errorf("updating submission %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// ApproveSubmission moves a submission into the index under a fresh logical
// id and removes it from the queue. It returns the approved submission and
// the stored document.
func (i *Index) ApproveSubmission(ctx context.Context, id int64) (core.Submission, core.Document, error) {
	sub, err := i.Submission(ctx, id)
	if err != nil {
		return core.Submission{}, core.Document{}, err
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Submission{}, core.Document{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	w, err := newDocumentWriter(ctx, tx)
	if err != nil {
		return core.Submission{}, core.Document{}, err
	}
	defer w.close()

	doc := sub.Document(uuid.NewString())
	if err := w.write(ctx, doc); err != nil {
		return core.Submission{}, core.Document{}, fmt.Errorf("approving submission %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM pending_submissions WHERE submission_id = ?", id)
	if err != nil {
		return core.Submission{}, core.Document{}, fmt.Errorf("removing submission %d: %w", id, err)
	}
	// A concurrent decision already took it.
	if err := requireAffected(res, id); err != nil {
		return core.Submission{}, core.Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return core.Submission{}, core.Document{}, fmt.Errorf("committing approval: %w", err)
	}

	logger.Infof("approved submission %d as %s", id, doc.LogicalID)
	return sub, doc, nil
}

// RejectSubmission drops a submission from the queue.
func (i *Index) RejectSubmission(ctx context.Context, id int64) (core.Submission, error) {
	sub, err := i.Submission(ctx, id)
	if err != nil {
		return core.Submission{}, err
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	res, err := i.db.ExecContext(ctx, "DELETE FROM pending_submissions WHERE submission_id = ?", id)
	if err != nil {
		return core.Submission{}, fmt.Errorf("removing submission %d: %w", id, err)
	}
	if err := requireAffected(res, id); err != nil {
		return core.Submission{}, err
	}
	return sub, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("submission %d: %w", id, core.ErrNotFound)
	}
	return nil
}
