package storage

import (
	"context"
	"testing"

	"github.com/rubiojr/kashif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionLifecycle(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	id, err := idx.SaveSubmission(ctx, core.Submission{
		SubmitterID:       99,
		SubmitterUsername: "ali",
		GroupTag:          "الكافي",
		Body:              "من عرف نفسه فقد عرف ربه",
	})
	require.NoError(t, err)
	require.NoError(t, idx.SetApprovalMessage(ctx, id, 555))

	sub, err := idx.Submission(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(99), sub.SubmitterID)
	assert.Equal(t, "ali", sub.SubmitterUsername)
	assert.Equal(t, 555, sub.ApprovalMessageID)
	assert.False(t, sub.SubmittedAt.IsZero(), "submission time recorded")

	pending, err := idx.PendingSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, doc, err := idx.ApproveSubmission(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, doc.LogicalID, "generated logical id")
	assert.Equal(t, int64(99), approved.SubmitterID)

	stored, err := idx.Get(ctx, doc.LogicalID)
	require.NoError(t, err)
	assert.Equal(t, "من عرف نفسه فقد عرف ربه", stored.Body)
	assert.Empty(t, stored.QualityTag)

	_, err = idx.Submission(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound, "approved submission leaves the queue")

	_, _, err = idx.ApproveSubmission(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound, "second approval")
}

func TestRejectSubmission(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	id, err := idx.SaveSubmission(ctx, core.Submission{SubmitterID: 1, GroupTag: "ب", Body: "نص", QualityTag: "حسن"})
	require.NoError(t, err)

	sub, err := idx.RejectSubmission(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "حسن", sub.QualityTag)

	_, err = idx.RejectSubmission(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound, "second reject")
	assert.ErrorIs(t, idx.SetApprovalMessage(ctx, id, 1), core.ErrNotFound)

	n, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing indexed after reject")
}
