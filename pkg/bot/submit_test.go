package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/rubiojr/kashif/pkg/callback"
	"github.com/rubiojr/kashif/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner int64 = 9000

var ownerUser = User{ID: owner, Username: "owner", FirstName: "Owner"}

func submitDocument(t *testing.T, h *harness, quality string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, h.engine.StartSubmission(ctx, chat, alice))
	assert.True(t, h.engine.InSubmission(alice.ID))

	handled, err := h.engine.HandleSubmissionText(ctx, chat, alice, "الكافي")
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, textAskBody, h.transport.last().Msg.Text)

	handled, err = h.engine.HandleSubmissionText(ctx, chat, alice, "إن الله يحب العبد المؤمن المحترف")
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, textAskQuality, h.transport.last().Msg.Text)

	if quality == "" {
		require.NoError(t, h.engine.SkipQuality(ctx, chat, alice))
	} else {
		_, err = h.engine.HandleSubmissionText(ctx, chat, alice, quality)
		require.NoError(t, err)
	}
	assert.False(t, h.engine.InSubmission(alice.ID))
}

func ownerMessage(t *testing.T, h *harness) sentMessage {
	t.Helper()
	for _, m := range h.transport.sent {
		if m.ChatID == owner {
			return m
		}
	}
	t.Fatal("owner was not notified")
	return sentMessage{}
}

func TestSubmissionApproved(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{OwnerID: owner})

	submitDocument(t, h, "")

	pending, err := h.index.PendingSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	sub := pending[0]
	assert.Equal(t, "الكافي", sub.GroupTag)
	assert.Equal(t, "", sub.QualityTag)
	assert.Equal(t, alice.ID, sub.SubmitterID)

	notice := ownerMessage(t, h)
	assert.Equal(t, notice.ID, sub.ApprovalMessageID)
	assert.Contains(t, notice.Msg.Text, "مراجعة حديث جديد")
	assert.Contains(t, notice.Msg.Text, "⚖️ <b>الصحة:</b> لم يحدد")
	require.Len(t, notice.Msg.Buttons, 1)
	require.Len(t, notice.Msg.Buttons[0], 2)
	assert.Equal(t, callback.Approve(sub.ID).MustEncode(), notice.Msg.Buttons[0][0].Data)
	assert.Equal(t, callback.Reject(sub.ID).MustEncode(), notice.Msg.Buttons[0][1].Data)

	tap := Callback{ChatID: owner, MessageID: notice.ID, Text: "مراجعة حديث جديد", From: ownerUser, Data: notice.Msg.Buttons[0][0].Data}
	require.NoError(t, h.engine.HandleCallback(ctx, tap))

	assert.True(t, strings.HasPrefix(h.transport.edits[notice.ID].Text, "✅"))
	last := h.transport.last()
	assert.Equal(t, alice.ID, last.ChatID)
	assert.Contains(t, last.Msg.Text, "تمت الموافقة")

	// The approved document is now searchable.
	require.NoError(t, h.engine.HandleSearch(ctx, chat, alice, "المحترف"))
	assert.Contains(t, h.transport.last().Msg.Text, "إن الله يحب العبد المؤمن المحترف")

	// A second tap finds nothing left to approve.
	require.NoError(t, h.engine.HandleCallback(ctx, tap))
	assert.Contains(t, h.transport.edits[notice.ID].Text, "ربما تمت معالجته مسبقاً")
}

func TestSubmissionRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{OwnerID: owner})

	submitDocument(t, h, "حسن")
	notice := ownerMessage(t, h)
	assert.Contains(t, notice.Msg.Text, "⚖️ <b>الصحة:</b> حسن")

	tap := Callback{ChatID: owner, MessageID: notice.ID, From: ownerUser, Data: notice.Msg.Buttons[0][1].Data}
	require.NoError(t, h.engine.HandleCallback(ctx, tap))

	assert.True(t, strings.HasPrefix(h.transport.edits[notice.ID].Text, "❌"))
	assert.Contains(t, h.transport.last().Msg.Text, "لم تتم الموافقة")

	n, err := h.index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestModerationRequiresOwner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{OwnerID: owner})
	submitDocument(t, h, "")
	notice := ownerMessage(t, h)

	tap := Callback{ChatID: chat, MessageID: notice.ID, From: alice, Data: notice.Msg.Buttons[0][0].Data}
	require.NoError(t, h.engine.HandleCallback(ctx, tap))

	assert.Equal(t, textNotOwner, h.transport.last().Msg.Text)
	pending, err := h.index.PendingSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmissionWithoutOwner(t *testing.T) {
	h := newHarness(t, Options{})
	submitDocument(t, h, "صحيح")

	assert.Equal(t, textSubmitted, h.transport.last().Msg.Text)
	pending, err := h.index.PendingSubmissions(context.Background())
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmissionRejectsEmptyAnswers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})

	require.NoError(t, h.engine.StartSubmission(ctx, chat, alice))
	_, err := h.engine.HandleSubmissionText(ctx, chat, alice, "   ")
	require.NoError(t, err)
	assert.Equal(t, textEmptyGroup, h.transport.last().Msg.Text)

	_, err = h.engine.HandleSubmissionText(ctx, chat, alice, "الكافي")
	require.NoError(t, err)
	_, err = h.engine.HandleSubmissionText(ctx, chat, alice, "")
	require.NoError(t, err)
	assert.Equal(t, textEmptyBody, h.transport.last().Msg.Text)
	assert.True(t, h.engine.InSubmission(alice.ID))
}

func TestSubmissionCancel(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{})

	require.NoError(t, h.engine.StartSubmission(ctx, chat, alice))
	require.NoError(t, h.engine.CancelSubmission(ctx, chat, alice))
	assert.Equal(t, textCancelled, h.transport.last().Msg.Text)
	assert.False(t, h.engine.InSubmission(alice.ID))

	handled, err := h.engine.HandleSubmissionText(ctx, chat, alice, "شيعة علي")
	require.NoError(t, err)
	assert.False(t, handled)

	// Cancelling with nothing in progress is silent.
	before := h.transport.count()
	require.NoError(t, h.engine.CancelSubmission(ctx, chat, alice))
	require.NoError(t, h.engine.SkipQuality(ctx, chat, alice))
	assert.Equal(t, before, h.transport.count())
}

func TestAddButtonStartsSubmission(t *testing.T) {
	h := newHarness(t, Options{})
	require.NoError(t, h.engine.HandleCallback(context.Background(), Callback{ChatID: chat, MessageID: 1, From: alice, Data: "add"}))
	assert.True(t, h.engine.InSubmission(alice.ID))
	assert.Equal(t, textAddStart, h.transport.last().Msg.Text)
}

func TestStartAndHelp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Options{BotUsername: "kashif_bot", ChannelURL: "https://t.me/channel", DeveloperURL: "https://t.me/dev", DeveloperName: "عبد المجيد"})

	require.NoError(t, h.engine.Start(ctx, chat, alice))
	welcome := h.transport.last().Msg
	assert.Contains(t, welcome.Text, "مرحبا Alice!")
	require.Len(t, welcome.Buttons, 3)
	assert.Equal(t, "https://t.me/kashif_bot?startgroup=true", welcome.Buttons[0][0].URL)
	assert.Equal(t, "add", welcome.Buttons[1][0].Data)
	assert.Equal(t, "https://t.me/channel", welcome.Buttons[2][0].URL)

	starts, err := h.index.Stat(ctx, storage.StatStartUsage)
	require.NoError(t, err)
	assert.Equal(t, int64(1), starts)

	require.NoError(t, h.engine.HandleSearch(ctx, chat, alice, "شيء"))
	require.NoError(t, h.engine.Help(ctx, chat, alice))
	help := h.transport.last().Msg
	assert.Contains(t, help.Text, "إجمالي عمليات البحث: 1")
	assert.Contains(t, help.Text, "عدد المستخدمين : 1")
	assert.True(t, help.DisablePreview)
	require.Len(t, help.Buttons, 1)
	assert.Equal(t, " المطور: عبد المجيد", help.Buttons[0][0].Text)
}
