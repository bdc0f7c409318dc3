package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/rubiojr/kashif/pkg/callback"
	"github.com/rubiojr/kashif/pkg/core"
)

type step int

const (
	stepGroup step = iota
	stepBody
	stepQuality
)

type draft struct {
	step   step
	chatID int64
	sub    core.Submission
}

// drafts tracks one in-progress submission per user.
type drafts struct {
	mu sync.Mutex
	m  map[int64]*draft
}

func newDrafts() *drafts {
	return &drafts{m: make(map[int64]*draft)}
}

func (d *drafts) get(userID int64) (draft, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	dr, ok := d.m[userID]
	if !ok {
		return draft{}, false
	}
	return *dr, true
}

func (d *drafts) put(userID int64, dr draft) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[userID] = &dr
}

func (d *drafts) remove(userID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.m[userID]
	delete(d.m, userID)
	return ok
}

// InSubmission reports whether the user is in the middle of adding a
// document.
func (e *Engine) InSubmission(userID int64) bool {
	_, ok := e.drafts.get(userID)
	return ok
}

// StartSubmission begins the add-document conversation, discarding any
// earlier draft.
func (e *Engine) StartSubmission(ctx context.Context, chatID int64, user User) error {
	logger.Infof("user %d started a submission", user.ID)
	e.drafts.put(user.ID, draft{
		step:   stepGroup,
		chatID: chatID,
		sub: core.Submission{
			SubmitterID:       user.ID,
			SubmitterUsername: user.Username,
		},
	})
	_, err := e.send(ctx, chatID, Message{Text: textAddStart, HTML: true})
	return err
}

// HandleSubmissionText feeds a plain message into the user's conversation.
// It reports false when the user has no conversation in progress.
func (e *Engine) HandleSubmissionText(ctx context.Context, chatID int64, user User, text string) (bool, error) {
	dr, ok := e.drafts.get(user.ID)
	if !ok {
		return false, nil
	}
	text = strings.TrimSpace(text)

	switch dr.step {
	case stepGroup:
		if text == "" {
			_, err := e.send(ctx, chatID, Message{Text: textEmptyGroup})
			return true, err
		}
		dr.sub.GroupTag = text
		dr.step = stepBody
		e.drafts.put(user.ID, dr)
		_, err := e.send(ctx, chatID, Message{Text: textAskBody, HTML: true})
		return true, err
	case stepBody:
		if text == "" {
			_, err := e.send(ctx, chatID, Message{Text: textEmptyBody})
			return true, err
		}
		dr.sub.Body = text
		dr.step = stepQuality
		e.drafts.put(user.ID, dr)
		_, err := e.send(ctx, chatID, Message{Text: textAskQuality, HTML: true})
		return true, err
	default:
		dr.sub.QualityTag = text
		e.drafts.remove(user.ID)
		return true, e.submit(ctx, chatID, user, dr.sub)
	}
}

// SkipQuality completes the conversation without a quality tag. It is a
// no-op unless the user is at that step.
func (e *Engine) SkipQuality(ctx context.Context, chatID int64, user User) error {
	dr, ok := e.drafts.get(user.ID)
	if !ok || dr.step != stepQuality {
		return nil
	}
	e.drafts.remove(user.ID)
	if _, err := e.send(ctx, chatID, Message{Text: textQualitySkipped}); err != nil {
		return err
	}
	return e.submit(ctx, chatID, user, dr.sub)
}

// CancelSubmission aborts the user's conversation.
func (e *Engine) CancelSubmission(ctx context.Context, chatID int64, user User) error {
	if !e.drafts.remove(user.ID) {
		return nil
	}
	_, err := e.send(ctx, chatID, Message{Text: textCancelled})
	return err
}

func (e *Engine) submit(ctx context.Context, chatID int64, user User, sub core.Submission) error {
	sub.SubmittedAt = time.Now()
	id, err := e.store.SaveSubmission(ctx, sub)
	if err != nil {
		logger.Errorf("saving submission from %d: %v", user.ID, err)
		_, sendErr := e.send(ctx, chatID, Message{Text: textSubmitFailed})
		return sendErr
	}
	sub.ID = id
	logger.Infof("saved submission %d from user %d", id, user.ID)

	if _, err := e.send(ctx, chatID, Message{Text: textSubmitted}); err != nil {
		return err
	}

	if e.opts.OwnerID == 0 {
		logger.Warnf("no owner configured, submission %d waits unreviewed", id)
		return nil
	}

	messageID, err := e.send(ctx, e.opts.OwnerID, Message{
		Text: moderationText(sub, user),
		HTML: true,
		Buttons: [][]Button{{
			{Text: textApprove, Data: callback.Approve(id).MustEncode()},
			{Text: textReject, Data: callback.Reject(id).MustEncode()},
		}},
	})
	if err != nil {
		logger.Errorf("notifying owner about submission %d: %v", id, err)
		return nil
	}
	if err := e.store.SetApprovalMessage(ctx, id, messageID); err != nil {
		logger.Warnf("recording approval message for %d: %v", id, err)
	}
	return nil
}

func moderationText(sub core.Submission, user User) string {
	body := []rune(sub.Body)
	excerpt := sub.Body
	if len(body) > 1000 {
		excerpt = string(body[:1000]) + "..."
	}
	quality := sub.QualityTag
	if quality == "" {
		quality = textNoQuality
	}
	name := user.FirstName
	if name == "" {
		name = user.Username
	}

	return fmt.Sprintf(`<b>مراجعة حديث جديد</b> ⏳
<b>المُرسِل:</b> <a href="tg://user?id=%d">%s</a> (ID: <code>%d</code>)
<b>الوقت:</b> %s
---
📖 <b>الكتاب:</b> %s
---
📜 <b>الحديث:</b>
%s
---
⚖️ <b>الصحة:</b> %s
---
<b>Submission ID:</b> <code>%d</code>`,
		user.ID, html.EscapeString(name), user.ID,
		sub.SubmittedAt.Format("2006-01-02 15:04:05"),
		html.EscapeString(sub.GroupTag),
		html.EscapeString(excerpt),
		html.EscapeString(quality),
		sub.ID)
}

// HandleModeration applies the owner's approve or reject decision.
func (e *Engine) HandleModeration(ctx context.Context, cb Callback, tok callback.Token) error {
	if e.opts.OwnerID == 0 || cb.From.ID != e.opts.OwnerID {
		logger.Warnf("user %d tried to moderate submission %d", cb.From.ID, tok.SubmissionID)
		_, err := e.send(ctx, cb.From.ID, Message{Text: textNotOwner})
		return err
	}

	id := tok.SubmissionID
	var (
		sub    core.Submission
		err    error
		status string
		notice string
	)
	switch tok.Kind {
	case callback.KindApprove:
		var doc core.Document
		sub, doc, err = e.store.ApproveSubmission(ctx, id)
		if err == nil {
			logger.Infof("submission %d approved as %s", id, doc.LogicalID)
			status = textApproved(id, cb.Text)
			notice = textSubmitterApproved(sub.GroupTag)
		}
	case callback.KindReject:
		sub, err = e.store.RejectSubmission(ctx, id)
		if err == nil {
			logger.Infof("submission %d rejected", id)
			status = textRejected(id, cb.Text)
			notice = textSubmitterRejected(sub.GroupTag)
		}
	default:
		return core.ErrInvalidToken
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		status = textAlreadyProcessed(id)
	case err != nil:
		logger.Errorf("moderating submission %d: %v", id, err)
		status = textModerationFailed(id)
	}

	if editErr := e.edit(ctx, cb.ChatID, cb.MessageID, Message{Text: status}); editErr != nil {
		logger.Warnf("updating moderation message %d: %v", cb.MessageID, editErr)
	}
	if err != nil || sub.SubmitterID == 0 {
		return nil
	}

	if _, err := e.send(ctx, sub.SubmitterID, Message{Text: notice}); err != nil {
		logger.Warnf("notifying submitter %d: %v", sub.SubmitterID, err)
	}
	return nil
}
