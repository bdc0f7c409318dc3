package bot

import (
	"context"
	"errors"

	"github.com/rubiojr/kashif/pkg/callback"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/paginate"
)

func moreButtons(messageID, next int) [][]Button {
	return [][]Button{{{Text: textMoreButton, Data: callback.More(messageID, next).MustEncode()}}}
}

// sendDetail delivers the first page of doc and, when more pages exist,
// registers the rest under the new message.
func (e *Engine) sendDetail(ctx context.Context, chatID int64, doc core.Document) error {
	pages := e.layout.Pages(doc)
	first := pages[0]

	if err := paginate.CheckLength(first, e.opts.HardMessageLimit); err != nil {
		logger.Errorf("document %s: %v", doc.LogicalID, err)
		_, sendErr := e.send(ctx, chatID, Message{Text: textCompositionFailed})
		return sendErr
	}

	messageID, err := e.send(ctx, chatID, Message{Text: first, HTML: true})
	if err != nil {
		return err
	}
	logger.Debugf("sent page 1/%d of %s as message %d", len(pages), doc.LogicalID, messageID)

	if len(pages) == 1 {
		return nil
	}

	e.pages.Put(paginate.Key{ChatID: chatID, MessageID: messageID}, pages, 1)
	if err := e.setButtons(ctx, chatID, messageID, moreButtons(messageID, 1)); err != nil {
		logger.Warnf("could not attach more button to message %d: %v", messageID, err)
	}
	return nil
}

// HandleView renders the selected document, replacing the selector list.
func (e *Engine) HandleView(ctx context.Context, chatID int64, listMessageID int, logicalID string) error {
	doc, err := e.search.Document(ctx, logicalID)
	if errors.Is(err, core.ErrNotFound) {
		_, err = e.send(ctx, chatID, Message{Text: textDetailMissing})
		return err
	}
	if err != nil {
		return err
	}

	if listMessageID != 0 {
		if err := e.delete(ctx, chatID, listMessageID); err != nil {
			logger.Warnf("could not delete selector message %d: %v", listMessageID, err)
		}
	}
	return e.sendDetail(ctx, chatID, doc)
}

// HandleMore serves the next page of the sequence attached to the tapped
// message. Stale taps clear the control and return core.ErrStaleAffordance.
func (e *Engine) HandleMore(ctx context.Context, chatID int64, tappedID int, tok callback.Token) error {
	if tok.MessageID != tappedID {
		e.clearButtons(ctx, chatID, tappedID)
		return core.ErrStaleAffordance
	}

	key := paginate.Key{ChatID: chatID, MessageID: tok.MessageID}
	cs, err := e.pages.Take(key, tok.Next)
	if err != nil {
		e.clearButtons(ctx, chatID, tappedID)
		return err
	}

	page := cs.Pages[cs.Next]
	if err := paginate.CheckLength(page, e.opts.HardMessageLimit); err != nil {
		logger.Errorf("page %d/%d: %v", cs.Next+1, cs.Total(), err)
		e.clearButtons(ctx, chatID, tappedID)
		_, sendErr := e.send(ctx, chatID, Message{Text: textCompositionFailed})
		return sendErr
	}

	newID, err := e.send(ctx, chatID, Message{Text: page, HTML: true})
	if err != nil {
		e.pages.Restore(key, cs)
		return err
	}
	logger.Debugf("sent page %d/%d as message %d", cs.Next+1, cs.Total(), newID)

	e.clearButtons(ctx, chatID, tappedID)

	if cs.Remaining() {
		next := cs.Next + 1
		e.pages.Put(paginate.Key{ChatID: chatID, MessageID: newID}, cs.Pages, next)
		if err := e.setButtons(ctx, chatID, newID, moreButtons(newID, next)); err != nil {
			logger.Warnf("could not attach more button to message %d: %v", newID, err)
		}
	}
	return nil
}

func (e *Engine) clearButtons(ctx context.Context, chatID int64, messageID int) {
	if err := e.setButtons(ctx, chatID, messageID, nil); err != nil {
		logger.Debugf("could not clear buttons of message %d: %v", messageID, err)
	}
}

// HandleCallback dispatches a button tap.
func (e *Engine) HandleCallback(ctx context.Context, cb Callback) error {
	tok, err := callback.Parse(cb.Data)
	if err != nil {
		logger.Warnf("chat %d: %v", cb.ChatID, err)
		e.clearButtons(ctx, cb.ChatID, cb.MessageID)
		return err
	}

	switch tok.Kind {
	case callback.KindView:
		return e.HandleView(ctx, cb.ChatID, cb.MessageID, tok.LogicalID)
	case callback.KindMore:
		return e.HandleMore(ctx, cb.ChatID, cb.MessageID, tok)
	case callback.KindApprove, callback.KindReject:
		return e.HandleModeration(ctx, cb, tok)
	case callback.KindAdd:
		return e.StartSubmission(ctx, cb.ChatID, cb.From)
	default:
		return core.ErrInvalidToken
	}
}
