// Package bot is the chat front-end of kashif. An Engine owns every piece
// of per-process state (the pagination store and in-flight submissions) and
// turns inbound events into outbound messages through a Transport.
//
// Handlers are safe to call concurrently for unrelated chats. Errors are
// returned as core error kinds; Report is the only place they become user
// visible text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/log"
	"github.com/rubiojr/kashif/pkg/paginate"
)

var logger = log.ForService("bot")

// Searcher resolves queries and documents.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
	Documents(ctx context.Context, ids []string) ([]core.Document, error)
	Document(ctx context.Context, id string) (core.Document, error)
}

// Store persists usage counters and the moderation queue.
type Store interface {
	IncrementStat(ctx context.Context, key string) error
	Stat(ctx context.Context, key string) (int64, error)
	LogUser(ctx context.Context, userID int64) (bool, error)
	CountDistinct(ctx context.Context) (int, error)
	SaveSubmission(ctx context.Context, sub core.Submission) (int64, error)
	SetApprovalMessage(ctx context.Context, id int64, messageID int) error
	ApproveSubmission(ctx context.Context, id int64) (core.Submission, core.Document, error)
	RejectSubmission(ctx context.Context, id int64) (core.Submission, error)
}

type Options struct {
	// MaxMessageLength is the chunk budget for pages and snippet lists.
	MaxMessageLength int
	// HardMessageLimit is the transport cap no composed message may exceed.
	HardMessageLimit    int
	SnippetContextWords int
	MaxListResults      int
	OwnerID             int64
	SendTimeout         time.Duration
	BotUsername         string
	ChannelURL          string
	DeveloperURL        string
	DeveloperName       string
}

func (o *Options) setDefaults() {
	if o.MaxMessageLength <= 0 {
		o.MaxMessageLength = 4000
	}
	if o.HardMessageLimit <= 0 {
		o.HardMessageLimit = 4096
	}
	if o.SnippetContextWords <= 0 {
		o.SnippetContextWords = 5
	}
	if o.MaxListResults <= 0 {
		o.MaxListResults = 10
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 15 * time.Second
	}
}

// Engine is the context object shared by every handler.
type Engine struct {
	transport Transport
	search    Searcher
	store     Store
	pages     *paginate.Store
	layout    paginate.Layout
	drafts    *drafts
	opts      Options
}

func New(transport Transport, search Searcher, store Store, opts Options) *Engine {
	opts.setDefaults()
	return &Engine{
		transport: transport,
		search:    search,
		store:     store,
		pages:     paginate.NewStore(),
		layout:    paginate.Layout{MaxLen: opts.MaxMessageLength},
		drafts:    newDrafts(),
		opts:      opts,
	}
}

// Pages exposes the pagination store for sweeping.
func (e *Engine) Pages() *paginate.Store {
	return e.pages
}

// SetBotUsername records the bot's handle once the transport knows it.
func (e *Engine) SetBotUsername(username string) {
	e.opts.BotUsername = username
}

// Report tells the user that handling their request failed. Stale and
// malformed controls are dropped silently.
func (e *Engine) Report(ctx context.Context, chatID int64, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, core.ErrStaleAffordance), errors.Is(err, core.ErrInvalidToken):
		logger.Debugf("chat %d: ignoring %v", chatID, err)
		return
	case errors.Is(err, context.Canceled):
		return
	}

	logger.Errorf("chat %d: %v", chatID, err)
	if _, sendErr := e.send(ctx, chatID, Message{Text: textGenericError}); sendErr != nil {
		logger.Warnf("chat %d: could not deliver error notice: %v", chatID, sendErr)
	}
}

func (e *Engine) send(ctx context.Context, chatID int64, msg Message) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
	defer cancel()
	id, err := e.transport.Send(ctx, chatID, msg)
	if err != nil {
		return 0, delivery(err)
	}
	return id, nil
}

func (e *Engine) setButtons(ctx context.Context, chatID int64, messageID int, buttons [][]Button) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
	defer cancel()
	return delivery(e.transport.SetButtons(ctx, chatID, messageID, buttons))
}

func (e *Engine) edit(ctx context.Context, chatID int64, messageID int, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
	defer cancel()
	return delivery(e.transport.Edit(ctx, chatID, messageID, msg))
}

func (e *Engine) delete(ctx context.Context, chatID int64, messageID int) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.SendTimeout)
	defer cancel()
	return delivery(e.transport.Delete(ctx, chatID, messageID))
}

func delivery(err error) error {
	if err == nil || errors.Is(err, core.ErrDelivery) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrDelivery, err)
}

// touch records activity without failing the request.
func (e *Engine) touch(ctx context.Context, user User, stat string) {
	if user.ID != 0 {
		if _, err := e.store.LogUser(ctx, user.ID); err != nil {
			logger.Warnf("logging user %d: %v", user.ID, err)
		}
	}
	if stat != "" {
		if err := e.store.IncrementStat(ctx, stat); err != nil {
			logger.Warnf("incrementing %s: %v", stat, err)
		}
	}
}
