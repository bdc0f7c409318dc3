package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
	"github.com/rubiojr/kashif/pkg/bot"
)

// Handler is the slice of *bot.Engine the dispatcher drives.
type Handler interface {
	HandleSearch(ctx context.Context, chatID int64, user bot.User, query string) error
	HandleCallback(ctx context.Context, cb bot.Callback) error
	Start(ctx context.Context, chatID int64, user bot.User) error
	Help(ctx context.Context, chatID int64, user bot.User) error
	InSubmission(userID int64) bool
	StartSubmission(ctx context.Context, chatID int64, user bot.User) error
	HandleSubmissionText(ctx context.Context, chatID int64, user bot.User, text string) (bool, error)
	SkipQuality(ctx context.Context, chatID int64, user bot.User) error
	CancelSubmission(ctx context.Context, chatID int64, user bot.User) error
	Report(ctx context.Context, chatID int64, err error)
}

var _ Handler = (*bot.Engine)(nil)

// Dispatcher long-polls for updates and fans them out to a worker pool.
type Dispatcher struct {
	api     *tgbotapi.BotAPI
	handler Handler
	router  *Router
	workers int
	timeout int

	// ack answers a callback query so the client stops its spinner.
	ack func(id string)
}

// NewDispatcher wires handler to the transport's API connection.
func NewDispatcher(t *Transport, handler Handler, triggerWords []string, workers int) *Dispatcher {
	d := &Dispatcher{
		api:     t.api,
		handler: handler,
		router:  NewRouter(triggerWords),
		workers: workers,
		timeout: 60,
	}
	d.ack = func(id string) {
		if _, err := d.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
			logger.Debugf("answering callback %s: %v", id, err)
		}
	}
	return d
}

// Run processes updates until ctx is done. In-flight handlers are
// allowed to finish before it returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = d.timeout
	updates := d.api.GetUpdatesChan(u)
	defer d.api.StopReceivingUpdates()

	return d.dispatch(ctx, updates)
}

// dispatch fans updates out to the worker pool until ctx is done or updates
// is closed. Handlers run detached from ctx cancellation so a request that
// has started completes; the engine's per-call timeouts still bound it.
func (d *Dispatcher) dispatch(ctx context.Context, updates <-chan tgbotapi.Update) error {
	if d.workers <= 0 {
		d.workers = 1
	}
	pool, err := ants.NewPool(d.workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	logger.Infof("dispatching updates with %d workers", d.workers)

	handlerCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				d.Handle(handlerCtx, update)
			})
			if err != nil {
				wg.Done()
				logger.Errorf("submitting update %d: %v", update.UpdateID, err)
			}
		}
	}
}

// Handle routes a single update.
func (d *Dispatcher) Handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("panic handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if d.ack != nil {
		d.ack(q.ID)
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	cb := bot.Callback{
		ChatID:    q.Message.Chat.ID,
		MessageID: q.Message.MessageID,
		Text:      q.Message.Text,
		From:      userOf(q.From),
		Data:      q.Data,
	}
	if err := d.handler.HandleCallback(ctx, cb); err != nil {
		d.handler.Report(ctx, cb.ChatID, err)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil || m.From == nil {
		return
	}
	chatID := m.Chat.ID
	user := userOf(m.From)

	action, query := d.router.Route(m.Command(), m.Text, d.handler.InSubmission(user.ID))

	var err error
	switch action {
	case ActionStart:
		err = d.handler.Start(ctx, chatID, user)
	case ActionHelp:
		err = d.handler.Help(ctx, chatID, user)
	case ActionAdd:
		err = d.handler.StartSubmission(ctx, chatID, user)
	case ActionCancel:
		err = d.handler.CancelSubmission(ctx, chatID, user)
	case ActionSkip:
		err = d.handler.SkipQuality(ctx, chatID, user)
	case ActionSubmissionText:
		_, err = d.handler.HandleSubmissionText(ctx, chatID, user, m.Text)
	case ActionSearch:
		err = d.handler.HandleSearch(ctx, chatID, user, query)
	case ActionUsage:
		err = d.handler.HandleSearch(ctx, chatID, user, "")
	default:
		return
	}
	if err != nil {
		d.handler.Report(ctx, chatID, err)
	}
}

func userOf(u *tgbotapi.User) bot.User {
	if u == nil {
		return bot.User{}
	}
	return bot.User{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}
