// Package telegram connects the bot engine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rubiojr/kashif/pkg/bot"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/log"
)

var logger = log.ForService("telegram")

// Transport implements bot.Transport over the Bot API.
type Transport struct {
	api *tgbotapi.BotAPI
}

var _ bot.Transport = (*Transport)(nil)

// Connect authenticates with token.
func Connect(token string) (*Transport, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	logger.Infof("authorized as @%s", api.Self.UserName)
	return &Transport{api: api}, nil
}

// Username returns the bot's handle.
func (t *Transport) Username() string {
	return t.api.Self.UserName
}

func (t *Transport) Send(ctx context.Context, chatID int64, msg bot.Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if msg.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}
	out.DisableWebPagePreview = msg.DisablePreview
	if len(msg.Buttons) > 0 {
		out.ReplyMarkup = keyboard(msg.Buttons)
	}

	sent, err := t.api.Send(out)
	if err != nil {
		return 0, fmt.Errorf("%w: send to %d: %v", core.ErrDelivery, chatID, err)
	}
	return sent.MessageID, nil
}

func (t *Transport) SetButtons(ctx context.Context, chatID int64, messageID int, buttons [][]bot.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, keyboard(buttons))
	if _, err := t.api.Request(edit); err != nil {
		return fmt.Errorf("%w: edit markup of %d: %v", core.ErrDelivery, messageID, err)
	}
	return nil
}

func (t *Transport) Edit(ctx context.Context, chatID int64, messageID int, msg bot.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, msg.Text)
	if msg.HTML {
		edit.ParseMode = tgbotapi.ModeHTML
	}
	if len(msg.Buttons) > 0 {
		markup := keyboard(msg.Buttons)
		edit.ReplyMarkup = &markup
	}
	if _, err := t.api.Request(edit); err != nil {
		return fmt.Errorf("%w: edit text of %d: %v", core.ErrDelivery, messageID, err)
	}
	return nil
}

func (t *Transport) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("%w: delete %d: %v", core.ErrDelivery, messageID, err)
	}
	return nil
}

// keyboard converts button rows. An empty result still serializes as an
// empty inline keyboard, which is how Telegram removes one.
func keyboard(rows [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	for _, row := range rows {
		var out []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			if b.URL != "" {
				out = append(out, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				out = append(out, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		if len(out) > 0 {
			markup.InlineKeyboard = append(markup.InlineKeyboard, out)
		}
	}
	return markup
}
