// Package telegram connects the dialog engine to the Telegram Bot API through long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Veraticus/finfacil/internal/common"
	"github.com/Veraticus/finfacil/internal/dialog"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Handler turns one inbound event into replies.
type Handler interface {
	Handle(ctx context.Context, ev dialog.Event) ([]dialog.Reply, error)
}

// Bot polls for updates and answers each message in order.
type Bot struct {
	api         API
	handler     Handler
	retry       common.RetryOptions
	pollTimeout int
}

// Option configures a Bot.
type Option func(*Bot)

// WithPollTimeout sets the long-polling timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(b *Bot) {
		if seconds > 0 {
			b.pollTimeout = seconds
		}
	}
}

// WithRetryOptions sets how failed sends are retried.
func WithRetryOptions(opts common.RetryOptions) Option {
	return func(b *Bot) {
		b.retry = opts
	}
}

// NewBot creates a bot answering updates with handler.
func NewBot(api API, handler Handler, opts ...Option) *Bot {
	b := &Bot{
		api:         api,
		handler:     handler,
		pollTimeout: 60,
		retry:       common.DefaultRetryOptions,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes updates until ctx is cancelled or the update channel closes.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	slog.Info("polling for updates", "timeout", b.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				slog.Error("failed to answer update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleUpdate answers a single update. Updates without a message are ignored. Engine
// failures are logged and answered with a generic error message.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ev, chatID, ok := EventFromMessage(update.Message)
	if !ok {
		return nil
	}

	replies, err := b.handler.Handle(ctx, ev)
	if err != nil {
		slog.Error("dialog failed", "user_id", ev.UserID, "error", err)
		replies = []dialog.Reply{dialog.ErrorReply()}
	}

	for _, r := range replies {
		if err := b.send(ctx, Render(chatID, r)); err != nil {
			return fmt.Errorf("failed to send reply to user %s: %w", ev.UserID, err)
		}
	}
	return nil
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	return common.WithRetry(ctx, func() error {
		_, err := b.api.Send(c)
		return classifySendError(err)
	}, b.retry)
}

// classifySendError marks rate limits and transport failures as retryable. Other API
// errors, such as a blocked bot or a bad request, are permanent.
func classifySendError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.RetryAfter > 0 {
			return fmt.Errorf("%w: %s", common.ErrRateLimit, apiErr.Message)
		}
		return err
	}
	return &common.RetryableError{Err: err, Retryable: true}
}

// EventFromMessage extracts the sender, text and largest photo of msg.
func EventFromMessage(msg *tgbotapi.Message) (dialog.Event, int64, bool) {
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return dialog.Event{}, 0, false
	}

	ev := dialog.Event{
		UserID: strconv.FormatInt(msg.From.ID, 10),
		Text:   msg.Text,
	}
	if len(msg.Photo) > 0 {
		ev.Photo = msg.Photo[len(msg.Photo)-1].FileID
		ev.Text = msg.Caption
	}
	if ev.Text == "" && ev.Photo == "" {
		return dialog.Event{}, 0, false
	}
	return ev, msg.Chat.ID, true
}

// Render converts a reply into the Telegram request that sends it.
func Render(chatID int64, r dialog.Reply) tgbotapi.Chattable {
	if r.Photo != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(r.Photo))
		photo.Caption = r.Text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = markup(r)
		return photo
	}

	msg := tgbotapi.NewMessage(chatID, r.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup(r)
	return msg
}

func markup(r dialog.Reply) any {
	switch {
	case len(r.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(r.Keyboard))
		for _, row := range r.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewReplyKeyboard(rows...)
	case r.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(false)
	default:
		return nil
	}
}
