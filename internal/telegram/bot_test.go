package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finfacil/internal/common"
	"github.com/Veraticus/finfacil/internal/dialog"
)

var fastRetry = WithRetryOptions(common.RetryOptions{
	MaxAttempts:  2,
	InitialDelay: time.Millisecond,
	MaxDelay:     time.Millisecond,
	Multiplier:   1,
})

type fakeAPI struct {
	updates  chan tgbotapi.Update
	sendErr  error
	sent     []tgbotapi.Chattable
	attempts int
	mu       sync.Mutex
	stopped  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeHandler struct {
	err     error
	replies []dialog.Reply
	events  []dialog.Event
}

func (f *fakeHandler) Handle(_ context.Context, ev dialog.Event) ([]dialog.Reply, error) {
	f.events = append(f.events, ev)
	return f.replies, f.err
}

func textUpdate(userID, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func TestEventFromMessage(t *testing.T) {
	tests := []struct {
		msg    *tgbotapi.Message
		name   string
		want   dialog.Event
		chatID int64
		ok     bool
	}{
		{
			name: "nil message",
			msg:  nil,
		},
		{
			name: "missing sender",
			msg:  &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "oi"},
		},
		{
			name:   "text message",
			msg:    textUpdate(42, 7, "/saldo").Message,
			want:   dialog.Event{UserID: "42", Text: "/saldo"},
			chatID: 7,
			ok:     true,
		},
		{
			name: "photo uses largest size and caption",
			msg: &tgbotapi.Message{
				From:    &tgbotapi.User{ID: 42},
				Chat:    &tgbotapi.Chat{ID: 7},
				Caption: "nota",
				Photo: []tgbotapi.PhotoSize{
					{FileID: "small", Width: 90},
					{FileID: "large", Width: 1280},
				},
			},
			want:   dialog.Event{UserID: "42", Text: "nota", Photo: "large"},
			chatID: 7,
			ok:     true,
		},
		{
			name: "sticker without text",
			msg: &tgbotapi.Message{
				From: &tgbotapi.User{ID: 42},
				Chat: &tgbotapi.Chat{ID: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, chatID, ok := EventFromMessage(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, ev)
			assert.Equal(t, tt.chatID, chatID)
		})
	}
}

func TestRender(t *testing.T) {
	t.Run("text with keyboard", func(t *testing.T) {
		c := Render(7, dialog.Reply{Text: "<b>oi</b>", Keyboard: [][]string{{"SIM", "NÃO"}, {"/cancelar"}}})
		msg, ok := c.(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Equal(t, int64(7), msg.ChatID)
		assert.Equal(t, "<b>oi</b>", msg.Text)
		assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)

		kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		require.True(t, ok)
		require.Len(t, kb.Keyboard, 2)
		assert.Equal(t, "NÃO", kb.Keyboard[0][1].Text)
		assert.Equal(t, "/cancelar", kb.Keyboard[1][0].Text)
		assert.True(t, kb.ResizeKeyboard)
	})

	t.Run("remove keyboard", func(t *testing.T) {
		msg, ok := Render(7, dialog.Reply{Text: "ok", RemoveKeyboard: true}).(tgbotapi.MessageConfig)
		require.True(t, ok)
		rm, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
		require.True(t, ok)
		assert.True(t, rm.RemoveKeyboard)
	})

	t.Run("plain text", func(t *testing.T) {
		msg, ok := Render(7, dialog.Reply{Text: "ok"}).(tgbotapi.MessageConfig)
		require.True(t, ok)
		assert.Nil(t, msg.ReplyMarkup)
	})

	t.Run("photo", func(t *testing.T) {
		photo, ok := Render(7, dialog.Reply{Text: "ID 3", Photo: "file-1"}).(tgbotapi.PhotoConfig)
		require.True(t, ok)
		assert.Equal(t, "ID 3", photo.Caption)
		assert.Equal(t, tgbotapi.FileID("file-1"), photo.File)
		assert.Equal(t, int64(7), photo.ChatID)
	})
}

func TestBot_HandleUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("sends every reply in order", func(t *testing.T) {
		api := newFakeAPI()
		handler := &fakeHandler{replies: []dialog.Reply{{Text: "um"}, {Text: "dois"}}}
		bot := NewBot(api, handler, fastRetry)

		require.NoError(t, bot.HandleUpdate(ctx, textUpdate(42, 7, "/saldo")))
		require.Len(t, handler.events, 1)
		assert.Equal(t, "42", handler.events[0].UserID)
		require.Len(t, api.sent, 2)
		assert.Equal(t, "um", api.sent[0].(tgbotapi.MessageConfig).Text)
		assert.Equal(t, "dois", api.sent[1].(tgbotapi.MessageConfig).Text)
	})

	t.Run("engine failure answers with generic error", func(t *testing.T) {
		api := newFakeAPI()
		handler := &fakeHandler{err: errors.New("disk full")}
		bot := NewBot(api, handler, fastRetry)

		require.NoError(t, bot.HandleUpdate(ctx, textUpdate(42, 7, "100")))
		require.Len(t, api.sent, 1)
		assert.Equal(t, dialog.ErrorReply().Text, api.sent[0].(tgbotapi.MessageConfig).Text)
	})

	t.Run("send failure is returned", func(t *testing.T) {
		api := newFakeAPI()
		api.sendErr = errors.New("network down")
		bot := NewBot(api, &fakeHandler{replies: []dialog.Reply{{Text: "x"}}}, fastRetry)

		err := bot.HandleUpdate(ctx, textUpdate(42, 7, "oi"))
		require.Error(t, err)
		assert.ErrorIs(t, err, api.sendErr)
		assert.ErrorIs(t, err, common.ErrMaxRetries)
		assert.Equal(t, 2, api.attempts)
	})

	t.Run("blocked bot is not retried", func(t *testing.T) {
		api := newFakeAPI()
		api.sendErr = &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}
		bot := NewBot(api, &fakeHandler{replies: []dialog.Reply{{Text: "x"}}}, fastRetry)

		err := bot.HandleUpdate(ctx, textUpdate(42, 7, "oi"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrMaxRetries)
		assert.Equal(t, 1, api.attempts)
	})

	t.Run("updates without message are ignored", func(t *testing.T) {
		api := newFakeAPI()
		handler := &fakeHandler{}
		bot := NewBot(api, handler, fastRetry)

		require.NoError(t, bot.HandleUpdate(ctx, tgbotapi.Update{UpdateID: 5}))
		assert.Empty(t, handler.events)
		assert.Empty(t, api.sent)
	})
}

func TestClassifySendError(t *testing.T) {
	assert.NoError(t, classifySendError(nil))

	limited := classifySendError(&tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 3},
	})
	assert.ErrorIs(t, limited, common.ErrRateLimit)
	assert.True(t, common.IsRetryable(limited))

	network := classifySendError(errors.New("connection reset"))
	assert.True(t, common.IsRetryable(network))

	badRequest := classifySendError(&tgbotapi.Error{Code: 400, Message: "Bad Request"})
	assert.False(t, common.IsRetryable(badRequest))
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	bot := NewBot(api, &fakeHandler{replies: []dialog.Reply{{Text: "ok"}}}, WithPollTimeout(5))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	api.updates <- textUpdate(1, 1, "/saldo")
	require.Eventually(t, func() bool { return api.sentCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.True(t, api.stopped)
}

func TestBot_RunReturnsWhenChannelCloses(t *testing.T) {
	api := newFakeAPI()
	close(api.updates)
	bot := NewBot(api, &fakeHandler{})
	assert.NoError(t, bot.Run(context.Background()))
}
