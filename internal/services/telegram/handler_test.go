package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

type call struct {
	kind    string
	chatID  int64
	payload string
}

type recordingBot struct {
	calls []call
}

func (b *recordingBot) HandleCommand(_ context.Context, _ *domain.TelegramUser, chatID int64, command string) error {
	b.calls = append(b.calls, call{"command", chatID, command})
	return nil
}

func (b *recordingBot) HandleText(_ context.Context, _ *domain.TelegramUser, chatID int64, text string) error {
	b.calls = append(b.calls, call{"text", chatID, text})
	return nil
}

func (b *recordingBot) HandleWebAppData(_ context.Context, _ *domain.TelegramUser, chatID int64, data *domain.WebAppData) error {
	b.calls = append(b.calls, call{"webapp", chatID, data.Data})
	return nil
}

type fakeClient struct {
	plain     int
	keyboard  int
	callbacks []string
	err       error
}

func (c *fakeClient) SendMessage(context.Context, int64, string) error {
	c.plain++
	return c.err
}

func (c *fakeClient) SendMessageWithKeyboard(context.Context, int64, string, *domain.InlineKeyboardMarkup) error {
	c.keyboard++
	return c.err
}

func (c *fakeClient) AnswerCallbackQuery(_ context.Context, id, _ string, _ bool) error {
	c.callbacks = append(c.callbacks, id)
	return nil
}

func newTestService() (*Service, *recordingBot, *fakeClient) {
	client := &fakeClient{}
	bot := &recordingBot{}
	s := New(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SetBotService(bot)
	return s, bot, client
}

func privateMessage(text string) *domain.Update {
	return &domain.Update{
		UpdateID: 1,
		Message: &domain.Message{
			From: &domain.TelegramUser{ID: 100, FirstName: "Anna"},
			Chat: &domain.Chat{ID: 100, Type: "private"},
			Text: &text,
		},
	}
}

func TestParseCommand(t *testing.T) {
	cases := map[string]string{
		"/start":                 "start",
		"/start@SpaceGrowBot":    "start",
		"/Help extra words":      "help",
		"/start@bot payload@x y": "start",
	}
	for in, want := range cases {
		if got := ParseCommand(in); got != want {
			t.Errorf("ParseCommand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoutesCommandsAndText(t *testing.T) {
	s, bot, _ := newTestService()
	ctx := context.Background()

	if err := s.HandleUpdate(ctx, privateMessage("/diagnostics")); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleUpdate(ctx, privateMessage("  привет ")); err != nil {
		t.Fatal(err)
	}

	want := []call{{"command", 100, "diagnostics"}, {"text", 100, "привет"}}
	if len(bot.calls) != len(want) {
		t.Fatalf("calls = %+v", bot.calls)
	}
	for i := range want {
		if bot.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, bot.calls[i], want[i])
		}
	}
}

func TestRoutesWebAppData(t *testing.T) {
	s, bot, _ := newTestService()
	u := privateMessage("")
	u.Message.Text = nil
	u.Message.WebAppData = &domain.WebAppData{Data: `{"type":"diagnostics_completed"}`}

	if err := s.HandleUpdate(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	if len(bot.calls) != 1 || bot.calls[0].kind != "webapp" {
		t.Fatalf("calls = %+v", bot.calls)
	}
}

func TestIgnoresBotsAndGroups(t *testing.T) {
	s, bot, _ := newTestService()
	ctx := context.Background()

	fromBot := privateMessage("/start")
	fromBot.Message.From.IsBot = true
	group := privateMessage("/start")
	group.Message.Chat.Type = "supergroup"

	for _, u := range []*domain.Update{fromBot, group} {
		if err := s.HandleUpdate(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	if len(bot.calls) != 0 {
		t.Fatalf("calls = %+v", bot.calls)
	}
}

func TestCallbackQueryIsAnswered(t *testing.T) {
	s, _, client := newTestService()
	u := &domain.Update{UpdateID: 2, CallbackQuery: &domain.CallbackQuery{ID: "cb-1"}}

	if err := s.HandleUpdate(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	if len(client.callbacks) != 1 || client.callbacks[0] != "cb-1" {
		t.Fatalf("callbacks = %v", client.callbacks)
	}
}

func TestSendMessageChoosesMethod(t *testing.T) {
	s, _, client := newTestService()
	ctx := context.Background()

	if err := s.SendMessage(ctx, 1, "plain", nil); err != nil {
		t.Fatal(err)
	}
	if err := s.SendMessage(ctx, 1, "with button", domain.URLButton("go", "https://x.example")); err != nil {
		t.Fatal(err)
	}
	if client.plain != 1 || client.keyboard != 1 {
		t.Fatalf("plain=%d keyboard=%d", client.plain, client.keyboard)
	}

	client.err = errors.New("blocked")
	err := s.SendMessage(ctx, 1, "x", nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want upstream", err)
	}
}
