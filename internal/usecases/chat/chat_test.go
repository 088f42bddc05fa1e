package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

type stubLLM struct {
	answer string
	err    error
	system string
}

func (s *stubLLM) Complete(_ context.Context, system, _ string) (string, error) {
	s.system = system
	return s.answer, s.err
}

func (s *stubLLM) Name() string { return "stub" }

func newChat(llm *stubLLM) *Service {
	return New(llm, Config{Knowledge: "Живу в Сочи"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCleanResponse(t *testing.T) {
	got := CleanResponse("  **Важно**: ### заголовок || ----- конец  ")
	want := "Важно:  заголовок   конец"
	if got != want {
		t.Errorf("CleanResponse = %q, want %q", got, want)
	}
}

func TestShouldAddCTA(t *testing.T) {
	tests := map[int]bool{0: false, 1: false, 2: false, 3: true, 4: false, 6: true, -3: false}
	for count, want := range tests {
		if got := ShouldAddCTA(count); got != want {
			t.Errorf("ShouldAddCTA(%d) = %v, want %v", count, got, want)
		}
	}
}

func TestFormatResponse(t *testing.T) {
	long := strings.Repeat("слово ", 100)

	t.Run("cap without cta", func(t *testing.T) {
		got := FormatResponse(long, false, 300)
		if n := len([]rune(got)); n > 300 {
			t.Errorf("length = %d, want <= 300", n)
		}
	})

	t.Run("cap with cta", func(t *testing.T) {
		got := FormatResponse(long, true, 300)
		if n := len([]rune(got)); n > 300 {
			t.Errorf("length = %d, want <= 300", n)
		}
		if !strings.HasSuffix(got, "\n"+ctaMarkdown) {
			t.Errorf("response %q does not end with CTA", got)
		}
	})

	t.Run("model cta removed", func(t *testing.T) {
		got := FormatResponse("Привет!\\nПишите: "+ctaMarkdown, false, 300)
		if got != "Привет! Пишите:" {
			t.Errorf("FormatResponse = %q", got)
		}
	})

	t.Run("only cta", func(t *testing.T) {
		if got := FormatResponse("", true, 300); got != ctaMarkdown {
			t.Errorf("FormatResponse = %q, want bare CTA", got)
		}
	})
}

func TestReply(t *testing.T) {
	llm := &stubLLM{answer: "**Да**, сделаем MVP."}
	svc := newChat(llm)

	resp, err := svc.Reply(context.Background(), domain.ChatRequest{Message: "Сделаешь бота?", MessageCount: 3})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if resp.Response != "Да, сделаем MVP.\n"+ctaMarkdown {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.Source != "stub" {
		t.Errorf("source = %q, want stub", resp.Source)
	}
	if !strings.Contains(llm.system, "Живу в Сочи") {
		t.Error("knowledge is not part of the system prompt")
	}
}

func TestReply_EmptyMessage(t *testing.T) {
	svc := newChat(&stubLLM{})
	if _, err := svc.Reply(context.Background(), domain.ChatRequest{Message: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestReply_UpstreamFailure(t *testing.T) {
	svc := newChat(&stubLLM{err: errors.New("quota exceeded")})
	_, err := svc.Reply(context.Background(), domain.ChatRequest{Message: "привет"})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}
