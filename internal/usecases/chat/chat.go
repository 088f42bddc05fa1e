package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

const (
	ctaURL      = "https://t.me/ilyaborm"
	ctaMarkdown = "[Записаться на диагностику](" + ctaURL + ")"
	// CTA добавляется в каждое N-е сообщение диалога
	ctaEvery = 3
)

const systemPrompt = `# Роль
Ты — Илья Бормотов, IT-интегратор и архитектор автоматизированных интеллектуальных цепочек продаж (АИЦП). Отвечаешь посетителям сайта как цифровой двойник.

# Стиль
- Говори от первого лица, обращайся к клиенту на "вы".
- Дружелюбный профи: короткие энергичные предложения, без офисной зауми.
- Если вопрос о цене: дай вилку (100к - 500к+) и скажи, что точный расчёт будет после диагностики.
- Если вопрос не по теме: вежливо верни разговор к автоматизации продаж.
- Цель диалога: пригласить на бесплатную диагностику.

# Формат
- Максимум 300 символов. Только суть.
- Не добавляй ссылки и призывы к действию, их добавит система.`

var (
	markdownNoise  = regexp.MustCompile(`\*\*|###|\|\||-{3,}`)
	escapedBreaks  = regexp.MustCompile(`\\+[nr]`)
	lineBreaks     = regexp.MustCompile(`[\r\n]+`)
	repeatedSpaces = regexp.MustCompile(` {2,}`)
)

// Reply ответ модели, очищенный от разметки и обрезанный по длине.
// Ошибка модели возвращается как upstream-ошибка, без повторов
func (s *Service) Reply(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.NewValidationError("message", "Сообщение не может быть пустым")
	}

	raw, err := s.LLM.Complete(ctx, s.systemPrompt(), message)
	if err != nil {
		s.Log.Error("llm completion failed", "error", err, "provider", s.LLM.Name(), "message_count", req.MessageCount)
		return nil, domain.NewUpstreamError(s.LLM.Name(), err)
	}

	withCTA := ShouldAddCTA(req.MessageCount)
	response := FormatResponse(raw, withCTA, s.Config.MaxChars)
	s.Log.Info("chat reply",
		"provider", s.LLM.Name(),
		"message_count", req.MessageCount,
		"cta", withCTA,
		"chars", len([]rune(response)))

	return &domain.ChatResponse{Response: response, Source: s.LLM.Name()}, nil
}

func (s *Service) systemPrompt() string {
	if s.Config.Knowledge == "" {
		return systemPrompt
	}
	return fmt.Sprintf("%s\n\n# База знаний (используй в первую очередь)\n%s", systemPrompt, s.Config.Knowledge)
}

// ShouldAddCTA каждое третье сообщение диалога
func ShouldAddCTA(messageCount int) bool {
	return messageCount > 0 && messageCount%ctaEvery == 0
}

// CleanResponse убирает markdown-мусор из ответа модели
func CleanResponse(text string) string {
	return strings.TrimSpace(markdownNoise.ReplaceAllString(text, ""))
}

// FormatResponse ответ в одну строку не длиннее maxChars символов.
// CTA, добавленный моделью, вырезается; при withCTA ставится в конец с переводом строки
func FormatResponse(raw string, withCTA bool, maxChars int) string {
	main := CleanResponse(raw)
	main = escapedBreaks.ReplaceAllString(main, " ")
	main = lineBreaks.ReplaceAllString(main, " ")
	main = strings.ReplaceAll(main, ctaMarkdown, "")
	main = strings.ReplaceAll(main, ctaURL, "")
	main = strings.TrimSpace(repeatedSpaces.ReplaceAllString(main, " "))

	if !withCTA {
		return truncate(main, maxChars)
	}

	reserve := 1 + len([]rune(ctaMarkdown))
	main = truncate(main, max(0, maxChars-reserve))
	if main == "" {
		return ctaMarkdown
	}
	return main + "\n" + ctaMarkdown
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimRight(string(runes[:limit]), " \t")
}
