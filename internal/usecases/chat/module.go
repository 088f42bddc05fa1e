package chat

import (
	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
)

const defaultMaxChars = 300

type Config struct {
	// MaxChars предел длины ответа в символах, включая CTA
	MaxChars int
	// Knowledge база знаний, добавляется к системной инструкции
	Knowledge string
}

// Service чат с AI-двойником на сайте
type Service struct {
	LLM    service.ILLMProvider
	Config Config
	Log    *slog.Logger
}

func New(llm service.ILLMProvider, cfg Config, log *slog.Logger) *Service {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = defaultMaxChars
	}
	return &Service{
		LLM:    llm,
		Config: cfg,
		Log:    log,
	}
}
