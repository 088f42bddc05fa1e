package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
)

// Провайдеры текстовой модели
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderMock   = "mock"
)

type Config struct {
	Provider    string        `envconfig:"PROVIDER" default:"mock"`
	APIKey      string        `envconfig:"API_KEY"`
	Model       string        `envconfig:"MODEL"`
	BaseURL     string        `envconfig:"BASE_URL"` // для OpenAI-совместимых API (Groq, HF router)
	Temperature float32       `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"500"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxChars    int           `envconfig:"MAX_CHARS" default:"300"`
	// KnowledgeFile markdown с фактами о сайте, дописывается к системной инструкции
	KnowledgeFile string `envconfig:"KNOWLEDGE_FILE"`
	// отказов подряд до размыкания цепи и время до пробного запроса
	BreakerFailures uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"BREAKER_TIMEOUT" default:"1m"`
}

// NewProvider провайдер по конфигу; без ключа для gemini/groq откатывается на mock.
// Внешние провайдеры оборачиваются в Breaker
func (c *Config) NewProvider(ctx context.Context, log *slog.Logger) (service.ILLMProvider, error) {
	provider := strings.ToLower(strings.TrimSpace(c.Provider))

	if provider != ProviderMock && c.APIKey == "" {
		log.Warn("llm api key is not set, using mock provider", "provider", provider)
		return NewMock(), nil
	}

	var remote service.ILLMProvider
	switch provider {
	case ProviderGemini:
		gemini, err := NewGemini(ctx, c)
		if err != nil {
			return nil, err
		}
		remote = gemini
	case ProviderGroq:
		remote = NewGroq(c)
	case ProviderMock, "":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	return NewBreaker(remote, c.BreakerFailures, c.BreakerTimeout, log), nil
}
