package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/pkg/metrics"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = time.Minute
)

// Breaker размыкает цепь после серии отказов провайдера: пока цепь открыта,
// чат сразу получает ошибку вместо ожидания таймаута
type Breaker struct {
	provider service.ILLMProvider
	cb       *gobreaker.CircuitBreaker[string]
	name     string
}

// NewBreaker failures подряд открывают цепь на timeout, затем одна пробная попытка
func NewBreaker(provider service.ILLMProvider, failures uint32, timeout time.Duration, log *slog.Logger) *Breaker {
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}

	name := "llm-" + provider.Name()
	metrics.BreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// отмена запроса клиентом не говорит о здоровье провайдера
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Breaker{provider: provider, cb: cb, name: name}
}

func (b *Breaker) Name() string { return b.provider.Name() }

func (b *Breaker) Complete(ctx context.Context, system, user string) (string, error) {
	answer, err := b.cb.Execute(func() (string, error) {
		return b.provider.Complete(ctx, system, user)
	})

	switch {
	case err == nil:
		metrics.BreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.BreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return "", fmt.Errorf("%s unavailable: %w", b.provider.Name(), err)
	default:
		metrics.BreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return answer, err
}

// State текущее состояние цепи
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

var _ service.ILLMProvider = (*Breaker)(nil)
