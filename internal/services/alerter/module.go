package alerter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
)

// окно, в котором одинаковый алерт не дублируется
const defaultQuietPeriod = 10 * time.Minute

// Sender транспорт алертов
type Sender interface {
	SendAlert(ctx context.Context, message string) error
}

// Service реализует IAlerterService: префикс приложения, подавление повторов,
// без транспорта алерт только пишется в лог
type Service struct {
	sender      Sender
	app         string
	quietPeriod time.Duration
	log         *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

// New sender может быть nil
func New(sender Sender, app string, log *slog.Logger) *Service {
	return &Service{
		sender:      sender,
		app:         app,
		quietPeriod: defaultQuietPeriod,
		log:         log,
		lastSent:    make(map[string]time.Time),
		now:         time.Now,
	}
}

var _ service.IAlerterService = (*Service)(nil)

func (s *Service) SendAlert(ctx context.Context, message string) error {
	if s.suppressed(message) {
		s.log.Debug("alert suppressed", "message", message)
		return nil
	}

	if s.sender == nil {
		s.log.Error("alert", "message", message)
		return nil
	}

	text := fmt.Sprintf("[%s] %s", s.app, message)
	if err := s.sender.SendAlert(ctx, text); err != nil {
		s.forget(message)
		return err
	}
	return nil
}

func (s *Service) suppressed(message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.lastSent[message]; ok && now.Sub(last) < s.quietPeriod {
		return true
	}
	s.lastSent[message] = now

	for k, t := range s.lastSent {
		if now.Sub(t) >= s.quietPeriod {
			delete(s.lastSent, k)
		}
	}
	return false
}

func (s *Service) forget(message string) {
	s.mu.Lock()
	delete(s.lastSent, message)
	s.mu.Unlock()
}
