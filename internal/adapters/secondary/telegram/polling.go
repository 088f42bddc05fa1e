package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

const (
	retryDelay            = 5 * time.Second
	defaultPollingTimeout = 30
)

// UpdateHandler функция для обработки обновлений от Telegram
type UpdateHandler func(ctx context.Context, update *domain.Update) error

// Poller реализует long polling для получения обновлений от Telegram
type Poller struct {
	client       *Client
	timeout      int
	handler      UpdateHandler
	lastUpdateID int64
	log          *slog.Logger
	httpClient   *http.Client // отдельный HTTP клиент с увеличенным таймаутом для polling
}

func NewPoller(client *Client, config *Config, handler UpdateHandler, log *slog.Logger) *Poller {
	timeout := config.PollingTimeout
	if timeout <= 0 {
		timeout = defaultPollingTimeout
	}

	return &Poller{
		client:  client,
		timeout: timeout,
		handler: handler,
		log:     log,
		httpClient: &http.Client{
			// polling timeout + запас
			Timeout: time.Duration(timeout+10) * time.Second,
		},
	}
}

// Start блокирующий цикл long polling до отмены ctx
func (p *Poller) Start(ctx context.Context) error {
	p.log.Info("starting telegram polling", "timeout", p.timeout)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("polling stopped")
			return ctx.Err()
		default:
		}

		updates, err := p.getUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.log.Error("failed to get updates", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			continue
		}

		for i := range updates {
			update := &updates[i]

			if update.UpdateID >= p.lastUpdateID {
				p.lastUpdateID = update.UpdateID + 1
			}

			// ошибка одного апдейта не останавливает цикл
			if err := p.handler(ctx, update); err != nil {
				p.log.Error("failed to handle update",
					"error", err,
					"update_id", update.UpdateID,
				)
			}
		}
	}
}

func (p *Poller) getUpdates(ctx context.Context) ([]domain.Update, error) {
	req := struct {
		Offset  int64 `json:"offset"`
		Timeout int   `json:"timeout"`
	}{p.lastUpdateID, p.timeout}

	apiResp, err := p.client.do(ctx, p.httpClient, "getUpdates", req)
	if err != nil {
		var apiErr *APIError
		// 409 - активен webhook или второй экземпляр, пробуем в следующей итерации
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict {
			p.log.Warn("telegram API conflict - another bot instance or webhook is active",
				"description", apiErr.Description,
			)
			return nil, nil
		}
		return nil, err
	}

	var updates []domain.Update
	if err := json.Unmarshal(apiResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updates: %w", err)
	}
	return updates, nil
}

// DeleteWebhook снимает webhook: пока он установлен, getUpdates отвечает 409
func (p *Poller) DeleteWebhook(ctx context.Context) error {
	return p.client.DeleteWebhook(ctx)
}
