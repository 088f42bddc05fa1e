package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	apiTimeout         = 30 * time.Second
)

// APIResponse базовая структура ответа от Telegram API
type APIResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Client клиент для работы с Telegram Bot API
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

// NewClient создаёт новый клиент для Telegram Bot API
func NewClient(token string, log *slog.Logger) *Client {
	return NewClientWithBaseURL(telegramAPIBaseURL, token, log)
}

// NewClientWithBaseURL клиент с другим адресом API (локальный Bot API сервер, тесты)
func NewClientWithBaseURL(apiURL, token string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: apiTimeout,
		},
		baseURL: apiURL + token,
		log:     log,
	}
}

// SendMessageRequest запрос на отправку сообщения
type SendMessageRequest struct {
	ChatID                int64                        `json:"chat_id"`
	MessageThreadID       *int64                       `json:"message_thread_id,omitempty"`
	Text                  string                       `json:"text"`
	ParseMode             string                       `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                         `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *domain.InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessageResult результат отправки сообщения
type SendMessageResult struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// SendMessage отправляет текстовое сообщение
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.sendMessage(ctx, SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	})
}

// SendMessageWithKeyboard отправляет сообщение с inline-клавиатурой
func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboardMarkup) error {
	return c.sendMessage(ctx, SendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
		ReplyMarkup:           keyboard,
	})
}

// Send отправка с произвольными параметрами запроса (топики форума и т.п.)
func (c *Client) Send(ctx context.Context, req SendMessageRequest) error {
	return c.sendMessage(ctx, req)
}

func (c *Client) sendMessage(ctx context.Context, req SendMessageRequest) error {
	var result SendMessageResult
	if err := c.call(ctx, "sendMessage", req, &result); err != nil {
		c.log.Error("failed to send message",
			"error", err,
			"chat_id", req.ChatID,
		)
		return err
	}

	c.log.Debug("message sent successfully",
		"chat_id", req.ChatID,
		"message_id", result.MessageID,
	)
	return nil
}

// AnswerCallbackQuery снимает "часики" с inline-кнопки
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error {
	req := struct {
		CallbackQueryID string `json:"callback_query_id"`
		Text            string `json:"text,omitempty"`
		ShowAlert       bool   `json:"show_alert,omitempty"`
	}{callbackID, text, showAlert}

	return c.call(ctx, "answerCallbackQuery", req, nil)
}

// GetMe проверяет токен бота
func (c *Client) GetMe(ctx context.Context) (*domain.TelegramUser, error) {
	var me domain.TelegramUser
	if err := c.call(ctx, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// BotCommand представляет команду бота
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// SetMyCommands регистрирует команды бота в меню
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	req := struct {
		Commands []BotCommand `json:"commands"`
	}{commands}

	if err := c.call(ctx, "setMyCommands", req, nil); err != nil {
		return err
	}
	c.log.Info("bot commands registered successfully", "commands_count", len(commands))
	return nil
}

// SetWebhook регистрирует webhook; secret придёт в X-Telegram-Bot-Api-Secret-Token
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	req := struct {
		URL            string   `json:"url"`
		SecretToken    string   `json:"secret_token,omitempty"`
		AllowedUpdates []string `json:"allowed_updates"`
	}{url, secret, []string{"message", "callback_query"}}

	if err := c.call(ctx, "setWebhook", req, nil); err != nil {
		return err
	}
	c.log.Info("webhook registered", "url", url)
	return nil
}

// DeleteWebhook нужен перед long polling, иначе getUpdates отвечает 409
func (c *Client) DeleteWebhook(ctx context.Context) error {
	req := struct {
		DropPendingUpdates bool `json:"drop_pending_updates"`
	}{true}

	if err := c.call(ctx, "deleteWebhook", req, nil); err != nil {
		return err
	}
	c.log.Info("webhook deleted successfully")
	return nil
}

// call POST-запрос к методу Bot API; result может быть nil
func (c *Client) call(ctx context.Context, method string, payload, result any) error {
	apiResp, err := c.do(ctx, c.httpClient, method, payload)
	if err != nil {
		return err
	}
	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method string, payload any) (*APIResponse, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to telegram: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		c.log.Error("failed to unmarshal response",
			"error", err,
			"method", method,
			"status_code", resp.StatusCode,
			"body", string(raw),
		)
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !apiResp.OK {
		return &apiResp, &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	}
	return &apiResp, nil
}

// APIError ответ Bot API с ok=false
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: %s (code: %d)", e.Description, e.Code)
}
