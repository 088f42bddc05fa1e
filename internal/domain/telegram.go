package domain

// дока - https://core.telegram.org/bots/api

// Update входящее обновление от Telegram Bot API
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type CallbackQuery struct {
	ID      string        `json:"id"`
	From    *TelegramUser `json:"from,omitempty"`
	Message *Message      `json:"message,omitempty"`
	Data    *string       `json:"data,omitempty"`
}

type Message struct {
	MessageID  int64         `json:"message_id"`
	From       *TelegramUser `json:"from,omitempty"`
	Chat       *Chat         `json:"chat"`
	Date       int64         `json:"date"`
	Text       *string       `json:"text,omitempty"`
	Entities   []Entity      `json:"entities,omitempty"`
	WebAppData *WebAppData   `json:"web_app_data,omitempty"` // данные, отправленные из MiniApp
}

// WebAppData данные из MiniApp (Telegram.WebApp.sendData)
type WebAppData struct {
	Data       string `json:"data"`
	ButtonText string `json:"button_text"`
}

// TelegramUser пользователь Telegram (не domain.User)
type TelegramUser struct {
	ID           int64   `json:"id"`
	IsBot        bool    `json:"is_bot"`
	FirstName    string  `json:"first_name"`
	LastName     *string `json:"last_name,omitempty"`
	Username     *string `json:"username,omitempty"`
	LanguageCode *string `json:"language_code,omitempty"`
}

type Chat struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"` // "private", "group", "supergroup", "channel"
	Title     *string `json:"title,omitempty"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Entity сущность в сообщении (команда, упоминание и т.д.)
type Entity struct {
	Type   string `json:"type"`   // "bot_command", "mention", "url"
	Offset int    `json:"offset"` // смещение в UTF-16 кодовых единицах
	Length int    `json:"length"`
}

// InlineKeyboardMarkup inline-клавиатура под сообщением
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text   string      `json:"text"`
	URL    string      `json:"url,omitempty"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

type WebAppInfo struct {
	URL string `json:"url"`
}

// WebAppButton клавиатура из одной кнопки, открывающей MiniApp
func WebAppButton(text, url string) *InlineKeyboardMarkup {
	if url == "" {
		return nil
	}
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{{Text: text, WebApp: &WebAppInfo{URL: url}}}},
	}
}

// URLButton клавиатура из одной кнопки-ссылки
func URLButton(text, url string) *InlineKeyboardMarkup {
	if url == "" {
		return nil
	}
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{{Text: text, URL: url}}},
	}
}
