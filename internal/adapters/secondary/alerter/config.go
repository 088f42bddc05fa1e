package alerter

type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN"`
	ChatID          int64  `envconfig:"CHAT_ID"`
	MessageThreadID *int64 `envconfig:"MESSAGE_THREAD_ID"`
}

// Enabled алерты уходят в Telegram только при заданных токене и чате
func (c *Config) Enabled() bool {
	return c != nil && c.BotToken != "" && c.ChatID != 0
}
