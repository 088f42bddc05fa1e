package telegram

type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	UseWebhook     string `envconfig:"USE_WEBHOOK"` // Railway требует строки
	WebhookURL     string `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"`
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT" default:"30"`
	MiniAppURL     string `envconfig:"MINIAPP_URL"`
	APIURL         string `envconfig:"API_URL"`
}

// IsWebhookEnabled парсит строку UseWebhook в boolean
func (c *Config) IsWebhookEnabled() bool {
	return c.UseWebhook == "true" || c.UseWebhook == "1" || c.UseWebhook == "True"
}

// Enabled бот поднимается только с токеном
func (c *Config) Enabled() bool {
	return c.BotToken != ""
}
