package app

import (
	"fmt"
	"time"

	server "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http"
	alerterAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/kafka"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/llm"
	redisAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/s3"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/telegram"
	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database  sqlstore.Config           `envconfig:"DATABASE"`
	Log       *logger.Config            `envconfig:"LOG"`
	Server    *server.Config            `envconfig:"APISERVER"`
	Telegram  *telegram.Config          `envconfig:"TELEGRAM"`
	LLM       *llm.Config               `envconfig:"LLM"`
	Redis     *redisAdapter.Config      `envconfig:"REDIS"`
	S3        *s3Adapter.Config         `envconfig:"S3"`
	Kafka     kafkaAdapter.KafkaConfigs `envconfig:"KAFKA"`
	Alerter   *alerterAdapter.Config    `envconfig:"ALERTER"`
	Reminders RemindersConfig           `envconfig:"REMINDERS"`
	Segments  SegmentsConfig            `envconfig:"SEGMENTS"`
	Cache     CacheConfig               `envconfig:"CACHE"`
}

// RemindersConfig напоминания о незавершённой диагностике
type RemindersConfig struct {
	Interval time.Duration `envconfig:"INTERVAL" default:"1m"`
	// 0 - задержка по умолчанию для вида напоминания
	FirstDelay  time.Duration `envconfig:"FIRST_DELAY"`
	SecondDelay time.Duration `envconfig:"SECOND_DELAY"`
}

// Delays только заданные задержки
func (c RemindersConfig) Delays() map[domain.ReminderKind]time.Duration {
	delays := make(map[domain.ReminderKind]time.Duration, 2)
	if c.FirstDelay > 0 {
		delays[domain.ReminderFirst] = c.FirstDelay
	}
	if c.SecondDelay > 0 {
		delays[domain.ReminderSecond] = c.SecondDelay
	}
	return delays
}

type SegmentsConfig struct {
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1h"`
	ReportCacheTTL  time.Duration `envconfig:"REPORT_CACHE_TTL" default:"10m"`
	// ActionsHour час суток по Мск для автоматических рассылок
	ActionsHour int `envconfig:"ACTIONS_HOUR" default:"12"`
}

// CacheConfig in-memory кэша, когда Redis не настроен
type CacheConfig struct {
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	// envconfig не умеет определять размер слайса, список Kafka грузим вручную
	if err := cfg.Kafka.Load(envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, _, err := sqlstore.ParseBackend(c.Database.URL); err != nil {
		return fmt.Errorf("invalid database url: %w", err)
	}
	if c.Telegram.IsWebhookEnabled() && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required when use_webhook is true")
	}
	if c.Segments.ActionsHour < 0 || c.Segments.ActionsHour > 23 {
		return fmt.Errorf("segments actions hour must be in [0, 23], got %d", c.Segments.ActionsHour)
	}
	return nil
}
