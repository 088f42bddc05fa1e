package server

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/middlewares"
	"github.com/bormotovilya-ops/SpaceGrow/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const (
	chatPath    = "/api/chat"
	metricsPath = "/metrics"
)

type Config struct {
	Host                    string        `envconfig:"HOST"`
	Port                    string        `envconfig:"PORT" default:"8080"`
	WriteTimeout            time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ReadTimeout             time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	ReadHeaderTimeout       time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"3s"`
	IdleTimeout             time.Duration `envconfig:"IDLE_TIMEOUT" default:"15s"`
	EnableLoggingMiddleware bool          `envconfig:"ENABLE_LOGGING_MIDDLEWARE" default:"false"`
	CORSOrigins             []string      `envconfig:"CORS_ORIGINS" default:"*"`
	// запросов к чату с одного IP за ChatRateWindow; 0 - без ограничения
	ChatRateLimit  int           `envconfig:"CHAT_RATE_LIMIT" default:"20"`
	ChatRateWindow time.Duration `envconfig:"CHAT_RATE_WINDOW" default:"1m"`
	// EnableMetrics метрики HTTP и GET /metrics для Prometheus
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
}

type Controller interface {
	RegisterRoutes(router *gin.Engine)
}

// NewRouter gin с общими middleware и маршрутами всех контроллеров
func NewRouter(cfg *Config, logger *slog.Logger, controllers ...Controller) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middlewares.RequestID(), middlewares.RecoveryLogger(logger))
	if cfg.EnableLoggingMiddleware {
		router.Use(middlewares.RequestLogger(logger))
	}
	if cfg.EnableMetrics {
		router.Use(middlewares.Metrics())
		router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	}

	for _, controller := range controllers {
		controller.RegisterRoutes(router)
	}
	return router
}

// Handler роутер, обёрнутый в CORS и ограничение частоты для чата
func Handler(cfg *Config, router http.Handler) http.Handler {
	limited := middlewares.LimitPaths(cfg.ChatRateLimit, cfg.ChatRateWindow, chatPath)(router)
	return middlewares.CORS(cfg.CORSOrigins)(limited)
}

func NewHTTPServer(
	cfg *Config,
	logger *slog.Logger,
	controllers ...Controller,
) *http.Server {
	router := NewRouter(cfg, logger, controllers...)

	return &http.Server{
		Handler:           Handler(cfg, router),
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
