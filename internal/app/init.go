package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	server "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http"
	alerterController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/alerter"
	analyticsController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/analytics"
	chatController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/chat"
	healthcheckController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/healthcheck"
	identityController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/identity"
	menuController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/menu"
	reportController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/report"
	telegramController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/telegram"
	trackingController "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/http/controllers/tracking"
	kafkaConsumerAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/kafka"
	kafkaHandlers "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/primary/kafka/handlers"
	alerterAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/kafka"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/inmemory"
	redisAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/s3"
	"github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/storage/sqlstore"
	tgAdapter "github.com/bormotovilya-ops/SpaceGrow/internal/adapters/secondary/telegram"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
	kafkaPorts "github.com/bormotovilya-ops/SpaceGrow/internal/ports/kafka"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/service"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/storage"
	analyticsRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/analytics"
	diagnosticsRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/diagnostics"
	eventRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/event"
	identityRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/identity"
	sessionRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/session"
	userRepo "github.com/bormotovilya-ops/SpaceGrow/internal/repository/user"
	alerterService "github.com/bormotovilya-ops/SpaceGrow/internal/services/alerter"
	jobScheduler "github.com/bormotovilya-ops/SpaceGrow/internal/services/jobs"
	telegramService "github.com/bormotovilya-ops/SpaceGrow/internal/services/telegram"
	analyticsUsecase "github.com/bormotovilya-ops/SpaceGrow/internal/usecases/analytics"
	botUsecase "github.com/bormotovilya-ops/SpaceGrow/internal/usecases/bot"
	chatUsecase "github.com/bormotovilya-ops/SpaceGrow/internal/usecases/chat"
	reportUsecase "github.com/bormotovilya-ops/SpaceGrow/internal/usecases/report"
	segmentationUsecase "github.com/bormotovilya-ops/SpaceGrow/internal/usecases/segmentation"
	trackingUsecase "github.com/bormotovilya-ops/SpaceGrow/internal/usecases/tracking"
)

type Dependencies struct {
	DB             *sqlstore.DB
	HTTPServer     *http.Server
	TelegramPoller *tgAdapter.Poller
	KafkaProducers map[string]*kafkaAdapter.Producer
	KafkaConsumers map[string]*kafkaConsumerAdapter.Consumer
	Cache          cache.Cache
	JobScheduler   *jobScheduler.Scheduler
}

// initDependencies инициализирует все зависимости приложения
func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := sqlstore.Open(ctx, a.Cfg.Database, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	repos := a.initRepositories(db)
	external := a.initExternalServices(ctx)

	producers := a.initKafkaProducers()
	useCases, err := a.initUseCases(ctx, db, repos, external, producers)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	consumers := a.initKafkaConsumers(useCases.Tracking)

	tg, err := a.initTelegram(ctx, repos, useCases)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init telegram: %w", err)
	}

	return &Dependencies{
		DB:             db,
		HTTPServer:     a.initHTTP(db, useCases, tg, external.Alerter),
		TelegramPoller: tg.poller,
		KafkaProducers: producers,
		KafkaConsumers: consumers,
		Cache:          external.Cache,
		JobScheduler:   a.initJobScheduler(external, useCases, tg),
	}, nil
}

// repositories содержит инициализированные репозитории
type repositories struct {
	User        repository.IUserRepo
	Session     repository.ISessionRepo
	Event       repository.IEventRepo
	Identity    repository.IIdentityRepo
	Diagnostics repository.IDiagnosticsRepo
	Analytics   repository.IAnalyticsRepo
}

func (a *App) initRepositories(db *sqlstore.DB) *repositories {
	users := userRepo.New(db, a.Log)
	return &repositories{
		User:        users,
		Session:     sessionRepo.New(db, a.Log),
		Event:       eventRepo.New(db, a.Log),
		Identity:    identityRepo.New(db, users, a.Log),
		Diagnostics: diagnosticsRepo.New(db, users, a.Log),
		Analytics:   analyticsRepo.New(db, a.Log),
	}
}

// externalServices необязательные внешние сервисы
type externalServices struct {
	Alerter service.IAlerterService
	Cache   cache.Cache
	// Sweeper только для in-memory кэша
	Sweeper jobScheduler.Sweeper
	// Archive nil без S3
	Archive storage.IS3Client
}

func (a *App) initExternalServices(ctx context.Context) *externalServices {
	services := &externalServices{}

	// без транспорта алерты только пишутся в лог
	var sender alerterService.Sender
	if client := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log); client != nil {
		sender = client
	} else {
		a.Log.Warn("alerter is not configured, alerts go to log only")
	}
	services.Alerter = alerterService.New(sender, a.Name, a.Log)

	if a.Cfg.Redis.Enabled() {
		redisClient, err := a.Cfg.Redis.NewConnection(ctx)
		if err != nil {
			a.Log.Warn("failed to init redis cache, falling back to in-memory", "error", err)
		} else {
			services.Cache = redisAdapter.NewClient(redisClient, a.Cfg.Redis.KeyPrefix)
			a.Log.Info("redis cache connected successfully")
		}
	}
	if services.Cache == nil {
		memory := inmemory.New()
		services.Cache = memory
		services.Sweeper = memory
		a.Log.Info("using in-memory cache")
	}

	if a.Cfg.S3.Enabled() {
		minioClient, err := a.Cfg.S3.NewClient(ctx)
		if err != nil {
			a.Log.Warn("failed to init s3, report archive disabled", "error", err)
		} else {
			services.Archive = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
			a.Log.Info("report archive enabled", "bucket", a.Cfg.S3.Bucket)
		}
	} else {
		a.Log.Warn("s3 is not configured, report archive disabled")
	}

	return services
}

// initKafkaProducers producer событий трекинга, если описан
func (a *App) initKafkaProducers() map[string]*kafkaAdapter.Producer {
	producers := make(map[string]*kafkaAdapter.Producer)

	cfg := a.Cfg.Kafka.Find(kafkaAdapter.EventsStream)
	if cfg == nil {
		a.Log.Warn("kafka events stream is not configured, events are not published")
		return producers
	}

	prod, err := kafkaAdapter.NewProducer(cfg, a.Log)
	if err != nil {
		a.Log.Warn("failed to create kafka producer", "error", err, "name", kafkaAdapter.EventsStream)
		return producers
	}
	producers[kafkaAdapter.EventsStream] = prod
	return producers
}

// initKafkaConsumers consumer входящих команд трекинга, если описан
func (a *App) initKafkaConsumers(tracking *trackingUsecase.Service) map[string]*kafkaConsumerAdapter.Consumer {
	consumers := make(map[string]*kafkaConsumerAdapter.Consumer)

	cfg := a.Cfg.Kafka.Find(kafkaAdapter.TrackingStream)
	if cfg == nil || cfg.ConsumerGroup == "" {
		return consumers
	}

	consumer, err := kafkaConsumerAdapter.NewConsumer(cfg, kafkaHandlers.NewTrackHandler(tracking, a.Log), a.Log)
	if err != nil {
		a.Log.Warn("failed to create kafka consumer", "error", err, "name", kafkaAdapter.TrackingStream)
		return consumers
	}
	consumers[kafkaAdapter.TrackingStream] = consumer
	return consumers
}

type useCases struct {
	Tracking     *trackingUsecase.Service
	Analytics    *analyticsUsecase.Service
	Segmentation *segmentationUsecase.Service
	Report       *reportUsecase.Service
	Chat         *chatUsecase.Service
}

func (a *App) initUseCases(
	ctx context.Context,
	db *sqlstore.DB,
	repos *repositories,
	external *externalServices,
	producers map[string]*kafkaAdapter.Producer,
) (*useCases, error) {
	// интерфейс не должен получить типизированный nil
	var publisher kafkaPorts.IKafkaProducer
	if prod, ok := producers[kafkaAdapter.EventsStream]; ok {
		publisher = prod
	}

	llmProvider, err := a.Cfg.LLM.NewProvider(ctx, a.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init llm provider: %w", err)
	}
	a.Log.Info("llm provider ready", "provider", llmProvider.Name())

	knowledge, err := a.loadKnowledge()
	if err != nil {
		return nil, err
	}

	segmentation := segmentationUsecase.New(
		repos.User,
		repos.Analytics,
		nil, // мессенджер появляется вместе с ботом
		segmentationUsecase.Config{
			MiniAppURL: a.Cfg.Telegram.MiniAppURL,
		},
		a.Log,
	)

	return &useCases{
		Tracking: trackingUsecase.New(
			db,
			repos.User,
			repos.Session,
			repos.Event,
			repos.Identity,
			repos.Diagnostics,
			publisher,
			a.Log,
		),
		Analytics:    analyticsUsecase.New(repos.Analytics, a.Log),
		Segmentation: segmentation,
		Report: reportUsecase.New(
			repos.Session,
			repos.Event,
			repos.Identity,
			segmentation,
			external.Cache,
			external.Archive,
			reportUsecase.Config{
				CacheTTL:      a.Cfg.Segments.ReportCacheTTL,
				ArchiveURLTTL: a.Cfg.S3.URLTTL,
			},
			a.Log,
		),
		Chat: chatUsecase.New(llmProvider, chatUsecase.Config{
			MaxChars:  a.Cfg.LLM.MaxChars,
			Knowledge: knowledge,
		}, a.Log),
	}, nil
}

// loadKnowledge база знаний для чата, пустая строка если файл не задан
func (a *App) loadKnowledge() (string, error) {
	if a.Cfg.LLM.KnowledgeFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(a.Cfg.LLM.KnowledgeFile)
	if err != nil {
		return "", fmt.Errorf("failed to read knowledge file: %w", err)
	}
	a.Log.Info("chat knowledge loaded", "file", a.Cfg.LLM.KnowledgeFile, "bytes", len(data))
	return string(data), nil
}

// telegramDeps бот и способ получения апдейтов; пустая структура, если токен не задан
type telegramDeps struct {
	service *telegramService.Service
	bot     *botUsecase.Service
	poller  *tgAdapter.Poller
}

func (a *App) initTelegram(ctx context.Context, repos *repositories, uc *useCases) (*telegramDeps, error) {
	if !a.Cfg.Telegram.Enabled() {
		a.Log.Warn("telegram bot token is not set, bot disabled")
		return &telegramDeps{}, nil
	}

	client := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	if a.Cfg.Telegram.APIURL != "" {
		client = tgAdapter.NewClientWithBaseURL(a.Cfg.Telegram.APIURL, a.Cfg.Telegram.BotToken, a.Log)
	}

	tgSvc := telegramService.New(client, a.Log)
	bot := botUsecase.New(repos.User, uc.Tracking, tgSvc, a.Cfg.Telegram.MiniAppURL, a.Log)
	bot.ReminderDelays = a.Cfg.Reminders.Delays()
	tgSvc.SetBotService(bot)
	uc.Segmentation.Messenger = tgSvc

	if err := a.registerBotCommands(ctx, client); err != nil {
		a.Log.Warn("failed to register bot commands", "error", err)
	}

	deps := &telegramDeps{service: tgSvc, bot: bot}

	a.Log.Info("telegram configuration",
		"use_webhook", a.Cfg.Telegram.IsWebhookEnabled(),
		"webhook_url", a.Cfg.Telegram.WebhookURL,
	)

	if a.Cfg.Telegram.IsWebhookEnabled() {
		webhookURL := fmt.Sprintf("%s/webhook/", a.Cfg.Telegram.WebhookURL)
		if err := client.SetWebhook(ctx, webhookURL, a.Cfg.Telegram.WebhookSecret); err != nil {
			return nil, fmt.Errorf("failed to set webhook: %w", err)
		}
		a.Log.Info("webhook set successfully", "webhook_url", webhookURL)
		return deps, nil
	}

	a.Log.Warn("polling mode enabled - this should only be used for local development")
	deps.poller = tgAdapter.NewPoller(client, a.Cfg.Telegram, tgSvc.HandleUpdate, a.Log)
	return deps, nil
}

// registerBotCommands меню команд бота в Telegram
func (a *App) registerBotCommands(ctx context.Context, client *tgAdapter.Client) error {
	commands := []tgAdapter.BotCommand{
		{Command: "start", Description: "Начать работу с ботом"},
		{Command: "diagnostics", Description: "Пройти диагностику"},
		{Command: "site", Description: "Открыть сайт"},
		{Command: "help", Description: "Показать справку"},
	}
	return client.SetMyCommands(ctx, commands)
}

// initHTTP HTTP сервер со всеми контроллерами
func (a *App) initHTTP(
	db *sqlstore.DB,
	uc *useCases,
	tg *telegramDeps,
	alerter service.IAlerterService,
) *http.Server {
	controllers := []server.Controller{
		healthcheckController.New(db, a.Log),
		trackingController.New(uc.Tracking, a.Log),
		identityController.New(uc.Tracking, a.Log),
		analyticsController.New(uc.Analytics, uc.Segmentation, a.Log),
		reportController.New(uc.Report, a.Log),
		chatController.New(uc.Chat, a.Log),
		menuController.New(),
		alerterController.New(alerter, a.Log),
	}

	if tg.service != nil && a.Cfg.Telegram.IsWebhookEnabled() {
		controllers = append(controllers, telegramController.New(tg.service, a.Cfg.Telegram.WebhookSecret, a.Log))
	}

	return server.NewHTTPServer(a.Cfg.Server, a.Log, controllers...)
}

// initJobScheduler планировщик фоновых задач
func (a *App) initJobScheduler(external *externalServices, uc *useCases, tg *telegramDeps) *jobScheduler.Scheduler {
	scheduler := jobScheduler.NewScheduler(a.Log, external.Alerter)

	scheduler.Register(jobScheduler.NewSegmentsRefresh(uc.Segmentation, a.Cfg.Segments.RefreshInterval, a.Log))

	if tg.bot != nil {
		scheduler.Register(jobScheduler.NewReminders(tg.bot, a.Cfg.Reminders.Interval, a.Log))
		scheduler.Register(jobScheduler.NewAutomatedActions(uc.Segmentation, a.Cfg.Segments.ActionsHour, a.Log))
	} else {
		a.Log.Warn("bot disabled, reminders and automated actions are not scheduled")
	}

	if external.Sweeper != nil {
		scheduler.Register(jobScheduler.NewCacheSweep(external.Sweeper, a.Cfg.Cache.SweepInterval, a.Log))
	}

	return scheduler
}
