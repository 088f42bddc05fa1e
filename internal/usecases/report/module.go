package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/cache"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/storage"
)

// Segmenter источник сегментации для привязанного пользователя
type Segmenter interface {
	Segment(ctx context.Context, tgUserID int64) *domain.Segmentation
}

type Config struct {
	CacheTTL time.Duration
	// ArchiveURLTTL срок жизни presigned-ссылки на архив отчёта
	ArchiveURLTTL time.Duration
}

// Service персональный отчёт посетителя
type Service struct {
	Sessions   repository.ISessionRepo
	Events     repository.IEventRepo
	Identities repository.IIdentityRepo
	Segments   Segmenter
	// Cache и Archive необязательны
	Cache   cache.Cache
	Archive storage.IS3Client
	Config  Config
	Log     *slog.Logger

	now func() time.Time
}

func New(
	sessions repository.ISessionRepo,
	events repository.IEventRepo,
	identities repository.IIdentityRepo,
	segments Segmenter,
	reportCache cache.Cache,
	archive storage.IS3Client,
	cfg Config,
	log *slog.Logger,
) *Service {
	return &Service{
		Sessions:   sessions,
		Events:     events,
		Identities: identities,
		Segments:   segments,
		Cache:      reportCache,
		Archive:    archive,
		Config:     cfg,
		Log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}
