package tracking

import (
	"log/slog"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/kafka"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/repository"
)

// Service сессии, журнал событий, связки идентификаторов и результаты диагностики
type Service struct {
	DB          persistence.Persistence
	Users       repository.IUserRepo
	Sessions    repository.ISessionRepo
	Events      repository.IEventRepo
	Identities  repository.IIdentityRepo
	Diagnostics repository.IDiagnosticsRepo
	// Publisher может быть nil, тогда события не публикуются
	Publisher kafka.IKafkaProducer
	Log       *slog.Logger

	now func() time.Time
}

func New(
	db persistence.Persistence,
	users repository.IUserRepo,
	sessions repository.ISessionRepo,
	events repository.IEventRepo,
	identities repository.IIdentityRepo,
	diagnostics repository.IDiagnosticsRepo,
	publisher kafka.IKafkaProducer,
	log *slog.Logger,
) *Service {
	return &Service{
		DB:          db,
		Users:       users,
		Sessions:    sessions,
		Events:      events,
		Identities:  identities,
		Diagnostics: diagnostics,
		Publisher:   publisher,
		Log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}
