package repository

import (
	"context"
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/domain"
	"github.com/bormotovilya-ops/SpaceGrow/internal/ports/persistence"
)

// IUserRepo пользователи Telegram-бота
type IUserRepo interface {
	// CreateOrUpdate создаёт пользователя или обновляет имя и started_at, пока диагностика не начата
	CreateOrUpdate(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	ListIDs(ctx context.Context) ([]int64, error)
	MarkDiagnosticsStarted(ctx context.Context, userID int64) error
	MarkDiagnosticsCompleted(ctx context.Context, userID int64) error
	// ListForReminder пользователи, которым пора отправить напоминание (started_at <= cutoff)
	ListForReminder(ctx context.Context, kind domain.ReminderKind, cutoff time.Time) ([]domain.User, error)
	MarkReminderSent(ctx context.Context, userID int64, kind domain.ReminderKind) error

	// EnsureTx создаёт минимальную запись пользователя, если её нет
	EnsureTx(ctx context.Context, q persistence.Querier, userID int64) error
	MarkDiagnosticsCompletedTx(ctx context.Context, q persistence.Querier, userID int64) error
}
