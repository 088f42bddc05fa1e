package domain

import "time"

// User пользователь Telegram-бота (таблица users)
type User struct {
	UserID                 int64      `json:"user_id" db:"user_id"`
	Username               *string    `json:"username,omitempty" db:"username"`
	FirstName              *string    `json:"first_name,omitempty" db:"first_name"`
	LastName               *string    `json:"last_name,omitempty" db:"last_name"`
	HasStartedDiagnostics  bool       `json:"has_started_diagnostics" db:"has_started_diagnostics"`
	FirstReminderSent      bool       `json:"first_reminder_sent" db:"first_reminder_sent"`
	SecondReminderSent     bool       `json:"second_reminder_sent" db:"second_reminder_sent"`
	StartedAt              *time.Time `json:"started_at,omitempty" db:"started_at"`
	DiagnosticsStartedAt   *time.Time `json:"diagnostics_started_at,omitempty" db:"diagnostics_started_at"`
	DiagnosticsCompletedAt *time.Time `json:"diagnostics_completed_at,omitempty" db:"diagnostics_completed_at"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// DisplayName имя для обращения в сообщениях
func (u *User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return ""
}

// ReminderKind тип напоминания о диагностике
type ReminderKind string

const (
	ReminderFirst  ReminderKind = "first"
	ReminderSecond ReminderKind = "second"
)

// DefaultDelay задержка от started_at до отправки напоминания
func (k ReminderKind) DefaultDelay() time.Duration {
	switch k {
	case ReminderFirst:
		return 10 * time.Minute
	case ReminderSecond:
		return 24 * time.Hour
	default:
		return 0
	}
}

func (k ReminderKind) IsValid() bool {
	return k == ReminderFirst || k == ReminderSecond
}
