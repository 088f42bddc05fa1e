package domain

import "time"

// IdentitySource откуда пришла связка cookie_id <-> tg_user_id
type IdentitySource string

const (
	IdentitySourceTelegram IdentitySource = "telegram"
	IdentitySourceSite     IdentitySource = "site"
	IdentitySourceMiniapp  IdentitySource = "miniapp"
)

func (s IdentitySource) IsValid() bool {
	switch s {
	case IdentitySourceTelegram, IdentitySourceSite, IdentitySourceMiniapp:
		return true
	default:
		return false
	}
}

// IdentityLink связь анонимного посетителя с пользователем Telegram
type IdentityLink struct {
	ID        int64          `json:"id" db:"id"`
	TgUserID  int64          `json:"tg_user_id" db:"tg_user_id"`
	CookieID  string         `json:"cookie_id" db:"cookie_id"`
	Source    IdentitySource `json:"source" db:"source"`
	LinkedAt  time.Time      `json:"linked_at" db:"linked_at"`
	MiniappID *string        `json:"miniapp_id,omitempty" db:"miniapp_id"`
}

// LinkedUser пользователь вместе с данными последней связки (поля связки пустые, если её нет)
type LinkedUser struct {
	User
	CookieID *string    `json:"cookie_id,omitempty" db:"cookie_id"`
	Source   *string    `json:"source,omitempty" db:"source"`
	LinkedAt *time.Time `json:"linked_at,omitempty" db:"linked_at"`
}
