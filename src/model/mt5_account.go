package model

import "time"

// MT5Account stores the broker connection a user linked for trade sync.
// The investor password is encrypted at rest (see src/security) and is
// never serialized.
type MT5Account struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index:idx_user_mt5,unique" json:"user_id"`

	Server string `gorm:"size:100;not null" json:"server"` // e.g. "ICMarkets-Demo"
	Login  string `gorm:"size:30;not null" json:"login"`

	PasswordHash string `gorm:"column:password_enc;type:text" json:"-"`

	SyncEnabled bool `gorm:"not null;default:true" json:"sync_enabled"`

	// LastTicket is the highest broker deal ticket already reconciled.
	// Sync resumes from here so repeated polls stay idempotent.
	LastTicket   int64      `gorm:"not null;default:0" json:"last_ticket"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MT5Account) TableName() string {
	return "mt5_accounts"
}
