package model

import "time"

// DailyCheckIn is one mental-state snapshot per user per calendar day.
// At most one row exists per (user, date); writes use upsert semantics.
type DailyCheckIn struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index:idx_user_checkin_date,unique" json:"user_id"`

	// CheckinDate is truncated to midnight UTC before persisting.
	CheckinDate time.Time `gorm:"not null;index:idx_user_checkin_date,unique;type:date" json:"checkin_date"`

	Mood       string  `gorm:"size:30" json:"mood"`
	Confidence int     `gorm:"not null" json:"confidence"` // 1-10
	Stress     int     `gorm:"not null" json:"stress"`     // 1-10
	SleepHours float64 `json:"sleep_hours"`
	Focus      int     `json:"focus"` // 1-10
	Note       string  `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyCheckIn) TableName() string {
	return "daily_checkins"
}
