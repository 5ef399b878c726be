package models

import (
	"time"
)

// User is one ledger row per Telegram account, created on first contact and
// never deleted. LastAdDate is a calendar date (YYYY-MM-DD) so the daily
// quota comparison is the same SQL on every driver.
type User struct {
	ID             int64   `gorm:"primaryKey"`
	Balance        float64 `gorm:"not null;default:0"`
	DailyAdsSeen   int     `gorm:"not null;default:0"`
	TotalReferrals int     `gorm:"not null;default:0"`
	LastAdDate     *string `gorm:"size:10"`
	ReferrerID     *int64  `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
