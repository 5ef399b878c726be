package models

import (
	"time"
)

const (
	WithdrawalStatusPending  = "Pending"
	WithdrawalStatusApproved = "Approved"
	WithdrawalStatusRejected = "Rejected"
)

// Withdrawal is a payout request. This service only ever writes Pending rows;
// status transitions happen in the back office.
type Withdrawal struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    int64   `gorm:"not null;index"`
	Amount    float64 `gorm:"not null"`
	Method    string  `gorm:"size:50"`
	Number    string  `gorm:"size:50"`
	Status    string  `gorm:"size:20;default:'Pending'"`
	CreatedAt time.Time
}
