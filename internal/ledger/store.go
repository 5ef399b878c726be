package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"earnquick-bot/internal/models"
)

// DateLayout is the calendar-date format stored in users.last_ad_date.
const DateLayout = "2006-01-02"

// Store is the ledger persistence layer. Every mutation is a single
// conditional statement (or one transaction of them) whose preconditions
// live in the WHERE clause, so concurrent requests for the same user cannot
// interleave a stale read with a write.
type Store interface {
	EnsureUser(ctx context.Context, id int64) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreditAd(ctx context.Context, id int64, income float64, today string, limit int) (bool, error)
	LinkReferral(ctx context.Context, userID, referrerID int64, bonus float64) (bool, error)
	DebitForWithdrawal(ctx context.Context, userID int64, amount float64, method, number string) (bool, error)
}

var (
	errNotLinked    = errors.New("referral preconditions not met")
	errInsufficient = errors.New("insufficient balance")
)

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// EnsureUser registers a user row with default values if none exists yet.
func (s *gormStore) EnsureUser(ctx context.Context, id int64) error {
	user := models.User{ID: id}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("ensure user %d: %w", id, err)
	}
	return nil
}

// GetUser returns nil without an error when the user is unknown.
func (s *gormStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// CreditAd applies one rewarded-ad credit if the user is still below the
// daily limit. The quota check counts only views recorded for today: a
// counter left over from a previous day is clamped, the write stores 1
// rather than stale+1.
func (s *gormStore) CreditAd(ctx context.Context, id int64, income float64, today string, limit int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND (last_ad_date IS NULL OR last_ad_date <> ? OR daily_ads_seen < ?)", id, today, limit).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", income),
			"daily_ads_seen": gorm.Expr("CASE WHEN last_ad_date = ? THEN daily_ads_seen + 1 ELSE 1 END", today),
			"last_ad_date":   today,
		})
	if res.Error != nil {
		return false, fmt.Errorf("credit ad for user %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// LinkReferral attaches userID to referrerID and pays the bonus. The link
// lands only when the user has no referrer yet, is not the referrer, and the
// referrer row exists; otherwise the transaction rolls back untouched.
func (s *gormStore) LinkReferral(ctx context.Context, userID, referrerID int64, bonus float64) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND referrer_id IS NULL AND id <> ?", userID, referrerID).
			Update("referrer_id", referrerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotLinked
		}

		res = tx.Model(&models.User{}).
			Where("id = ?", referrerID).
			Updates(map[string]interface{}{
				"total_referrals": gorm.Expr("total_referrals + 1"),
				"balance":         gorm.Expr("balance + ?", bonus),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Unknown referrer, take the link back.
			return errNotLinked
		}
		return nil
	})
	if errors.Is(err, errNotLinked) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("link user %d to referrer %d: %w", userID, referrerID, err)
	}
	return true, nil
}

// DebitForWithdrawal decrements the balance and records the Pending payout
// row. Both happen or neither does.
func (s *gormStore) DebitForWithdrawal(ctx context.Context, userID int64, amount float64, method, number string) (bool, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficient
		}

		withdrawal := models.Withdrawal{
			UserID: userID,
			Amount: amount,
			Method: method,
			Number: number,
			Status: models.WithdrawalStatusPending,
		}
		return tx.Create(&withdrawal).Error
	})
	if errors.Is(err, errInsufficient) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("withdraw %.2f for user %d: %w", amount, userID, err)
	}
	return true, nil
}
