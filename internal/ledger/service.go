package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"earnquick-bot/internal/config"
)

// Messenger delivers chat notifications. Implemented by the Telegram bot.
type Messenger interface {
	Send(ctx context.Context, userID int64, text string) error
}

const (
	msgQuotaExceeded   = "🚫 Sorry, your ad quota for today is full."
	msgJoined          = "🎉 You joined successfully!"
	msgNewReferral     = "🎁 New referral! %.2f points were added to your account."
	msgWithdrawPending = "⏳ Withdrawal request (%.2f points) has been received."
	msgNoBalance       = "❌ Insufficient balance."
	msgBadAmount       = "❌ Invalid withdrawal amount."
)

// Service implements the reward ledger: ad quota crediting, referral linking,
// withdrawal requests and the dashboard snapshot.
type Service struct {
	store   Store
	msg     Messenger
	rewards config.Rewards
	log     *zap.Logger

	now func() time.Time
}

func NewService(store Store, msg Messenger, rewards config.Rewards, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		msg:     msg,
		rewards: rewards,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) today() string {
	return s.now().UTC().Format(DateLayout)
}

// Register creates the user's ledger row on first contact.
func (s *Service) Register(ctx context.Context, userID int64) error {
	return s.store.EnsureUser(ctx, userID)
}

// CompleteAd credits one rewarded ad view if the user is below today's
// quota. On exhaustion the user is told in chat; a successful credit is
// silent, the dashboard reflects it.
func (s *Service) CompleteAd(ctx context.Context, userID int64) (bool, error) {
	if err := s.store.EnsureUser(ctx, userID); err != nil {
		return false, err
	}
	credited, err := s.store.CreditAd(ctx, userID, s.rewards.AdIncome, s.today(), s.rewards.DailyAdLimit)
	if err != nil {
		return false, err
	}
	if !credited {
		s.notify(ctx, userID, msgQuotaExceeded)
	}
	return credited, nil
}

// Link attaches userID to referrerID at most once and pays out the referral
// bonus. Both parties are notified on success; a failed precondition is
// silent and mutates nothing.
func (s *Service) Link(ctx context.Context, userID, referrerID int64) (bool, error) {
	if referrerID <= 0 || referrerID == userID {
		return false, nil
	}
	linked, err := s.store.LinkReferral(ctx, userID, referrerID, s.rewards.ReferralBonus)
	if err != nil || !linked {
		return false, err
	}
	s.notify(ctx, userID, msgJoined)
	s.notify(ctx, referrerID, fmt.Sprintf(msgNewReferral, s.rewards.ReferralBonus))
	return true, nil
}

// RequestWithdrawal debits the balance and records a Pending payout. The
// outcome is always reported to the user in chat.
func (s *Service) RequestWithdrawal(ctx context.Context, userID int64, amount float64, method, number string) (bool, error) {
	if amount <= 0 {
		s.notify(ctx, userID, msgBadAmount)
		return false, nil
	}
	accepted, err := s.store.DebitForWithdrawal(ctx, userID, amount, method, number)
	if err != nil {
		return false, err
	}
	if accepted {
		s.notify(ctx, userID, fmt.Sprintf(msgWithdrawPending, amount))
	} else {
		s.notify(ctx, userID, msgNoBalance)
	}
	return accepted, nil
}

func (s *Service) notify(ctx context.Context, userID int64, text string) {
	if err := s.msg.Send(ctx, userID, text); err != nil {
		s.log.Error("notification failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
