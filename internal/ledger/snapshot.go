package ledger

import (
	"context"
	"fmt"
)

// Snapshot is the read-only dashboard projection served by GET /data. Field
// names are part of the mini-app contract.
type Snapshot struct {
	Balance           string  `json:"balance"`
	DailyAdsSeen      int     `json:"daily_ads_seen"`
	DailyAdLimit      int     `json:"daily_ad_limit"`
	AdIncome          float64 `json:"ad_income"`
	TotalReferrals    int     `json:"total_referrals"`
	ReferralBonus     float64 `json:"referral_bonus_tk"`
	MinWithdrawPoints int     `json:"min_withdraw_points"`
}

// Snapshot projects the user's ledger state. An unknown user gets the
// zero-valued document, never an error. The ads-seen counter is reported as
// 0 when the stored date is not today; that reset is derived, not persisted.
func (s *Service) Snapshot(ctx context.Context, userID int64) (Snapshot, error) {
	snap := Snapshot{
		Balance:           "0.00",
		DailyAdLimit:      s.rewards.DailyAdLimit,
		AdIncome:          s.rewards.AdIncome,
		ReferralBonus:     s.rewards.ReferralBonus,
		MinWithdrawPoints: s.rewards.MinWithdrawPoints,
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return snap, err
	}
	if user == nil {
		return snap, nil
	}

	snap.Balance = fmt.Sprintf("%.2f", user.Balance)
	snap.TotalReferrals = user.TotalReferrals
	if user.LastAdDate != nil && *user.LastAdDate == s.today() {
		snap.DailyAdsSeen = user.DailyAdsSeen
	}
	return snap, nil
}
