package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"earnquick-bot/internal/config"
	"earnquick-bot/internal/models"
)

type sentMessage struct {
	userID int64
	text   string
}

type fakeMessenger struct {
	sent []sentMessage
}

func (f *fakeMessenger) Send(_ context.Context, userID int64, text string) error {
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return nil
}

func testRewards() config.Rewards {
	return config.Rewards{
		DailyAdLimit:      10,
		AdIncome:          20.00,
		ReferralBonus:     5.00,
		MinWithdrawPoints: 50000,
		AdTokenTTL:        time.Hour,
	}
}

func newTestService(t *testing.T) (*Service, *fakeMessenger, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	msg := &fakeMessenger{}
	svc := NewService(NewStore(db), msg, testRewards(), zap.NewNop())
	return svc, msg, db
}

func TestCompleteAdCreatesUserAndCredits(t *testing.T) {
	svc, msg, _ := newTestService(t)
	ctx := context.Background()

	credited, err := svc.CompleteAd(ctx, 1)
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Empty(t, msg.sent, "a successful credit is silent")

	snap, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "20.00", snap.Balance)
	assert.Equal(t, 1, snap.DailyAdsSeen)
}

func TestCompleteAdQuotaExhausted(t *testing.T) {
	svc, msg, db := newTestService(t)
	ctx := context.Background()

	today := dateString(time.Now())
	seedUser(t, db, models.User{ID: 2, Balance: 100.00, DailyAdsSeen: 10, LastAdDate: &today})

	credited, err := svc.CompleteAd(ctx, 2)
	require.NoError(t, err)
	assert.False(t, credited)

	user := loadUser(t, db, 2)
	assert.Equal(t, 100.00, user.Balance, "no balance change past the quota")

	require.Len(t, msg.sent, 1)
	assert.Equal(t, int64(2), msg.sent[0].userID)
	assert.Equal(t, msgQuotaExceeded, msg.sent[0].text)
}

func TestLinkReferralScenario(t *testing.T) {
	svc, msg, db := newTestService(t)
	ctx := context.Background()

	// User 7 is already known, user 42 arrives via /start 7.
	require.NoError(t, svc.Register(ctx, 7))
	require.NoError(t, svc.Register(ctx, 42))

	linked, err := svc.Link(ctx, 42, 7)
	require.NoError(t, err)
	assert.True(t, linked)

	user := loadUser(t, db, 42)
	require.NotNil(t, user.ReferrerID)
	assert.Equal(t, int64(7), *user.ReferrerID)

	referrer := loadUser(t, db, 7)
	assert.Equal(t, 1, referrer.TotalReferrals)
	assert.Equal(t, 5.00, referrer.Balance)

	require.Len(t, msg.sent, 2)
	assert.Equal(t, int64(42), msg.sent[0].userID)
	assert.Equal(t, msgJoined, msg.sent[0].text)
	assert.Equal(t, int64(7), msg.sent[1].userID)
	assert.Contains(t, msg.sent[1].text, "5.00")
}

func TestLinkSelfReferral(t *testing.T) {
	svc, msg, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, 42))

	linked, err := svc.Link(ctx, 42, 42)
	require.NoError(t, err)
	assert.False(t, linked)
	assert.Empty(t, msg.sent)
}

func TestLinkKeepsFirstReferrer(t *testing.T) {
	svc, msg, db := newTestService(t)
	ctx := context.Background()

	for _, id := range []int64{42, 7, 9} {
		require.NoError(t, svc.Register(ctx, id))
	}

	linked, err := svc.Link(ctx, 42, 7)
	require.NoError(t, err)
	require.True(t, linked)
	msg.sent = nil

	linked, err = svc.Link(ctx, 42, 9)
	require.NoError(t, err)
	assert.False(t, linked)
	assert.Empty(t, msg.sent)

	user := loadUser(t, db, 42)
	assert.Equal(t, int64(7), *user.ReferrerID)
}

func TestRequestWithdrawalAccepted(t *testing.T) {
	svc, msg, db := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, models.User{ID: 5, Balance: 60.00})

	accepted, err := svc.RequestWithdrawal(ctx, 5, 50.00, "mobile", "017xxxxxxx")
	require.NoError(t, err)
	assert.True(t, accepted)

	snap, err := svc.Snapshot(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "10.00", snap.Balance)

	require.Len(t, msg.sent, 1)
	assert.Contains(t, msg.sent[0].text, "50.00")
}

func TestRequestWithdrawalRejected(t *testing.T) {
	svc, msg, db := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, models.User{ID: 6, Balance: 40.00})

	accepted, err := svc.RequestWithdrawal(ctx, 6, 50.00, "mobile", "017xxxxxxx")
	require.NoError(t, err)
	assert.False(t, accepted)

	user := loadUser(t, db, 6)
	assert.Equal(t, 40.00, user.Balance)

	require.Len(t, msg.sent, 1)
	assert.Equal(t, msgNoBalance, msg.sent[0].text)
}

func TestRequestWithdrawalInvalidAmount(t *testing.T) {
	svc, msg, db := newTestService(t)
	ctx := context.Background()

	seedUser(t, db, models.User{ID: 8, Balance: 100.00})

	for _, amount := range []float64{0, -5} {
		accepted, err := svc.RequestWithdrawal(ctx, 8, amount, "mobile", "017xxxxxxx")
		require.NoError(t, err)
		assert.False(t, accepted)
	}

	user := loadUser(t, db, 8)
	assert.Equal(t, 100.00, user.Balance)

	var count int64
	require.NoError(t, db.Model(&models.Withdrawal{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	require.Len(t, msg.sent, 2)
	assert.Equal(t, msgBadAmount, msg.sent[0].text)
}

func TestSnapshotUnknownUserDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, "0.00", snap.Balance)
	assert.Equal(t, 0, snap.DailyAdsSeen)
	assert.Equal(t, 10, snap.DailyAdLimit)
	assert.Equal(t, 20.00, snap.AdIncome)
	assert.Equal(t, 0, snap.TotalReferrals)
	assert.Equal(t, 5.00, snap.ReferralBonus)
	assert.Equal(t, 50000, snap.MinWithdrawPoints)
}

func TestSnapshotIdempotent(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	today := dateString(time.Now())
	seedUser(t, db, models.User{ID: 10, Balance: 123.4, DailyAdsSeen: 3, LastAdDate: &today, TotalReferrals: 2})

	first, err := svc.Snapshot(ctx, 10)
	require.NoError(t, err)
	second, err := svc.Snapshot(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "123.40", first.Balance)
	assert.Equal(t, 3, first.DailyAdsSeen)
}

func TestSnapshotStaleDateReportsZeroWithoutPersisting(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	yesterday := dateString(time.Now().AddDate(0, 0, -1))
	seedUser(t, db, models.User{ID: 11, Balance: 10.00, DailyAdsSeen: 7, LastAdDate: &yesterday})

	snap, err := svc.Snapshot(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.DailyAdsSeen)

	user := loadUser(t, db, 11)
	assert.Equal(t, 7, user.DailyAdsSeen, "the read path must not persist the reset")
}
