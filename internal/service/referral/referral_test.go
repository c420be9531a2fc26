package referral

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/config"
	"github.com/herbvita/shop_backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A file-backed DB: ":memory:" gives every pooled connection its own
	// private database, so writes from a second connection (as in
	// TestWithdrawReportsAmountActuallyZeroed) would not see the schema.
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Name: "Test User", Email: email, PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestOptInAssignsCodeOnce(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, WithdrawalMin: 1000}
	user := createUser(t, db, "a@example.com")

	code, err := svc.OptIn(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, code, 6)

	_, err = svc.OptIn(context.Background(), user.ID)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.ReferralCode)
	require.Equal(t, code, *reloaded.ReferralCode)
}

func TestResolveReferrer(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, WithdrawalMin: 1000}
	user := createUser(t, db, "a@example.com")

	code, err := svc.OptIn(context.Background(), user.ID)
	require.NoError(t, err)

	referrer, err := svc.ResolveReferrer(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, referrer)
	require.Equal(t, user.ID, referrer.ID)

	missing, err := svc.ResolveReferrer(context.Background(), "ZZZZZZ")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestApplyRewardCreditsReferrer(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, WithdrawalMin: 1000}

	referrer := createUser(t, db, "ref@example.com")
	code, err := svc.OptIn(context.Background(), referrer.ID)
	require.NoError(t, err)

	buyer := createUser(t, db, "buyer@example.com")
	require.NoError(t, db.Model(buyer).Update("referred_by", code).Error)
	require.NoError(t, db.First(buyer, buyer.ID).Error)

	require.NoError(t, ApplyReward(db, buyer, 1000))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, referrer.ID).Error)
	require.InDelta(t, 100, reloaded.ReferralRewards, 1e-9)
	require.InDelta(t, 100, reloaded.WithdrawableBalance, 1e-9)
}

func TestApplyRewardNoopWithoutReferrer(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com")

	require.NoError(t, ApplyReward(db, buyer, 1000))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("referral_rewards > 0").Count(&count).Error)
	require.Zero(t, count)
}

func TestApplyRewardNoopWhenCodeNoLongerResolves(t *testing.T) {
	db := newTestDB(t)
	buyer := createUser(t, db, "buyer@example.com")
	dangling := "GONE42"
	require.NoError(t, db.Model(buyer).Update("referred_by", dangling).Error)
	require.NoError(t, db.First(buyer, buyer.ID).Error)

	require.NoError(t, ApplyReward(db, buyer, 1000))
}

func TestWithdrawThreshold(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, WithdrawalMin: 500}

	referrer := createUser(t, db, "ref@example.com")
	code, err := svc.OptIn(context.Background(), referrer.ID)
	require.NoError(t, err)

	buyer := createUser(t, db, "buyer@example.com")
	require.NoError(t, db.Model(buyer).Update("referred_by", code).Error)
	require.NoError(t, db.First(buyer, buyer.ID).Error)

	// first order: 1000 -> reward 100, below the minimum of 500
	require.NoError(t, ApplyReward(db, buyer, 1000))

	_, err = svc.Withdraw(context.Background(), referrer.ID)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// second order: 5000 -> reward 500, balance 600 clears the minimum
	require.NoError(t, ApplyReward(db, buyer, 5000))

	amount, err := svc.Withdraw(context.Background(), referrer.ID)
	require.NoError(t, err)
	require.InDelta(t, 600, amount, 1e-9)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, referrer.ID).Error)
	require.Zero(t, reloaded.WithdrawableBalance)
	// lifetime rewards survive the withdrawal
	require.InDelta(t, 600, reloaded.ReferralRewards, 1e-9)

	_, err = svc.Withdraw(context.Background(), referrer.ID)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestStatsCountsReferredUsers(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, WithdrawalMin: 1000}

	referrer := createUser(t, db, "ref@example.com")
	code, err := svc.OptIn(context.Background(), referrer.ID)
	require.NoError(t, err)

	for _, email := range []string{"b1@example.com", "b2@example.com"} {
		u := createUser(t, db, email)
		require.NoError(t, db.Model(u).Update("referred_by", code).Error)
	}

	stats, err := svc.Stats(context.Background(), referrer.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.ReferralCode)
	require.Equal(t, int64(2), stats.ReferredCount)
}

func TestWithdrawReportsAmountActuallyZeroed(t *testing.T) {
	db := newTestDB(t)
	svc := &Service{DB: db, WithdrawalMin: 500}
	user := createUser(t, db, "w@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("withdrawable_balance", 600).Error)

	// a reward accrual lands between the balance read and the zeroing write
	fired := false
	require.NoError(t, db.Callback().Update().Before("gorm:update").
		Register("test_mid_accrual", func(tx *gorm.DB) {
			if fired {
				return
			}
			fired = true
			require.NoError(t, db.Session(&gorm.Session{NewDB: true}).
				Model(&models.User{}).
				Where("id = ?", user.ID).
				Update("withdrawable_balance", gorm.Expr("withdrawable_balance + ?", 50)).Error)
		}))

	amount, err := svc.Withdraw(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, fired)
	// the reported amount includes the late accrual, nothing vanishes
	require.InDelta(t, 650, amount, 1e-9)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Zero(t, reloaded.WithdrawableBalance)
}
