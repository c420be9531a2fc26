package referral

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/herbvita/shop_backend/internal/models"
)

var (
	ErrAlreadyEnrolled     = errors.New("already enrolled")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCodeCollision       = errors.New("could not allocate a unique referral code")
	ErrBalanceContention   = errors.New("balance changed during withdrawal")
)

const (
	RewardRate          = 0.10
	codeLength          = 6
	codeAlphabet        = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxCodeAttempts     = 5
	maxWithdrawAttempts = 3
)

// Service is the referral ledger: opt-in codes, reward accrual and
// withdrawals, all mutating User rows.
type Service struct {
	DB            *gorm.DB
	WithdrawalMin float64
}

type Stats struct {
	ReferralCode        *string `json:"referral_code"`
	ReferralRewards     float64 `json:"referral_rewards"`
	WithdrawableBalance float64 `json:"withdrawable_balance"`
	ReferredCount       int64   `json:"referred_count"`
}

// OptIn assigns a referral code exactly once. A user who already holds a
// code gets ErrAlreadyEnrolled and the code never changes.
func (s *Service) OptIn(ctx context.Context, userID uint) (string, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return "", err
	}
	if user.ReferralCode != nil {
		return "", ErrAlreadyEnrolled
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}

		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("referral_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}

		if err := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND referral_code IS NULL", userID).
			Update("referral_code", code).Error; err != nil {
			return "", err
		}
		return code, nil
	}
	return "", ErrCodeCollision
}

// ResolveReferrer looks up the owner of a referral code.
func (s *Service) ResolveReferrer(ctx context.Context, code string) (*models.User, error) {
	var referrer models.User
	err := s.DB.WithContext(ctx).Where("referral_code = ?", code).First(&referrer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &referrer, nil
}

// ApplyReward credits the referrer of the purchasing user with a fixed
// fraction of the order total. No-op when the user has no referral linkage
// or the linkage no longer resolves. Runs on the given tx so settlement can
// keep order + reward in one transaction.
func ApplyReward(tx *gorm.DB, purchaser *models.User, orderTotal float64) error {
	if purchaser.ReferredBy == nil {
		return nil
	}

	var referrer models.User
	err := tx.Where("referral_code = ?", *purchaser.ReferredBy).First(&referrer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	reward := orderTotal * RewardRate
	return tx.Model(&models.User{}).
		Where("id = ?", referrer.ID).
		Updates(map[string]any{
			"referral_rewards":     gorm.Expr("referral_rewards + ?", reward),
			"withdrawable_balance": gorm.Expr("withdrawable_balance + ?", reward),
		}).Error
}

func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}

	stats := &Stats{
		ReferralCode:        user.ReferralCode,
		ReferralRewards:     user.ReferralRewards,
		WithdrawableBalance: user.WithdrawableBalance,
	}
	if user.ReferralCode != nil {
		if err := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("referred_by = ?", *user.ReferralCode).
			Count(&stats.ReferredCount).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// Withdraw zeroes the whole balance once it reaches the configured minimum
// and returns the amount actually withdrawn. The UPDATE only fires when the
// balance still equals the value just read, so an accrual landing in between
// forces a re-read instead of being zeroed unreported.
func (s *Service) Withdraw(ctx context.Context, userID uint) (float64, error) {
	for attempt := 0; attempt < maxWithdrawAttempts; attempt++ {
		var user models.User
		if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
			return 0, err
		}
		if user.WithdrawableBalance < s.WithdrawalMin {
			return 0, fmt.Errorf("%w: minimum withdrawal is %.0f", ErrInsufficientBalance, s.WithdrawalMin)
		}

		res := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND withdrawable_balance = ?", userID, user.WithdrawableBalance).
			Update("withdrawable_balance", 0)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return user.WithdrawableBalance, nil
		}
	}
	return 0, ErrBalanceContention
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
