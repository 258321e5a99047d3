package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// ChallengeStore persists issued one-time codes.
type ChallengeStore struct {
	db *gorm.DB
}

func NewChallengeStore(db *gorm.DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

// Issue stores a new challenge and discards every unconsumed challenge the
// user had before, so at most one challenge per user is redeemable.
func (s *ChallengeStore) Issue(ctx context.Context, challenge *models.OTPChallenge) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND consumed_at IS NULL", challenge.UserID).
			Delete(&models.OTPChallenge{}).Error; err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
}

// Pending returns the user's unconsumed challenge, whether or not it has expired.
func (s *ChallengeStore) Pending(ctx context.Context, userID uuid.UUID) (*models.OTPChallenge, error) {
	var challenge models.OTPChallenge
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND consumed_at IS NULL", userID).
		Order("created_at desc").
		First(&challenge).Error
	if err != nil {
		return nil, translate(err)
	}
	return &challenge, nil
}

// ClaimAttempt reserves one guess against a challenge and returns the attempt
// count including it. A consumed challenge, or one that already used
// maxAttempts guesses, yields ErrNotFound. maxAttempts <= 0 means no limit.
func (s *ChallengeStore) ClaimAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error) {
	var attempts int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.OTPChallenge{}).Where("id = ? AND consumed_at IS NULL", id)
		if maxAttempts > 0 {
			query = query.Where("attempts < ?", maxAttempts)
		}
		res := query.UpdateColumn("attempts", gorm.Expr("attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.OTPChallenge{}).Where("id = ?", id).Pluck("attempts", &attempts).Error
	})
	return attempts, err
}

// Consume marks a challenge as used. Only the first caller succeeds; later
// calls get ErrNotFound.
func (s *ChallengeStore) Consume(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.OTPChallenge{}).
		Where("id = ? AND consumed_at IS NULL", id).
		UpdateColumn("consumed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
