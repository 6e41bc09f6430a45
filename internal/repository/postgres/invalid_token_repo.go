package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// InvalidTokenRepo implements repository.InvalidTokenRepository.
type InvalidTokenRepo struct {
	db *gorm.DB
}

// NewInvalidTokenRepo creates a new repository for revoked tokens.
func NewInvalidTokenRepo(db *gorm.DB) *InvalidTokenRepo {
	return &InvalidTokenRepo{db: db}
}

// AddInvalidToken records the revocation, updating the timestamp when a
// record for the user already exists.
func (r *InvalidTokenRepo) AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO invalid_tokens (user_id, invalidation_time)
		VALUES (?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET invalidation_time = ?
	`, userID, invalidationTime, invalidationTime).Error

	if err != nil {
		log.Printf("[InvalidTokenRepo] Failed to add record for user ID=%d: %v", userID, err)
		return err
	}
	return nil
}

// RemoveInvalidToken clears the revocation record of the user.
func (r *InvalidTokenRepo) RemoveInvalidToken(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.InvalidToken{}, userID)
	if result.Error != nil {
		log.Printf("[InvalidTokenRepo] Failed to delete record for user ID=%d: %v", userID, result.Error)
		return result.Error
	}
	return nil
}

// IsTokenInvalid reports whether a token issued at the given time is revoked.
func (r *InvalidTokenRepo) IsTokenInvalid(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error) {
	var invalidToken entity.InvalidToken

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&invalidToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return invalidToken.IsTokenInvalidAt(tokenIssuedAt), nil
}

// GetAllInvalidTokens returns every revocation record.
func (r *InvalidTokenRepo) GetAllInvalidTokens(ctx context.Context) ([]entity.InvalidToken, error) {
	var tokens []entity.InvalidToken
	err := r.db.WithContext(ctx).Find(&tokens).Error
	return tokens, err
}

// CleanupOldInvalidTokens removes records older than cutoffTime.
func (r *InvalidTokenRepo) CleanupOldInvalidTokens(ctx context.Context, cutoffTime time.Time) error {
	result := r.db.WithContext(ctx).
		Where("invalidation_time < ?", cutoffTime).
		Delete(&entity.InvalidToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("[InvalidTokenRepo] Cleaned up %d stale records", result.RowsAffected)
	}
	return nil
}
