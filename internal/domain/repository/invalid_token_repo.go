package repository

import (
	"context"
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// InvalidTokenRepository defines persistence operations for revoked tokens.
type InvalidTokenRepository interface {
	// AddInvalidToken revokes all tokens of the user issued before invalidationTime.
	AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error

	// RemoveInvalidToken clears the revocation record of the user.
	RemoveInvalidToken(ctx context.Context, userID uint) error

	// IsTokenInvalid reports whether a token issued at the given time is revoked.
	IsTokenInvalid(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error)

	// GetAllInvalidTokens returns every revocation record.
	GetAllInvalidTokens(ctx context.Context) ([]entity.InvalidToken, error)

	// CleanupOldInvalidTokens removes records older than cutoffTime.
	CleanupOldInvalidTokens(ctx context.Context, cutoffTime time.Time) error
}
