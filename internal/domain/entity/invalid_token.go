package entity

import (
	"time"
)

// InvalidToken marks all tokens of a user issued before InvalidationTime as revoked.
type InvalidToken struct {
	UserID           uint      `gorm:"primaryKey" json:"user_id"`
	InvalidationTime time.Time `gorm:"not null" json:"invalidation_time"`
}

// TableName sets the GORM table name.
func (InvalidToken) TableName() string {
	return "invalid_tokens"
}

// IsTokenInvalidAt reports whether a token issued at the given time is revoked.
func (it *InvalidToken) IsTokenInvalidAt(issuedAt time.Time) bool {
	return issuedAt.Before(it.InvalidationTime)
}
