package entity

import (
	"time"
)

// Billing intervals for plans.
const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// Plan is a purchasable subscription tier.
type Plan struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Name            string      `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description     string      `gorm:"size:500;not null;default:''" json:"description"`
	PriceCents      int64       `gorm:"not null;default:0" json:"price_cents"`
	Currency        string      `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Interval        string      `gorm:"size:10;not null;default:'month'" json:"interval"`
	Features        StringArray `gorm:"type:jsonb;not null" json:"features"`
	ProviderPriceID string      `gorm:"size:100;not null;default:''" json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Plan) TableName() string {
	return "plans"
}

// Subscription statuses.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription links a user to a plan for a billing period.
type Subscription struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	UserID                 uint      `gorm:"not null;index" json:"user_id"`
	PlanID                 uint      `gorm:"not null;index" json:"plan_id"`
	Status                 string    `gorm:"size:20;not null;default:'active';index" json:"status"`
	CurrentPeriodEnd       time.Time `gorm:"not null" json:"current_period_end"`
	CancelAtPeriodEnd      bool      `gorm:"not null;default:false" json:"cancel_at_period_end"`
	ProviderSubscriptionID string    `gorm:"size:100;not null;default:''" json:"-"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Subscription) TableName() string {
	return "subscriptions"
}

// IsActive reports whether the subscription currently grants access.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive && time.Now().Before(s.CurrentPeriodEnd)
}

// Payment statuses.
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment records a single charge made for a subscription.
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	SubscriptionID    uint      `gorm:"not null;index" json:"subscription_id"`
	AmountCents       int64     `gorm:"not null" json:"amount_cents"`
	Currency          string    `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	Status            string    `gorm:"size:20;not null" json:"status"`
	ProviderPaymentID string    `gorm:"size:100;not null;default:'';uniqueIndex" json:"-"`
	PaidAt            time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Payment) TableName() string {
	return "payments"
}
