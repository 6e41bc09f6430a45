package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// PlanRepository defines persistence operations for subscription plans.
type PlanRepository interface {
	Create(plan *entity.Plan) error
	GetByID(id uint) (*entity.Plan, error)
	List() ([]entity.Plan, error)
	Update(plan *entity.Plan) error
	Delete(id uint) error
}

// SubscriptionRepository defines persistence operations for subscriptions and payments.
type SubscriptionRepository interface {
	Create(subscription *entity.Subscription) error
	GetByID(id uint) (*entity.Subscription, error)
	// GetActiveByUser returns the active subscription of the user, or ErrNotFound.
	GetActiveByUser(userID uint) (*entity.Subscription, error)
	GetByProviderID(providerSubscriptionID string) (*entity.Subscription, error)
	Update(subscription *entity.Subscription) error
	ListByUser(userID uint) ([]entity.Subscription, error)

	CreatePayment(payment *entity.Payment) error
	ListPaymentsByUser(userID uint, limit, offset int) ([]entity.Payment, error)
}
