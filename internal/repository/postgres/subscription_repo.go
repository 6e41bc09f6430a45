package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// PlanRepo implements repository.PlanRepository.
type PlanRepo struct {
	db *gorm.DB
}

// NewPlanRepo creates a new plan repository.
func NewPlanRepo(db *gorm.DB) *PlanRepo {
	return &PlanRepo{db: db}
}

// Create inserts a new plan.
func (r *PlanRepo) Create(plan *entity.Plan) error {
	err := r.db.Create(plan).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID returns the plan with the given ID.
func (r *PlanRepo) GetByID(id uint) (*entity.Plan, error) {
	var plan entity.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns all plans ordered by price.
func (r *PlanRepo) List() ([]entity.Plan, error) {
	var plans []entity.Plan
	err := r.db.Order("price_cents").Find(&plans).Error
	return plans, err
}

// Update saves the plan record.
func (r *PlanRepo) Update(plan *entity.Plan) error {
	return r.db.Save(plan).Error
}

// Delete removes the plan.
func (r *PlanRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Plan{}, id).Error
}

// SubscriptionRepo implements repository.SubscriptionRepository.
type SubscriptionRepo struct {
	db *gorm.DB
}

// NewSubscriptionRepo creates a new subscription repository.
func NewSubscriptionRepo(db *gorm.DB) *SubscriptionRepo {
	return &SubscriptionRepo{db: db}
}

// Create inserts a new subscription.
func (r *SubscriptionRepo) Create(subscription *entity.Subscription) error {
	return r.db.Create(subscription).Error
}

// GetByID returns the subscription with the given ID.
func (r *SubscriptionRepo) GetByID(id uint) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := r.db.First(&subscription, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

// GetActiveByUser returns the active subscription of the user.
func (r *SubscriptionRepo) GetActiveByUser(userID uint) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := r.db.Where("user_id = ? AND status = ? AND current_period_end > ?",
		userID, entity.SubscriptionStatusActive, time.Now()).
		Order("current_period_end DESC").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

// GetByProviderID returns the subscription created for the given provider ID.
func (r *SubscriptionRepo) GetByProviderID(providerSubscriptionID string) (*entity.Subscription, error) {
	var subscription entity.Subscription
	err := r.db.Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

// Update saves the subscription record.
func (r *SubscriptionRepo) Update(subscription *entity.Subscription) error {
	return r.db.Save(subscription).Error
}

// ListByUser returns all subscriptions of a user, newest first.
func (r *SubscriptionRepo) ListByUser(userID uint) ([]entity.Subscription, error) {
	var subscriptions []entity.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subscriptions).Error
	return subscriptions, err
}

// CreatePayment records a payment. Duplicate provider payment IDs map to
// ErrConflict so webhook retries stay idempotent.
func (r *SubscriptionRepo) CreatePayment(payment *entity.Payment) error {
	err := r.db.Create(payment).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// ListPaymentsByUser returns the payments of a user with pagination.
func (r *SubscriptionRepo) ListPaymentsByUser(userID uint, limit, offset int) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := r.db.Where("user_id = ?", userID).
		Order("paid_at DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	return payments, err
}
