package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// PaymentProcessor charges subscriptions with an external payment provider.
type PaymentProcessor interface {
	// CreateSubscription opens a subscription at the provider and returns
	// its provider-side identifier.
	CreateSubscription(userID uint, plan *entity.Plan) (providerSubscriptionID string, err error)
	// CancelSubscription stops renewal at the provider.
	CancelSubscription(providerSubscriptionID string) error
}

// StubPaymentProcessor approves everything. Used in development and tests.
type StubPaymentProcessor struct{}

func (p *StubPaymentProcessor) CreateSubscription(userID uint, plan *entity.Plan) (string, error) {
	return "stub_sub_" + uuid.New().String(), nil
}

func (p *StubPaymentProcessor) CancelSubscription(providerSubscriptionID string) error {
	return nil
}

// SubscriptionService manages plans, subscriptions and payment webhooks.
type SubscriptionService struct {
	planRepo         repository.PlanRepository
	subscriptionRepo repository.SubscriptionRepository
	processor        PaymentProcessor
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(
	planRepo repository.PlanRepository,
	subscriptionRepo repository.SubscriptionRepository,
	processor PaymentProcessor,
) *SubscriptionService {
	if processor == nil {
		processor = &StubPaymentProcessor{}
	}
	return &SubscriptionService{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		processor:        processor,
	}
}

// Plans lists the purchasable plans.
func (s *SubscriptionService) Plans() ([]entity.Plan, error) {
	return s.planRepo.List()
}

// CreatePlan adds a plan. Admin operation.
func (s *SubscriptionService) CreatePlan(plan *entity.Plan) error {
	if plan.Name == "" {
		return fmt.Errorf("%w: plan name is required", apperrors.ErrValidation)
	}
	if plan.PriceCents < 0 {
		return fmt.Errorf("%w: plan price cannot be negative", apperrors.ErrValidation)
	}
	if plan.Interval != entity.PlanIntervalMonth && plan.Interval != entity.PlanIntervalYear {
		return fmt.Errorf("%w: invalid billing interval %q", apperrors.ErrValidation, plan.Interval)
	}
	return s.planRepo.Create(plan)
}

// Subscribe opens a subscription to the plan. A user holds at most one
// active subscription at a time.
func (s *SubscriptionService) Subscribe(userID, planID uint) (*entity.Subscription, error) {
	if _, err := s.subscriptionRepo.GetActiveByUser(userID); err == nil {
		return nil, fmt.Errorf("%w: an active subscription already exists", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}

	providerID, err := s.processor.CreateSubscription(userID, plan)
	if err != nil {
		return nil, fmt.Errorf("payment provider refused the subscription: %w", err)
	}

	subscription := &entity.Subscription{
		UserID:                 userID,
		PlanID:                 planID,
		Status:                 entity.SubscriptionStatusActive,
		CurrentPeriodEnd:       periodEnd(plan.Interval, time.Now()),
		ProviderSubscriptionID: providerID,
	}
	if err := s.subscriptionRepo.Create(subscription); err != nil {
		return nil, err
	}

	log.Printf("[SubscriptionService] User #%d subscribed to plan #%d until %s",
		userID, planID, subscription.CurrentPeriodEnd.Format(time.RFC3339))
	return subscription, nil
}

// Cancel stops renewal. Access remains until the end of the paid period.
func (s *SubscriptionService) Cancel(userID uint) (*entity.Subscription, error) {
	subscription, err := s.subscriptionRepo.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	if subscription.ProviderSubscriptionID != "" {
		if err := s.processor.CancelSubscription(subscription.ProviderSubscriptionID); err != nil {
			return nil, fmt.Errorf("payment provider refused the cancellation: %w", err)
		}
	}

	subscription.CancelAtPeriodEnd = true
	if err := s.subscriptionRepo.Update(subscription); err != nil {
		return nil, err
	}
	return subscription, nil
}

// MySubscription returns the user's active subscription.
func (s *SubscriptionService) MySubscription(userID uint) (*entity.Subscription, error) {
	return s.subscriptionRepo.GetActiveByUser(userID)
}

// MyPayments lists the user's payment history.
func (s *SubscriptionService) MyPayments(userID uint, limit, offset int) ([]entity.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.subscriptionRepo.ListPaymentsByUser(userID, limit, offset)
}

// PaymentEvent is a normalized payment provider webhook event.
type PaymentEvent struct {
	Type                   string // invoice.paid, invoice.payment_failed, subscription.canceled
	ProviderSubscriptionID string
	ProviderPaymentID      string
	AmountCents            int64
	Currency               string
	OccurredAt             time.Time
}

// Webhook event types.
const (
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
	EventSubscriptionCanceled = "subscription.canceled"
)

// HandlePaymentEvent applies a provider webhook to the local state.
// Replayed payment events are ignored through the unique provider
// payment id.
func (s *SubscriptionService) HandlePaymentEvent(event PaymentEvent) error {
	subscription, err := s.subscriptionRepo.GetByProviderID(event.ProviderSubscriptionID)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventInvoicePaid:
		payment := &entity.Payment{
			UserID:            subscription.UserID,
			SubscriptionID:    subscription.ID,
			AmountCents:       event.AmountCents,
			Currency:          event.Currency,
			Status:            entity.PaymentStatusSucceeded,
			ProviderPaymentID: event.ProviderPaymentID,
			PaidAt:            event.OccurredAt,
		}
		if err := s.subscriptionRepo.CreatePayment(payment); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				log.Printf("[SubscriptionService] Ignoring replayed payment event %s", event.ProviderPaymentID)
				return nil
			}
			return err
		}
		plan, err := s.planRepo.GetByID(subscription.PlanID)
		if err != nil {
			return err
		}
		subscription.Status = entity.SubscriptionStatusActive
		subscription.CurrentPeriodEnd = periodEnd(plan.Interval, subscription.CurrentPeriodEnd)
		return s.subscriptionRepo.Update(subscription)

	case EventInvoicePaymentFailed:
		subscription.Status = entity.SubscriptionStatusPastDue
		return s.subscriptionRepo.Update(subscription)

	case EventSubscriptionCanceled:
		subscription.Status = entity.SubscriptionStatusCanceled
		return s.subscriptionRepo.Update(subscription)

	default:
		log.Printf("[SubscriptionService] Ignoring unknown payment event type %q", event.Type)
		return nil
	}
}

func periodEnd(interval string, from time.Time) time.Time {
	if interval == entity.PlanIntervalYear {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
