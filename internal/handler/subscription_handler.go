package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
	"github.com/yourusername/elearn-api/internal/service"
)

// SubscriptionHandler handles premium plans, subscriptions and the
// payment provider webhook.
type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler.
func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// ListPlans handles GET /api/plans.
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionService.Plans()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CreatePlanRequest is the plan creation payload.
type CreatePlanRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Description string   `json:"description" binding:"omitempty,max=500"`
	PriceCents  int64    `json:"price_cents" binding:"required,min=1"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	Interval    string   `json:"interval" binding:"required,oneof=month year"`
	Features    []string `json:"features"`
}

// CreatePlan handles POST /api/admin/plans.
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := &entity.Plan{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Interval:    req.Interval,
		Features:    req.Features,
	}
	if err := h.subscriptionService.CreatePlan(plan); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// SubscribeRequest is the subscription payload.
type SubscribeRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// Subscribe handles POST /api/subscriptions.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subscription, err := h.subscriptionService.Subscribe(currentUserID(c), req.PlanID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscription)
}

// Cancel handles DELETE /api/subscriptions.
// Access remains until the end of the paid period.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	subscription, err := h.subscriptionService.Cancel(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

// MySubscription handles GET /api/subscriptions/my.
func (h *SubscriptionHandler) MySubscription(c *gin.Context) {
	subscription, err := h.subscriptionService.MySubscription(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

// Status handles GET /api/abonnement/status. Returns whether the user
// currently has premium access.
func (h *SubscriptionHandler) Status(c *gin.Context) {
	subscription, err := h.subscriptionService.MySubscription(currentUserID(c))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"active": false})
			return
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":               subscription.IsActive(),
		"status":               subscription.Status,
		"current_period_end":   subscription.CurrentPeriodEnd,
		"cancel_at_period_end": subscription.CancelAtPeriodEnd,
	})
}

// MyPayments handles GET /api/payments/my.
func (h *SubscriptionHandler) MyPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	payments, err := h.subscriptionService.MyPayments(currentUserID(c), perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"page":     page,
		"per_page": perPage,
	})
}

// WebhookRequest is the payment provider event payload.
type WebhookRequest struct {
	Type                   string `json:"type" binding:"required"`
	ProviderSubscriptionID string `json:"subscription_id" binding:"required"`
	ProviderPaymentID      string `json:"payment_id"`
	AmountCents            int64  `json:"amount_cents"`
	Currency               string `json:"currency"`
	OccurredAt             int64  `json:"occurred_at"`
}

// Webhook handles POST /webhooks/payments. Events are processed
// idempotently, a replayed payment is acknowledged without effect.
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt > 0 {
		occurredAt = time.Unix(req.OccurredAt, 0)
	}

	event := service.PaymentEvent{
		Type:                   req.Type,
		ProviderSubscriptionID: req.ProviderSubscriptionID,
		ProviderPaymentID:      req.ProviderPaymentID,
		AmountCents:            req.AmountCents,
		Currency:               req.Currency,
		OccurredAt:             occurredAt,
	}
	if err := h.subscriptionService.HandlePaymentEvent(event); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
