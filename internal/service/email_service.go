package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendWelcome(ctx context.Context, toEmail, username string) error
	SendCertificateIssued(ctx context.Context, toEmail, studentName, courseTitle, serialNumber string) error
	SendPasswordReset(ctx context.Context, toEmail, code string) error
}

// NoopEmailService is used when outgoing email is disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendWelcome(ctx context.Context, toEmail, username string) error {
	log.Printf("[EmailService] noop send welcome to=%s", toEmail)
	return nil
}

func (s *NoopEmailService) SendCertificateIssued(ctx context.Context, toEmail, studentName, courseTitle, serialNumber string) error {
	log.Printf("[EmailService] noop send certificate notice to=%s course=%q", toEmail, courseTitle)
	return nil
}

func (s *NoopEmailService) SendPasswordReset(ctx context.Context, toEmail, code string) error {
	log.Printf("[EmailService] noop send password reset to=%s", toEmail)
	return nil
}

// ResendEmailService sends emails via the Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendWelcome(ctx context.Context, toEmail, username string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Welcome aboard",
		Text:    fmt.Sprintf("Hi %s, your account is ready. Browse the catalog and enroll in your first course.", username),
		Html:    fmt.Sprintf("<p>Hi <strong>%s</strong>, your account is ready.</p><p>Browse the catalog and enroll in your first course.</p>", username),
	}

	return s.sendWithRetry(ctx, params, "")
}

func (s *ResendEmailService) SendCertificateIssued(ctx context.Context, toEmail, studentName, courseTitle, serialNumber string) error {
	if toEmail == "" || serialNumber == "" {
		return fmt.Errorf("toEmail and serialNumber are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Your certificate for %s", courseTitle),
		Text: fmt.Sprintf("Congratulations %s! You passed the final quiz of %s. Certificate number: %s. You can download it from your profile.",
			studentName, courseTitle, serialNumber),
		Html: fmt.Sprintf("<p>Congratulations <strong>%s</strong>! You passed the final quiz of <strong>%s</strong>.</p><p>Certificate number: %s.</p><p>You can download it from your profile.</p>",
			studentName, courseTitle, serialNumber),
	}

	// The serial number doubles as the idempotency key: issuing is a
	// one-time event and webhook-style retries must not duplicate the email.
	return s.sendWithRetry(ctx, params, "cert-"+serialNumber)
}

func (s *ResendEmailService) SendPasswordReset(ctx context.Context, toEmail, code string) error {
	if toEmail == "" || code == "" {
		return fmt.Errorf("toEmail and code are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Password reset code",
		Text:    fmt.Sprintf("Your password reset code is %s. It expires in 15 minutes. Ignore this email if you did not request a reset.", code),
		Html:    fmt.Sprintf("<p>Your password reset code is <strong>%s</strong>.</p><p>It expires in 15 minutes. Ignore this email if you did not request a reset.</p>", code),
	}

	return s.sendWithRetry(ctx, params, "")
}

func (s *ResendEmailService) sendWithRetry(ctx context.Context, params *resend.SendEmailRequest, idempotencyKey string) error {
	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
