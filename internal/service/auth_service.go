package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
	"github.com/yourusername/elearn-api/pkg/auth"
)

const passwordResetTTL = 15 * time.Minute

func passwordResetCacheKey(userID uint) string {
	return fmt.Sprintf("pwd_reset_%d", userID)
}

// AuthService handles registration, login, password resets and token
// revocation.
type AuthService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	emailService EmailService
	cacheRepo    repository.CacheRepository
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
	cacheRepo repository.CacheRepository,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		emailService: emailService,
		cacheRepo:    cacheRepo,
	}
}

// Register creates a new student account and returns it with an access token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*entity.User, string, error) {
	if username == "" || email == "" || len(password) < 8 {
		return nil, "", fmt.Errorf("%w: username, email and a password of at least 8 characters are required",
			apperrors.ErrValidation)
	}

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // hashed by the BeforeSave hook
		Role:     entity.RoleStudent,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	// Registration should not fail for an email hiccup.
	if s.emailService != nil {
		go func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.emailService.SendWelcome(sendCtx, user.Email, user.Username); err != nil {
				log.Printf("[AuthService] Failed to send welcome email to %s: %v", user.Email, err)
			}
		}()
	}

	log.Printf("[AuthService] Registered user ID=%d email=%s", user.ID, user.Email)
	return user, token, nil
}

// Login authenticates by email and password and returns an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, "", apperrors.ErrUnauthorized
	}

	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Wrong password for email=%s", email)
		return nil, "", apperrors.ErrUnauthorized
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	return user, token, nil
}

// Logout revokes every outstanding token of the user.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.jwtService.InvalidateTokensForUser(ctx, userID)
}

// GetUserByID returns the user profile.
func (s *AuthService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// RequestPasswordReset emails a one-time code to the account. An
// unknown email is not an error, so the endpoint does not leak which
// addresses have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		log.Printf("[AuthService] Password reset requested for unknown email=%s", email)
		return nil
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	if err := s.cacheRepo.Set(passwordResetCacheKey(user.ID), code, passwordResetTTL); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if s.emailService != nil {
		if err := s.emailService.SendPasswordReset(ctx, user.Email, code); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	log.Printf("[AuthService] Password reset code issued for user ID=%d", user.ID)
	return nil
}

// ResetPassword consumes a reset code and sets the new password. All
// outstanding tokens of the user are revoked.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return apperrors.ErrUnauthorized
	}

	stored, err := s.cacheRepo.Get(passwordResetCacheKey(user.ID))
	if err != nil || stored == "" || stored != code {
		log.Printf("[AuthService] Invalid or expired reset code for user ID=%d", user.ID)
		return apperrors.ErrUnauthorized
	}

	if err := s.userRepo.UpdatePassword(user.ID, newPassword); err != nil {
		return err
	}

	// A used code must not work twice.
	if err := s.cacheRepo.Delete(passwordResetCacheKey(user.ID)); err != nil {
		log.Printf("[AuthService] Failed to delete reset code for user ID=%d: %v", user.ID, err)
	}

	if err := s.jwtService.InvalidateTokensForUser(ctx, user.ID); err != nil {
		log.Printf("[AuthService] Failed to revoke tokens after reset for user ID=%d: %v", user.ID, err)
	}

	log.Printf("[AuthService] Password reset completed for user ID=%d", user.ID)
	return nil
}

// generateResetCode returns a random 6-digit code.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// WSTicket issues a short-lived ticket for opening a websocket connection.
func (s *AuthService) WSTicket(userID uint) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	return s.jwtService.GenerateWSTicket(user)
}
