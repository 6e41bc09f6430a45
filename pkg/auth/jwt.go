package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
)

// Token usage markers.
const (
	usageAccess   = ""
	usageWSTicket = "ws_ticket"
)

// JWTCustomClaims carries the application claims of a token.
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
	// Usage distinguishes short-lived websocket tickets from access tokens.
	Usage string `json:"usage,omitempty"`
}

// JWTService issues and validates HMAC-signed tokens.
type JWTService struct {
	secret        []byte
	expirationHrs int
	wsTicketExpiry time.Duration

	// In-memory blacklist of users whose tokens were revoked, backed by
	// the invalid_tokens table so it survives restarts.
	invalidatedUsers map[uint]time.Time
	mu               sync.RWMutex

	invalidTokenRepo repository.InvalidTokenRepository
	cleanupInterval  time.Duration
	appCtx           context.Context
}

// NewJWTService creates the JWT service and loads the revocation list.
func NewJWTService(
	secret string,
	expirationHrs int,
	wsTicketExpirySec int,
	cleanupInterval time.Duration,
	invalidTokenRepo repository.InvalidTokenRepository,
	appCtx context.Context,
) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if invalidTokenRepo == nil {
		return nil, fmt.Errorf("InvalidTokenRepository is required for JWTService")
	}
	if appCtx == nil {
		return nil, fmt.Errorf("appCtx is required for JWTService")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	wsExpiry := time.Duration(wsTicketExpirySec) * time.Second
	if wsExpiry <= 0 {
		wsExpiry = 60 * time.Second
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 1 * time.Hour
	}

	service := &JWTService{
		secret:           []byte(secret),
		expirationHrs:    expirationHrs,
		wsTicketExpiry:   wsExpiry,
		invalidatedUsers: make(map[uint]time.Time),
		invalidTokenRepo: invalidTokenRepo,
		cleanupInterval:  cleanupInterval,
		appCtx:           appCtx,
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	service.loadInvalidatedTokensFromDB(startupCtx)

	go service.runCleanupRoutine()

	return service, nil
}

// GenerateToken issues an access token for the user.
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	return s.generate(user, time.Duration(s.expirationHrs)*time.Hour, usageAccess)
}

// GenerateWSTicket issues a short-lived token used once to open a
// websocket connection, so the access token never travels in a URL.
func (s *JWTService) GenerateWSTicket(user *entity.User) (string, error) {
	return s.generate(user, s.wsTicketExpiry, usageWSTicket)
}

func (s *JWTService) generate(user *entity.User, ttl time.Duration, usage string) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Usage:  usage,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates an access token and returns its claims.
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims, err := s.parse(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != usageAccess {
		return nil, fmt.Errorf("token is not an access token")
	}
	return claims, nil
}

// ParseWSTicket validates a websocket ticket and returns its claims.
func (s *JWTService) ParseWSTicket(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims, err := s.parse(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Usage != usageWSTicket {
		return nil, fmt.Errorf("token is not a websocket ticket")
	}
	return claims, nil
}

func (s *JWTService) parse(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.IssuedAt == nil {
		return nil, errors.New("token has no issued-at claim")
	}

	if s.isUserInvalidated(claims.UserID, claims.IssuedAt.Time) {
		return nil, errors.New("token has been revoked")
	}

	// The in-memory cache can miss entries written by another instance.
	invalid, err := s.invalidTokenRepo.IsTokenInvalid(ctx, claims.UserID, claims.IssuedAt.Time)
	if err != nil {
		log.Printf("[JWTService] Revocation check failed for user ID=%d: %v", claims.UserID, err)
		// Fail-open on a transient DB error, same as a cache miss.
	} else if invalid {
		s.cacheInvalidation(claims.UserID, time.Now())
		return nil, errors.New("token has been revoked")
	}

	return claims, nil
}

// InvalidateTokensForUser revokes every token of the user issued until now.
func (s *JWTService) InvalidateTokensForUser(ctx context.Context, userID uint) error {
	invalidationTime := time.Now()

	if err := s.invalidTokenRepo.AddInvalidToken(ctx, userID, invalidationTime); err != nil {
		return fmt.Errorf("failed to persist token invalidation: %w", err)
	}

	s.cacheInvalidation(userID, invalidationTime)
	log.Printf("[JWTService] Tokens invalidated for user ID=%d", userID)
	return nil
}

func (s *JWTService) isUserInvalidated(userID uint, issuedAt time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invalidationTime, ok := s.invalidatedUsers[userID]
	return ok && issuedAt.Before(invalidationTime)
}

func (s *JWTService) cacheInvalidation(userID uint, invalidationTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidatedUsers[userID] = invalidationTime
}

func (s *JWTService) loadInvalidatedTokensFromDB(ctx context.Context) {
	tokens, err := s.invalidTokenRepo.GetAllInvalidTokens(ctx)
	if err != nil {
		log.Printf("[JWTService] Failed to load revocation list: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		s.invalidatedUsers[t.UserID] = t.InvalidationTime
	}
	log.Printf("[JWTService] Loaded %d revocation records", len(tokens))
}

// runCleanupRoutine drops revocation records older than the longest
// possible token lifetime; anything issued before them has expired anyway.
func (s *JWTService) runCleanupRoutine() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-time.Duration(s.expirationHrs) * time.Hour)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.invalidTokenRepo.CleanupOldInvalidTokens(ctx, cutoff); err != nil {
				log.Printf("[JWTService] Cleanup failed: %v", err)
			}
			cancel()

			s.mu.Lock()
			for userID, invalidationTime := range s.invalidatedUsers {
				if invalidationTime.Before(cutoff) {
					delete(s.invalidatedUsers, userID)
				}
			}
			s.mu.Unlock()
		case <-s.appCtx.Done():
			return
		}
	}
}
