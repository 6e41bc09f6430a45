package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
	"github.com/yourusername/elearn-api/pkg/auth"
)

type authServiceFixture struct {
	userRepo     *MockUserRepo
	cacheRepo    *MockCacheRepo
	emailService *MockEmailService
	tokenRepo    *MockInvalidTokenRepo
	service      *AuthService
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()

	userRepo := new(MockUserRepo)
	cacheRepo := new(MockCacheRepo)
	emailService := new(MockEmailService)
	tokenRepo := new(MockInvalidTokenRepo)

	tokenRepo.On("GetAllInvalidTokens", mock.Anything).Return([]entity.InvalidToken{}, nil)

	jwtService, err := auth.NewJWTService("test-secret", 1, 60, time.Hour, tokenRepo, context.Background())
	require.NoError(t, err)

	return &authServiceFixture{
		userRepo:     userRepo,
		cacheRepo:    cacheRepo,
		emailService: emailService,
		tokenRepo:    tokenRepo,
		service:      NewAuthService(userRepo, jwtService, emailService, cacheRepo),
	}
}

func TestAuthService_Register_IssuesToken(t *testing.T) {
	// Arrange
	f := newAuthServiceFixture(t)
	f.userRepo.On("Create", mock.MatchedBy(func(u *entity.User) bool {
		return u.Username == "alice" && u.Role == entity.RoleStudent
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 42
	}).Return(nil)
	f.emailService.On("SendWelcome", mock.Anything, "alice@example.com", "alice").Return(nil).Maybe()

	// Act
	user, token, err := f.service.Register(context.Background(), "alice", "alice@example.com", "secret-password")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), user.ID)
	assert.NotEmpty(t, token)
}

func TestAuthService_Register_RejectsShortPassword(t *testing.T) {
	f := newAuthServiceFixture(t)

	_, _, err := f.service.Register(context.Background(), "alice", "alice@example.com", "short")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	// Arrange
	f := newAuthServiceFixture(t)
	user := &entity.User{ID: 42, Email: "alice@example.com", Password: "plaintext-password"}
	require.NoError(t, user.BeforeSave(nil)) // hash it the way persistence would
	f.userRepo.On("GetByEmail", "alice@example.com").Return(user, nil)

	// Act
	_, _, err := f.service.Login(context.Background(), "alice@example.com", "wrong-password")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_RequestPasswordReset_StoresAndEmailsCode(t *testing.T) {
	// Arrange
	f := newAuthServiceFixture(t)
	user := &entity.User{ID: 42, Email: "alice@example.com"}
	f.userRepo.On("GetByEmail", "alice@example.com").Return(user, nil)

	var storedCode string
	f.cacheRepo.On("Set", "pwd_reset_42", mock.Anything, passwordResetTTL).
		Run(func(args mock.Arguments) {
			storedCode = args.Get(1).(string)
		}).Return(nil)
	f.emailService.On("SendPasswordReset", mock.Anything, "alice@example.com", mock.Anything).Return(nil)

	// Act
	err := f.service.RequestPasswordReset(context.Background(), "alice@example.com")

	// Assert
	require.NoError(t, err)
	assert.Len(t, storedCode, 6)
	f.emailService.AssertCalled(t, "SendPasswordReset", mock.Anything, "alice@example.com", storedCode)
}

func TestAuthService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	// Arrange
	f := newAuthServiceFixture(t)
	f.userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	// Act
	err := f.service.RequestPasswordReset(context.Background(), "ghost@example.com")

	// Assert: no error and no side effects, so the endpoint does not
	// reveal which addresses have accounts.
	require.NoError(t, err)
	f.cacheRepo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	f.emailService.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ResetPassword_ConsumesCode(t *testing.T) {
	// Arrange
	f := newAuthServiceFixture(t)
	user := &entity.User{ID: 42, Email: "alice@example.com"}
	f.userRepo.On("GetByEmail", "alice@example.com").Return(user, nil)
	f.cacheRepo.On("Get", "pwd_reset_42").Return("123456", nil)
	f.userRepo.On("UpdatePassword", uint(42), "new-password-123").Return(nil)
	f.cacheRepo.On("Delete", "pwd_reset_42").Return(nil)
	f.tokenRepo.On("AddInvalidToken", mock.Anything, uint(42), mock.Anything).Return(nil)

	// Act
	err := f.service.ResetPassword(context.Background(), "alice@example.com", "123456", "new-password-123")

	// Assert
	require.NoError(t, err)
	f.userRepo.AssertExpectations(t)
	f.cacheRepo.AssertCalled(t, "Delete", "pwd_reset_42")
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	// Arrange
	f := newAuthServiceFixture(t)
	user := &entity.User{ID: 42, Email: "alice@example.com"}
	f.userRepo.On("GetByEmail", "alice@example.com").Return(user, nil)
	f.cacheRepo.On("Get", "pwd_reset_42").Return("123456", nil)

	// Act
	err := f.service.ResetPassword(context.Background(), "alice@example.com", "654321", "new-password-123")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	f.userRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything)
}
