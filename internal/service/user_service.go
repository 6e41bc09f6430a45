package service

import (
	"fmt"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// UserService handles profile management.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID returns the user with the given ID.
func (s *UserService) GetByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateProfile updates the allowed profile fields of the user.
func (s *UserService) UpdateProfile(userID uint, firstName, lastName, profilePicture, language string) (*entity.User, error) {
	updates := map[string]interface{}{}
	if firstName != "" {
		updates["first_name"] = firstName
	}
	if lastName != "" {
		updates["last_name"] = lastName
	}
	if profilePicture != "" {
		updates["profile_picture"] = profilePicture
	}
	if language != "" {
		updates["language"] = language
	}

	if len(updates) > 0 {
		if err := s.userRepo.UpdateProfile(userID, updates); err != nil {
			return nil, err
		}
	}
	return s.userRepo.GetByID(userID)
}

// ChangePassword verifies the old password and stores the new one.
func (s *UserService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: new password must be at least 8 characters", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return apperrors.ErrUnauthorized
	}

	return s.userRepo.UpdatePassword(userID, newPassword)
}

// SetRole changes the role of a user. Admin operation.
func (s *UserService) SetRole(userID uint, role string) error {
	switch role {
	case entity.RoleStudent, entity.RoleInstructor, entity.RoleAdmin:
	default:
		return fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}
	return s.userRepo.UpdateProfile(userID, map[string]interface{}{"role": role})
}

// List returns users with pagination. Admin operation.
func (s *UserService) List(limit, offset int) ([]entity.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.userRepo.List(limit, offset)
}
