package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdatePassword(userID uint, newPassword string) error
	IncrementQuizzesPassed(userID uint) error
	IncrementCoursesCompleted(userID uint) error
	List(limit, offset int) ([]entity.User, error)
}
