package dto

import (
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID               uint      `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name,omitempty"`
	LastName         string    `json:"last_name,omitempty"`
	ProfilePicture   string    `json:"profile_picture,omitempty"`
	Role             string    `json:"role"`
	Language         string    `json:"language"`
	CoursesCompleted int64     `json:"courses_completed"`
	QuizzesPassed    int64     `json:"quizzes_passed"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewUserResponse builds the user DTO.
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		ProfilePicture:   user.ProfilePicture,
		Role:             user.Role,
		Language:         user.Language,
		CoursesCompleted: user.CoursesCompleted,
		QuizzesPassed:    user.QuizzesPassed,
		CreatedAt:        user.CreatedAt,
	}
}

// AuthResponse carries the token and user after login or registration.
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}
