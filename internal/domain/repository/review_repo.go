package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// ReviewRepository defines persistence operations for course reviews.
type ReviewRepository interface {
	Create(review *entity.Review) error
	GetByUserAndCourse(userID, courseID uint) (*entity.Review, error)
	ListByCourse(courseID uint, limit, offset int) ([]entity.Review, int64, error)
	// AverageRating returns the mean rating of a course, 0 when unrated.
	AverageRating(courseID uint) (float64, error)
	Update(review *entity.Review) error
	Delete(id uint) error
}
