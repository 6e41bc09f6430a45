package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	Create(enrollment *entity.Enrollment) error
	// Exists reports whether the user is enrolled in the course.
	Exists(userID, courseID uint) (bool, error)
	GetByUserAndCourse(userID, courseID uint) (*entity.Enrollment, error)
	ListByUser(userID uint, limit, offset int) ([]entity.Enrollment, int64, error)
	ListByCourse(courseID uint, limit, offset int) ([]entity.Enrollment, int64, error)
	CountByCourse(courseID uint) (int64, error)
	Delete(userID, courseID uint) error
}

// ProgressionRepository defines persistence operations for course progress.
type ProgressionRepository interface {
	// Upsert creates the progression row or updates the existing one
	// for the (user, course) pair.
	Upsert(progression *entity.Progression) error
	GetByUserAndCourse(userID, courseID uint) (*entity.Progression, error)
	ListByUser(userID uint) ([]entity.Progression, error)
}
