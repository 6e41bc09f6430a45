package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// CourseFilters narrows course listings.
type CourseFilters struct {
	CategoryID   uint   // 0 means all categories
	InstructorID uint   // 0 means all instructors
	Status       string // empty means all statuses
	Search       string // matched against title and description
}

// CourseRepository defines persistence operations for courses, modules and videos.
type CourseRepository interface {
	Create(course *entity.Course) error
	GetByID(id uint) (*entity.Course, error)
	// GetWithContent loads the course together with its ordered modules and videos.
	GetWithContent(id uint) (*entity.Course, error)
	Update(course *entity.Course) error
	UpdateStatus(courseID uint, status string) error
	List(filters CourseFilters, limit, offset int) ([]entity.Course, int64, error)
	Delete(id uint) error

	CreateModule(module *entity.CourseModule) error
	UpdateModule(module *entity.CourseModule) error
	DeleteModule(id uint) error

	CreateVideo(video *entity.Video) error
	GetVideoByID(id uint) (*entity.Video, error)
	UpdateVideo(video *entity.Video) error
	DeleteVideo(id uint) error
	// CountVideos returns the total number of videos across all modules of a course.
	CountVideos(courseID uint) (int64, error)
}

// CategoryRepository defines persistence operations for course categories.
type CategoryRepository interface {
	Create(category *entity.Category) error
	GetByID(id uint) (*entity.Category, error)
	List() ([]entity.Category, error)
	Update(category *entity.Category) error
	Delete(id uint) error
}
