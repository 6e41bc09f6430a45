package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

const courseDetailCacheTTL = 5 * time.Minute

// CourseService handles the course catalog: categories, courses,
// modules and videos.
type CourseService struct {
	courseRepo   repository.CourseRepository
	categoryRepo repository.CategoryRepository
	cacheRepo    repository.CacheRepository
}

// NewCourseService creates a new course service.
func NewCourseService(
	courseRepo repository.CourseRepository,
	categoryRepo repository.CategoryRepository,
	cacheRepo repository.CacheRepository,
) *CourseService {
	return &CourseService{
		courseRepo:   courseRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
	}
}

func courseDetailCacheKey(courseID uint) string {
	return fmt.Sprintf("course_%d_detail", courseID)
}

// CreateCourse creates a draft course owned by the instructor.
func (s *CourseService) CreateCourse(course *entity.Course, instructorID uint) error {
	if course.Title == "" {
		return fmt.Errorf("%w: course title is required", apperrors.ErrValidation)
	}
	if _, err := s.categoryRepo.GetByID(course.CategoryID); err != nil {
		return fmt.Errorf("%w: unknown category #%d", apperrors.ErrValidation, course.CategoryID)
	}

	course.InstructorID = instructorID
	course.Status = entity.CourseStatusDraft
	return s.courseRepo.Create(course)
}

// GetCourse returns the course with its modules and videos, cached.
func (s *CourseService) GetCourse(courseID uint) (*entity.Course, error) {
	cacheKey := courseDetailCacheKey(courseID)

	if s.cacheRepo != nil {
		var cached entity.Course
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[CourseService] Cache read failed for course #%d: %v", courseID, err)
		}
	}

	course, err := s.courseRepo.GetWithContent(courseID)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, course, courseDetailCacheTTL); err != nil {
			log.Printf("[CourseService] Cache write failed for course #%d: %v", courseID, err)
		}
	}
	return course, nil
}

// UpdateCourse saves course changes. Only the owning instructor or an
// admin may modify a course; the handler passes the acting user.
func (s *CourseService) UpdateCourse(course *entity.Course, actor *entity.User) error {
	existing, err := s.courseRepo.GetByID(course.ID)
	if err != nil {
		return err
	}
	if existing.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	course.InstructorID = existing.InstructorID
	if err := s.courseRepo.Update(course); err != nil {
		return err
	}
	s.invalidateDetail(course.ID)
	return nil
}

// PublishCourse flips the course to the published status.
func (s *CourseService) PublishCourse(courseID uint, actor *entity.User) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	if err := s.courseRepo.UpdateStatus(courseID, entity.CourseStatusPublished); err != nil {
		return err
	}
	s.invalidateDetail(courseID)
	return nil
}

// DeleteCourse removes the course and its content.
func (s *CourseService) DeleteCourse(courseID uint, actor *entity.User) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	if err := s.courseRepo.Delete(courseID); err != nil {
		return err
	}
	s.invalidateDetail(courseID)
	return nil
}

// ListCourses returns published courses matching the filters.
// Instructors listing their own courses see every status.
func (s *CourseService) ListCourses(filters repository.CourseFilters, limit, offset int) ([]entity.Course, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if filters.Status == "" && filters.InstructorID == 0 {
		filters.Status = entity.CourseStatusPublished
	}
	return s.courseRepo.List(filters, limit, offset)
}

// AddModule appends a module to the course.
func (s *CourseService) AddModule(module *entity.CourseModule, actor *entity.User) error {
	course, err := s.courseRepo.GetByID(module.CourseID)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if module.Title == "" {
		return fmt.Errorf("%w: module title is required", apperrors.ErrValidation)
	}

	if err := s.courseRepo.CreateModule(module); err != nil {
		return err
	}
	s.invalidateDetail(module.CourseID)
	return nil
}

// AddVideo appends a video to a module of the course.
func (s *CourseService) AddVideo(courseID uint, video *entity.Video, actor *entity.User) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if video.Title == "" || video.URL == "" {
		return fmt.Errorf("%w: video title and url are required", apperrors.ErrValidation)
	}

	if err := s.courseRepo.CreateVideo(video); err != nil {
		return err
	}
	s.invalidateDetail(courseID)
	return nil
}

// CountVideos returns the total number of videos of a course.
func (s *CourseService) CountVideos(courseID uint) (int64, error) {
	return s.courseRepo.CountVideos(courseID)
}

// Categories returns all course categories.
func (s *CourseService) Categories() ([]entity.Category, error) {
	return s.categoryRepo.List()
}

// CreateCategory adds a new category. Admin operation.
func (s *CourseService) CreateCategory(category *entity.Category) error {
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", apperrors.ErrValidation)
	}
	return s.categoryRepo.Create(category)
}

func (s *CourseService) invalidateDetail(courseID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(courseDetailCacheKey(courseID)); err != nil {
		log.Printf("[CourseService] Cache invalidation failed for course #%d: %v", courseID, err)
	}
}
