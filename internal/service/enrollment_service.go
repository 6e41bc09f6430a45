package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// Notifier pushes realtime events to a connected user.
type Notifier interface {
	SendEventToUser(userID string, eventType string, data interface{}) error
}

// EnrollmentService manages course enrollments.
type EnrollmentService struct {
	enrollmentRepo   repository.EnrollmentRepository
	courseRepo       repository.CourseRepository
	subscriptionRepo repository.SubscriptionRepository
	notifier         Notifier
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	subscriptionRepo repository.SubscriptionRepository,
	notifier Notifier,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo:   enrollmentRepo,
		courseRepo:       courseRepo,
		subscriptionRepo: subscriptionRepo,
		notifier:         notifier,
	}
}

// Enroll registers the user on a published course. Premium courses
// require an active subscription.
func (s *EnrollmentService) Enroll(userID, courseID uint) (*entity.Enrollment, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != entity.CourseStatusPublished {
		return nil, fmt.Errorf("%w: course is not open for enrollment", apperrors.ErrValidation)
	}

	if course.PremiumOnly {
		sub, err := s.subscriptionRepo.GetActiveByUser(userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrSubscriptionRequired
			}
			return nil, err
		}
		if !sub.IsActive() {
			return nil, apperrors.ErrSubscriptionRequired
		}
	}

	enrollment := &entity.Enrollment{
		UserID:   userID,
		CourseID: courseID,
	}
	if err := s.enrollmentRepo.Create(enrollment); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: already enrolled in course #%d", apperrors.ErrConflict, courseID)
		}
		return nil, err
	}

	log.Printf("[EnrollmentService] User #%d enrolled in course #%d", userID, courseID)
	if s.notifier != nil {
		if err := s.notifier.SendEventToUser(strconv.FormatUint(uint64(userID), 10), "ENROLLMENT_CONFIRMED", map[string]interface{}{
			"courseId":    courseID,
			"courseTitle": course.Title,
		}); err != nil {
			log.Printf("[EnrollmentService] Failed to notify user #%d: %v", userID, err)
		}
	}

	return enrollment, nil
}

// IsEnrolled reports whether the user is enrolled in the course.
func (s *EnrollmentService) IsEnrolled(userID, courseID uint) (bool, error) {
	return s.enrollmentRepo.Exists(userID, courseID)
}

// Unenroll removes the user from the course.
func (s *EnrollmentService) Unenroll(userID, courseID uint) error {
	enrolled, err := s.enrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperrors.ErrNotEnrolled
	}
	return s.enrollmentRepo.Delete(userID, courseID)
}

// MyCourses lists the user's enrollments with their courses.
func (s *EnrollmentService) MyCourses(userID uint, limit, offset int) ([]entity.Enrollment, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.enrollmentRepo.ListByUser(userID, limit, offset)
}

// CourseStudents lists the enrollments of a course. Instructor view.
func (s *EnrollmentService) CourseStudents(courseID uint, actor *entity.User, limit, offset int) ([]entity.Enrollment, int64, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, 0, err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return nil, 0, apperrors.ErrForbidden
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.enrollmentRepo.ListByCourse(courseID, limit, offset)
}
