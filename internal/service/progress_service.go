package service

import (
	"errors"
	"log"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// ProgressService tracks video completion within enrolled courses.
type ProgressService struct {
	progressionRepo repository.ProgressionRepository
	enrollmentRepo  repository.EnrollmentRepository
	courseRepo      repository.CourseRepository
	userRepo        repository.UserRepository
}

// NewProgressService creates a new progress service.
func NewProgressService(
	progressionRepo repository.ProgressionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
) *ProgressService {
	return &ProgressService{
		progressionRepo: progressionRepo,
		enrollmentRepo:  enrollmentRepo,
		courseRepo:      courseRepo,
		userRepo:        userRepo,
	}
}

// MarkVideoWatched records a completed video and recomputes the course
// percentage. The first time the course reaches 100% the user's
// completed courses counter is incremented.
func (s *ProgressService) MarkVideoWatched(userID, courseID, videoID uint) (*entity.Progression, error) {
	enrolled, err := s.enrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	totalVideos, err := s.courseRepo.CountVideos(courseID)
	if err != nil {
		return nil, err
	}

	progression, err := s.progressionRepo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		progression = &entity.Progression{
			UserID:   userID,
			CourseID: courseID,
		}
	}

	wasComplete := progression.IsComplete()
	progression.MarkVideoCompleted(videoID, int(totalVideos))

	if err := s.progressionRepo.Upsert(progression); err != nil {
		return nil, err
	}

	if !wasComplete && progression.IsComplete() {
		log.Printf("[ProgressService] User #%d completed course #%d", userID, courseID)
		if err := s.userRepo.IncrementCoursesCompleted(userID); err != nil {
			log.Printf("[ProgressService] Failed to increment completed courses for user #%d: %v", userID, err)
		}
	}

	return progression, nil
}

// GetProgress returns the user's progression in a course. A user with
// no recorded progress gets an empty progression at 0%.
func (s *ProgressService) GetProgress(userID, courseID uint) (*entity.Progression, error) {
	enrolled, err := s.enrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	progression, err := s.progressionRepo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &entity.Progression{UserID: userID, CourseID: courseID}, nil
		}
		return nil, err
	}
	return progression, nil
}

// ListProgress returns all the user's course progressions.
func (s *ProgressService) ListProgress(userID uint) ([]entity.Progression, error) {
	return s.progressionRepo.ListByUser(userID)
}
