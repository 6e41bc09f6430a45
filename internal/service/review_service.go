package service

import (
	"errors"
	"fmt"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// ReviewService manages course reviews. One review per student per course.
type ReviewService struct {
	reviewRepo     repository.ReviewRepository
	enrollmentRepo repository.EnrollmentRepository
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	enrollmentRepo repository.EnrollmentRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo:     reviewRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// AddReview records an enrolled student's review of a course.
func (s *ReviewService) AddReview(review *entity.Review) error {
	if !review.IsValidRating() {
		return fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrValidation)
	}

	enrolled, err := s.enrollmentRepo.Exists(review.UserID, review.CourseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperrors.ErrNotEnrolled
	}

	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: course already reviewed", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// UpdateReview edits the user's own review.
func (s *ReviewService) UpdateReview(userID, courseID uint, rating int, comment string) (*entity.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", apperrors.ErrValidation)
	}

	review, err := s.reviewRepo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	review.Rating = rating
	review.Comment = comment
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes the user's review. Admins may remove any review.
func (s *ReviewService) DeleteReview(userID, courseID uint, actor *entity.User) error {
	review, err := s.reviewRepo.GetByUserAndCourse(userID, courseID)
	if err != nil {
		return err
	}
	if review.UserID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return s.reviewRepo.Delete(review.ID)
}

// CourseReviews lists the reviews of a course with its average rating.
func (s *ReviewService) CourseReviews(courseID uint, limit, offset int) ([]entity.Review, int64, float64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	reviews, total, err := s.reviewRepo.ListByCourse(courseID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	average, err := s.reviewRepo.AverageRating(courseID)
	if err != nil {
		return nil, 0, 0, err
	}
	return reviews, total, average, nil
}
