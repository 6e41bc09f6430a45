package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// ReviewRepo implements repository.ReviewRepository.
type ReviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo creates a new review repository.
func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create inserts a review. A duplicate (user, course) pair maps to ErrConflict.
func (r *ReviewRepo) Create(review *entity.Review) error {
	err := r.db.Create(review).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByUserAndCourse returns the review for the (user, course) pair.
func (r *ReviewRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Review, error) {
	var review entity.Review
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// ListByCourse returns the reviews of a course with the total count.
func (r *ReviewRepo) ListByCourse(courseID uint, limit, offset int) ([]entity.Review, int64, error) {
	query := r.db.Model(&entity.Review{}).Where("course_id = ?", courseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []entity.Review
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error
	return reviews, total, err
}

// AverageRating returns the mean rating of a course, 0 when unrated.
func (r *ReviewRepo) AverageRating(courseID uint) (float64, error) {
	var avg *float64
	err := r.db.Model(&entity.Review{}).
		Where("course_id = ?", courseID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// Update saves the review record.
func (r *ReviewRepo) Update(review *entity.Review) error {
	return r.db.Save(review).Error
}

// Delete removes the review.
func (r *ReviewRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Review{}, id).Error
}
