package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// EnrollmentRepo implements repository.EnrollmentRepository.
type EnrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo creates a new enrollment repository.
func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

// Create inserts a new enrollment. A duplicate (user, course) pair maps to ErrConflict.
func (r *EnrollmentRepo) Create(enrollment *entity.Enrollment) error {
	err := r.db.Create(enrollment).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// Exists reports whether the user is enrolled in the course.
func (r *EnrollmentRepo) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// GetByUserAndCourse returns the enrollment for the (user, course) pair.
func (r *EnrollmentRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Enrollment, error) {
	var enrollment entity.Enrollment
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// ListByUser returns the enrollments of a user with the total count.
func (r *EnrollmentRepo) ListByUser(userID uint, limit, offset int) ([]entity.Enrollment, int64, error) {
	query := r.db.Model(&entity.Enrollment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []entity.Enrollment
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&enrollments).Error
	return enrollments, total, err
}

// ListByCourse returns the enrollments of a course with the total count.
func (r *EnrollmentRepo) ListByCourse(courseID uint, limit, offset int) ([]entity.Enrollment, int64, error) {
	query := r.db.Model(&entity.Enrollment{}).Where("course_id = ?", courseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []entity.Enrollment
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&enrollments).Error
	return enrollments, total, err
}

// CountByCourse returns the number of students enrolled in the course.
func (r *EnrollmentRepo) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// Delete removes the enrollment for the (user, course) pair.
func (r *EnrollmentRepo) Delete(userID, courseID uint) error {
	result := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&entity.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ProgressionRepo implements repository.ProgressionRepository.
type ProgressionRepo struct {
	db *gorm.DB
}

// NewProgressionRepo creates a new progression repository.
func NewProgressionRepo(db *gorm.DB) *ProgressionRepo {
	return &ProgressionRepo{db: db}
}

// Upsert creates or updates the progression row for the (user, course) pair.
func (r *ProgressionRepo) Upsert(progression *entity.Progression) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"completed_videos", "last_video_id", "percentage", "updated_at",
		}),
	}).Create(progression).Error
}

// GetByUserAndCourse returns the progression for the (user, course) pair.
func (r *ProgressionRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Progression, error) {
	var progression entity.Progression
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progression).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &progression, nil
}

// ListByUser returns all progressions of a user.
func (r *ProgressionRepo) ListByUser(userID uint) ([]entity.Progression, error) {
	var progressions []entity.Progression
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&progressions).Error
	return progressions, err
}
