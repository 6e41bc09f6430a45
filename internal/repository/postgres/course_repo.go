package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// isUniqueViolation detects a Postgres unique violation (23505) for both
// the pgx and lib/pq drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// CourseRepo implements repository.CourseRepository.
type CourseRepo struct {
	db *gorm.DB
}

// NewCourseRepo creates a new course repository.
func NewCourseRepo(db *gorm.DB) *CourseRepo {
	return &CourseRepo{db: db}
}

// Create inserts a new course.
func (r *CourseRepo) Create(course *entity.Course) error {
	return r.db.Create(course).Error
}

// GetByID returns the course without its modules.
func (r *CourseRepo) GetByID(id uint) (*entity.Course, error) {
	var course entity.Course
	err := r.db.First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetWithContent loads the course with ordered modules and videos.
func (r *CourseRepo) GetWithContent(id uint) (*entity.Course, error) {
	var course entity.Course
	err := r.db.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.position")
		}).
		Preload("Modules.Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("videos.position")
		}).
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// Update saves the full course record.
func (r *CourseRepo) Update(course *entity.Course) error {
	return r.db.Save(course).Error
}

// UpdateStatus updates only the publication status.
func (r *CourseRepo) UpdateStatus(courseID uint, status string) error {
	result := r.db.Model(&entity.Course{}).
		Where("id = ?", courseID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List returns courses matching the filters with the total count.
func (r *CourseRepo) List(filters repository.CourseFilters, limit, offset int) ([]entity.Course, int64, error) {
	query := r.db.Model(&entity.Course{})

	if filters.CategoryID != 0 {
		query = query.Where("category_id = ?", filters.CategoryID)
	}
	if filters.InstructorID != 0 {
		query = query.Where("instructor_id = ?", filters.InstructorID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []entity.Course
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&courses).Error
	return courses, total, err
}

// Delete removes the course and its content.
func (r *CourseRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&entity.CourseModule{}).
			Where("course_id = ?", id).
			Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&entity.Video{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.CourseModule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Course{}, id).Error
	})
}

// CreateModule inserts a new module.
func (r *CourseRepo) CreateModule(module *entity.CourseModule) error {
	return r.db.Create(module).Error
}

// UpdateModule saves the module record.
func (r *CourseRepo) UpdateModule(module *entity.CourseModule) error {
	return r.db.Save(module).Error
}

// DeleteModule removes the module and its videos.
func (r *CourseRepo) DeleteModule(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&entity.Video{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.CourseModule{}, id).Error
	})
}

// CreateVideo inserts a new video.
func (r *CourseRepo) CreateVideo(video *entity.Video) error {
	return r.db.Create(video).Error
}

// GetVideoByID returns the video with the given ID.
func (r *CourseRepo) GetVideoByID(id uint) (*entity.Video, error) {
	var video entity.Video
	err := r.db.First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// UpdateVideo saves the video record.
func (r *CourseRepo) UpdateVideo(video *entity.Video) error {
	return r.db.Save(video).Error
}

// DeleteVideo removes the video.
func (r *CourseRepo) DeleteVideo(id uint) error {
	return r.db.Delete(&entity.Video{}, id).Error
}

// CountVideos returns the number of videos across all modules of the course.
func (r *CourseRepo) CountVideos(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Video{}).
		Joins("JOIN course_modules ON course_modules.id = videos.module_id").
		Where("course_modules.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// CategoryRepo implements repository.CategoryRepository.
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a new category.
func (r *CategoryRepo) Create(category *entity.Category) error {
	err := r.db.Create(category).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID returns the category with the given ID.
func (r *CategoryRepo) GetByID(id uint) (*entity.Category, error) {
	var category entity.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List() ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.Order("name").Find(&categories).Error
	return categories, err
}

// Update saves the category record.
func (r *CategoryRepo) Update(category *entity.Category) error {
	return r.db.Save(category).Error
}

// Delete removes the category.
func (r *CategoryRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Category{}, id).Error
}
