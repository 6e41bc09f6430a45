package postgres

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// ResultRepo implements repository.ResultRepository.
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo creates a new result repository.
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Save persists the result. An existing result for the same (user, quiz)
// pair is overwritten only when the new score is higher, so a retake can
// never lower a student's recorded score.
func (r *ResultRepo) Save(result *entity.Result) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if result.Username == "" {
			// Denormalized for leaderboard listings and exports.
			tx.Model(&entity.User{}).Select("username").
				Where("id = ?", result.UserID).Scan(&result.Username)
		}

		var existing entity.Result
		err := tx.Where("user_id = ? AND quiz_id = ?", result.UserID, result.QuizID).
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(result).Error
			}
			return err
		}

		if result.Score <= existing.Score {
			log.Printf("[ResultRepo] Keeping existing result for user #%d quiz #%d (old score %d >= new %d)",
				result.UserID, result.QuizID, existing.Score, result.Score)
			result.ID = existing.ID
			result.Score = existing.Score
			result.CorrectAnswers = existing.CorrectAnswers
			result.Passed = existing.Passed
			result.TimeSpentSec = existing.TimeSpentSec
			result.CompletedAt = existing.CompletedAt
			return nil
		}

		result.ID = existing.ID
		return tx.Model(&existing).Updates(map[string]interface{}{
			"score":           result.Score,
			"correct_answers": result.CorrectAnswers,
			"total_questions": result.TotalQuestions,
			"passed":          result.Passed,
			"time_spent_sec":  result.TimeSpentSec,
			"completed_at":    result.CompletedAt,
		}).Error
	})
}

// GetByUserAndQuiz returns the result for the (user, quiz) pair.
func (r *ResultRepo) GetByUserAndQuiz(userID, quizID uint) (*entity.Result, error) {
	var result entity.Result
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// ListByQuiz returns the results of a quiz ordered by score with the total count.
func (r *ResultRepo) ListByQuiz(quizID uint, limit, offset int) ([]entity.Result, int64, error) {
	query := r.db.Model(&entity.Result{}).Where("quiz_id = ?", quizID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []entity.Result
	err := query.Order("score DESC, completed_at").
		Limit(limit).Offset(offset).
		Find(&results).Error
	return results, total, err
}

// ListByCourse returns all results for the course quiz ordered by score.
func (r *ResultRepo) ListByCourse(courseID uint) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.Where("course_id = ?", courseID).
		Order("score DESC, completed_at").
		Find(&results).Error
	return results, err
}

// ListByUser returns the results of a user with pagination.
func (r *ResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.Result, error) {
	var results []entity.Result
	err := r.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).Offset(offset).
		Find(&results).Error
	return results, err
}

// CertificateRepo implements repository.CertificateRepository.
type CertificateRepo struct {
	db *gorm.DB
}

// NewCertificateRepo creates a new certificate repository.
func NewCertificateRepo(db *gorm.DB) *CertificateRepo {
	return &CertificateRepo{db: db}
}

// Create inserts a certificate. A duplicate (user, course) pair maps to ErrConflict.
func (r *CertificateRepo) Create(certificate *entity.Certificate) error {
	err := r.db.Create(certificate).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetByID returns the certificate with the given ID.
func (r *CertificateRepo) GetByID(id uint) (*entity.Certificate, error) {
	var certificate entity.Certificate
	err := r.db.First(&certificate, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &certificate, nil
}

// GetByUserAndCourse returns the certificate for the (user, course) pair.
func (r *CertificateRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Certificate, error) {
	var certificate entity.Certificate
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &certificate, nil
}

// GetBySerialNumber returns the certificate with the given serial number.
func (r *CertificateRepo) GetBySerialNumber(serial string) (*entity.Certificate, error) {
	var certificate entity.Certificate
	err := r.db.Where("serial_number = ?", serial).First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &certificate, nil
}

// ListByUser returns the certificates of a user.
func (r *CertificateRepo) ListByUser(userID uint) ([]entity.Certificate, error) {
	var certificates []entity.Certificate
	err := r.db.Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certificates).Error
	return certificates, err
}
