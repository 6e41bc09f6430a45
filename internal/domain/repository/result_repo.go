package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// ResultRepository defines persistence operations for quiz results.
type ResultRepository interface {
	// Save persists the result. When a result already exists for the
	// (user, quiz) pair, it is replaced only if the new score is higher.
	Save(result *entity.Result) error
	GetByUserAndQuiz(userID, quizID uint) (*entity.Result, error)
	ListByQuiz(quizID uint, limit, offset int) ([]entity.Result, int64, error)
	// ListByCourse returns all results for the course quiz, ordered by score.
	ListByCourse(courseID uint) ([]entity.Result, error)
	ListByUser(userID uint, limit, offset int) ([]entity.Result, error)
}

// CertificateRepository defines persistence operations for certificates.
type CertificateRepository interface {
	Create(certificate *entity.Certificate) error
	GetByID(id uint) (*entity.Certificate, error)
	GetByUserAndCourse(userID, courseID uint) (*entity.Certificate, error)
	GetBySerialNumber(serial string) (*entity.Certificate, error)
	ListByUser(userID uint) ([]entity.Certificate, error)
}
