package repository

import (
	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// QuizRepository defines persistence operations for quizzes.
type QuizRepository interface {
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	// GetByCourseID returns the quiz attached to the course, if any.
	GetByCourseID(courseID uint) (*entity.Quiz, error)
	// GetWithQuestions loads the quiz together with its ordered questions.
	GetWithQuestions(id uint) (*entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	List(limit, offset int) ([]entity.Quiz, error)
	Delete(id uint) error
}

// QuestionRepository defines persistence operations for quiz questions.
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByQuizID(quizID uint) ([]entity.Question, error)
	CountByQuizID(quizID uint) (int64, error)
	Update(question *entity.Question) error
	Delete(id uint) error
}
