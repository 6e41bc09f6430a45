package entity

import (
	"time"
)

// Result is the persisted outcome of a quiz attempt.
// A user keeps at most one result per quiz, the best one.
type Result struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index;uniqueIndex:idx_user_quiz" json:"user_id"`
	QuizID         uint      `gorm:"not null;index;uniqueIndex:idx_user_quiz" json:"quiz_id"`
	CourseID       uint      `gorm:"not null;index" json:"course_id"`
	Username       string    `gorm:"size:50;not null" json:"username"`
	Score          int       `gorm:"not null;default:0" json:"score"`
	CorrectAnswers int       `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions int       `gorm:"not null;default:0" json:"total_questions"`
	Passed         bool      `gorm:"not null;default:false" json:"passed"`
	TimeSpentSec   int       `gorm:"not null;default:0" json:"time_spent_sec"`
	CompletedAt    time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Result) TableName() string {
	return "results"
}
