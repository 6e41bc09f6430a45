package entity

import (
	"time"
)

// RequiredQuestionCount is the number of questions every publishable quiz must have.
const RequiredQuestionCount = 20

// DefaultDurationMin is the attempt duration applied when a quiz does not set one.
const DefaultDurationMin = 20

// Quiz is the final assessment of a course. Each course has at most one quiz.
type Quiz struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CourseID    uint       `gorm:"not null;uniqueIndex" json:"course_id"`
	Title       string     `gorm:"size:150;not null" json:"title"`
	Description string     `gorm:"size:500;not null;default:''" json:"description"`
	DurationMin int        `gorm:"not null;default:20" json:"duration_min"`
	PassScore   int        `gorm:"not null;default:17" json:"pass_score"`
	Questions   []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Quiz) TableName() string {
	return "quizzes"
}

// Duration returns the attempt duration, falling back to the default when unset.
func (q *Quiz) Duration() time.Duration {
	minutes := q.DurationMin
	if minutes <= 0 {
		minutes = DefaultDurationMin
	}
	return time.Duration(minutes) * time.Minute
}

// IsComplete reports whether the quiz carries the required number of questions.
func (q *Quiz) IsComplete() bool {
	return len(q.Questions) == RequiredQuestionCount
}
