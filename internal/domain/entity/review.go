package entity

import (
	"time"
)

// Review is a student rating of a course. One review per (user, course) pair.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_course_review" json:"user_id"`
	CourseID  uint      `gorm:"not null;index;uniqueIndex:idx_user_course_review" json:"course_id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5
	Comment   string    `gorm:"size:1000;not null;default:''" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Review) TableName() string {
	return "reviews"
}

// IsValidRating reports whether the rating is within the allowed range.
func (r *Review) IsValidRating() bool {
	return r.Rating >= 1 && r.Rating <= 5
}
