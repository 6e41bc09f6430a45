package entity

import (
	"time"
)

// Enrollment links a student to a course. One enrollment per (user, course) pair.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_course_enrollment" json:"user_id"`
	CourseID  uint      `gorm:"not null;index;uniqueIndex:idx_user_course_enrollment" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Enrollment) TableName() string {
	return "enrollments"
}
