package entity

import (
	"time"
)

// Certificate is issued when a student passes the quiz of a course.
// One certificate per (user, course) pair.
type Certificate struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index;uniqueIndex:idx_user_course_certificate" json:"user_id"`
	CourseID     uint      `gorm:"not null;index;uniqueIndex:idx_user_course_certificate" json:"course_id"`
	ResultID     uint      `gorm:"not null" json:"result_id"`
	SerialNumber string    `gorm:"size:64;not null;uniqueIndex" json:"serial_number"`
	StudentName  string    `gorm:"size:200;not null" json:"student_name"`
	CourseTitle  string    `gorm:"size:150;not null" json:"course_title"`
	Score        int       `gorm:"not null;default:0" json:"score"`
	IssuedAt     time.Time `gorm:"not null" json:"issued_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Certificate) TableName() string {
	return "certificates"
}
