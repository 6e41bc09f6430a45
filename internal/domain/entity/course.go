package entity

import (
	"time"
)

// Course publication statuses.
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Course represents a published course with its modules and videos.
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:150;not null" json:"title"`
	Description  string         `gorm:"size:2000;not null;default:''" json:"description"`
	CoverImage   string         `gorm:"size:255;not null;default:''" json:"cover_image"`
	CategoryID   uint           `gorm:"not null;index" json:"category_id"`
	InstructorID uint           `gorm:"not null;index" json:"instructor_id"`
	Status       string         `gorm:"size:20;not null;default:'draft';index" json:"status"`
	PremiumOnly  bool           `gorm:"not null;default:false" json:"premium_only"`
	Modules      []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Course) TableName() string {
	return "courses"
}

// IsPublished reports whether the course is visible to students.
func (c *Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}

// VideoCount returns the total number of videos across all modules.
func (c *Course) VideoCount() int {
	count := 0
	for i := range c.Modules {
		count += len(c.Modules[i].Videos)
	}
	return count
}

// CourseModule is an ordered chapter inside a course.
type CourseModule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	Title     string    `gorm:"size:150;not null" json:"title"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Videos    []Video   `gorm:"foreignKey:ModuleID" json:"videos,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (CourseModule) TableName() string {
	return "course_modules"
}

// Video is a single lesson inside a module.
type Video struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ModuleID    uint      `gorm:"not null;index" json:"module_id"`
	Title       string    `gorm:"size:150;not null" json:"title"`
	URL         string    `gorm:"size:500;not null" json:"url"`
	DurationSec int       `gorm:"not null;default:0" json:"duration_sec"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Video) TableName() string {
	return "videos"
}
