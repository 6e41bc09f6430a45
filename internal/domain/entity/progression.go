package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// UintArray is a custom type stored as JSONB, used for lists of entity IDs.
type UintArray []uint

// Scan implements sql.Scanner for UintArray.
func (a *UintArray) Scan(value interface{}) error {
	if value == nil {
		*a = UintArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = UintArray{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value implements driver.Valuer for UintArray.
func (a UintArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Contains reports whether id is present in the array.
func (a UintArray) Contains(id uint) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// Progression tracks how far a student has advanced in a course.
type Progression struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index;uniqueIndex:idx_user_course_progression" json:"user_id"`
	CourseID        uint      `gorm:"not null;index;uniqueIndex:idx_user_course_progression" json:"course_id"`
	CompletedVideos UintArray `gorm:"type:jsonb;not null" json:"completed_videos"`
	LastVideoID     uint      `gorm:"not null;default:0" json:"last_video_id"`
	Percentage      int       `gorm:"not null;default:0" json:"percentage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Progression) TableName() string {
	return "progressions"
}

// MarkVideoCompleted records the video and recomputes the percentage
// against totalVideos. It is a no-op when the video was already counted.
func (p *Progression) MarkVideoCompleted(videoID uint, totalVideos int) {
	if !p.CompletedVideos.Contains(videoID) {
		p.CompletedVideos = append(p.CompletedVideos, videoID)
	}
	p.LastVideoID = videoID
	if totalVideos > 0 {
		p.Percentage = len(p.CompletedVideos) * 100 / totalVideos
		if p.Percentage > 100 {
			p.Percentage = 100
		}
	}
}

// IsComplete reports whether all course videos were watched.
func (p *Progression) IsComplete() bool {
	return p.Percentage >= 100
}
