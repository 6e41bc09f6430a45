package dto

import (
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
)

// VideoResponse is a lesson shaped for the frontend.
type VideoResponse struct {
	ID          uint   `json:"id"`
	ModuleID    uint   `json:"module_id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	DurationSec int    `json:"duration_sec"`
	Position    int    `json:"position"`
}

// ModuleResponse is a course chapter with its videos.
type ModuleResponse struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Videos   []VideoResponse `json:"videos"`
}

// CourseResponse is a course shaped for the frontend.
type CourseResponse struct {
	ID           uint             `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	CoverImage   string           `json:"cover_image,omitempty"`
	CategoryID   uint             `json:"category_id"`
	InstructorID uint             `json:"instructor_id"`
	Status       string           `json:"status"`
	PremiumOnly  bool             `json:"premium_only"`
	VideoCount   int              `json:"video_count"`
	Modules      []ModuleResponse `json:"modules,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewCourseResponse builds the course DTO. Modules are included only
// when withContent is true.
func NewCourseResponse(course *entity.Course, withContent bool) *CourseResponse {
	resp := &CourseResponse{
		ID:           course.ID,
		Title:        course.Title,
		Description:  course.Description,
		CoverImage:   course.CoverImage,
		CategoryID:   course.CategoryID,
		InstructorID: course.InstructorID,
		Status:       course.Status,
		PremiumOnly:  course.PremiumOnly,
		VideoCount:   course.VideoCount(),
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}

	if withContent {
		resp.Modules = make([]ModuleResponse, 0, len(course.Modules))
		for i := range course.Modules {
			m := &course.Modules[i]
			moduleResp := ModuleResponse{
				ID:       m.ID,
				Title:    m.Title,
				Position: m.Position,
				Videos:   make([]VideoResponse, 0, len(m.Videos)),
			}
			for j := range m.Videos {
				v := &m.Videos[j]
				moduleResp.Videos = append(moduleResp.Videos, VideoResponse{
					ID:          v.ID,
					ModuleID:    v.ModuleID,
					Title:       v.Title,
					URL:         v.URL,
					DurationSec: v.DurationSec,
					Position:    v.Position,
				})
			}
			resp.Modules = append(resp.Modules, moduleResp)
		}
	}
	return resp
}

// NewListCourseResponse builds DTOs for a course listing.
func NewListCourseResponse(courses []entity.Course) []*CourseResponse {
	out := make([]*CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, NewCourseResponse(&courses[i], false))
	}
	return out
}

// PaginatedCoursesResponse is a paginated course listing.
type PaginatedCoursesResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}
