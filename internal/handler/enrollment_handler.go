package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/elearn-api/internal/service"
)

// EnrollmentHandler handles course enrollment and learning progress.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	progressService   *service.ProgressService
}

// NewEnrollmentHandler creates a new enrollment handler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, progressService *service.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		progressService:   progressService,
	}
}

// Enroll handles POST /api/enroll/:courseId.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	enrollment, err := h.enrollmentService.Enroll(currentUserID(c), courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// CheckEnrollment handles GET /api/enroll/check/:courseId.
func (h *EnrollmentHandler) CheckEnrollment(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	enrolled, err := h.enrollmentService.IsEnrolled(currentUserID(c), courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isEnrolled": enrolled})
}

// Unenroll handles DELETE /api/enroll/:courseId.
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	if err := h.enrollmentService.Unenroll(currentUserID(c), courseID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enrollment cancelled"})
}

// MyCourses handles GET /api/enroll/my-courses.
func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	enrollments, total, err := h.enrollmentService.MyCourses(currentUserID(c), perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enrollments": enrollments,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
	})
}

// CourseStudents handles GET /api/courses/:courseId/students.
func (h *EnrollmentHandler) CourseStudents(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	enrollments, total, err := h.enrollmentService.CourseStudents(courseID, actor(c), perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"students": enrollments,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// MarkVideoWatched handles POST /api/courses/:courseId/videos/:videoId/watched.
func (h *EnrollmentHandler) MarkVideoWatched(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	videoID := c.MustGet("videoID").(uint)

	progression, err := h.progressService.MarkVideoWatched(currentUserID(c), courseID, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progression)
}

// GetProgress handles GET /api/courses/:courseId/progress.
func (h *EnrollmentHandler) GetProgress(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	progression, err := h.progressService.GetProgress(currentUserID(c), courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progression)
}

// ListProgress handles GET /api/progress.
func (h *EnrollmentHandler) ListProgress(c *gin.Context) {
	progressions, err := h.progressService.ListProgress(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progressions})
}
