package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	"github.com/yourusername/elearn-api/internal/handler/dto"
	"github.com/yourusername/elearn-api/internal/service"
)

// CourseHandler handles the course catalog endpoints.
type CourseHandler struct {
	courseService *service.CourseService
	reviewService *service.ReviewService
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courseService *service.CourseService, reviewService *service.ReviewService) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		reviewService: reviewService,
	}
}

// actor rebuilds the acting user from the authenticated context. The
// ownership checks only need the ID and the role.
func actor(c *gin.Context) *entity.User {
	return &entity.User{
		ID:   currentUserID(c),
		Role: c.GetString("role"),
	}
}

// ListCourses handles GET /api/courses.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	var filters repository.CourseFilters
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		filters.CategoryID = uint(categoryID)
	}
	filters.Search = c.Query("search")

	courses, total, err := h.courseService.ListCourses(filters, perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedCoursesResponse{
		Courses: dto.NewListCourseResponse(courses),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// GetCourse handles GET /api/courses/:courseId.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	course, err := h.courseService.GetCourse(courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourseResponse(course, true))
}

// CreateCourseRequest is the course creation payload.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=150"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	CoverImage  string `json:"cover_image" binding:"omitempty,max=255"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	PremiumOnly bool   `json:"premium_only"`
}

// CreateCourse handles POST /api/courses.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := &entity.Course{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		CategoryID:  req.CategoryID,
		PremiumOnly: req.PremiumOnly,
	}
	if err := h.courseService.CreateCourse(course, currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCourseResponse(course, false))
}

// UpdateCourseRequest is the course edit payload.
type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=150"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	CoverImage  string `json:"cover_image" binding:"omitempty,max=255"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	PremiumOnly bool   `json:"premium_only"`
}

// UpdateCourse handles PUT /api/courses/:courseId.
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := &entity.Course{
		ID:          courseID,
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		CategoryID:  req.CategoryID,
		PremiumOnly: req.PremiumOnly,
	}
	if err := h.courseService.UpdateCourse(course, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCourseResponse(course, false))
}

// PublishCourse handles POST /api/courses/:courseId/publish.
func (h *CourseHandler) PublishCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	if err := h.courseService.PublishCourse(courseID, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course published"})
}

// DeleteCourse handles DELETE /api/courses/:courseId.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	if err := h.courseService.DeleteCourse(courseID, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

// AddModuleRequest is the module creation payload.
type AddModuleRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=150"`
	Position int    `json:"position"`
}

// AddModule handles POST /api/courses/:courseId/modules.
func (h *CourseHandler) AddModule(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	var req AddModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	module := &entity.CourseModule{
		CourseID: courseID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := h.courseService.AddModule(module, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

// AddVideoRequest is the video creation payload.
type AddVideoRequest struct {
	ModuleID    uint   `json:"module_id" binding:"required"`
	Title       string `json:"title" binding:"required,min=1,max=150"`
	URL         string `json:"url" binding:"required,max=500"`
	DurationSec int    `json:"duration_sec" binding:"omitempty,min=0"`
	Position    int    `json:"position"`
}

// AddVideo handles POST /api/courses/:courseId/videos.
func (h *CourseHandler) AddVideo(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	var req AddVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video := &entity.Video{
		ModuleID:    req.ModuleID,
		Title:       req.Title,
		URL:         req.URL,
		DurationSec: req.DurationSec,
		Position:    req.Position,
	}
	if err := h.courseService.AddVideo(courseID, video, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// ListCategories handles GET /api/categories.
func (h *CourseHandler) ListCategories(c *gin.Context) {
	categories, err := h.courseService.Categories()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategoryRequest is the category creation payload.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// CreateCategory handles POST /api/admin/categories.
func (h *CourseHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &entity.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.courseService.CreateCategory(category); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// AddReviewRequest is the review payload.
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

// AddReview handles POST /api/courses/:courseId/reviews.
func (h *CourseHandler) AddReview(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review := &entity.Review{
		UserID:   currentUserID(c),
		CourseID: courseID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := h.reviewService.AddReview(review); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// UpdateReview handles PUT /api/courses/:courseId/reviews.
func (h *CourseHandler) UpdateReview(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.reviewService.UpdateReview(currentUserID(c), courseID, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DeleteReview handles DELETE /api/courses/:courseId/reviews.
func (h *CourseHandler) DeleteReview(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	if err := h.reviewService.DeleteReview(currentUserID(c), courseID, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// ListReviews handles GET /api/courses/:courseId/reviews.
func (h *CourseHandler) ListReviews(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	reviews, total, average, err := h.reviewService.CourseReviews(courseID, perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"total":          total,
		"average_rating": average,
		"page":           page,
		"per_page":       perPage,
	})
}
