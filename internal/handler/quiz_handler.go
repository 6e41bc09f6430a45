package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/handler/dto"
	"github.com/yourusername/elearn-api/internal/service"
)

// QuizHandler handles quiz authoring, the attempt flow and result exports.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new quiz handler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuizRequest is the quiz creation payload.
type CreateQuizRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=150"`
	Description string `json:"description" binding:"omitempty,max=500"`
	DurationMin int    `json:"duration_min" binding:"omitempty,min=1,max=180"`
	PassScore   int    `json:"pass_score" binding:"omitempty,min=1,max=20"`
}

// CreateQuiz handles POST /api/courses/:courseId/quiz.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := &entity.Quiz{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PassScore:   req.PassScore,
	}
	if err := h.quizService.CreateQuiz(quiz, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, false))
}

// UpdateQuiz handles PUT /api/quizzes/:quizId.
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz := &entity.Quiz{
		ID:          quizID,
		Title:       req.Title,
		Description: req.Description,
		DurationMin: req.DurationMin,
		PassScore:   req.PassScore,
	}
	if err := h.quizService.UpdateQuiz(quiz, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, false))
}

// DeleteQuiz handles DELETE /api/quizzes/:quizId.
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.DeleteQuiz(quizID, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// GetQuizWithAnswers handles GET /api/quizzes/:quizId/full.
// Instructor view, correct options included.
func (h *QuizHandler) GetQuizWithAnswers(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetQuizWithAnswers(quizID, actor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// The instructor needs the correct options back, so the raw
	// entity is returned instead of the student-facing DTO.
	questions := make([]gin.H, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, gin.H{
			"id":             q.ID,
			"text":           q.Text,
			"options":        q.Options,
			"correct_option": q.CorrectOption,
			"position":       q.Position,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           quiz.ID,
		"course_id":    quiz.CourseID,
		"title":        quiz.Title,
		"description":  quiz.Description,
		"duration_min": quiz.DurationMin,
		"pass_score":   quiz.PassScore,
		"questions":    questions,
	})
}

// QuestionPayload is a single question in the batch payload.
type QuestionPayload struct {
	Text          string   `json:"text" binding:"required,min=3,max=500"`
	Options       []string `json:"options" binding:"required,min=2,max=6"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
	Position      int      `json:"position"`
}

// AddQuestionsRequest is the question batch payload.
type AddQuestionsRequest struct {
	Questions []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions handles POST /api/quizzes/:quizId/questions.
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, entity.Question{
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: q.CorrectOption,
			Position:      q.Position,
		})
	}
	if err := h.quizService.AddQuestions(quizID, questions, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Questions added", "count": len(questions)})
}

// UpdateQuestion handles PUT /api/questions/:questionId.
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := &entity.Question{
		ID:            questionID,
		Text:          req.Text,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
		Position:      req.Position,
	}
	if err := h.quizService.UpdateQuestion(question, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question updated"})
}

// DeleteQuestion handles DELETE /api/questions/:questionId.
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.quizService.DeleteQuestion(questionID, actor(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// GetCourseQuiz handles GET /api/courses/:courseId/quiz.
// Returns the quiz metadata without questions.
func (h *QuizHandler) GetCourseQuiz(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	quiz, err := h.quizService.GetQuizByCourse(courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, false))
}

// StartQuiz handles GET /api/quiz/:quizId.
// Opens (or resumes) a timed attempt and returns the questions with
// the correct options stripped.
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	quiz, snapshot, err := h.quizService.StartQuiz(currentUserID(c), quizID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"quiz":    dto.NewQuizResponse(quiz, true),
		"attempt": snapshot,
	})
}

// AnswerRequest is the single-answer payload.
type AnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	Option     *int `json:"option" binding:"required,min=0"`
}

// AnswerQuestion handles POST /api/quiz/:quizId/answer.
func (h *QuizHandler) AnswerQuestion(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quizService.AnswerQuestion(currentUserID(c), quizID, req.QuestionID, *req.Option); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer recorded"})
}

// ClearAnswerRequest is the answer removal payload.
type ClearAnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

// ClearAnswer handles DELETE /api/quiz/:quizId/answer.
func (h *QuizHandler) ClearAnswer(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req ClearAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quizService.ClearAnswer(currentUserID(c), quizID, req.QuestionID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer cleared"})
}

// AttemptProgress handles GET /api/quiz/:quizId/progress.
func (h *QuizHandler) AttemptProgress(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	snapshot, err := h.quizService.AttemptProgress(currentUserID(c), quizID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// SubmitQuizRequest is the final submission payload. The answers are
// ordered by question position, one selected option index per question.
type SubmitQuizRequest struct {
	Reponses []int `json:"reponses" binding:"required"`
}

// SubmitQuiz handles POST /api/passerQuiz/:quizId.
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, certificate, err := h.quizService.SubmitQuiz(currentUserID(c), quizID, req.Reponses)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := gin.H{
		"score":   result.Score,
		"passed":  result.Passed,
		"message": "Quiz submitted",
	}
	if certificate != nil {
		response["certificat"] = certificate
	}
	c.JSON(http.StatusOK, response)
}

// GetQuizResult handles GET /api/quizResult/:quizId.
func (h *QuizHandler) GetQuizResult(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	view, err := h.quizService.GetQuizResult(currentUserID(c), quizID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// MyResults handles GET /api/results/my.
func (h *QuizHandler) MyResults(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	results, err := h.quizService.MyResults(currentUserID(c), perPage, (page-1)*perPage)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results":  dto.NewListResultResponse(results),
		"page":     page,
		"per_page": perPage,
	})
}

// GetCourseResults handles GET /api/courses/:courseId/results.
func (h *QuizHandler) GetCourseResults(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	results, err := h.quizService.GetCourseResults(courseID, actor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": dto.NewListResultResponse(results)})
}

// CourseQuizStats handles GET /api/courses/:courseId/stats.
func (h *QuizHandler) CourseQuizStats(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	stats, err := h.quizService.CourseQuizStats(courseID, actor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportCourseResults handles GET /api/courses/:courseId/results/export?format=csv|xlsx.
func (h *QuizHandler) ExportCourseResults(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)
	format := c.DefaultQuery("format", "csv")

	results, err := h.quizService.GetCourseResults(courseID, actor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course_%d_results_%s", courseID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		h.exportCSV(c, results, filename)
	}
}

// exportCSV writes the results as CSV with proper escaping of commas
// and quotes.
func (h *QuizHandler) exportCSV(c *gin.Context, results []entity.Result, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM so that Excel renders UTF-8 correctly.
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Student", "Score", "Correct", "Total questions", "Passed", "Time spent (s)", "Completed at"})

	for _, r := range results {
		passed := "No"
		if r.Passed {
			passed = "Yes"
		}

		writer.Write([]string{
			sanitizeForExcel(r.Username),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.CorrectAnswers),
			strconv.Itoa(r.TotalQuestions),
			passed,
			strconv.Itoa(r.TimeSpentSec),
			r.CompletedAt.Format(time.RFC3339),
		})
	}
}

// exportXLSX writes the results as an Excel workbook using a
// StreamWriter so large result sets stay cheap.
func (h *QuizHandler) exportXLSX(c *gin.Context, results []entity.Result, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Failed to create stream writer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Student", "Score", "Correct", "Total questions", "Passed", "Time spent (s)", "Completed at"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Failed to write headers: %v", err)
	}

	for i, r := range results {
		rowNum := i + 2 // row 1 holds the headers
		cell := fmt.Sprintf("A%d", rowNum)

		passed := "No"
		if r.Passed {
			passed = "Yes"
		}

		row := []interface{}{sanitizeForExcel(r.Username), r.Score, r.CorrectAnswers, r.TotalQuestions, passed, r.TimeSpentSec, r.CompletedAt.Format(time.RFC3339)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Failed to write row %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Failed to flush stream writer: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Failed to write Excel response: %v", err)
	}
}

// sanitizeForExcel guards exported cells against formula injection in
// Excel and LibreOffice.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Characters that start a formula: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
