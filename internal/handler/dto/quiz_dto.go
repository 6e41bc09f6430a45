package dto

import (
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/handler/helper"
)

// QuestionResponse is a question shaped for the student, without the
// correct option.
type QuestionResponse struct {
	ID       uint                    `json:"id"`
	QuizID   uint                    `json:"quiz_id"`
	Text     string                  `json:"text"`
	Options  []helper.QuestionOption `json:"options"`
	Position int                     `json:"position"`
}

// QuizResponse is a quiz shaped for the frontend.
type QuizResponse struct {
	ID            uint               `json:"id"`
	CourseID      uint               `json:"course_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	DurationMin   int                `json:"duration_min"`
	PassScore     int                `json:"pass_score"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
}

// NewQuestionResponse builds the student view of a question.
func NewQuestionResponse(question *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:       question.ID,
		QuizID:   question.QuizID,
		Text:     question.Text,
		Options:  helper.ConvertOptionsToObjects(question.Options),
		Position: question.Position,
	}
}

// NewQuizResponse builds the quiz DTO. Questions are included only when
// withQuestions is true, and never carry the correct option.
func NewQuizResponse(quiz *entity.Quiz, withQuestions bool) *QuizResponse {
	resp := &QuizResponse{
		ID:            quiz.ID,
		CourseID:      quiz.CourseID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		DurationMin:   quiz.DurationMin,
		PassScore:     quiz.PassScore,
		QuestionCount: len(quiz.Questions),
	}
	if withQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(quiz.Questions))
		for i := range quiz.Questions {
			resp.Questions = append(resp.Questions, NewQuestionResponse(&quiz.Questions[i]))
		}
	}
	return resp
}

// ResultResponse is a quiz result shaped for listings.
type ResultResponse struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	QuizID         uint      `json:"quiz_id"`
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	TimeSpentSec   int       `json:"time_spent_sec"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewResultResponse builds the result DTO.
func NewResultResponse(result *entity.Result) *ResultResponse {
	return &ResultResponse{
		ID:             result.ID,
		UserID:         result.UserID,
		QuizID:         result.QuizID,
		Username:       result.Username,
		Score:          result.Score,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
		Passed:         result.Passed,
		TimeSpentSec:   result.TimeSpentSec,
		CompletedAt:    result.CompletedAt,
	}
}

// NewListResultResponse builds DTOs for a result listing.
func NewListResultResponse(results []entity.Result) []*ResultResponse {
	out := make([]*ResultResponse, 0, len(results))
	for i := range results {
		out = append(out, NewResultResponse(&results[i]))
	}
	return out
}
