package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
	"github.com/yourusername/elearn-api/internal/service/attempt"
)

const courseResultsCacheTTL = 10 * time.Minute

// QuizResultView is the student-facing summary of a quiz outcome.
type QuizResultView struct {
	Score          int  `json:"score"`
	TotalQuestions int  `json:"totalQuestions"`
	CorrectAnswers int  `json:"correctAnswers"`
	Passed         bool `json:"passed"`
	TimeSpentSec   int  `json:"timeSpentSec"`
}

// QuizService manages quiz authoring and the student attempt flow.
type QuizService struct {
	quizRepo           repository.QuizRepository
	questionRepo       repository.QuestionRepository
	resultRepo         repository.ResultRepository
	courseRepo         repository.CourseRepository
	enrollmentRepo     repository.EnrollmentRepository
	userRepo           repository.UserRepository
	cacheRepo          repository.CacheRepository
	attemptService     *attempt.Service
	certificateService *CertificateService
}

// NewQuizService creates a new quiz service.
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	resultRepo repository.ResultRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	attemptService *attempt.Service,
	certificateService *CertificateService,
) *QuizService {
	return &QuizService{
		quizRepo:           quizRepo,
		questionRepo:       questionRepo,
		resultRepo:         resultRepo,
		courseRepo:         courseRepo,
		enrollmentRepo:     enrollmentRepo,
		userRepo:           userRepo,
		cacheRepo:          cacheRepo,
		attemptService:     attemptService,
		certificateService: certificateService,
	}
}

func courseResultsCacheKey(courseID uint) string {
	return fmt.Sprintf("course_%d_quiz_results", courseID)
}

// --- Instructor side ---

// CreateQuiz attaches a quiz to a course. A course carries at most one quiz.
func (s *QuizService) CreateQuiz(quiz *entity.Quiz, actor *entity.User) error {
	course, err := s.courseRepo.GetByID(quiz.CourseID)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if quiz.Title == "" {
		return fmt.Errorf("%w: quiz title is required", apperrors.ErrValidation)
	}
	if quiz.DurationMin <= 0 {
		quiz.DurationMin = entity.DefaultDurationMin
	}
	if quiz.PassScore <= 0 || quiz.PassScore > entity.RequiredQuestionCount {
		return fmt.Errorf("%w: pass score must be between 1 and %d",
			apperrors.ErrValidation, entity.RequiredQuestionCount)
	}
	return s.quizRepo.Create(quiz)
}

// UpdateQuiz saves quiz changes.
func (s *QuizService) UpdateQuiz(quiz *entity.Quiz, actor *entity.User) error {
	existing, err := s.quizRepo.GetByID(quiz.ID)
	if err != nil {
		return err
	}
	if err := s.requireCourseOwner(existing.CourseID, actor); err != nil {
		return err
	}
	quiz.CourseID = existing.CourseID
	return s.quizRepo.Update(quiz)
}

// GetQuizWithAnswers loads the quiz with questions including the
// correct options. Instructor view only.
func (s *QuizService) GetQuizWithAnswers(quizID uint, actor *entity.User) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCourseOwner(quiz.CourseID, actor); err != nil {
		return nil, err
	}
	return quiz, nil
}

// AddQuestions appends questions to the quiz. The quiz may never exceed
// the required question count.
func (s *QuizService) AddQuestions(quizID uint, questions []entity.Question, actor *entity.User) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if err := s.requireCourseOwner(quiz.CourseID, actor); err != nil {
		return err
	}

	existing, err := s.questionRepo.CountByQuizID(quizID)
	if err != nil {
		return err
	}
	if int(existing)+len(questions) > entity.RequiredQuestionCount {
		return fmt.Errorf("%w: a quiz holds exactly %d questions, %d already present",
			apperrors.ErrValidation, entity.RequiredQuestionCount, existing)
	}

	for i := range questions {
		q := &questions[i]
		q.QuizID = quizID
		if q.Text == "" {
			return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: a question needs at least two options", apperrors.ErrValidation)
		}
		if !q.IsValidOption(q.CorrectOption) {
			return fmt.Errorf("%w: correct option out of range", apperrors.ErrValidation)
		}
		if q.Position == 0 {
			q.Position = int(existing) + i + 1
		}
	}
	return s.questionRepo.CreateBatch(questions)
}

// UpdateQuestion saves question changes.
func (s *QuizService) UpdateQuestion(question *entity.Question, actor *entity.User) error {
	existing, err := s.questionRepo.GetByID(question.ID)
	if err != nil {
		return err
	}
	quiz, err := s.quizRepo.GetByID(existing.QuizID)
	if err != nil {
		return err
	}
	if err := s.requireCourseOwner(quiz.CourseID, actor); err != nil {
		return err
	}
	question.QuizID = existing.QuizID
	if !question.IsValidOption(question.CorrectOption) {
		return fmt.Errorf("%w: correct option out of range", apperrors.ErrValidation)
	}
	return s.questionRepo.Update(question)
}

// DeleteQuestion removes a question from its quiz.
func (s *QuizService) DeleteQuestion(questionID uint, actor *entity.User) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	quiz, err := s.quizRepo.GetByID(question.QuizID)
	if err != nil {
		return err
	}
	if err := s.requireCourseOwner(quiz.CourseID, actor); err != nil {
		return err
	}
	return s.questionRepo.Delete(questionID)
}

// DeleteQuiz removes the quiz and its questions.
func (s *QuizService) DeleteQuiz(quizID uint, actor *entity.User) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if err := s.requireCourseOwner(quiz.CourseID, actor); err != nil {
		return err
	}
	return s.quizRepo.Delete(quizID)
}

// --- Student side ---

// StartQuiz opens (or resumes) a timed attempt for an enrolled student.
// The returned quiz carries the questions without their correct options.
func (s *QuizService) StartQuiz(userID, quizID uint) (*entity.Quiz, attempt.Snapshot, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, attempt.Snapshot{}, err
	}
	enrolled, err := s.enrollmentRepo.Exists(userID, quiz.CourseID)
	if err != nil {
		return nil, attempt.Snapshot{}, err
	}
	if !enrolled {
		return nil, attempt.Snapshot{}, apperrors.ErrNotEnrolled
	}

	count, err := s.questionRepo.CountByQuizID(quizID)
	if err != nil {
		return nil, attempt.Snapshot{}, err
	}
	if count != entity.RequiredQuestionCount {
		return nil, attempt.Snapshot{}, fmt.Errorf("%w: quiz is not ready yet", apperrors.ErrValidation)
	}

	return s.attemptService.Start(userID, quizID)
}

// AnswerQuestion records the selected option on the live attempt.
func (s *QuizService) AnswerQuestion(userID, quizID, questionID uint, option int) error {
	return s.attemptService.SelectAnswer(userID, quizID, questionID, option)
}

// ClearAnswer removes a recorded answer from the live attempt.
func (s *QuizService) ClearAnswer(userID, quizID, questionID uint) error {
	return s.attemptService.ClearAnswer(userID, quizID, questionID)
}

// AttemptProgress returns the state of the live attempt.
func (s *QuizService) AttemptProgress(userID, quizID uint) (attempt.Snapshot, error) {
	return s.attemptService.Progress(userID, quizID)
}

// SubmitQuiz closes the attempt, persists the result and, on a passing
// score, issues the course certificate. orderedAnswers, when non-empty,
// lists the selected option per question in quiz order. Submitting when
// no attempt is live returns the stored result so retries stay safe.
func (s *QuizService) SubmitQuiz(userID, quizID uint, orderedAnswers []int) (*entity.Result, *entity.Certificate, error) {
	result, err := s.attemptService.Submit(userID, quizID, orderedAnswers)
	if err != nil {
		if errors.Is(err, apperrors.ErrAttemptNotFound) {
			stored, lookupErr := s.resultRepo.GetByUserAndQuiz(userID, quizID)
			if lookupErr != nil {
				return nil, nil, err
			}
			certificate, _ := s.certificateService.GetForCourse(userID, stored.CourseID)
			return stored, certificate, nil
		}
		return nil, nil, err
	}

	var certificate *entity.Certificate
	if result.Passed {
		certificate, err = s.handlePass(userID, result)
		if err != nil {
			log.Printf("[QuizService] Post-pass processing failed for user #%d quiz #%d: %v",
				userID, quizID, err)
		}
	}
	return result, certificate, nil
}

// handlePass issues the certificate and bumps the passed counter on the
// first passing submission for the course.
func (s *QuizService) handlePass(userID uint, result *entity.Result) (*entity.Certificate, error) {
	_, err := s.certificateService.GetForCourse(userID, result.CourseID)
	firstPass := errors.Is(err, apperrors.ErrNotFound)
	if err != nil && !firstPass {
		return nil, err
	}

	certificate, err := s.certificateService.Issue(userID, result.CourseID, result.Score, result.ID)
	if err != nil {
		return nil, err
	}
	if firstPass {
		if err := s.userRepo.IncrementQuizzesPassed(userID); err != nil {
			log.Printf("[QuizService] Failed to increment quizzes passed for user #%d: %v", userID, err)
		}
	}
	return certificate, nil
}

// GetQuizResult returns the stored outcome of the user's quiz.
func (s *QuizService) GetQuizResult(userID, quizID uint) (*QuizResultView, error) {
	result, err := s.resultRepo.GetByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}
	return &QuizResultView{
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		Passed:         result.Passed,
		TimeSpentSec:   result.TimeSpentSec,
	}, nil
}

// GetQuizByCourse returns the quiz attached to a course.
func (s *QuizService) GetQuizByCourse(courseID uint) (*entity.Quiz, error) {
	return s.quizRepo.GetByCourseID(courseID)
}

// MyResults lists the user's quiz results.
func (s *QuizService) MyResults(userID uint, limit, offset int) ([]entity.Result, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.resultRepo.ListByUser(userID, limit, offset)
}

// GetCourseResults returns every student result on the course quiz,
// ordered by score. Instructor view, cached until the next submission.
func (s *QuizService) GetCourseResults(courseID uint, actor *entity.User) ([]entity.Result, error) {
	if err := s.requireCourseOwner(courseID, actor); err != nil {
		return nil, err
	}

	cacheKey := courseResultsCacheKey(courseID)
	if s.cacheRepo != nil {
		var cached []entity.Result
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[QuizService] Cache read failed for course #%d results: %v", courseID, err)
		}
	}

	results, err := s.resultRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, results, courseResultsCacheTTL); err != nil {
			log.Printf("[QuizService] Cache write failed for course #%d results: %v", courseID, err)
		}
	}
	return results, nil
}

// QuizStatsView summarizes how the course quiz performs across students.
type QuizStatsView struct {
	Participants int     `json:"participants"`
	Passed       int     `json:"passed"`
	PassRate     float64 `json:"passRate"`
	AverageScore float64 `json:"averageScore"`
	BestScore    int     `json:"bestScore"`
}

// CourseQuizStats aggregates the course results into instructor
// statistics. Reuses the cached results listing.
func (s *QuizService) CourseQuizStats(courseID uint, actor *entity.User) (*QuizStatsView, error) {
	results, err := s.GetCourseResults(courseID, actor)
	if err != nil {
		return nil, err
	}

	stats := &QuizStatsView{Participants: len(results)}
	if len(results) == 0 {
		return stats, nil
	}

	total := 0
	for _, r := range results {
		total += r.Score
		if r.Passed {
			stats.Passed++
		}
		if r.Score > stats.BestScore {
			stats.BestScore = r.Score
		}
	}
	stats.PassRate = float64(stats.Passed) / float64(len(results))
	stats.AverageScore = float64(total) / float64(len(results))
	return stats, nil
}

func (s *QuizService) requireCourseOwner(courseID uint, actor *entity.User) error {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return err
	}
	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}
