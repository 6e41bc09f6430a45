package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
	"github.com/yourusername/elearn-api/internal/service/attempt"
)

const (
	testQuizID   = uint(5)
	testCourseID = uint(7)
	testUserID   = uint(42)
)

// completeQuiz builds a quiz with the full question set. The correct
// option of question i is i%4.
func completeQuiz() *entity.Quiz {
	quiz := &entity.Quiz{
		ID:          testQuizID,
		CourseID:    testCourseID,
		Title:       "Final assessment",
		DurationMin: entity.DefaultDurationMin,
		PassScore:   17,
	}
	for i := 0; i < entity.RequiredQuestionCount; i++ {
		quiz.Questions = append(quiz.Questions, entity.Question{
			ID:     uint(i + 1),
			QuizID: testQuizID,
			Text:   fmt.Sprintf("Question %d", i+1),
			Options: entity.StringArray{
				"Option A", "Option B", "Option C", "Option D",
			},
			CorrectOption: i % 4,
			Position:      i + 1,
		})
	}
	return quiz
}

type quizServiceFixture struct {
	quizRepo        *MockQuizRepo
	questionRepo    *MockQuestionRepo
	resultRepo      *MockResultRepo
	courseRepo      *MockCourseRepo
	enrollmentRepo  *MockEnrollmentRepo
	userRepo        *MockUserRepo
	cacheRepo       *MockCacheRepo
	certificateRepo *MockCertificateRepo
	service         *QuizService
	cancel          context.CancelFunc
}

func newQuizServiceFixture(t *testing.T) *quizServiceFixture {
	t.Helper()

	f := &quizServiceFixture{
		quizRepo:        new(MockQuizRepo),
		questionRepo:    new(MockQuestionRepo),
		resultRepo:      new(MockResultRepo),
		courseRepo:      new(MockCourseRepo),
		enrollmentRepo:  new(MockEnrollmentRepo),
		userRepo:        new(MockUserRepo),
		cacheRepo:       new(MockCacheRepo),
		certificateRepo: new(MockCertificateRepo),
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	t.Cleanup(cancel)

	attemptService := attempt.NewService(ctx, attempt.DefaultConfig(), &attempt.Dependencies{
		QuizRepo:   f.quizRepo,
		ResultRepo: f.resultRepo,
		Formula:    &attempt.ScaledFormula{Max: entity.RequiredQuestionCount},
	})

	certificateService := NewCertificateService(
		f.certificateRepo, f.courseRepo, f.userRepo, nil, nil, "E-Learn")

	f.service = NewQuizService(
		f.quizRepo, f.questionRepo, f.resultRepo, f.courseRepo,
		f.enrollmentRepo, f.userRepo, f.cacheRepo,
		attemptService, certificateService)
	return f
}

func TestQuizService_StartQuiz_RequiresEnrollment(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	quiz := completeQuiz()
	f.quizRepo.On("GetByID", testQuizID).Return(quiz, nil)
	f.enrollmentRepo.On("Exists", testUserID, testCourseID).Return(false, nil)

	// Act
	_, _, err := f.service.StartQuiz(testUserID, testQuizID)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotEnrolled)
	f.enrollmentRepo.AssertExpectations(t)
}

func TestQuizService_StartQuiz_RejectsIncompleteQuiz(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	quiz := completeQuiz()
	f.quizRepo.On("GetByID", testQuizID).Return(quiz, nil)
	f.enrollmentRepo.On("Exists", testUserID, testCourseID).Return(true, nil)
	f.questionRepo.On("CountByQuizID", testQuizID).Return(int64(12), nil)

	// Act
	_, _, err := f.service.StartQuiz(testUserID, testQuizID)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuizService_StartQuiz_OpensAttempt(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	quiz := completeQuiz()
	f.quizRepo.On("GetByID", testQuizID).Return(quiz, nil)
	f.enrollmentRepo.On("Exists", testUserID, testCourseID).Return(true, nil)
	f.questionRepo.On("CountByQuizID", testQuizID).Return(int64(entity.RequiredQuestionCount), nil)
	f.quizRepo.On("GetWithQuestions", testQuizID).Return(quiz, nil)

	// Act
	started, snapshot, err := f.service.StartQuiz(testUserID, testQuizID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, testQuizID, started.ID)
	assert.Equal(t, entity.RequiredQuestionCount, snapshot.TotalQuestions)
	assert.False(t, snapshot.Submitted)
}

func TestQuizService_SubmitQuiz_PassIssuesCertificate(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	quiz := completeQuiz()
	f.quizRepo.On("GetByID", testQuizID).Return(quiz, nil)
	f.enrollmentRepo.On("Exists", testUserID, testCourseID).Return(true, nil)
	f.questionRepo.On("CountByQuizID", testQuizID).Return(int64(entity.RequiredQuestionCount), nil)
	f.quizRepo.On("GetWithQuestions", testQuizID).Return(quiz, nil)
	f.resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(nil)

	f.certificateRepo.On("GetByUserAndCourse", testUserID, testCourseID).
		Return(nil, apperrors.ErrNotFound)
	f.userRepo.On("GetByID", testUserID).Return(&entity.User{
		ID: testUserID, Username: "marie", Email: "marie@example.com",
	}, nil)
	f.courseRepo.On("GetByID", testCourseID).Return(&entity.Course{
		ID: testCourseID, Title: "Algorithms",
	}, nil)
	f.certificateRepo.On("Create", mock.AnythingOfType("*entity.Certificate")).Return(nil)
	f.userRepo.On("IncrementQuizzesPassed", testUserID).Return(nil)

	_, _, err := f.service.StartQuiz(testUserID, testQuizID)
	assert.NoError(t, err)

	// All answers correct, in quiz order.
	answers := make([]int, entity.RequiredQuestionCount)
	for i := range answers {
		answers[i] = i % 4
	}

	// Act
	result, certificate, err := f.service.SubmitQuiz(testUserID, testQuizID, answers)

	// Assert
	assert.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, entity.RequiredQuestionCount, result.Score)
	assert.NotNil(t, certificate)
	assert.NotEmpty(t, certificate.SerialNumber)
	f.userRepo.AssertCalled(t, "IncrementQuizzesPassed", testUserID)
}

func TestQuizService_SubmitQuiz_FailingScoreHasNoCertificate(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	quiz := completeQuiz()
	f.quizRepo.On("GetByID", testQuizID).Return(quiz, nil)
	f.enrollmentRepo.On("Exists", testUserID, testCourseID).Return(true, nil)
	f.questionRepo.On("CountByQuizID", testQuizID).Return(int64(entity.RequiredQuestionCount), nil)
	f.quizRepo.On("GetWithQuestions", testQuizID).Return(quiz, nil)
	f.resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(nil)

	_, _, err := f.service.StartQuiz(testUserID, testQuizID)
	assert.NoError(t, err)

	// 10 correct answers out of 20.
	answers := make([]int, entity.RequiredQuestionCount)
	for i := range answers {
		if i < 10 {
			answers[i] = i % 4
		} else {
			answers[i] = (i + 1) % 4
		}
	}

	// Act
	result, certificate, err := f.service.SubmitQuiz(testUserID, testQuizID, answers)

	// Assert
	assert.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, 10, result.Score)
	assert.Nil(t, certificate)
	f.certificateRepo.AssertNotCalled(t, "Create", mock.Anything)
	f.userRepo.AssertNotCalled(t, "IncrementQuizzesPassed", mock.Anything)
}

func TestQuizService_SubmitQuiz_RetryReturnsStoredResult(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	stored := &entity.Result{
		UserID:   testUserID,
		QuizID:   testQuizID,
		CourseID: testCourseID,
		Score:    18,
		Passed:   true,
	}
	f.resultRepo.On("GetByUserAndQuiz", testUserID, testQuizID).Return(stored, nil)
	f.certificateRepo.On("GetByUserAndCourse", testUserID, testCourseID).
		Return(&entity.Certificate{ID: 3, SerialNumber: "abc"}, nil)

	// Act: no live attempt exists.
	result, certificate, err := f.service.SubmitQuiz(testUserID, testQuizID, nil)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, stored.Score, result.Score)
	assert.Equal(t, uint(3), certificate.ID)
}

func TestQuizService_GetQuizResult(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	f.resultRepo.On("GetByUserAndQuiz", testUserID, testQuizID).Return(&entity.Result{
		Score:          19,
		CorrectAnswers: 19,
		TotalQuestions: entity.RequiredQuestionCount,
		Passed:         true,
		TimeSpentSec:   640,
	}, nil)

	// Act
	view, err := f.service.GetQuizResult(testUserID, testQuizID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 19, view.Score)
	assert.True(t, view.Passed)
	assert.Equal(t, 640, view.TimeSpentSec)
}

func TestQuizService_GetCourseResults_OwnerOnly(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	f.courseRepo.On("GetByID", testCourseID).Return(&entity.Course{
		ID: testCourseID, InstructorID: 9,
	}, nil)
	outsider := &entity.User{ID: 10, Role: entity.RoleInstructor}

	// Act
	_, err := f.service.GetCourseResults(testCourseID, outsider)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestQuizService_GetCourseResults_CachesMiss(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	owner := &entity.User{ID: 9, Role: entity.RoleInstructor}
	results := []entity.Result{{UserID: testUserID, Score: 18}}
	f.courseRepo.On("GetByID", testCourseID).Return(&entity.Course{
		ID: testCourseID, InstructorID: 9,
	}, nil)
	f.cacheRepo.On("GetJSON", "course_7_quiz_results", mock.Anything).
		Return(apperrors.ErrNotFound)
	f.resultRepo.On("ListByCourse", testCourseID).Return(results, nil)
	f.cacheRepo.On("SetJSON", "course_7_quiz_results", results, mock.AnythingOfType("time.Duration")).
		Return(nil)

	// Act
	got, err := f.service.GetCourseResults(testCourseID, owner)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	f.cacheRepo.AssertExpectations(t)
}

func TestQuizService_CourseQuizStats_AggregatesResults(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	owner := &entity.User{ID: 9, Role: entity.RoleInstructor}
	results := []entity.Result{
		{UserID: 1, Score: 18, Passed: true},
		{UserID: 2, Score: 12, Passed: false},
		{UserID: 3, Score: 20, Passed: true},
		{UserID: 4, Score: 10, Passed: false},
	}
	f.courseRepo.On("GetByID", testCourseID).Return(&entity.Course{
		ID: testCourseID, InstructorID: 9,
	}, nil)
	f.cacheRepo.On("GetJSON", "course_7_quiz_results", mock.Anything).
		Return(apperrors.ErrNotFound)
	f.resultRepo.On("ListByCourse", testCourseID).Return(results, nil)
	f.cacheRepo.On("SetJSON", "course_7_quiz_results", results, mock.AnythingOfType("time.Duration")).
		Return(nil)

	// Act
	stats, err := f.service.CourseQuizStats(testCourseID, owner)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 4, stats.Participants)
	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, 0.5, stats.PassRate)
	assert.Equal(t, 15.0, stats.AverageScore)
	assert.Equal(t, 20, stats.BestScore)
}

func TestQuizService_CourseQuizStats_EmptyCourse(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	owner := &entity.User{ID: 9, Role: entity.RoleInstructor}
	f.courseRepo.On("GetByID", testCourseID).Return(&entity.Course{
		ID: testCourseID, InstructorID: 9,
	}, nil)
	f.cacheRepo.On("GetJSON", "course_7_quiz_results", mock.Anything).
		Return(apperrors.ErrNotFound)
	f.resultRepo.On("ListByCourse", testCourseID).Return([]entity.Result{}, nil)
	f.cacheRepo.On("SetJSON", "course_7_quiz_results", mock.Anything, mock.AnythingOfType("time.Duration")).
		Return(nil)

	// Act
	stats, err := f.service.CourseQuizStats(testCourseID, owner)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.Participants)
	assert.Zero(t, stats.PassRate)
	assert.Zero(t, stats.AverageScore)
}

func TestQuizService_AddQuestions_EnforcesQuestionBudget(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	owner := &entity.User{ID: 9, Role: entity.RoleInstructor}
	f.quizRepo.On("GetByID", testQuizID).Return(&entity.Quiz{
		ID: testQuizID, CourseID: testCourseID,
	}, nil)
	f.courseRepo.On("GetByID", testCourseID).Return(&entity.Course{
		ID: testCourseID, InstructorID: 9,
	}, nil)
	f.questionRepo.On("CountByQuizID", testQuizID).Return(int64(19), nil)

	questions := []entity.Question{
		{Text: "Q1", Options: entity.StringArray{"a", "b"}, CorrectOption: 0},
		{Text: "Q2", Options: entity.StringArray{"a", "b"}, CorrectOption: 1},
	}

	// Act
	err := f.service.AddQuestions(testQuizID, questions, owner)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.questionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}

func TestQuizService_AnswerQuestion_TracksProgress(t *testing.T) {
	// Arrange
	f := newQuizServiceFixture(t)
	quiz := completeQuiz()
	f.quizRepo.On("GetByID", testQuizID).Return(quiz, nil)
	f.enrollmentRepo.On("Exists", testUserID, testCourseID).Return(true, nil)
	f.questionRepo.On("CountByQuizID", testQuizID).Return(int64(entity.RequiredQuestionCount), nil)
	f.quizRepo.On("GetWithQuestions", testQuizID).Return(quiz, nil)

	_, _, err := f.service.StartQuiz(testUserID, testQuizID)
	assert.NoError(t, err)

	// Act
	assert.NoError(t, f.service.AnswerQuestion(testUserID, testQuizID, 1, 2))
	assert.NoError(t, f.service.AnswerQuestion(testUserID, testQuizID, 2, 0))
	snapshot, err := f.service.AttemptProgress(testUserID, testQuizID)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, snapshot.Answered)
	assert.InDelta(t, quiz.Duration().Seconds(), float64(snapshot.RemainingSec), 2)
}
