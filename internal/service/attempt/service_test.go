package attempt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// ============================================================================
// Mocks for the attempt service
// ============================================================================

// MockQuizRepoForAttempt implements repository.QuizRepository (minimally).
type MockQuizRepoForAttempt struct {
	mock.Mock
}

func (m *MockQuizRepoForAttempt) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

// Remaining methods are unused by the attempt service but required by the interface.
func (m *MockQuizRepoForAttempt) Create(quiz *entity.Quiz) error               { return nil }
func (m *MockQuizRepoForAttempt) GetByID(id uint) (*entity.Quiz, error)        { return nil, nil }
func (m *MockQuizRepoForAttempt) GetByCourseID(id uint) (*entity.Quiz, error)  { return nil, nil }
func (m *MockQuizRepoForAttempt) Update(quiz *entity.Quiz) error               { return nil }
func (m *MockQuizRepoForAttempt) List(limit, offset int) ([]entity.Quiz, error) { return nil, nil }
func (m *MockQuizRepoForAttempt) Delete(id uint) error                         { return nil }

// MockResultRepoForAttempt implements repository.ResultRepository (minimally).
type MockResultRepoForAttempt struct {
	mock.Mock
}

func (m *MockResultRepoForAttempt) Save(result *entity.Result) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockResultRepoForAttempt) GetByUserAndQuiz(userID, quizID uint) (*entity.Result, error) {
	return nil, nil
}
func (m *MockResultRepoForAttempt) ListByQuiz(quizID uint, limit, offset int) ([]entity.Result, int64, error) {
	return nil, 0, nil
}
func (m *MockResultRepoForAttempt) ListByCourse(courseID uint) ([]entity.Result, error) {
	return nil, nil
}
func (m *MockResultRepoForAttempt) ListByUser(userID uint, limit, offset int) ([]entity.Result, error) {
	return nil, nil
}

// MockNotifierForAttempt captures pushed websocket events.
type MockNotifierForAttempt struct {
	mock.Mock
}

func (m *MockNotifierForAttempt) SendEventToUser(userID string, eventType string, data interface{}) error {
	args := m.Called(userID, eventType, data)
	return args.Error(0)
}

// ============================================================================
// Helpers
// ============================================================================

func twentyQuestionQuiz() *entity.Quiz {
	quiz := &entity.Quiz{
		ID:          1,
		CourseID:    7,
		Title:       "Final quiz",
		DurationMin: 20,
		PassScore:   17,
	}
	for i := 1; i <= 20; i++ {
		quiz.Questions = append(quiz.Questions, entity.Question{
			ID:            uint(i),
			QuizID:        1,
			Options:       entity.StringArray{"a", "b", "c", "d"},
			CorrectOption: i % 4,
			Position:      i,
		})
	}
	return quiz
}

func newTestService(quizRepo *MockQuizRepoForAttempt, resultRepo *MockResultRepoForAttempt) *Service {
	return NewService(context.Background(), DefaultConfig(), &Dependencies{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
		Formula:    ScaledFormula{Max: 20},
	})
}

// ============================================================================
// Tests
// ============================================================================

func TestService_Start_CreatesAttempt(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(twentyQuestionQuiz(), nil)

	svc := newTestService(quizRepo, resultRepo)

	// Act
	quiz, snap, err := svc.Start(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(1), quiz.ID)
	assert.Equal(t, 20, snap.TotalQuestions)
	assert.Equal(t, 0, snap.Answered)
	assert.False(t, snap.Expired)
	assert.InDelta(t, 20*60, snap.RemainingSec, 2)
	quizRepo.AssertExpectations(t)
}

func TestService_Start_ResumesExistingAttempt(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(twentyQuestionQuiz(), nil).Once()

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)
	require.NoError(t, svc.SelectAnswer(42, 1, 3, 1))

	// Act: a second start must not reset the attempt
	_, snap, err := svc.Start(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Answered, "recorded answers survive a restart")
	quizRepo.AssertExpectations(t)
}

func TestService_SelectAnswer_ReplacesPreviousSelection(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(twentyQuestionQuiz(), nil)

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)

	// Act
	require.NoError(t, svc.SelectAnswer(42, 1, 5, 0))
	require.NoError(t, svc.SelectAnswer(42, 1, 5, 2))

	// Assert
	answers, err := svc.Answers(42, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{5: 2}, answers)
}

func TestService_SelectAnswer_RejectsForeignQuestion(t *testing.T) {
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(twentyQuestionQuiz(), nil)

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)

	err = svc.SelectAnswer(42, 1, 999, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestService_SelectAnswer_NoAttempt(t *testing.T) {
	svc := newTestService(new(MockQuizRepoForAttempt), new(MockResultRepoForAttempt))

	err := svc.SelectAnswer(42, 1, 1, 0)
	assert.ErrorIs(t, err, apperrors.ErrAttemptNotFound)
}

func TestService_Submit_ScoresAndPersists(t *testing.T) {
	// Arrange
	quiz := twentyQuestionQuiz()
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)

	var saved *entity.Result
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*entity.Result) }).
		Return(nil)

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)

	// Answer everything correctly through the positional payload
	ordered := make([]int, 20)
	for i, q := range quiz.Questions {
		ordered[i] = q.CorrectOption
	}

	// Act
	result, err := svc.Submit(42, 1, ordered)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20, result.Score)
	assert.Equal(t, 20, result.CorrectAnswers)
	assert.True(t, result.Passed)
	require.NotNil(t, saved)
	assert.Equal(t, uint(7), saved.CourseID)

	// The attempt is gone once submitted
	_, err = svc.Progress(42, 1)
	assert.ErrorIs(t, err, apperrors.ErrAttemptNotFound)
}

func TestService_Submit_FailingScoreDoesNotPass(t *testing.T) {
	// Arrange: 16 correct answers is one short of the pass mark
	quiz := twentyQuestionQuiz()
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(nil)

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)

	ordered := make([]int, 20)
	for i, q := range quiz.Questions {
		if i < 16 {
			ordered[i] = q.CorrectOption
		} else {
			ordered[i] = -1 // treated as no match
		}
	}

	// Act
	result, err := svc.Submit(42, 1, ordered)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 16, result.Score)
	assert.False(t, result.Passed)
}

func TestService_Submit_RetryAfterPersistFailure(t *testing.T) {
	// Arrange
	quiz := twentyQuestionQuiz()
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)

	dbErr := errors.New("connection refused")
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(dbErr).Once()
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(nil).Once()

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)

	ordered := make([]int, 20)
	for i, q := range quiz.Questions {
		ordered[i] = q.CorrectOption
	}

	// Act: first submit fails, attempt stays open
	_, err = svc.Submit(42, 1, ordered)
	require.Error(t, err)

	snap, err := svc.Progress(42, 1)
	require.NoError(t, err, "a failed submit must keep the attempt alive")
	assert.False(t, snap.Submitted)

	// Act: the retry converges on the same result
	result, err := svc.Submit(42, 1, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 20, result.Score)
	resultRepo.AssertExpectations(t)
}

func TestService_Submit_Twice(t *testing.T) {
	quiz := twentyQuestionQuiz()
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(nil)

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)

	ordered := make([]int, 20)
	for i, q := range quiz.Questions {
		ordered[i] = q.CorrectOption
	}

	_, err = svc.Submit(42, 1, ordered)
	require.NoError(t, err)

	// The registry entry is dropped on success, so a second submit
	// reports that no attempt is running.
	_, err = svc.Submit(42, 1, ordered)
	assert.ErrorIs(t, err, apperrors.ErrAttemptNotFound)
}

func TestService_Submit_RejectsIncompleteAttempt(t *testing.T) {
	// Arrange
	quiz := twentyQuestionQuiz()
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)

	svc := newTestService(quizRepo, resultRepo)
	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)
	require.NoError(t, svc.SelectAnswer(42, 1, quiz.Questions[0].ID, quiz.Questions[0].CorrectOption))

	// Act: 1 of 20 answered
	_, err = svc.Submit(42, 1, nil)

	// Assert: rejected before anything reaches the repository, and the
	// attempt stays open so the student can keep answering.
	assert.ErrorIs(t, err, apperrors.ErrIncompleteAttempt)
	resultRepo.AssertNotCalled(t, "Save", mock.Anything)

	snap, err := svc.Progress(42, 1)
	require.NoError(t, err)
	assert.False(t, snap.Submitted)

	// Completing the remaining questions makes the submit go through.
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).Return(nil)
	ordered := make([]int, 20)
	for i, q := range quiz.Questions {
		ordered[i] = q.CorrectOption
	}
	result, err := svc.Submit(42, 1, ordered)
	require.NoError(t, err)
	assert.Equal(t, 20, result.CorrectAnswers)
}

func TestService_Progress_RemainingNeverIncreases(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(twentyQuestionQuiz(), nil)

	svc := newTestService(quizRepo, resultRepo)
	_, first, err := svc.Start(42, 1)
	require.NoError(t, err)

	// Act: successive reads of the countdown
	prev := first.Remaining
	for i := 0; i < 5; i++ {
		time.Sleep(5 * time.Millisecond)
		snap, err := svc.Progress(42, 1)
		require.NoError(t, err)

		// Assert
		assert.LessOrEqual(t, snap.Remaining, prev, "countdown must be monotonic")
		assert.GreaterOrEqual(t, snap.Remaining, time.Duration(0))
		prev = snap.Remaining
	}
}

func TestService_Expire_AutoSubmits(t *testing.T) {
	// Arrange: a quiz whose deadline is already in the past is
	// simulated with a tiny duration via the entity default path.
	quiz := twentyQuestionQuiz()
	quiz.DurationMin = 20

	quizRepo := new(MockQuizRepoForAttempt)
	resultRepo := new(MockResultRepoForAttempt)
	quizRepo.On("GetWithQuestions", uint(1)).Return(quiz, nil)

	saveCh := make(chan *entity.Result, 1)
	resultRepo.On("Save", mock.AnythingOfType("*entity.Result")).
		Run(func(args mock.Arguments) { saveCh <- args.Get(0).(*entity.Result) }).
		Return(nil)

	notifier := new(MockNotifierForAttempt)
	notifier.On("SendEventToUser", "42", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(context.Background(), DefaultConfig(), &Dependencies{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
		Notifier:   notifier,
		Formula:    ScaledFormula{Max: 20},
	})

	_, _, err := svc.Start(42, 1)
	require.NoError(t, err)
	require.NoError(t, svc.SelectAnswer(42, 1, quiz.Questions[0].ID, quiz.Questions[0].CorrectOption))

	// Act: force the deadline into the past and expire directly,
	// the countdown goroutine is exercised via the same path.
	a, err := svc.get(42, 1)
	require.NoError(t, err)
	a.Deadline = time.Now().Add(-time.Second)
	svc.expire(context.Background(), key{UserID: 42, QuizID: 1}, a)

	// Assert
	select {
	case saved := <-saveCh:
		assert.Equal(t, 1, saved.CorrectAnswers)
		assert.Equal(t, 1, saved.Score)
		assert.False(t, saved.Passed)
	case <-time.After(time.Second):
		t.Fatal("expired attempt was not persisted")
	}

	_, err = svc.Progress(42, 1)
	assert.ErrorIs(t, err, apperrors.ErrAttemptNotFound)
	notifier.AssertCalled(t, "SendEventToUser", "42", EventExpired, mock.Anything)
}
