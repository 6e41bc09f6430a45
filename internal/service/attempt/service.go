package attempt

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
)

// Service owns all in-flight quiz attempts. One attempt per
// (user, quiz) pair; state lives in memory until the result is
// persisted, so a crashed process simply forgets unsubmitted attempts.
type Service struct {
	config *Config
	deps   *Dependencies

	attempts sync.Map // key -> *Attempt

	// appCtx outlives request contexts; countdown timers derive from it
	// so an HTTP disconnect does not stop the clock.
	appCtx context.Context
}

// NewService creates the attempt service.
func NewService(appCtx context.Context, config *Config, deps *Dependencies) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if deps.Formula == nil {
		deps.Formula = ScaledFormula{Max: entity.RequiredQuestionCount}
	}
	return &Service{
		config: config,
		deps:   deps,
		appCtx: appCtx,
	}
}

// Start begins (or resumes) an attempt for the user on the given quiz.
// Starting an already running attempt is a no-op returning the live state,
// so a page reload never resets the countdown.
func (s *Service) Start(userID, quizID uint) (*entity.Quiz, Snapshot, error) {
	k := key{UserID: userID, QuizID: quizID}

	if existing, ok := s.attempts.Load(k); ok {
		a := existing.(*Attempt)
		return a.Quiz, s.snapshot(a), nil
	}

	quiz, err := s.deps.QuizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, Snapshot{}, err
	}
	if len(quiz.Questions) == 0 {
		return nil, Snapshot{}, fmt.Errorf("%w: quiz has no questions", apperrors.ErrValidation)
	}

	now := time.Now()
	a := &Attempt{
		UserID:    userID,
		Quiz:      quiz,
		StartedAt: now,
		Deadline:  now.Add(quiz.Duration()),
		answers:   make(map[uint]int, len(quiz.Questions)),
	}

	// LoadOrStore closes the race between two concurrent starts.
	if actual, loaded := s.attempts.LoadOrStore(k, a); loaded {
		a = actual.(*Attempt)
		return a.Quiz, s.snapshot(a), nil
	}

	timerCtx, cancel := context.WithCancel(s.appCtx)
	a.mu.Lock()
	a.cancelTimer = cancel
	a.mu.Unlock()
	go s.runCountdown(timerCtx, k, a)

	log.Printf("[Attempt] User #%d started quiz #%d, deadline %v", userID, quizID, a.Deadline)
	return quiz, s.snapshot(a), nil
}

// SelectAnswer records the selected option index for a question.
// Re-answering replaces the previous selection. Out-of-range indices
// are stored as-is and simply never match at scoring time.
func (s *Service) SelectAnswer(userID, quizID, questionID uint, option int) error {
	a, err := s.get(userID, quizID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return apperrors.ErrAlreadySubmitted
	}
	if a.expired {
		return apperrors.ErrAttemptExpired
	}

	found := false
	for i := range a.Quiz.Questions {
		if a.Quiz.Questions[i].ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: question #%d does not belong to quiz #%d",
			apperrors.ErrValidation, questionID, quizID)
	}

	a.answers[questionID] = option
	return nil
}

// ClearAnswer removes the selection for a question.
func (s *Service) ClearAnswer(userID, quizID, questionID uint) error {
	a, err := s.get(userID, quizID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return apperrors.ErrAlreadySubmitted
	}
	delete(a.answers, questionID)
	return nil
}

// Progress returns the current state of the attempt.
func (s *Service) Progress(userID, quizID uint) (Snapshot, error) {
	a, err := s.get(userID, quizID)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(a), nil
}

// Answers returns a copy of the recorded selections, ordered by question.
func (s *Service) Answers(userID, quizID uint) (map[uint]int, error) {
	a, err := s.get(userID, quizID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[uint]int, len(a.answers))
	for id, opt := range a.answers {
		out[id] = opt
	}
	return out, nil
}

// Submit finishes the attempt: merges the final selections (ordered by
// question position, as sent by the client), scores them and persists
// the result. A submission that leaves questions unanswered is rejected
// with ErrIncompleteAttempt. Submitting twice returns
// ErrAlreadySubmitted. A failed
// persistence leaves the attempt open with the computed result pending,
// so the client can retry and converge on the same outcome.
func (s *Service) Submit(userID, quizID uint, finalAnswers []int) (*entity.Result, error) {
	a, err := s.get(userID, quizID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return nil, apperrors.ErrAlreadySubmitted
	}

	if finalAnswers != nil && a.pendingResult == nil {
		s.mergeOrderedAnswersLocked(a, finalAnswers)
	}

	// A manual submit must cover every question. An expired attempt is
	// exempt: the countdown already scored whatever was answered, and a
	// pending result means scoring happened on an earlier try.
	if a.pendingResult == nil && !a.expired && len(a.answers) < len(a.Quiz.Questions) {
		return nil, fmt.Errorf("%w: %d of %d answered",
			apperrors.ErrIncompleteAttempt, len(a.answers), len(a.Quiz.Questions))
	}

	result := a.pendingResult
	if result == nil {
		result = s.buildResultLocked(a, time.Now())
		a.pendingResult = result
	}

	if err := s.persistLocked(a, result); err != nil {
		log.Printf("[Attempt] CRITICAL: failed to persist result for user #%d quiz #%d: %v",
			userID, quizID, err)
		return nil, fmt.Errorf("failed to save quiz result: %w", err)
	}

	s.finishLocked(key{UserID: userID, QuizID: quizID}, a)
	return result, nil
}

// get loads the live attempt or returns ErrAttemptNotFound.
func (s *Service) get(userID, quizID uint) (*Attempt, error) {
	v, ok := s.attempts.Load(key{UserID: userID, QuizID: quizID})
	if !ok {
		return nil, apperrors.ErrAttemptNotFound
	}
	return v.(*Attempt), nil
}

func (s *Service) snapshot(a *Attempt) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	remaining := time.Until(a.Deadline)
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		QuizID:         a.Quiz.ID,
		TotalQuestions: len(a.Quiz.Questions),
		Answered:       len(a.answers),
		Remaining:      remaining,
		RemainingSec:   int(remaining.Seconds()),
		Expired:        a.expired,
		Submitted:      a.submitted,
	}
}

// mergeOrderedAnswersLocked maps a positional answer array onto question
// IDs. Extra entries beyond the question count are ignored.
func (s *Service) mergeOrderedAnswersLocked(a *Attempt, ordered []int) {
	for i, option := range ordered {
		if i >= len(a.Quiz.Questions) {
			break
		}
		a.answers[a.Quiz.Questions[i].ID] = option
	}
}

// buildResultLocked computes the final result from the recorded answers.
func (s *Service) buildResultLocked(a *Attempt, completedAt time.Time) *entity.Result {
	questions := a.Quiz.Questions
	correct := CountCorrect(questions, a.answers)
	score := s.deps.Formula.Score(correct, len(questions))

	timeSpent := completedAt.Sub(a.StartedAt)
	if timeSpent < 0 {
		timeSpent = 0
	}
	if max := a.Quiz.Duration(); timeSpent > max {
		timeSpent = max
	}

	return &entity.Result{
		UserID:         a.UserID,
		QuizID:         a.Quiz.ID,
		CourseID:       a.Quiz.CourseID,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(questions),
		Passed:         score >= a.Quiz.PassScore,
		TimeSpentSec:   int(timeSpent.Seconds()),
		CompletedAt:    completedAt,
	}
}

// persistLocked saves the result and invalidates the course results cache.
func (s *Service) persistLocked(a *Attempt, result *entity.Result) error {
	if err := s.deps.ResultRepo.Save(result); err != nil {
		return err
	}

	if s.deps.CacheRepo != nil {
		cacheKey := fmt.Sprintf("course_%d_quiz_results", a.Quiz.CourseID)
		if err := s.deps.CacheRepo.Delete(cacheKey); err != nil {
			// Stale cache is tolerable, a failed submit is not.
			log.Printf("[Attempt] Failed to invalidate cache key %s: %v", cacheKey, err)
		}
	}
	return nil
}

// finishLocked marks the attempt submitted, stops the timer and drops it
// from the registry.
func (s *Service) finishLocked(k key, a *Attempt) {
	a.submitted = true
	if a.cancelTimer != nil {
		a.cancelTimer()
		a.cancelTimer = nil
	}
	s.attempts.Delete(k)

	s.notify(a.UserID, EventResultReady, map[string]interface{}{
		"quiz_id": a.Quiz.ID,
	})
	log.Printf("[Attempt] User #%d finished quiz #%d", a.UserID, a.Quiz.ID)
}

// runCountdown walks the warning thresholds and finally expires the
// attempt. The context is cancelled on submit or shutdown.
func (s *Service) runCountdown(ctx context.Context, k key, a *Attempt) {
	thresholds := append([]time.Duration(nil), s.config.WarnThresholds...)
	sort.Slice(thresholds, func(i, j int) bool { return thresholds[i] > thresholds[j] })

	for _, threshold := range thresholds {
		warnAt := a.Deadline.Add(-threshold)
		wait := time.Until(warnAt)
		if wait <= 0 {
			continue
		}

		select {
		case <-time.After(wait):
			s.notify(a.UserID, EventTimeWarning, map[string]interface{}{
				"quiz_id":       a.Quiz.ID,
				"remaining_sec": int(threshold.Seconds()),
			})
		case <-ctx.Done():
			return
		}
	}

	select {
	case <-time.After(time.Until(a.Deadline)):
		s.expire(ctx, k, a)
	case <-ctx.Done():
	}
}

// expire auto-submits whatever was answered when the countdown hits zero.
func (s *Service) expire(ctx context.Context, k key, a *Attempt) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted || a.expired {
		return
	}
	a.expired = true

	log.Printf("[Attempt] User #%d ran out of time on quiz #%d, auto-submitting %d answers",
		a.UserID, a.Quiz.ID, len(a.answers))

	s.notify(a.UserID, EventExpired, map[string]interface{}{
		"quiz_id": a.Quiz.ID,
	})

	result := s.buildResultLocked(a, a.Deadline)
	a.pendingResult = result

	for attempt := 0; ; attempt++ {
		err := s.persistLocked(a, result)
		if err == nil {
			break
		}
		if attempt >= s.config.MaxSubmitRetries {
			// Give up; the attempt stays in the registry with the result
			// pending so a manual retry can still converge.
			log.Printf("[Attempt] CRITICAL: giving up persisting expired attempt for user #%d quiz #%d: %v",
				a.UserID, a.Quiz.ID, err)
			return
		}

		log.Printf("[Attempt] Retry %d/%d persisting expired attempt for user #%d quiz #%d: %v",
			attempt+1, s.config.MaxSubmitRetries, a.UserID, a.Quiz.ID, err)
		s.notify(a.UserID, EventSubmitDeferred, map[string]interface{}{
			"quiz_id": a.Quiz.ID,
		})

		select {
		case <-time.After(s.config.SubmitRetryInterval):
		case <-ctx.Done():
			return
		}
	}

	s.finishLocked(k, a)
}

// notify pushes an event to the user, tolerating a missing notifier in tests.
func (s *Service) notify(userID uint, eventType string, data interface{}) {
	if s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.SendEventToUser(strconv.FormatUint(uint64(userID), 10), eventType, data); err != nil {
		log.Printf("[Attempt] Failed to send %s to user #%d: %v", eventType, userID, err)
	}
}
