package attempt

import (
	"sync"
	"time"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
)

// Config holds the tunables of the attempt lifecycle.
type Config struct {
	// WarnThresholds lists remaining-time marks at which a warning
	// event is pushed to the student, largest first.
	WarnThresholds []time.Duration

	// SubmitRetryInterval is the pause between persistence retries
	// after a failed submission.
	SubmitRetryInterval time.Duration

	// MaxSubmitRetries bounds the automatic retries on expiry.
	// Manual submissions surface the error to the caller instead.
	MaxSubmitRetries int
}

// DefaultConfig returns the default attempt configuration.
func DefaultConfig() *Config {
	return &Config{
		WarnThresholds:      []time.Duration{5 * time.Minute, 1 * time.Minute},
		SubmitRetryInterval: 2 * time.Second,
		MaxSubmitRetries:    3,
	}
}

// Notifier pushes lifecycle events to a single user. The websocket
// manager satisfies it.
type Notifier interface {
	SendEventToUser(userID string, eventType string, data interface{}) error
}

// Dependencies wires the attempt service to the rest of the application.
type Dependencies struct {
	QuizRepo   repository.QuizRepository
	ResultRepo repository.ResultRepository
	CacheRepo  repository.CacheRepository
	Notifier   Notifier
	Formula    Formula
	Config     *Config
}

// key identifies one attempt in the registry.
type key struct {
	UserID uint
	QuizID uint
}

// Attempt is the in-memory state of one student taking one quiz.
// All mutation goes through the service, which holds the lock.
type Attempt struct {
	UserID    uint
	Quiz      *entity.Quiz
	StartedAt time.Time
	Deadline  time.Time

	mu        sync.Mutex
	answers   map[uint]int // question ID -> selected option index
	submitted bool
	expired   bool
	// pendingResult survives a failed persistence so a retry submits
	// the exact same outcome.
	pendingResult *entity.Result
	cancelTimer   func()
}

// Snapshot is a read-only view of an attempt for presentation.
type Snapshot struct {
	QuizID         uint          `json:"quiz_id"`
	TotalQuestions int           `json:"total_questions"`
	Answered       int           `json:"answered"`
	Remaining      time.Duration `json:"-"`
	RemainingSec   int           `json:"remaining_sec"`
	Expired        bool          `json:"expired"`
	Submitted      bool          `json:"submitted"`
}

// Websocket event types emitted during an attempt.
const (
	EventTimeWarning    = "ATTEMPT_TIME_WARNING"
	EventExpired        = "ATTEMPT_EXPIRED"
	EventResultReady    = "QUIZ_RESULT_READY"
	EventSubmitDeferred = "ATTEMPT_SUBMIT_RETRYING"
)
