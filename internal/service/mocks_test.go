package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
)

// Shared testify mocks for the service tests.

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	return m.Called(user).Error(0)
}

func (m *MockUserRepo) UpdateProfile(userID uint, updates map[string]interface{}) error {
	return m.Called(userID, updates).Error(0)
}

func (m *MockUserRepo) UpdatePassword(userID uint, newPassword string) error {
	return m.Called(userID, newPassword).Error(0)
}

func (m *MockUserRepo) IncrementQuizzesPassed(userID uint) error {
	return m.Called(userID).Error(0)
}

func (m *MockUserRepo) IncrementCoursesCompleted(userID uint) error {
	return m.Called(userID).Error(0)
}

func (m *MockUserRepo) List(limit, offset int) ([]entity.User, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) Create(course *entity.Course) error {
	return m.Called(course).Error(0)
}

func (m *MockCourseRepo) GetByID(id uint) (*entity.Course, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseRepo) GetWithContent(id uint) (*entity.Course, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Course), args.Error(1)
}

func (m *MockCourseRepo) Update(course *entity.Course) error {
	return m.Called(course).Error(0)
}

func (m *MockCourseRepo) UpdateStatus(courseID uint, status string) error {
	return m.Called(courseID, status).Error(0)
}

func (m *MockCourseRepo) List(filters repository.CourseFilters, limit, offset int) ([]entity.Course, int64, error) {
	args := m.Called(filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Course), args.Get(1).(int64), args.Error(2)
}

func (m *MockCourseRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockCourseRepo) CreateModule(module *entity.CourseModule) error {
	return m.Called(module).Error(0)
}

func (m *MockCourseRepo) UpdateModule(module *entity.CourseModule) error {
	return m.Called(module).Error(0)
}

func (m *MockCourseRepo) DeleteModule(id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockCourseRepo) CreateVideo(video *entity.Video) error {
	return m.Called(video).Error(0)
}

func (m *MockCourseRepo) GetVideoByID(id uint) (*entity.Video, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Video), args.Error(1)
}

func (m *MockCourseRepo) UpdateVideo(video *entity.Video) error {
	return m.Called(video).Error(0)
}

func (m *MockCourseRepo) DeleteVideo(id uint) error {
	return m.Called(id).Error(0)
}

func (m *MockCourseRepo) CountVideos(courseID uint) (int64, error) {
	args := m.Called(courseID)
	return args.Get(0).(int64), args.Error(1)
}

type MockEnrollmentRepo struct {
	mock.Mock
}

func (m *MockEnrollmentRepo) Create(enrollment *entity.Enrollment) error {
	return m.Called(enrollment).Error(0)
}

func (m *MockEnrollmentRepo) Exists(userID, courseID uint) (bool, error) {
	args := m.Called(userID, courseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Enrollment, error) {
	args := m.Called(userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepo) ListByUser(userID uint, limit, offset int) ([]entity.Enrollment, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Enrollment), args.Get(1).(int64), args.Error(2)
}

func (m *MockEnrollmentRepo) ListByCourse(courseID uint, limit, offset int) ([]entity.Enrollment, int64, error) {
	args := m.Called(courseID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Enrollment), args.Get(1).(int64), args.Error(2)
}

func (m *MockEnrollmentRepo) CountByCourse(courseID uint) (int64, error) {
	args := m.Called(courseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrollmentRepo) Delete(userID, courseID uint) error {
	return m.Called(userID, courseID).Error(0)
}

type MockProgressionRepo struct {
	mock.Mock
}

func (m *MockProgressionRepo) Upsert(progression *entity.Progression) error {
	return m.Called(progression).Error(0)
}

func (m *MockProgressionRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Progression, error) {
	args := m.Called(userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Progression), args.Error(1)
}

func (m *MockProgressionRepo) ListByUser(userID uint) ([]entity.Progression, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Progression), args.Error(1)
}

type MockQuizRepo struct {
	mock.Mock
}

func (m *MockQuizRepo) Create(quiz *entity.Quiz) error {
	return m.Called(quiz).Error(0)
}

func (m *MockQuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepo) GetByCourseID(courseID uint) (*entity.Quiz, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepo) Update(quiz *entity.Quiz) error {
	return m.Called(quiz).Error(0)
}

func (m *MockQuizRepo) List(limit, offset int) ([]entity.Quiz, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	return m.Called(question).Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	return m.Called(questions).Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByQuizID(quizID uint) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountByQuizID(quizID uint) (int64, error) {
	args := m.Called(quizID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	return m.Called(question).Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

type MockResultRepo struct {
	mock.Mock
}

func (m *MockResultRepo) Save(result *entity.Result) error {
	return m.Called(result).Error(0)
}

func (m *MockResultRepo) GetByUserAndQuiz(userID, quizID uint) (*entity.Result, error) {
	args := m.Called(userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Result), args.Error(1)
}

func (m *MockResultRepo) ListByQuiz(quizID uint, limit, offset int) ([]entity.Result, int64, error) {
	args := m.Called(quizID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Result), args.Get(1).(int64), args.Error(2)
}

func (m *MockResultRepo) ListByCourse(courseID uint) ([]entity.Result, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

func (m *MockResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.Result, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Result), args.Error(1)
}

type MockCertificateRepo struct {
	mock.Mock
}

func (m *MockCertificateRepo) Create(certificate *entity.Certificate) error {
	return m.Called(certificate).Error(0)
}

func (m *MockCertificateRepo) GetByID(id uint) (*entity.Certificate, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) GetByUserAndCourse(userID, courseID uint) (*entity.Certificate, error) {
	args := m.Called(userID, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) GetBySerialNumber(serial string) (*entity.Certificate, error) {
	args := m.Called(serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Certificate), args.Error(1)
}

func (m *MockCertificateRepo) ListByUser(userID uint) ([]entity.Certificate, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Certificate), args.Error(1)
}

type MockPlanRepo struct {
	mock.Mock
}

func (m *MockPlanRepo) Create(plan *entity.Plan) error {
	return m.Called(plan).Error(0)
}

func (m *MockPlanRepo) GetByID(id uint) (*entity.Plan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Plan), args.Error(1)
}

func (m *MockPlanRepo) List() ([]entity.Plan, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Plan), args.Error(1)
}

func (m *MockPlanRepo) Update(plan *entity.Plan) error {
	return m.Called(plan).Error(0)
}

func (m *MockPlanRepo) Delete(id uint) error {
	return m.Called(id).Error(0)
}

type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) Create(subscription *entity.Subscription) error {
	return m.Called(subscription).Error(0)
}

func (m *MockSubscriptionRepo) GetByID(id uint) (*entity.Subscription, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) GetActiveByUser(userID uint) (*entity.Subscription, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) GetByProviderID(providerSubscriptionID string) (*entity.Subscription, error) {
	args := m.Called(providerSubscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) Update(subscription *entity.Subscription) error {
	return m.Called(subscription).Error(0)
}

func (m *MockSubscriptionRepo) ListByUser(userID uint) ([]entity.Subscription, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) CreatePayment(payment *entity.Payment) error {
	return m.Called(payment).Error(0)
}

func (m *MockSubscriptionRepo) ListPaymentsByUser(userID uint, limit, offset int) ([]entity.Payment, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Payment), args.Error(1)
}

type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	return m.Called(key, dest).Error(0)
}

func (m *MockCacheRepo) ExpireAt(key string, expiration time.Time) error {
	return m.Called(key, expiration).Error(0)
}

func (m *MockCacheRepo) TTL(key string) (time.Duration, error) {
	args := m.Called(key)
	return args.Get(0).(time.Duration), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendEventToUser(userID string, eventType string, data interface{}) error {
	return m.Called(userID, eventType, data).Error(0)
}

type MockInvalidTokenRepo struct {
	mock.Mock
}

func (m *MockInvalidTokenRepo) AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error {
	return m.Called(ctx, userID, invalidationTime).Error(0)
}

func (m *MockInvalidTokenRepo) RemoveInvalidToken(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockInvalidTokenRepo) IsTokenInvalid(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, tokenIssuedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvalidTokenRepo) GetAllInvalidTokens(ctx context.Context) ([]entity.InvalidToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.InvalidToken), args.Error(1)
}

func (m *MockInvalidTokenRepo) CleanupOldInvalidTokens(ctx context.Context, cutoffTime time.Time) error {
	return m.Called(ctx, cutoffTime).Error(0)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWelcome(ctx context.Context, toEmail, username string) error {
	return m.Called(ctx, toEmail, username).Error(0)
}

func (m *MockEmailService) SendCertificateIssued(ctx context.Context, toEmail, studentName, courseTitle, serialNumber string) error {
	return m.Called(ctx, toEmail, studentName, courseTitle, serialNumber).Error(0)
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, toEmail, code string) error {
	return m.Called(ctx, toEmail, code).Error(0)
}

type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateSubscription(userID uint, plan *entity.Plan) (string, error) {
	args := m.Called(userID, plan)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProcessor) CancelSubscription(providerSubscriptionID string) error {
	return m.Called(providerSubscriptionID).Error(0)
}
