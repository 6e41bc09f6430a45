package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/elearn-api/internal/domain/entity"
	"github.com/yourusername/elearn-api/internal/domain/repository"
	apperrors "github.com/yourusername/elearn-api/internal/pkg/errors"
	"github.com/yourusername/elearn-api/pkg/pdfgen"
)

// CertificateService issues and serves course completion certificates.
type CertificateService struct {
	certificateRepo repository.CertificateRepository
	courseRepo      repository.CourseRepository
	userRepo        repository.UserRepository
	emailService    EmailService
	notifier        Notifier
	platformName    string
}

// NewCertificateService creates a new certificate service.
func NewCertificateService(
	certificateRepo repository.CertificateRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	notifier Notifier,
	platformName string,
) *CertificateService {
	if platformName == "" {
		platformName = "E-Learn"
	}
	return &CertificateService{
		certificateRepo: certificateRepo,
		courseRepo:      courseRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		notifier:        notifier,
		platformName:    platformName,
	}
}

// Issue creates a certificate for a passed quiz. Issuing twice for the
// same (user, course) pair returns the existing certificate.
func (s *CertificateService) Issue(userID, courseID uint, score int, resultID uint) (*entity.Certificate, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}

	certificate := &entity.Certificate{
		UserID:       userID,
		CourseID:     courseID,
		ResultID:     resultID,
		SerialNumber: uuid.New().String(),
		StudentName:  user.FullName(),
		CourseTitle:  course.Title,
		Score:        score,
		IssuedAt:     time.Now(),
	}

	if err := s.certificateRepo.Create(certificate); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return s.certificateRepo.GetByUserAndCourse(userID, courseID)
		}
		return nil, err
	}

	log.Printf("[CertificateService] Issued certificate %s to user #%d for course #%d",
		certificate.SerialNumber, userID, courseID)

	if s.notifier != nil {
		if err := s.notifier.SendEventToUser(strconv.FormatUint(uint64(userID), 10), "CERTIFICATE_ISSUED", map[string]interface{}{
			"certificateId": certificate.ID,
			"courseId":      courseID,
			"serialNumber":  certificate.SerialNumber,
		}); err != nil {
			log.Printf("[CertificateService] Failed to notify user #%d: %v", userID, err)
		}
	}

	if s.emailService != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.emailService.SendCertificateIssued(ctx, user.Email, certificate.StudentName, certificate.CourseTitle, certificate.SerialNumber); err != nil {
				log.Printf("[CertificateService] Failed to email certificate %s: %v", certificate.SerialNumber, err)
			}
		}()
	}

	return certificate, nil
}

// GetForCourse returns the user's certificate for a course.
func (s *CertificateService) GetForCourse(userID, courseID uint) (*entity.Certificate, error) {
	return s.certificateRepo.GetByUserAndCourse(userID, courseID)
}

// ListMine returns all certificates earned by the user.
func (s *CertificateService) ListMine(userID uint) ([]entity.Certificate, error) {
	return s.certificateRepo.ListByUser(userID)
}

// Verify looks a certificate up by its public serial number.
func (s *CertificateService) Verify(serial string) (*entity.Certificate, error) {
	return s.certificateRepo.GetBySerialNumber(serial)
}

// RenderPDF renders the certificate as a downloadable PDF. Only the
// owner or an admin may download it.
func (s *CertificateService) RenderPDF(certificateID uint, actor *entity.User) ([]byte, error) {
	certificate, err := s.certificateRepo.GetByID(certificateID)
	if err != nil {
		return nil, err
	}
	if certificate.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	return pdfgen.RenderCertificate(pdfgen.CertificateData{
		StudentName:  certificate.StudentName,
		CourseTitle:  certificate.CourseTitle,
		Score:        certificate.Score,
		MaxScore:     entity.RequiredQuestionCount,
		SerialNumber: certificate.SerialNumber,
		IssuedAt:     certificate.IssuedAt,
		PlatformName: s.platformName,
	})
}
