package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/elearn-api/internal/service"
)

// CertificateHandler handles course completion certificates.
type CertificateHandler struct {
	certificateService *service.CertificateService
}

// NewCertificateHandler creates a new certificate handler.
func NewCertificateHandler(certificateService *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// ListMine handles GET /api/certificats.
func (h *CertificateHandler) ListMine(c *gin.Context) {
	certificates, err := h.certificateService.ListMine(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificats": certificates})
}

// GetForCourse handles GET /api/certificat/course/:courseId.
func (h *CertificateHandler) GetForCourse(c *gin.Context) {
	courseID := c.MustGet("courseID").(uint)

	certificate, err := h.certificateService.GetForCourse(currentUserID(c), courseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, certificate)
}

// Download handles GET /api/certificats/:certificatId/telecharger.
// Streams the rendered PDF.
func (h *CertificateHandler) Download(c *gin.Context) {
	certificateID := c.MustGet("certificatID").(uint)

	pdf, err := h.certificateService.RenderPDF(certificateID, actor(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"certificat_%d.pdf\"", certificateID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Verify handles GET /verify/:serial. Public endpoint, no auth.
func (h *CertificateHandler) Verify(c *gin.Context) {
	serial := c.Param("serial")
	if serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Serial number is required"})
		return
	}

	certificate, err := h.certificateService.Verify(serial)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"serial_number": certificate.SerialNumber,
		"student_name":  certificate.StudentName,
		"course_title":  certificate.CourseTitle,
		"score":         certificate.Score,
		"issued_at":     certificate.IssuedAt,
	})
}
