package pdfgen

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData holds everything rendered on a certificate.
type CertificateData struct {
	StudentName  string
	CourseTitle  string
	Score        int
	MaxScore     int
	SerialNumber string
	IssuedAt     time.Time
	PlatformName string
}

// RenderCertificate produces an A4 landscape PDF certificate.
func RenderCertificate(data CertificateData) ([]byte, error) {
	if data.PlatformName == "" {
		data.PlatformName = "E-Learning Platform"
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Certificate %s", data.SerialNumber), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()

	// Double border frame
	pdf.SetDrawColor(30, 60, 120)
	pdf.SetLineWidth(1.2)
	pdf.Rect(8, 8, pageW-16, pageH-16, "D")
	pdf.SetLineWidth(0.4)
	pdf.Rect(12, 12, pageW-24, pageH-24, "D")

	pdf.SetTextColor(30, 60, 120)
	pdf.SetFont("Helvetica", "B", 34)
	pdf.SetY(34)
	pdf.CellFormat(pageW, 14, "CERTIFICATE OF ACHIEVEMENT", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.Ln(10)
	pdf.CellFormat(pageW, 8, "This certificate is proudly presented to", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
	pdf.CellFormat(pageW, 12, data.StudentName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.Ln(4)
	pdf.CellFormat(pageW, 8, "for successfully completing the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 60, 120)
	pdf.Ln(2)
	pdf.CellFormat(pageW, 10, data.CourseTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(60, 60, 60)
	pdf.Ln(4)
	pdf.CellFormat(pageW, 8,
		fmt.Sprintf("with a final score of %d / %d", data.Score, data.MaxScore),
		"", 1, "C", false, 0, "")

	// Footer: date on the left, serial and platform on the right
	pdf.SetY(pageH - 40)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.SetX(25)
	pdf.CellFormat(90, 6, fmt.Sprintf("Issued on %s", data.IssuedAt.Format("January 2, 2006")), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageW-140, 6, data.PlatformName, "", 1, "R", false, 0, "")

	pdf.SetX(25)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(pageW-50, 6, fmt.Sprintf("Certificate no. %s", data.SerialNumber), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
