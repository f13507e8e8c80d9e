// Package export renders printable documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// SubjectScore is one row of the report card marks table.
type SubjectScore struct {
	Subject string
	Score   float64
}

// CombinedSummary is the term-wide section, present once a term recompute
// has run.
type CombinedSummary struct {
	Total          float64
	Average        float64
	Grade          string
	GeneralRemark  string
	ClassPosition  *int
	StreamPosition *int
}

// ReportCardData is everything the PDF needs, already resolved to names.
type ReportCardData struct {
	SchoolName string
	PupilName  string
	ClassName  string
	StreamName string
	ExamName   string
	Term       int
	Year       int
	Rows       []SubjectScore
	Total      float64
	Average    float64
	Grade      string
	Remarks    string
	Combined   *CombinedSummary
}

// ReportCardPDF renders a single-exam report card, with the combined term
// section appended when available.
func ReportCardPDF(data ReportCardData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Report Card - %s", data.PupilName), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, data.SchoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s - Term %d, %d", data.ExamName, data.Term, data.Year), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Pupil: %s", data.PupilName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Class: %s    Stream: %s", data.ClassName, data.StreamName), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(120, 8, "Subject", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Score", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, row := range data.Rows {
		pdf.CellFormat(120, 8, row.Subject, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.1f", row.Score), "1", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(120, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.1f", data.Total), "1", 1, "C", false, 0, "")
	pdf.CellFormat(120, 8, "Average", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", data.Average), "1", 1, "C", false, 0, "")
	pdf.CellFormat(120, 8, "Grade", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, data.Grade, "1", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "I", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Remarks: %s", data.Remarks), "", 1, "L", false, 0, "")

	if data.Combined != nil {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Term Summary", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Combined Total: %.2f    Combined Average: %.2f    Grade: %s",
			data.Combined.Total, data.Combined.Average, data.Combined.Grade), "", 1, "L", false, 0, "")
		if data.Combined.ClassPosition != nil {
			position := fmt.Sprintf("Class Position: %d", *data.Combined.ClassPosition)
			if data.Combined.StreamPosition != nil {
				position += fmt.Sprintf("    Stream Position: %d", *data.Combined.StreamPosition)
			}
			pdf.CellFormat(0, 7, position, "", 1, "L", false, 0, "")
		}
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 7, data.Combined.GeneralRemark, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
