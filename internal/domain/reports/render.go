package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"elms/internal/domain/leave"
	"elms/internal/domain/scoring"
)

var requestExportHeader = []string{
	"id", "employee", "email", "department", "leave_type", "start_date", "end_date",
	"duration_days", "status", "approver_id", "rejection_reason", "created_at",
}

func WriteRequestsCSV(w io.Writer, rows []leave.RequestView) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(requestExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{
			r.ID,
			r.EmployeeName,
			r.EmployeeEmail,
			r.Department,
			r.LeaveTypeName,
			r.StartDate.Format("2006-01-02"),
			r.EndDate.Format("2006-01-02"),
			strconv.Itoa(r.DurationDays),
			r.Status,
			r.ApproverID,
			r.RejectionReason,
			r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type scoreLine struct {
	label     string
	component scoring.Component
}

func WriteScorePDF(w io.Writer, subject Subject, report scoring.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Performance score", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance score")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", subject.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", subject.Email))
	pdf.Ln(7)
	if subject.Department != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Department: %s", subject.Department))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Computed: %s", report.ComputedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Overall: %.1f / 100", report.OverallScore))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 8, "Component", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Score", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Max", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Percent", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	c := report.Components
	for _, line := range []scoreLine{
		{"Leave discipline", c.Discipline},
		{"Balance usage", c.Usage},
		{"Timely requests", c.Timeliness},
		{"Pending requests", c.Pending},
		{"Overlap handling", c.Overlap},
		{"Tenure bonus", c.Tenure},
	} {
		pdf.CellFormat(70, 8, line.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", line.component.Score), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, strconv.Itoa(line.component.Max), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d%%", line.component.Percent), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}
