package assignment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// GenerateAssignmentReportPDF renders an employee's WBS assignments for a
// period, with criteria importance and allocated weights, to a PDF on disk
// and returns the file path.
func (s *Service) GenerateAssignmentReportPDF(ctx context.Context, employeeID, periodID string) (string, error) {
	employee, err := s.org.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	period, err := s.org.GetPeriod(ctx, periodID)
	if err != nil {
		return "", err
	}

	rows, err := s.store.DB.Query(ctx, `
    SELECT p.name, w.name, COALESCE(c.criteria, ''), COALESCE(c.importance, 0), wa.weight
    FROM wbs_assignments wa
    JOIN projects p ON p.id = wa.project_id
    JOIN wbs_items w ON w.id = wa.wbs_item_id
    LEFT JOIN LATERAL (
      SELECT criteria, importance
      FROM wbs_evaluation_criteria
      WHERE wbs_item_id = wa.wbs_item_id
      ORDER BY created_at, id
      LIMIT 1
    ) c ON true
    WHERE wa.employee_id = $1 AND wa.period_id = $2
    ORDER BY p.name, wa.display_order
  `, employeeID, periodID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	type reportLine struct {
		Project    string
		WbsItem    string
		Criteria   string
		Importance int
		Weight     float64
	}
	var lines []reportLine
	for rows.Next() {
		var line reportLine
		if err := rows.Scan(&line.Project, &line.WbsItem, &line.Criteria, &line.Importance, &line.Weight); err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll("storage/reports", 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join("storage/reports", fmt.Sprintf("assignments-%s-%s.pdf", employeeID, periodID))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Assignment Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employee.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s (%s to %s)", period.Name,
		period.StartDate.Format("2006-01-02"), period.EndDate.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(50, 7, "Project")
	pdf.Cell(60, 7, "WBS Item")
	pdf.Cell(40, 7, "Importance")
	pdf.Cell(30, 7, "Weight")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	total := 0.0
	for _, line := range lines {
		pdf.Cell(50, 7, line.Project)
		pdf.Cell(60, 7, line.WbsItem)
		pdf.Cell(40, 7, fmt.Sprintf("%d", line.Importance))
		pdf.Cell(30, 7, fmt.Sprintf("%.2f", line.Weight))
		pdf.Ln(7)
		total += line.Weight
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(150, 7, "Total")
	pdf.Cell(30, 7, fmt.Sprintf("%.2f", total))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
