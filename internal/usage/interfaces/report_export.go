package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	usage "restroom-cloud/internal/usage/domain"
)

// BuildUsageReportPDF renders a minimal PDF for one day's usage summary.
func BuildUsageReportPDF(view usage.SummaryView) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Daily Restroom Usage Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Day: %s", view.DayKey))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Users: %d", view.TotalUsers))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Use (min): %.0f", view.TotalUseMinutes))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Avg per User (min): %.1f", view.AvgMinutesPerUser))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cleanings: %d", view.CleanCount))
	pdf.Ln(8)

	// Per-hour table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Hour", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Users", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range view.PerHour {
		pdf.CellFormat(40, 6, point.Hour+":00", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%d", point.Users), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildUsageReportXLSX renders a minimal XLSX for one day's usage summary.
func BuildUsageReportXLSX(view usage.SummaryView) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	hoursSheet := "per_hour"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(hoursSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Daily Restroom Usage Report")
	_ = f.SetCellValue(summarySheet, "A3", "Day")
	_ = f.SetCellValue(summarySheet, "B3", view.DayKey)
	_ = f.SetCellValue(summarySheet, "A4", "Total Users")
	_ = f.SetCellValue(summarySheet, "B4", view.TotalUsers)
	_ = f.SetCellValue(summarySheet, "A5", "Total Use (min)")
	_ = f.SetCellValue(summarySheet, "B5", view.TotalUseMinutes)
	_ = f.SetCellValue(summarySheet, "A6", "Avg per User (min)")
	_ = f.SetCellValue(summarySheet, "B6", view.AvgMinutesPerUser)
	_ = f.SetCellValue(summarySheet, "A7", "Cleanings")
	_ = f.SetCellValue(summarySheet, "B7", view.CleanCount)

	_ = f.SetCellValue(hoursSheet, "A1", "Hour")
	_ = f.SetCellValue(hoursSheet, "B1", "Users")
	for i, point := range view.PerHour {
		row := i + 2
		_ = f.SetCellValue(hoursSheet, fmt.Sprintf("A%d", row), point.Hour+":00")
		_ = f.SetCellValue(hoursSheet, fmt.Sprintf("B%d", row), point.Users)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
