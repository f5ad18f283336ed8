package service

import (
	"bytes"
	"fmt"
	"time"

	"menuqr/models"

	"github.com/xuri/excelize/v2"
)

const (
	sheetDaily     = "Daily visits"
	sheetTopDishes = "Top dishes"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

// AnalyticsWorkbook renders a visit summary as xlsx: one sheet of daily counts with a
// total row, one sheet of top dishes.
func AnalyticsWorkbook(rest *models.Restaurant, summary *VisitSummary, generatedAt time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetDaily); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetTopDishes); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return nil, err
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return nil, err
	}

	// daily sheet
	f.SetColWidth(sheetDaily, "A", "A", 16)
	f.SetColWidth(sheetDaily, "B", "B", 12)
	writeHeader(f, sheetDaily, headerStyle, "Date", "Visits")
	for i, d := range summary.Daily {
		row := i + 2
		f.SetCellValue(sheetDaily, fmt.Sprintf("A%d", row), d.Date)
		f.SetCellValue(sheetDaily, fmt.Sprintf("B%d", row), d.Count)
		f.SetCellStyle(sheetDaily, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), dataStyle)
	}
	totalRow := len(summary.Daily) + 2
	f.SetCellValue(sheetDaily, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("Last %d days", summary.WindowDays))
	f.SetCellValue(sheetDaily, fmt.Sprintf("B%d", totalRow), summary.LastDays)
	f.SetCellStyle(sheetDaily, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("B%d", totalRow), summaryStyle)
	f.SetCellValue(sheetDaily, fmt.Sprintf("D%d", 1), rest.Name)
	f.SetCellValue(sheetDaily, fmt.Sprintf("D%d", 2), "Generated "+generatedAt.Format("2006-01-02 15:04:05"))

	// top dishes sheet
	f.SetColWidth(sheetTopDishes, "A", "A", 8)
	f.SetColWidth(sheetTopDishes, "B", "B", 30)
	f.SetColWidth(sheetTopDishes, "C", "C", 12)
	writeHeader(f, sheetTopDishes, headerStyle, "Rank", "Dish", "Views")
	for i, d := range summary.TopDishes {
		row := i + 2
		f.SetCellValue(sheetTopDishes, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetTopDishes, fmt.Sprintf("B%d", row), d.Name)
		f.SetCellValue(sheetTopDishes, fmt.Sprintf("C%d", row), d.Views)
		f.SetCellStyle(sheetTopDishes, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), dataStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeHeader(f *excelize.File, sheet string, style int, headers ...string) {
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}
