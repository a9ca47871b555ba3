package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// GenerateProjectExcel creates an Excel workbook from a project export:
// one sheet per section plus a final summary sheet, and returns the
// file contents as a byte slice.
func GenerateProjectExcel(data ProjectExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#3B82F6"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E5E7EB"},
			Pattern: 1,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	used := map[string]bool{}
	for _, sec := range data.Sections {
		sheetName := sanitizeSheetName(sec.Name, used)
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheetName, err)
		}
		if err := writeSectionSheet(f, sheetName, sec, headerStyle, rowStyle, totalStyle); err != nil {
			return nil, err
		}
	}

	// Summary sheet replaces the default one.
	summaryName := "Project Summary"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, summaryName); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, summaryName, data, titleStyle, headerStyle, rowStyle, totalStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSectionSheet(f *excelize.File, sheet string, sec ExportSection, headerStyle, rowStyle, totalStyle int) error {
	columns := []string{"A", "B", "C", "D", "E", "F"}
	widths := []float64{15, 50, 12, 10, 15, 15}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	headers := []string{"Item", "Description", "Quantity", "Unit", "Rate (£)", "Amount (£)"}
	for i, h := range headers {
		f.SetCellValue(sheet, columns[i]+"1", h)
	}
	f.SetCellStyle(sheet, "A1", "F1", headerStyle)

	row := 2
	for _, item := range sec.Items {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "A"+rowStr, sanitizeExcelCell(item.RulePath))
		f.SetCellValue(sheet, "B"+rowStr, sanitizeExcelCell(item.Description))
		f.SetCellValue(sheet, "C"+rowStr, item.Quantity)
		f.SetCellValue(sheet, "D"+rowStr, sanitizeExcelCell(item.Unit))
		if item.HasRate {
			f.SetCellValue(sheet, "E"+rowStr, item.Rate)
			f.SetCellValue(sheet, "F"+rowStr, item.Amount)
		}
		f.SetCellStyle(sheet, "A"+rowStr, "F"+rowStr, rowStyle)
		row++
	}

	totalRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "B"+totalRow, "SECTION TOTAL")
	f.SetCellValue(sheet, "F"+totalRow, sec.Total)
	f.SetCellStyle(sheet, "A"+totalRow, "F"+totalRow, totalStyle)

	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, data ProjectExport, titleStyle, headerStyle, rowStyle, totalStyle int) error {
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return fmt.Errorf("set summary col width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 20); err != nil {
		return fmt.Errorf("set summary col width: %w", err)
	}

	f.SetCellValue(sheet, "A1", sanitizeExcelCell(data.ProjectName))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	code := data.ProjectCode
	if code == "" {
		code = "N/A"
	}
	f.SetCellValue(sheet, "A2", "Project Code: "+code)
	f.SetCellValue(sheet, "A3", "Exported: "+data.ExportDate)

	f.SetCellValue(sheet, "A5", "Section")
	f.SetCellValue(sheet, "B5", "Total Amount (£)")
	f.SetCellStyle(sheet, "A5", "B5", headerStyle)

	row := 6
	for _, sec := range data.Sections {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "A"+rowStr, sanitizeExcelCell(sec.Name))
		f.SetCellValue(sheet, "B"+rowStr, sec.Total)
		f.SetCellStyle(sheet, "A"+rowStr, "B"+rowStr, rowStyle)
		row++
	}

	totalRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "A"+totalRow, "PROJECT TOTAL")
	f.SetCellValue(sheet, "B"+totalRow, data.Total)
	f.SetCellStyle(sheet, "A"+totalRow, "B"+totalRow, totalStyle)

	return nil
}

// sanitizeSheetName strips characters Excel forbids in sheet names,
// truncates to 31 chars and deduplicates within the workbook.
func sanitizeSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '?', '*', '[', ']', ':':
			return '_'
		}
		return r
	}, name)
	if clean == "" {
		clean = "Section"
	}
	if len(clean) > 31 {
		clean = clean[:31]
	}
	base := clean
	for i := 2; used[clean]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		if len(base)+len(suffix) > 31 {
			clean = base[:31-len(suffix)] + suffix
		} else {
			clean = base + suffix
		}
	}
	used[clean] = true
	return clean
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous
// leading characters with a single quote. Excel interprets cells
// starting with =, +, -, @, \t or \r as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns excelize borders for thin lines on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
