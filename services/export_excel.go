package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateFeeSummaryExcel creates an Excel workbook from a proposal
// summary and returns the file contents as a byte slice.
func GenerateFeeSummaryExcel(data ProposalSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Determine sheet name (max 31 chars).
	sheetName := data.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Fee Summary"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Column references (A through E).
	columns := []string{"A", "B", "C", "D", "E"}
	lastCol := columns[len(columns)-1]

	widths := []float64{42, 18, 10, 18, 20}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 11,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
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

	// Structure section header: bold on a light fill.
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 12,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E8E8E8"},
			Pattern: 1,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}

	// Discipline aggregate row: bold with borders.
	disciplineStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 10,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create discipline style: %w", err)
	}

	// Space / additional item row: normal with borders.
	detailStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 10,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create detail style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if data.CreatedDate != "" {
		if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
			return nil, fmt.Errorf("merge date: %w", err)
		}
		f.SetCellValue(sheetName, "A2", "Date: "+data.CreatedDate)
		f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)
	}

	// ── Row 4: Column Headers ───────────────────────────────────────────

	headers := []string{"Discipline / Space", "Construction Cost", "Rate", "Design Fee", "Construction Support"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s4", columns[i])
		f.SetCellValue(sheetName, cell, h)
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", headerStyle)

	// ── Structure sections (starting row 5) ─────────────────────────────

	row := 5
	for _, sec := range data.Structures {
		rowStr := fmt.Sprintf("%d", row)
		label := sec.Description
		if sec.DuplicateRate != 1.0 && sec.DuplicateNumber > 0 {
			label = fmt.Sprintf("%s — rate ×%.2f", label, sec.DuplicateRate)
		}
		if err := f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr); err != nil {
			return nil, fmt.Errorf("merge section: %w", err)
		}
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(label))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, sectionStyle)
		row++

		for _, line := range sec.Lines {
			rowStr = fmt.Sprintf("%d", row)

			name := line.Label
			if line.Indent > 0 {
				name = "  " + name
			}
			f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(name))
			f.SetCellValue(sheetName, "B"+rowStr, FormatUSD(line.Cost))
			if line.Indent == 0 {
				f.SetCellValue(sheetName, "C"+rowStr, FormatPercent(line.Rate))
			}
			f.SetCellValue(sheetName, "D"+rowStr, FormatUSD(line.DesignFee))
			f.SetCellValue(sheetName, "E"+rowStr, FormatUSD(line.SupportFee))

			style := detailStyle
			if line.Indent == 0 {
				style = disciplineStyle
			}
			f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)
			row++
		}

		// Structure subtotal row.
		rowStr = fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, "Subtotal")
		f.SetCellValue(sheetName, "D"+rowStr, FormatUSD(sec.DesignSubtotal))
		f.SetCellValue(sheetName, "E"+rowStr, FormatUSD(sec.SupportSubtotal))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, disciplineStyle)
		row += 2
	}

	// ── Additional services ─────────────────────────────────────────────

	row = writeItemSection(f, sheetName, lastCol, row, "Additional Services — Design", data.DesignItems, sectionStyle, detailStyle)
	row = writeItemSection(f, sheetName, lastCol, row, "Additional Services — Construction", data.ConstructionItems, sectionStyle, detailStyle)

	// ── Summary Rows ────────────────────────────────────────────────────

	row++

	summaryRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "C"+summaryRow, "Total Design Fee:")
	f.SetCellStyle(sheetName, "C"+summaryRow, "C"+summaryRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "D"+summaryRow, FormatUSD(data.TotalDesign))
	f.SetCellStyle(sheetName, "D"+summaryRow, "D"+summaryRow, summaryValueStyle)
	row++

	summaryRow = fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "C"+summaryRow, "Total Construction Support:")
	f.SetCellStyle(sheetName, "C"+summaryRow, "C"+summaryRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "E"+summaryRow, FormatUSD(data.TotalSupport))
	f.SetCellStyle(sheetName, "E"+summaryRow, "E"+summaryRow, summaryValueStyle)
	row++

	summaryRow = fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "C"+summaryRow, "Grand Total:")
	f.SetCellStyle(sheetName, "C"+summaryRow, "C"+summaryRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "D"+summaryRow, FormatUSD(data.GrandTotal))
	f.SetCellStyle(sheetName, "D"+summaryRow, "D"+summaryRow, summaryValueStyle)

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

// writeItemSection renders one additional-services block and returns the
// next free row. Empty sections are skipped.
func writeItemSection(f *excelize.File, sheetName, lastCol string, row int, title string, items []FeeItemLine, sectionStyle, detailStyle int) int {
	if len(items) == 0 {
		return row
	}
	rowStr := fmt.Sprintf("%d", row)
	f.MergeCell(sheetName, "A"+rowStr, lastCol+rowStr)
	f.SetCellValue(sheetName, "A"+rowStr, title)
	f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, sectionStyle)
	row++

	for _, item := range items {
		rowStr = fmt.Sprintf("%d", row)
		label := item.Name
		if item.Discipline != "" {
			label = fmt.Sprintf("%s (%s)", item.Name, item.Discipline)
		}
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(label))
		f.SetCellValue(sheetName, "D"+rowStr, FormatUSD(item.Amount))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, detailStyle)
		row++
	}
	return row + 1
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
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

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
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
