package reports

import (
	"fmt"
	"sort"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"github.com/xuri/excelize/v2"
)

const resultSheetName = "匹配结果"

var resultHeaders = []string{"下单时间", "预订人", "桌牌号", "支付合计", "结账方式", "匹配类型"}

// Per-column width bounds (min, pad, max), tuned to the printed sheets the
// staff compare against.
var columnWidthRules = []struct {
	min, pad, max float64
}{
	{22, 4, 28}, // 下单时间
	{15, 3, 25}, // 预订人
	{12, 3, 18}, // 桌牌号
	{15, 3, 22}, // 支付合计
	{25, 5, 40}, // 结账方式
	{12, 3, 18}, // 匹配类型
}

// WriteMatchedWorkbook renders matched records into a styled workbook,
// sorted by order timestamp. The caller picks which records to export
// (filtered search results or the full matched set).
func WriteMatchedWorkbook(records []*models.MatchedRecord) (*excelize.File, error) {
	sorted := make([]*models.MatchedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].OrderTimestamp, sorted[j].OrderTimestamp
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.Before(*tj)
	})

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", resultSheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}

	widths := make([]int, len(resultHeaders))
	for i, header := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(resultSheetName, cell, header)
		widths[i] = displayWidth(header)
	}

	for rowIdx, record := range sorted {
		values := recordCells(record)
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(resultSheetName, cell, value)
			if w := displayWidth(value); w > widths[colIdx] {
				widths[colIdx] = w
			}
		}
	}

	lastCell, _ := excelize.CoordinatesToCellName(len(resultHeaders), 1)
	f.SetCellStyle(resultSheetName, "A1", lastCell, headerStyle)
	if len(sorted) > 0 {
		lastDataCell, _ := excelize.CoordinatesToCellName(len(resultHeaders), len(sorted)+1)
		f.SetCellStyle(resultSheetName, "A2", lastDataCell, dataStyle)
	}

	for i, rule := range columnWidthRules {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(widths[i]) + rule.pad
		if width < rule.min {
			width = rule.min
		}
		if width > rule.max {
			width = rule.max
		}
		f.SetColWidth(resultSheetName, colName, colName, width)
	}

	f.SetRowHeight(resultSheetName, 1, 30)
	for row := 2; row <= len(sorted)+1; row++ {
		f.SetRowHeight(resultSheetName, row, 35)
	}
	return f, nil
}

func recordCells(record *models.MatchedRecord) []string {
	orderTime := ""
	if record.OrderTimestamp != nil {
		orderTime = record.OrderTimestamp.Format("2006-01-02 15:04:05")
	}
	payment := ""
	if record.PaymentTotal != nil {
		payment = record.PaymentTotal.StringFixed(2)
	}
	method := ""
	if record.PaymentMethodText != nil {
		method = *record.PaymentMethodText
	}
	return []string{
		orderTime,
		record.BookerIdentity,
		record.TableLabel,
		payment,
		method,
		string(record.MatchType),
	}
}

// displayWidth counts CJK characters double, matching how wide the text
// renders in a spreadsheet column.
func displayWidth(s string) int {
	width := 0
	for _, r := range s {
		if r > 127 {
			width += 2
		} else {
			width++
		}
	}
	return width
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
}

// ExportFilename builds the download name for one export, mirroring the
// desk habit of naming lists after the booker being settled.
func ExportFilename(searchTerm string, timestamp string) string {
	suffix := "全部匹配"
	if searchTerm != "" {
		suffix = fmt.Sprintf("%s（美团匹配清单）", searchTerm)
	}
	return fmt.Sprintf("匹配结果_%s_%s.xlsx", suffix, timestamp)
}
