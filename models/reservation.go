package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
)

// ReservationRecord is one canonical booking-sheet row. Immutable once
// emitted into reconciliation; only BookerIdentity is annotated later by
// the reconcile pass.
type ReservationRecord struct {
	Date           time.Time
	ServicePeriod  ServicePeriod
	TableLabel     string
	BookerName     string
	BookerIdentity string
	CustomerName   string
	Handler        string
	PartySize      string
	ReservedTime   string
	Phone          string
	Note           string
	SourceSheet    string
}

// RawSheet is the untyped cell grid of one workbook sheet: the first file
// row as column names, the rest as data rows. Rows may be ragged.
type RawSheet struct {
	Columns []string
	Rows    [][]string
}

func (s RawSheet) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// SheetGeneration tags which booking-sheet layout a sheet uses. Adding a
// future layout means adding a tag and a normalizer, not patching
// conditionals.
type SheetGeneration int

const (
	GenerationLegacy SheetGeneration = iota
	GenerationNew
)

const (
	roomHeaderSentinel = "包厢"
	periodSeparatorRow = "晚市"
)

// subtotalSentinels mark hand-written summary rows inside the sheets.
var subtotalSentinels = []string{"合计", "总计", "小计"}

// newGeneration column roles, by position.
const (
	newColRoom = iota
	newColPeriod
	newColTime
	newColCustomer
	newColPartySize
	newColPhone
	newColBooker
	newColHandler
	newColNote
)

// DetectSheetGeneration decides the layout from header shape: the newer
// generation has no real column names (at least five columns without one)
// and carries the room-header sentinel in the first cell of the first row.
// Unnamed columns are counted against the widest row of the sheet because
// spreadsheet readers trim trailing empty cells from the header row.
func DetectSheetGeneration(sheet RawSheet) SheetGeneration {
	width := len(sheet.Columns)
	for _, row := range sheet.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	named := 0
	for _, col := range sheet.Columns {
		trimmed := strings.TrimSpace(col)
		if trimmed != "" && !strings.HasPrefix(trimmed, "Unnamed") {
			named++
		}
	}
	if width-named >= 5 && len(sheet.Rows) > 0 && sheet.cell(sheet.Rows[0], 0) == roomHeaderSentinel {
		return GenerationNew
	}
	return GenerationLegacy
}

// NormalizeSheet converts either sheet generation into canonical
// reservation records. now anchors the current-year date reconstruction
// and the parse-failure fallback.
func NormalizeSheet(sheet RawSheet, sheetName string, now time.Time) ([]ReservationRecord, error) {
	switch DetectSheetGeneration(sheet) {
	case GenerationNew:
		return normalizeNewGeneration(sheet, sheetName, now), nil
	default:
		return normalizeLegacy(sheet, sheetName)
	}
}

var headerDatePattern = regexp.MustCompile(`(\d+)\s*月\s*(\d+)\s*号`)

// headerDate parses the embedded date phrase of a new-generation header
// row, e.g. "8月1号 星期五". The sheets never carry a year, so the current
// year is assumed; unparseable phrases fall back to today.
func headerDate(phrase string, now time.Time) time.Time {
	if strings.Contains(phrase, "月") {
		if m := headerDatePattern.FindStringSubmatch(phrase); m != nil {
			month, merr := strconv.Atoi(m[1])
			day, derr := strconv.Atoi(m[2])
			if merr == nil && derr == nil {
				return time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
			}
		}
	}
	return DateOnly(now)
}

func normalizeNewGeneration(sheet RawSheet, sheetName string, now time.Time) []ReservationRecord {
	date := headerDate(sheet.cell(sheet.Rows[0], 1), now)

	var records []ReservationRecord
	for _, row := range sheet.Rows[1:] {
		label := sheet.cell(row, newColRoom)
		if label == "" || label == periodSeparatorRow {
			continue
		}
		if utils.ContainsAnyFold(label, subtotalSentinels) {
			continue
		}
		record := ReservationRecord{
			Date:          date,
			ServicePeriod: ServicePeriodFromLabel(sheet.cell(row, newColPeriod)),
			TableLabel:    label,
			ReservedTime:  NormalizeClockTime(sheet.cell(row, newColTime)),
			CustomerName:  sheet.cell(row, newColCustomer),
			PartySize:     sheet.cell(row, newColPartySize),
			Phone:         sheet.cell(row, newColPhone),
			BookerName:    sheet.cell(row, newColBooker),
			Handler:       sheet.cell(row, newColHandler),
			Note:          sheet.cell(row, newColNote),
			SourceSheet:   sheetName,
		}
		if record.CustomerName == "" && record.BookerName == "" {
			continue
		}
		records = append(records, record)
	}
	return records
}

// legacy column spellings, harmonized to the canonical record fields.
var legacyCustomerColumns = []string{"姓名", "客户姓名"}

func normalizeLegacy(sheet RawSheet, sheetName string) ([]ReservationRecord, error) {
	col := func(names ...string) int {
		for _, name := range names {
			for i, header := range sheet.Columns {
				if strings.TrimSpace(header) == name {
					return i
				}
			}
		}
		return -1
	}

	customerCol := col(legacyCustomerColumns...)
	bookerCol := col("预订人")
	var missing []string
	if customerCol < 0 {
		missing = append(missing, "姓名/客户姓名")
	}
	if bookerCol < 0 {
		missing = append(missing, "预订人")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", utils.ErrorMissingColumns, strings.Join(missing, ", "))
	}

	dateCol := col("日期")
	periodCol := col("市别")
	tableCol := col("包厢", "桌牌号")
	handlerCol := col("经手人")
	partyCol := col("人数")
	timeCol := col("预订时间", "时间")
	phoneCol := col("联系电话")
	noteCol := col("备注")

	var records []ReservationRecord
	for _, row := range sheet.Rows {
		record := ReservationRecord{
			ServicePeriod: ServicePeriodFromLabel(sheet.cell(row, periodCol)),
			TableLabel:    sheet.cell(row, tableCol),
			CustomerName:  sheet.cell(row, customerCol),
			BookerName:    sheet.cell(row, bookerCol),
			Handler:       sheet.cell(row, handlerCol),
			PartySize:     sheet.cell(row, partyCol),
			ReservedTime:  NormalizeClockTime(sheet.cell(row, timeCol)),
			Phone:         sheet.cell(row, phoneCol),
			Note:          sheet.cell(row, noteCol),
			SourceSheet:   sheetName,
		}
		if record.CustomerName == "" && record.BookerName == "" {
			continue
		}
		if t := parseSheetDate(sheet.cell(row, dateCol)); t != nil {
			record.Date = *t
		}
		records = append(records, record)
	}
	return records, nil
}

// parseSheetDate handles legacy date cells like "2025-08-01 00:00:00": only
// the token before the first whitespace is significant.
func parseSheetDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if fields := strings.Fields(raw); len(fields) > 0 {
		raw = fields[0]
	}
	return ParseTimestamp(raw)
}

var clockTimeLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04:05 PM"}

// NormalizeClockTime renders a time-typed cell as HH:MM text. Already-text
// values that do not look like times pass through unchanged; a bare
// spreadsheet serial fraction is converted from fraction-of-day.
func NormalizeClockTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range clockTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04")
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 && f < 1 {
		minutes := int(f*24*60 + 0.5)
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	}
	return raw
}
