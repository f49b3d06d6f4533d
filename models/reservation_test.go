package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
)

func newGenerationSheet() RawSheet {
	return RawSheet{
		Columns: []string{"预定表", "", "", "", "", "", "", "", ""},
		Rows: [][]string{
			{"包厢", "8 月 1 号 星期五"},
			{"福禄1", "午市", "11:30:00", "王先生", "8", "13800000000", "平哥", "小李", ""},
			{"晚市"},
			{"福禄2", "晚市", "18:00", "李女士", "10", "", "刘", "小王", "生日宴"},
			{"合计", "", "", "", "18"},
			{"", "", "", "遗漏行"},
		},
	}
}

func legacySheet() RawSheet {
	return RawSheet{
		Columns: []string{"日期", "市别", "包厢", "客户姓名", "预订人", "经手人"},
		Rows: [][]string{
			{"2025-08-01 00:00:00", "晚市", "大厅15", "赵先生", "周", "小李"},
			{"2025-08-01 00:00:00", "午市", "8", "", "", "小王"},
		},
	}
}

func TestDetectSheetGeneration(t *testing.T) {
	if got := DetectSheetGeneration(newGenerationSheet()); got != GenerationNew {
		t.Fatalf("expected GenerationNew, got %v", got)
	}
	if got := DetectSheetGeneration(legacySheet()); got != GenerationLegacy {
		t.Fatalf("expected GenerationLegacy, got %v", got)
	}

	// Sentinel in the first data cell alone is not enough: the newer layout
	// also has no real column names.
	named := RawSheet{
		Columns: []string{"日期", "市别", "包厢", "客户姓名", "预订人", "经手人"},
		Rows:    [][]string{{"包厢", "8月1号"}},
	}
	if got := DetectSheetGeneration(named); got != GenerationLegacy {
		t.Fatalf("named columns expected GenerationLegacy, got %v", got)
	}
}

func TestNormalizeSheet_NewGeneration(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)
	records, err := NormalizeSheet(newGenerationSheet(), "8月1日", now)
	if err != nil {
		t.Fatalf("NormalizeSheet error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (separator/subtotal/empty rows dropped), got %d", len(records))
	}

	first := records[0]
	wantDate := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)
	if !first.Date.Equal(wantDate) {
		t.Fatalf("header date expected %v, got %v", wantDate, first.Date)
	}
	if first.TableLabel != "福禄1" || first.ServicePeriod != PeriodLunch {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.ReservedTime != "11:30" {
		t.Fatalf("reserved time expected 11:30, got %q", first.ReservedTime)
	}
	if first.BookerName != "平哥" || first.CustomerName != "王先生" || first.Handler != "小李" {
		t.Fatalf("positional roles misassigned: %+v", first)
	}
	if first.SourceSheet != "8月1日" {
		t.Fatalf("source sheet expected 8月1日, got %q", first.SourceSheet)
	}

	second := records[1]
	if second.TableLabel != "福禄2" || second.ServicePeriod != PeriodDinner || second.Note != "生日宴" {
		t.Fatalf("unexpected second record: %+v", second)
	}
}

func TestNormalizeSheet_NewGenerationDateFallback(t *testing.T) {
	sheet := newGenerationSheet()
	sheet.Rows[0][1] = "星期五" // no parseable month/day phrase
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)

	records, err := NormalizeSheet(sheet, "s", now)
	if err != nil {
		t.Fatalf("NormalizeSheet error: %v", err)
	}
	today := time.Date(2025, 3, 15, 0, 0, 0, 0, time.Local)
	if !records[0].Date.Equal(today) {
		t.Fatalf("expected fallback to today %v, got %v", today, records[0].Date)
	}
}

func TestNormalizeSheet_Legacy(t *testing.T) {
	records, err := NormalizeSheet(legacySheet(), "旧表", time.Now())
	if err != nil {
		t.Fatalf("NormalizeSheet error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record (nameless row dropped), got %d", len(records))
	}
	record := records[0]
	if record.TableLabel != "大厅15" || record.CustomerName != "赵先生" || record.BookerName != "周" {
		t.Fatalf("column harmonization failed: %+v", record)
	}
	wantDate := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)
	if !record.Date.Equal(wantDate) {
		t.Fatalf("legacy date expected %v, got %v", wantDate, record.Date)
	}
}

func TestNormalizeSheet_LegacyAcceptsEitherCustomerSpelling(t *testing.T) {
	sheet := legacySheet()
	sheet.Columns[3] = "姓名"
	records, err := NormalizeSheet(sheet, "s", time.Now())
	if err != nil {
		t.Fatalf("NormalizeSheet error: %v", err)
	}
	if records[0].CustomerName != "赵先生" {
		t.Fatalf("姓名 spelling not harmonized: %+v", records[0])
	}
}

func TestNormalizeSheet_LegacyMissingColumns(t *testing.T) {
	sheet := RawSheet{
		Columns: []string{"日期", "市别", "包厢"},
		Rows:    [][]string{{"2025-08-01", "午市", "3"}},
	}
	_, err := NormalizeSheet(sheet, "s", time.Now())
	if err == nil || !errors.Is(err, utils.ErrorMissingColumns) {
		t.Fatalf("expected ErrorMissingColumns, got %v", err)
	}
	if !strings.Contains(err.Error(), "姓名/客户姓名") || !strings.Contains(err.Error(), "预订人") {
		t.Fatalf("absent columns not named in error: %v", err)
	}
}

func TestNormalizeClockTime(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"11:30:00", "11:30"},
		{"18:00", "18:00"},
		{"0.4791666667", "11:30"},
		{"中午", "中午"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeClockTime(tc.in); got != tc.expected {
			t.Fatalf("NormalizeClockTime(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}
