package ingest

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
	"github.com/xuri/excelize/v2"
)

func buildReservationWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet: %v", err)
			}
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func newGenerationRows() [][]interface{} {
	return [][]interface{}{
		{"预定表", "", "", "", "", "", "", "", ""},
		{"包厢", "8月1号 星期五"},
		{"福禄1", "午市", "11:30", "王先生", "8", "13800000000", "平哥", "小李", ""},
		{"晚市"},
		{"喜乐2", "晚市", "18:00", "李女士", "10", "", "刘", "小王", ""},
		{"合计", "", "", "", "18"},
	}
}

func TestReadReservationWorkbook_MultiSheet(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	r := buildReservationWorkbook(t, map[string][][]interface{}{
		"8月1日": newGenerationRows(),
		"说明":   {{"这是一张无关的说明页"}},
	})

	records, err := ReadReservationWorkbook(r, config.GetLogger(), now)
	if err != nil {
		t.Fatalf("ReadReservationWorkbook error: %v", err)
	}
	// The junk sheet is skipped silently; the booking sheet yields two
	// data rows.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, record := range records {
		if record.SourceSheet != "8月1日" {
			t.Fatalf("record not tagged with source sheet: %+v", record)
		}
		want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)
		if !record.Date.Equal(want) {
			t.Fatalf("header date not applied: %v", record.Date)
		}
	}
	if records[0].ServicePeriod != models.PeriodLunch || records[1].ServicePeriod != models.PeriodDinner {
		t.Fatalf("periods misread: %+v", records)
	}
}

func TestReadReservationWorkbook_LegacyDateTypedCell(t *testing.T) {
	sheetName := "预订"
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	header := []interface{}{"日期", "市别", "包厢", "姓名", "预订人"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	row := []interface{}{nil, "午市", "福禄1", "王先生", "平哥"}
	if err := f.SetSheetRow(sheetName, "A2", &row); err != nil {
		t.Fatalf("SetSheetRow: %v", err)
	}
	// A real date-typed cell, as the exported sheets carry, not date text.
	if err := f.SetCellValue(sheetName, "A2", time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if err := f.SetCellStyle(sheetName, "A2", "A2", dateStyle); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	records, err := ReadReservationWorkbook(bytes.NewReader(buf.Bytes()), config.GetLogger(), time.Now())
	if err != nil {
		t.Fatalf("ReadReservationWorkbook error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.Local)
	if !records[0].Date.Equal(want) {
		t.Fatalf("date-typed cell not parsed: got %v, want %v", records[0].Date, want)
	}
	if records[0].ServicePeriod != models.PeriodLunch {
		t.Fatalf("period misread: %+v", records[0])
	}
}

func TestReadReservationWorkbook_NoValidSheets(t *testing.T) {
	r := buildReservationWorkbook(t, map[string][][]interface{}{
		"说明": {{"这是一张无关的说明页"}, {"没有数据"}},
	})
	_, err := ReadReservationWorkbook(r, config.GetLogger(), time.Now())
	if err == nil {
		t.Fatalf("expected an error for a workbook with no usable sheet")
	}
	if !errors.Is(err, utils.ErrorMissingColumns) && !errors.Is(err, utils.ErrorNoValidSheets) {
		t.Fatalf("unexpected error: %v", err)
	}
}
