package reports

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
	"github.com/shopspring/decimal"
)

func matchedRecord(table, booker string, ts time.Time, payment string) *models.MatchedRecord {
	amount, _ := decimal.NewFromString(payment)
	return &models.MatchedRecord{
		RecordID:          1,
		Date:              models.DateOnly(ts),
		TableLabel:        table,
		BookerIdentity:    booker,
		OrderID:           utils.Ptr(int64(1)),
		OrderTimestamp:    &ts,
		PaymentTotal:      &amount,
		PaymentMethodText: utils.Ptr("微信支付 " + payment),
		MatchType:         models.MatchTypeExact,
	}
}

func TestWriteMatchedWorkbook(t *testing.T) {
	late := matchedRecord("福禄1", "平和", time.Date(2025, 8, 2, 19, 0, 0, 0, time.Local), "500")
	early := matchedRecord("12", "刘霞", time.Date(2025, 8, 1, 12, 0, 0, 0, time.Local), "88.5")

	f, err := WriteMatchedWorkbook([]*models.MatchedRecord{late, early})
	if err != nil {
		t.Fatalf("WriteMatchedWorkbook error: %v", err)
	}

	header, err := f.GetCellValue(resultSheetName, "A1")
	if err != nil || header != "下单时间" {
		t.Fatalf("header cell wrong: %q err=%v", header, err)
	}

	// Rows come out sorted by order timestamp, earliest first.
	firstTime, _ := f.GetCellValue(resultSheetName, "A2")
	if firstTime != "2025-08-01 12:00:00" {
		t.Fatalf("rows not sorted by order time: %q", firstTime)
	}
	booker, _ := f.GetCellValue(resultSheetName, "B2")
	if booker != "刘霞" {
		t.Fatalf("booker cell wrong: %q", booker)
	}
	payment, _ := f.GetCellValue(resultSheetName, "D2")
	if payment != "88.50" {
		t.Fatalf("payment cell wrong: %q", payment)
	}
	matchType, _ := f.GetCellValue(resultSheetName, "F3")
	if matchType != string(models.MatchTypeExact) {
		t.Fatalf("match type cell wrong: %q", matchType)
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename("", "20250801_120000"); got != "匹配结果_全部匹配_20250801_120000.xlsx" {
		t.Fatalf("unexpected filename: %q", got)
	}
	if got := ExportFilename("平和", "20250801_120000"); got != "匹配结果_平和（美团匹配清单）_20250801_120000.xlsx" {
		t.Fatalf("unexpected filename: %q", got)
	}
}
