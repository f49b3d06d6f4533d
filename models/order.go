package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ServicePeriod scopes matching within a business day. The values are the
// literal 市别 labels the booking sheets carry so sheet cells compare
// directly against classified orders.
type ServicePeriod string

const (
	PeriodLunch  ServicePeriod = "午市"
	PeriodDinner ServicePeriod = "晚市"
	PeriodNone   ServicePeriod = ""
)

// ClassifyServicePeriod derives the service period from an order timestamp.
// Lunch covers 6:00-15:59, dinner 16:00-23:59. Orders outside business
// hours (and orders with no timestamp) get PeriodNone and never enter the
// automatic matching pool.
func ClassifyServicePeriod(t *time.Time) ServicePeriod {
	if t == nil {
		return PeriodNone
	}
	hour := t.Hour()
	switch {
	case hour >= 6 && hour < 16:
		return PeriodLunch
	case hour >= 16 && hour < 24:
		return PeriodDinner
	default:
		return PeriodNone
	}
}

// ServicePeriodFromLabel maps a raw 市别 cell to a period. Unknown labels
// collapse to PeriodNone.
func ServicePeriodFromLabel(label string) ServicePeriod {
	switch strings.TrimSpace(label) {
	case string(PeriodLunch):
		return PeriodLunch
	case string(PeriodDinner):
		return PeriodDinner
	default:
		return PeriodNone
	}
}

// OrderRecord is one settled POS order row. Created once per uploaded order
// workbook and never mutated afterwards. ID is a synthetic identifier
// assigned at ingestion and referenced by manual matches.
type OrderRecord struct {
	ID                int64
	BusinessDateRaw   string
	BusinessDate      *time.Time
	OrderTimestamp    *time.Time
	TableLabel        string
	PaymentTotal      *decimal.Decimal
	PaymentMethodText string
	ServicePeriod     ServicePeriod
}

// Eligible reports whether the order can enter the automatic matching pool.
func (o *OrderRecord) Eligible() bool {
	return o.OrderTimestamp != nil && o.ServicePeriod != PeriodNone
}

var paymentAmountPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// ExtractPaymentTotal pulls the first numeric run (sign and decimals
// included) out of a free-text settlement description, e.g.
// "微信支付 128.50" -> 128.50. Nil when no amount is readable.
func ExtractPaymentTotal(settlementText string) *decimal.Decimal {
	raw := paymentAmountPattern.FindString(settlementText)
	if raw == "" {
		return nil
	}
	amount, err := decimal.NewFromString(strings.TrimSuffix(raw, "."))
	if err != nil {
		return nil
	}
	return &amount
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:04",
	"01-02-06 15:04",
	"2006-01-02",
	"2006/1/2",
	"01-02-06",
	"1/2/06",
}

// ParseTimestamp parses the loosely formatted date/datetime text the POS
// export carries. Date-typed spreadsheet cells render as two-digit-year
// text like "08-01-25", so m-d-yy layouts are tried as well. Nil on
// failure; callers treat that as a field-level parse failure, not an error.
func ParseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "--" {
		return nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err != nil {
			continue
		}
		// A short input can satisfy a four-digit-year layout with a
		// nonsense year (e.g. "8/1/25" read as year 8); let the
		// two-digit-year layouts further down claim it instead.
		if t.Year() < 1000 {
			continue
		}
		return &t
	}
	return nil
}

// DateOnly truncates t to its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
