package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchType is the confidence tier a reservation/order link was made at.
type MatchType string

const (
	MatchTypeExact       MatchType = "完全匹配"
	MatchTypeRoom        MatchType = "包厢匹配"
	MatchTypeRoomTakeout MatchType = "包厢外卖匹配"
	MatchTypeNumber      MatchType = "数字匹配"
	MatchTypeTakeout     MatchType = "外卖匹配"
	MatchTypeManual      MatchType = "手动匹配"
	MatchTypeUnmatched   MatchType = "未匹配"
)

type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "已匹配"
	MatchStatusUnmatched MatchStatus = "未匹配"
)

// MatchedRecord is a reservation projected with at most one linked order.
// One reservation fans out into one MatchedRecord per matching order, or
// exactly one unmatched record. The set is created by one reconcile pass
// and afterwards only mutated by the override workflow.
type MatchedRecord struct {
	// RecordID is the synthetic monotonic identifier assigned at emission.
	// It is the sole override key.
	RecordID int64

	Date           time.Time
	ServicePeriod  ServicePeriod
	TableLabel     string
	BookerIdentity string
	CustomerName   string
	Handler        string
	PartySize      string
	ReservedTime   string
	SourceSheet    string

	// Order-derived fields; all nil/zero while unmatched.
	OrderID           *int64
	OrderTimestamp    *time.Time
	PaymentTotal      *decimal.Decimal
	PaymentMethodText *string

	MatchType MatchType
}

// OrderLinked reports whether an order is attached. Match status derives
// from this alone, so an order with an unreadable payment total still
// counts as matched.
func (r *MatchedRecord) OrderLinked() bool {
	return r.OrderID != nil
}

func (r *MatchedRecord) MatchStatus() MatchStatus {
	if r.OrderLinked() {
		return MatchStatusMatched
	}
	return MatchStatusUnmatched
}

// AttachOrder copies the order-derived fields of o onto the record.
func (r *MatchedRecord) AttachOrder(o *OrderRecord, matchType MatchType) {
	id := o.ID
	r.OrderID = &id
	r.OrderTimestamp = o.OrderTimestamp
	r.PaymentTotal = o.PaymentTotal
	method := o.PaymentMethodText
	r.PaymentMethodText = &method
	r.MatchType = matchType
}

// DetachOrder resets every order-derived field, returning the record to
// the unmatched state.
func (r *MatchedRecord) DetachOrder() {
	r.OrderID = nil
	r.OrderTimestamp = nil
	r.PaymentTotal = nil
	r.PaymentMethodText = nil
	r.MatchType = MatchTypeUnmatched
}
