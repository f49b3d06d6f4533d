package workflow

import (
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
)

// RemoveMatch unlinks the order from one merged record, in place. The
// record stays in the set as an unmatched row, keyed by its synthetic id,
// so the fan-out shape of the pass is preserved.
func RemoveMatch(sess *Session, recordID int64) error {
	record := sess.FindRecord(recordID)
	if record == nil {
		return utils.ErrorRecordNotFound
	}
	record.DetachOrder()
	return nil
}

// ConfirmManualMatch links one or more orders to a currently-unmatched
// record. The first order is attached to the existing record in place;
// every additional order appends a clone carrying the same reservation
// fields, mirroring the fan-out the automatic pass produces.
func ConfirmManualMatch(sess *Session, recordID int64, orderIDs []int64) error {
	record := sess.FindRecord(recordID)
	if record == nil {
		return utils.ErrorRecordNotFound
	}
	if record.OrderLinked() {
		return utils.ErrorAlreadyMatched
	}
	if len(orderIDs) == 0 {
		return fmt.Errorf("no orders selected")
	}

	// Resolve every order up front so a bad id leaves the record untouched.
	orders := make([]*models.OrderRecord, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		order := sess.FindOrder(orderID)
		if order == nil {
			return fmt.Errorf("%w: %d", utils.ErrorOrderNotFound, orderID)
		}
		orders = append(orders, order)
	}

	record.AttachOrder(orders[0], models.MatchTypeManual)
	for _, order := range orders[1:] {
		clone := *record
		clone.RecordID = sess.nextID()
		clone.AttachOrder(order, models.MatchTypeManual)
		sess.Merged = append(sess.Merged, &clone)
	}
	return nil
}

// ManualMatchCandidates lists the settled orders of one calendar date to
// drive manual matching. Unlike the automatic pool, period-less orders are
// included: the operator decides eligibility here.
func ManualMatchCandidates(sess *Session, recordID int64) ([]*models.OrderRecord, error) {
	record := sess.FindRecord(recordID)
	if record == nil {
		return nil, utils.ErrorRecordNotFound
	}
	return OrdersOnDate(sess, record.Date), nil
}

// OrdersOnDate returns the orders whose timestamp falls on the given
// calendar date; a zero date returns the whole pool.
func OrdersOnDate(sess *Session, date time.Time) []*models.OrderRecord {
	var result []*models.OrderRecord
	for i := range sess.Orders {
		order := &sess.Orders[i]
		if date.IsZero() {
			result = append(result, order)
			continue
		}
		if order.OrderTimestamp != nil && models.DateOnly(*order.OrderTimestamp).Equal(models.DateOnly(date)) {
			result = append(result, order)
		}
	}
	return result
}
