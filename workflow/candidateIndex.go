package workflow

import (
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
)

type bucketKey struct {
	year   int
	month  time.Month
	day    int
	period models.ServicePeriod
}

// CandidateIndex partitions the eligible order pool by (date of order
// timestamp, service period). Matching never crosses a bucket boundary.
type CandidateIndex map[bucketKey][]*models.OrderRecord

// BuildCandidateIndex indexes every eligible order. Orders without a
// resolvable period or timestamp never enter any bucket.
func BuildCandidateIndex(orders []models.OrderRecord) CandidateIndex {
	index := make(CandidateIndex)
	for i := range orders {
		order := &orders[i]
		if !order.Eligible() {
			continue
		}
		key := bucketKeyFor(*order.OrderTimestamp, order.ServicePeriod)
		index[key] = append(index[key], order)
	}
	return index
}

func bucketKeyFor(t time.Time, period models.ServicePeriod) bucketKey {
	return bucketKey{year: t.Year(), month: t.Month(), day: t.Day(), period: period}
}

func (idx CandidateIndex) Lookup(date time.Time, period models.ServicePeriod) []*models.OrderRecord {
	if date.IsZero() || period == models.PeriodNone {
		return nil
	}
	return idx[bucketKeyFor(date, period)]
}
