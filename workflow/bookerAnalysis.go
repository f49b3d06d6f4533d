package workflow

import (
	"sort"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"github.com/shopspring/decimal"
)

// DailySpend is one day of a booker's matched revenue.
type DailySpend struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// BookerAnalysis aggregates one booker's reconciled activity: how many
// bookings, how many converted into paid orders, and what they spent.
type BookerAnalysis struct {
	Booker       string          `json:"booker"`
	Reservations int             `json:"reservations"`
	Matched      int             `json:"matched"`
	MatchRate    float64         `json:"matchRate"`
	TotalSpend   decimal.Decimal `json:"totalSpend"`
	ByDate       []DailySpend    `json:"byDate"`
}

// AnalyzeBooker computes the per-booker summary over the merged set. The
// booker term is alias-aware, so any spelling of the identity covers the
// whole group. Spend only counts records with a readable payment total.
func AnalyzeBooker(sess *Session, booker string) BookerAnalysis {
	normalizer := models.NewIdentityNormalizer(sess.Vocabulary)
	canonical := normalizer.Normalize(booker)

	analysis := BookerAnalysis{Booker: canonical, TotalSpend: decimal.Zero}
	byDate := make(map[string]*DailySpend)

	for _, record := range sess.Merged {
		if record.BookerIdentity != canonical {
			continue
		}
		analysis.Reservations++
		if !record.OrderLinked() {
			continue
		}
		analysis.Matched++
		if record.PaymentTotal == nil {
			continue
		}
		analysis.TotalSpend = analysis.TotalSpend.Add(*record.PaymentTotal)

		day := record.Date.Format("2006-01-02")
		entry, ok := byDate[day]
		if !ok {
			entry = &DailySpend{Date: day, Total: decimal.Zero}
			byDate[day] = entry
		}
		entry.Total = entry.Total.Add(*record.PaymentTotal)
		entry.Count++
	}

	if analysis.Reservations > 0 {
		analysis.MatchRate = float64(analysis.Matched) / float64(analysis.Reservations) * 100
	}
	for _, entry := range byDate {
		analysis.ByDate = append(analysis.ByDate, *entry)
	}
	sort.Slice(analysis.ByDate, func(i, j int) bool {
		return analysis.ByDate[i].Date < analysis.ByDate[j].Date
	})
	return analysis
}
