package workflow

import (
	"fmt"
	"sort"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"github.com/sirupsen/logrus"
)

// ReconcileStats summarizes one reconcile pass.
type ReconcileStats struct {
	Total       int                      `json:"total"`
	Matched     int                      `json:"matched"`
	Unmatched   int                      `json:"unmatched"`
	ByMatchType map[models.MatchType]int `json:"byMatchType"`
	MatchRate   float64                  `json:"matchRate"`
}

// ProcessReconcileWorkflow runs the full reconciliation pass over the
// session's reservations and orders and publishes the merged record set on
// the session. Every candidate in a reservation's bucket is compared (no
// short-circuit on first hit): a table reused later the same day
// legitimately fans one reservation out into several records. The pass is
// deterministic, so rerunning it on unchanged inputs rebuilds the same set.
// An unexpected panic is reported as a failure without publishing a
// partial set.
func ProcessReconcileWorkflow(sess *Session, logger *logrus.Logger) (stats ReconcileStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reconcile pass failed: %v", r)
			config.LogError(logger, "reconcileWorkflow.go", "ProcessReconcileWorkflow", "recovered panic", nil, err)
		}
	}()

	normalizer := models.NewIdentityNormalizer(sess.Vocabulary)
	index := BuildCandidateIndex(sess.Orders)

	merged := make([]*models.MatchedRecord, 0, len(sess.Reservations))
	for i := range sess.Reservations {
		reservation := &sess.Reservations[i]
		reservation.BookerIdentity = normalizer.Normalize(reservation.BookerName)

		candidates := index.Lookup(reservation.Date, reservation.ServicePeriod)

		matched := false
		for _, order := range candidates {
			ok, matchType := MatchTableLabels(sess.Vocabulary, reservation.TableLabel, order.TableLabel)
			if !ok {
				continue
			}
			record := projectReservation(reservation)
			record.AttachOrder(order, matchType)
			merged = append(merged, record)
			matched = true
		}
		if !matched {
			merged = append(merged, projectReservation(reservation))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].Date.Equal(merged[j].Date) {
			return merged[i].Date.Before(merged[j].Date)
		}
		return merged[i].TableLabel < merged[j].TableLabel
	})

	sess.nextRecordID = 0
	for _, record := range merged {
		record.RecordID = sess.nextID()
	}
	sess.Merged = merged

	return ComputeStats(merged), nil
}

func projectReservation(r *models.ReservationRecord) *models.MatchedRecord {
	return &models.MatchedRecord{
		Date:           r.Date,
		ServicePeriod:  r.ServicePeriod,
		TableLabel:     r.TableLabel,
		BookerIdentity: r.BookerIdentity,
		CustomerName:   r.CustomerName,
		Handler:        r.Handler,
		PartySize:      r.PartySize,
		ReservedTime:   r.ReservedTime,
		SourceSheet:    r.SourceSheet,
		MatchType:      models.MatchTypeUnmatched,
	}
}

func ComputeStats(records []*models.MatchedRecord) ReconcileStats {
	stats := ReconcileStats{
		Total:       len(records),
		ByMatchType: make(map[models.MatchType]int),
	}
	for _, record := range records {
		stats.ByMatchType[record.MatchType]++
		if record.OrderLinked() {
			stats.Matched++
		} else {
			stats.Unmatched++
		}
	}
	if stats.Total > 0 {
		stats.MatchRate = float64(stats.Matched) / float64(stats.Total) * 100
	}
	return stats
}
