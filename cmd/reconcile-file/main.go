// reconcile-file runs one full reconciliation pass without the HTTP layer:
// it reads a POS order export and a booking workbook, matches them, prints
// the pass statistics and writes the matched records to a styled workbook.
//
// Usage (from backend directory):
//   go run ./cmd/reconcile-file orders.xlsx reservations.xlsx out.xlsx
//
// VOCAB_FILE and LOG_LEVEL apply the same way as for the server.
package main

import (
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/ingest"
	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/reports"
	"bitbucket.org/mmdatafocus/resmatch_backend/workflow"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: reconcile-file <orders.xlsx> <reservations.xlsx> <out.xlsx>")
		os.Exit(2)
	}
	orderPath, reservationPath, outPath := os.Args[1], os.Args[2], os.Args[3]

	logger := config.GetLogger()
	sess := workflow.NewSession(config.GetVocabulary())

	orderFile, err := os.Open(orderPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open orders: %v\n", err)
		os.Exit(1)
	}
	orders, err := ingest.ReadOrderWorkbook(orderFile, logger)
	orderFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse orders: %v\n", err)
		os.Exit(1)
	}
	sess.SetOrders(orders)

	reservationFile, err := os.Open(reservationPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open reservations: %v\n", err)
		os.Exit(1)
	}
	reservations, err := ingest.ReadReservationWorkbook(reservationFile, logger, time.Now())
	reservationFile.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse reservations: %v\n", err)
		os.Exit(1)
	}
	sess.SetReservations(reservations)

	stats, err := workflow.ProcessReconcileWorkflow(sess, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconcile: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("records=%d matched=%d unmatched=%d rate=%.1f%%\n",
		stats.Total, stats.Matched, stats.Unmatched, stats.MatchRate)
	for matchType, count := range stats.ByMatchType {
		fmt.Printf("  %s: %d\n", matchType, count)
	}

	matched := workflow.FilterRecords(sess, models.MatchStatusMatched, "")
	f, err := reports.WriteMatchedWorkbook(matched)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build workbook: %v\n", err)
		os.Exit(1)
	}
	if err := f.SaveAs(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "save %s: %v\n", outPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d matched records)\n", outPath, len(matched))
}
