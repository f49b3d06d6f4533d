package ingest

import (
	"errors"
	"fmt"
	"io"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ReadReservationWorkbook runs every sheet of a booking workbook through
// schema detection and normalization, concatenating the results. A sheet
// that fails to normalize is skipped (per-sheet failures are recoverable);
// the call only errors when no sheet yields records. Records are tagged
// with their originating sheet name.
func ReadReservationWorkbook(r io.Reader, logger *logrus.Logger, now time.Time) ([]models.ReservationRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open reservation workbook: %w", err)
	}
	defer f.Close()

	var all []models.ReservationRecord
	var lastErr error
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue
		}
		sheet := models.RawSheet{Columns: rows[0], Rows: rows[1:]}
		records, err := models.NormalizeSheet(sheet, sheetName, now)
		if err != nil {
			lastErr = err
			logger.WithFields(logrus.Fields{
				"sheet": sheetName,
				"error": err.Error(),
			}).Debug("reservation sheet skipped")
			continue
		}
		all = append(all, records...)
	}

	if len(all) == 0 {
		if lastErr != nil && errors.Is(lastErr, utils.ErrorMissingColumns) {
			return nil, lastErr
		}
		return nil, utils.ErrorNoValidSheets
	}
	return all, nil
}
