package ingest

import (
	"fmt"
	"io"
	"strings"

	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	settledStatus           = "已结账"
	businessDatePlaceholder = "--"
)

// The POS export shifts its header row between versions, so candidate
// offsets are probed until a row carrying both required columns appears.
var headerRowOffsets = []int{2, 1, 0}

var (
	businessDateKeywords = []string{"营业日期", "日期", "date"}
	tableLabelKeywords   = []string{"桌牌号", "桌号", "台号"}
)

type orderColumns struct {
	date       int
	table      int
	status     int
	timestamp  int
	settlement int
}

// ReadOrderWorkbook parses a POS order export. Rows are filtered to settled
// orders with a real business date; payment totals and timestamps are
// parsed leniently (failures null the field, they never drop the row).
func ReadOrderWorkbook(r io.Reader, logger *logrus.Logger) ([]models.OrderRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open order workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("order workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read order sheet %s: %w", sheets[0], err)
	}

	headerRow, cols, err := locateOrderHeader(rows)
	if err != nil {
		return nil, err
	}

	var orders []models.OrderRecord
	for _, row := range rows[headerRow+1:] {
		businessDate := cellAt(row, cols.date)
		if businessDate == "" || businessDate == businessDatePlaceholder {
			continue
		}
		if cols.status >= 0 && cellAt(row, cols.status) != settledStatus {
			continue
		}

		timestamp := models.ParseTimestamp(cellAt(row, cols.timestamp))
		settlement := cellAt(row, cols.settlement)
		order := models.OrderRecord{
			BusinessDateRaw:   businessDate,
			BusinessDate:      models.ParseTimestamp(firstField(businessDate)),
			OrderTimestamp:    timestamp,
			TableLabel:        cellAt(row, cols.table),
			PaymentTotal:      models.ExtractPaymentTotal(settlement),
			PaymentMethodText: settlement,
			ServicePeriod:     models.ClassifyServicePeriod(timestamp),
		}
		orders = append(orders, order)
	}

	logger.WithFields(logrus.Fields{
		"sheet":  sheets[0],
		"orders": len(orders),
	}).Debug("order workbook parsed")
	return orders, nil
}

func locateOrderHeader(rows [][]string) (int, orderColumns, error) {
	for _, offset := range headerRowOffsets {
		if offset >= len(rows) {
			continue
		}
		cols := detectOrderColumns(rows[offset])
		if cols.date >= 0 && cols.table >= 0 {
			return offset, cols, nil
		}
	}
	missing := []string{
		strings.Join(businessDateKeywords, "/"),
		strings.Join(tableLabelKeywords, "/"),
	}
	return 0, orderColumns{}, fmt.Errorf("%w: %s", utils.ErrorMissingColumns, strings.Join(missing, ", "))
}

func detectOrderColumns(header []string) orderColumns {
	cols := orderColumns{date: -1, table: -1, status: -1, timestamp: -1, settlement: -1}
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case cols.date < 0 && containsAnyKeyword(name, businessDateKeywords):
			cols.date = i
		case cols.table < 0 && containsAnyKeyword(name, tableLabelKeywords):
			cols.table = i
		case cols.status < 0 && strings.Contains(name, "订单状态"):
			cols.status = i
		case cols.timestamp < 0 && strings.Contains(name, "下单时间"):
			cols.timestamp = i
		case cols.settlement < 0 && strings.Contains(name, "结账方式"):
			cols.settlement = i
		}
	}
	return cols
}

func containsAnyKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func firstField(raw string) string {
	if fields := strings.Fields(raw); len(fields) > 0 {
		return fields[0]
	}
	return raw
}
