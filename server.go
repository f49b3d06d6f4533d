package main

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/resmatch_backend/config"
	"bitbucket.org/mmdatafocus/resmatch_backend/ingest"
	"bitbucket.org/mmdatafocus/resmatch_backend/models"
	"bitbucket.org/mmdatafocus/resmatch_backend/reports"
	"bitbucket.org/mmdatafocus/resmatch_backend/utils"
	"bitbucket.org/mmdatafocus/resmatch_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const defaultPort = "8080"

var validate = validator.New()

type manualMatchRequest struct {
	OrderIDs []int64 `json:"orderIds" validate:"required,min=1,dive,gt=0"`
}

// recordView is the wire shape of one merged record.
type recordView struct {
	RecordID       int64  `json:"recordId"`
	Date           string `json:"date"`
	ServicePeriod  string `json:"servicePeriod"`
	TableLabel     string `json:"tableLabel"`
	BookerIdentity string `json:"bookerIdentity"`
	CustomerName   string `json:"customerName,omitempty"`
	Handler        string `json:"handler,omitempty"`
	PartySize      string `json:"partySize,omitempty"`
	ReservedTime   string `json:"reservedTime,omitempty"`
	SourceSheet    string `json:"sourceSheet,omitempty"`
	OrderID        *int64 `json:"orderId,omitempty"`
	OrderTimestamp string `json:"orderTimestamp,omitempty"`
	PaymentTotal   string `json:"paymentTotal,omitempty"`
	PaymentMethod  string `json:"paymentMethod,omitempty"`
	MatchType      string `json:"matchType"`
	MatchStatus    string `json:"matchStatus"`
}

type orderView struct {
	OrderID       int64  `json:"orderId"`
	BusinessDate  string `json:"businessDate"`
	OrderTime     string `json:"orderTimestamp,omitempty"`
	TableLabel    string `json:"tableLabel"`
	PaymentTotal  string `json:"paymentTotal,omitempty"`
	PaymentMethod string `json:"paymentMethod"`
	ServicePeriod string `json:"servicePeriod"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()
	registry := workflow.NewSessionRegistry()

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS"))
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")

	api.POST("/session", func(c *gin.Context) {
		sess := registry.Create(config.GetVocabulary())
		c.JSON(http.StatusCreated, gin.H{"sessionId": sess.ID})
	})

	api.POST("/session/:id/orders", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		file, err := openUpload(c)
		if err != nil {
			return
		}
		defer file.Close()

		orders, err := ingest.ReadOrderWorkbook(file, logger)
		if err != nil {
			config.LogError(logger, "server.go", "uploadOrders", "ReadOrderWorkbook", sess.ID, err)
			status := http.StatusBadRequest
			if !errors.Is(err, utils.ErrorMissingColumns) {
				status = http.StatusUnprocessableEntity
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		sess.SetOrders(orders)
		c.JSON(http.StatusOK, gin.H{"orders": len(orders)})
	})

	api.POST("/session/:id/reservations", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		file, err := openUpload(c)
		if err != nil {
			return
		}
		defer file.Close()

		records, err := ingest.ReadReservationWorkbook(file, logger, time.Now())
		if err != nil {
			config.LogError(logger, "server.go", "uploadReservations", "ReadReservationWorkbook", sess.ID, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sess.SetReservations(records)
		c.JSON(http.StatusOK, gin.H{"reservations": len(records)})
	})

	api.POST("/session/:id/reconcile", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		if len(sess.Orders) == 0 || len(sess.Reservations) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "upload order and reservation workbooks first"})
			return
		}
		stats, err := workflow.ProcessReconcileWorkflow(sess, logger)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	api.GET("/session/:id/records", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		records := workflow.FilterRecords(sess, statusParam(c), c.Query("search"))
		views := make([]recordView, 0, len(records))
		for _, record := range records {
			views = append(views, viewOfRecord(record))
		}
		c.JSON(http.StatusOK, gin.H{"total": len(views), "records": views})
	})

	api.DELETE("/session/:id/records/:recordId/match", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		recordID, ok := recordIDFrom(c)
		if !ok {
			return
		}
		if err := workflow.RemoveMatch(sess, recordID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOfRecord(sess.FindRecord(recordID)))
	})

	api.POST("/session/:id/records/:recordId/match", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		recordID, ok := recordIDFrom(c)
		if !ok {
			return
		}
		var req manualMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		if err := workflow.ConfirmManualMatch(sess, recordID, req.OrderIDs); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, utils.ErrorRecordNotFound) || errors.Is(err, utils.ErrorOrderNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewOfRecord(sess.FindRecord(recordID)))
	})

	api.GET("/session/:id/candidates", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		var orders []*models.OrderRecord
		if raw := c.Query("date"); raw != "" {
			date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			orders = workflow.OrdersOnDate(sess, date)
		} else {
			recordID, ok := recordIDFromQuery(c)
			if !ok {
				return
			}
			var err error
			orders, err = workflow.ManualMatchCandidates(sess, recordID)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
		}
		views := make([]orderView, 0, len(orders))
		for _, order := range orders {
			views = append(views, viewOfOrder(order))
		}
		c.JSON(http.StatusOK, gin.H{"total": len(views), "orders": views})
	})

	api.GET("/session/:id/analysis", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		booker := strings.TrimSpace(c.Query("booker"))
		if booker == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "booker query parameter is required"})
			return
		}
		c.JSON(http.StatusOK, workflow.AnalyzeBooker(sess, booker))
	})

	api.GET("/session/:id/export", func(c *gin.Context) {
		sess, ok := sessionFrom(c, registry)
		if !ok {
			return
		}
		records := workflow.FilterRecords(sess, models.MatchStatusMatched, c.Query("search"))
		if len(records) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no matched records to export"})
			return
		}
		f, err := reports.WriteMatchedWorkbook(records)
		if err != nil {
			config.LogError(logger, "server.go", "export", "WriteMatchedWorkbook", sess.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		filename := reports.ExportFilename(strings.TrimSpace(c.Query("search")), time.Now().Format("20060102_150405"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
		if err := f.Write(c.Writer); err != nil {
			config.LogError(logger, "server.go", "export", "excelize write", sess.ID, err)
		}
	})

	if err := r.Run(":" + port); err != nil {
		config.LogError(logger, "server.go", "main", "gin run", port, err)
		os.Exit(1)
	}
}

func sessionFrom(c *gin.Context, registry *workflow.SessionRegistry) (*workflow.Session, bool) {
	sess, err := registry.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return sess, true
}

func openUpload(c *gin.Context) (multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, err
	}
	return file, nil
}

func recordIDFrom(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("recordId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recordId must be an integer"})
		return 0, false
	}
	return id, true
}

func recordIDFromQuery(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Query("recordId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recordId query parameter must be an integer"})
		return 0, false
	}
	return id, true
}

func statusParam(c *gin.Context) models.MatchStatus {
	switch strings.ToLower(strings.TrimSpace(c.Query("status"))) {
	case "matched":
		return models.MatchStatusMatched
	case "unmatched":
		return models.MatchStatusUnmatched
	default:
		return ""
	}
}

func viewOfRecord(record *models.MatchedRecord) recordView {
	view := recordView{
		RecordID:       record.RecordID,
		ServicePeriod:  string(record.ServicePeriod),
		TableLabel:     record.TableLabel,
		BookerIdentity: record.BookerIdentity,
		CustomerName:   record.CustomerName,
		Handler:        record.Handler,
		PartySize:      record.PartySize,
		ReservedTime:   record.ReservedTime,
		SourceSheet:    record.SourceSheet,
		OrderID:        record.OrderID,
		MatchType:      string(record.MatchType),
		MatchStatus:    string(record.MatchStatus()),
	}
	if !record.Date.IsZero() {
		view.Date = record.Date.Format("2006-01-02")
	}
	if record.OrderTimestamp != nil {
		view.OrderTimestamp = record.OrderTimestamp.Format("2006-01-02 15:04:05")
	}
	if record.PaymentTotal != nil {
		view.PaymentTotal = record.PaymentTotal.StringFixed(2)
	}
	if record.PaymentMethodText != nil {
		view.PaymentMethod = *record.PaymentMethodText
	}
	return view
}

func viewOfOrder(order *models.OrderRecord) orderView {
	view := orderView{
		OrderID:       order.ID,
		BusinessDate:  order.BusinessDateRaw,
		TableLabel:    order.TableLabel,
		PaymentMethod: order.PaymentMethodText,
		ServicePeriod: string(order.ServicePeriod),
	}
	if order.OrderTimestamp != nil {
		view.OrderTime = order.OrderTimestamp.Format("2006-01-02 15:04:05")
	}
	if order.PaymentTotal != nil {
		view.PaymentTotal = order.PaymentTotal.StringFixed(2)
	}
	return view
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
