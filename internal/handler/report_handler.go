package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bencana-service/internal/model"
	"bencana-service/internal/validate"
	"bencana-service/pkg/logger"
	"bencana-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportHandler serves CRUD operations over volcanic disaster reports.
type ReportHandler struct {
	db *gorm.DB
}

// NewReportHandler creates a ReportHandler backed by the given database.
func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

// ReportRequest defines the structure for report creation/update requests
type ReportRequest struct {
	MountainName   string `json:"nama_gunung"`
	ActivityStatus string `json:"status_aktivitas"`
	Recommendation string `json:"rekomendasi"`
	Report         string `json:"laporan"`
}

func (r *ReportRequest) rules() []validate.Rule {
	return []validate.Rule{
		validate.Required("nama_gunung", r.MountainName, "Nama Gunung is required"),
		validate.OneOf("status_aktivitas", r.ActivityStatus, model.ActivityStatuses, "Invalid status aktivitas"),
		validate.Required("rekomendasi", r.Recommendation, "Rekomendasi is required"),
		validate.Required("laporan", r.Report, "Laporan is required"),
	}
}

// List returns every report in store order. Optional page/limit query
// parameters paginate the result; without them the full table is returned.
func (h *ReportHandler) List(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("list")

	query := h.db
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit <= 0 {
			log.Warn("Invalid limit parameter", zap.String("value", limitParam))
		} else {
			page := 1
			if pageParam := c.QueryParam("page"); pageParam != "" {
				if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
					page = p
				}
			}
			query = query.Limit(limit).Offset((page - 1) * limit)
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var reports []model.DisasterReport
	if result := query.Find(&reports); result.Error != nil {
		log.Error("Failed to list reports", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	log.Info("Reports retrieved", zap.Int("count", len(reports)))
	return c.JSON(http.StatusOK, reports)
}

// Get returns a single report by id or 404 when no row matches.
func (h *ReportHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("get")
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var report model.DisasterReport
	result := h.db.First(&report, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Report not found", zap.String("report_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Data not found"})
		}
		log.Error("Failed to get report", zap.String("report_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	return c.JSON(http.StatusOK, report)
}

// Create validates the four report fields and inserts a new row. Validation
// runs before any store access; the created row is echoed back with its id.
func (h *ReportHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("create")

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if errs := validate.Run(req.rules()...); len(errs) > 0 {
		log.Warn("Report validation failed", zap.Int("violations", len(errs)))
		prometheus.RecordValidationError(c.Path())
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	report := model.DisasterReport{
		MountainName:   req.MountainName,
		ActivityStatus: req.ActivityStatus,
		Recommendation: req.Recommendation,
		Report:         req.Report,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.db.Create(&report); result.Error != nil {
		log.Error("Failed to create report",
			zap.String("mountain", req.MountainName),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	log.Info("Report created",
		zap.Uint("report_id", report.ID),
		zap.String("mountain", report.MountainName),
		zap.String("status", report.ActivityStatus))
	return c.JSON(http.StatusCreated, report)
}

// Update replaces all four mutable fields on the matching row. It reports
// success with the submitted data even when no row matched the id, mirroring
// the behavior clients already depend on. REST convention would be a 404.
func (h *ReportHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("update")
	id := c.Param("id")

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("report_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if errs := validate.Run(req.rules()...); len(errs) > 0 {
		log.Warn("Report validation failed", zap.String("report_id", id), zap.Int("violations", len(errs)))
		prometheus.RecordValidationError(c.Path())
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := h.db.Model(&model.DisasterReport{}).Where("id = ?", id).Updates(map[string]interface{}{
		"nama_gunung":      req.MountainName,
		"status_aktivitas": req.ActivityStatus,
		"rekomendasi":      req.Recommendation,
		"laporan":          req.Report,
	})
	if result.Error != nil {
		log.Error("Failed to update report", zap.String("report_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	log.Info("Report updated",
		zap.String("report_id", id),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{
		"id":               id,
		"nama_gunung":      req.MountainName,
		"status_aktivitas": req.ActivityStatus,
		"rekomendasi":      req.Recommendation,
		"laporan":          req.Report,
	})
}

// Delete removes the matching row. The id must parse as an integer; like
// Update, the response is a success message whether or not a row existed.
func (h *ReportHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("delete")
	id := c.Param("id")

	if errs := validate.Run(validate.Integer("id", id, "ID must be an integer")); len(errs) > 0 {
		log.Warn("Invalid report id", zap.String("report_id", id))
		prometheus.RecordValidationError(c.Path())
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": errs})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := h.db.Where("id = ?", id).Delete(&model.DisasterReport{})
	if result.Error != nil {
		log.Error("Failed to delete report", zap.String("report_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	log.Info("Report deleted",
		zap.String("report_id", id),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{"message": "Data deleted successfully"})
}

// Stats returns the number of reports per activity status plus the total.
func (h *ReportHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordReportOperation("stats")

	type statusCount struct {
		Status string
		Count  int64
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var rows []statusCount
	result := h.db.Model(&model.DisasterReport{}).
		Select("status_aktivitas AS status, COUNT(*) AS count").
		Group("status_aktivitas").
		Scan(&rows)
	if result.Error != nil {
		log.Error("Failed to aggregate report stats", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": result.Error.Error()})
	}

	stats := echo.Map{
		"total":   int64(0),
		"normal":  int64(0),
		"waspada": int64(0),
		"siaga":   int64(0),
		"awas":    int64(0),
	}
	var total int64
	for _, row := range rows {
		total += row.Count
		switch row.Status {
		case model.StatusNormal:
			stats["normal"] = row.Count
		case model.StatusWaspada:
			stats["waspada"] = row.Count
		case model.StatusSiaga:
			stats["siaga"] = row.Count
		case model.StatusAwas:
			stats["awas"] = row.Count
		}
	}
	stats["total"] = total

	return c.JSON(http.StatusOK, stats)
}
