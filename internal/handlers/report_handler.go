package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tallybook/internal/reports"
	"tallybook/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the dashboard and period reports.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type reportQuery struct {
	Days int `form:"days" binding:"omitempty,report_period"`
}

func (q reportQuery) days() int {
	if q.Days == 0 {
		return reports.DefaultPeriod
	}
	return q.Days
}

// GetDashboard returns the overview for today.
// @Summary     Dashboard
// @Description Revenue windows, all-time totals, a 7-day trend, expense breakdown and low stock
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} reports.Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

// GetReport returns the period report.
// @Summary     Period report
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "7, 30 or 90 (default 30)"
// @Success     200 {object} reports.Report "Report"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	report, err := h.reportService.Report(c.Request.Context(), userID, q.days())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ExportReport returns the period report as a spreadsheet.
// @Summary     Export report
// @Tags        reports
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       days query int false "7, 30 or 90 (default 30)"
// @Success     200 {file} file "XLSX workbook"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/export [get]
func (h *ReportHandler) ExportReport(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	report, err := h.reportService.Report(c.Request.Context(), userID, q.days())
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Rendered to a buffer first so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := reports.WriteXLSX(&buf, *report); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("report-%s-%dd.xlsx", report.Summary.To, report.Summary.Days)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
