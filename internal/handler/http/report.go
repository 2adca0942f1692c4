package http

import (
	"net/http"

	"github.com/tempora-hr/attendance-backend-go/internal/domain/report"
	"github.com/tempora-hr/attendance-backend-go/internal/handler/http/response"
)

// ReportHandler defines the report handler interface
type ReportHandler interface {
	MySummary(w http.ResponseWriter, r *http.Request)
	OrgStats(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// MySummary rolls up the authenticated employee's attendance over a range
func (h *reportHandlerImpl) MySummary(w http.ResponseWriter, r *http.Request) {
	employeeID := getEmployeeIDFromContext(r)
	if employeeID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" || endDate == "" {
		response.BadRequest(w, "start_date and end_date query parameters are required", nil)
		return
	}

	result, err := h.reportService.Summarize(r.Context(), employeeID, startDate, endDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// OrgStats returns the org-wide attendance picture for one day
func (h *reportHandlerImpl) OrgStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required", nil)
		return
	}

	result, err := h.reportService.OrgStats(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
