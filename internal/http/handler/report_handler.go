package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	responder     *Responder
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, responder *Responder, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		responder:     responder,
		logger:        logger,
	}
}

// Generate godoc
// @Summary Generate a report
// @Description Renders a forecast as CSV and stores it
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body domain.GenerateReportRequest true "Report options"
// @Success 201 {object} domain.Envelope{data=domain.ReportDTO}
// @Failure 400 {object} domain.Envelope
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.GenerateReportRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	report, err := h.reportService.Generate(r.Context(), userCtx.CompanyID, userCtx.UserID, &req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, report)
}

// List godoc
// @Summary List reports
// @Tags Reports
// @Produce json
// @Success 200 {object} domain.Envelope{data=[]domain.ReportDTO}
// @Security BearerAuth
// @Router /reports [get]
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	reports, err := h.reportService.List(r.Context(), userCtx.CompanyID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondList(w, len(reports), reports)
}

// Get godoc
// @Summary Get report metadata
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} domain.Envelope{data=domain.ReportDTO}
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	report, err := h.reportService.GetByID(r.Context(), userCtx.CompanyID, id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, report)
}

// Download godoc
// @Summary Download a report
// @Tags Reports
// @Produce text/csv
// @Param id path string true "Report ID"
// @Success 200
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /reports/{id}/download [get]
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	reader, report, err := h.reportService.Download(r.Context(), userCtx.CompanyID, id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Name))
	w.Header().Set("Content-Type", report.ContentType)
	if report.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(report.SizeBytes, 10))
	}

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("report download interrupted", zap.String("report_id", id.String()), zap.Error(err))
	}
}

// Delete godoc
// @Summary Delete a report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} domain.Envelope
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if err := h.reportService.Delete(r.Context(), userCtx.CompanyID, id); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, struct{}{})
}
