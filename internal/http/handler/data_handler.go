package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"go.uber.org/zap"
)

type DataHandler struct {
	dataService *service.DataService
	responder   *Responder
	logger      *zap.Logger
}

func NewDataHandler(dataService *service.DataService, responder *Responder, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		dataService: dataService,
		responder:   responder,
		logger:      logger,
	}
}

// List godoc
// @Summary List revenue data
// @Description Returns the company's revenue entries, newest first
// @Tags Data
// @Produce json
// @Param startDate query string false "Earliest date (inclusive)"
// @Param endDate query string false "Latest date (inclusive)"
// @Param productCategory query string false "Filter by product category"
// @Param region query string false "Filter by region"
// @Success 200 {object} domain.Envelope{data=[]domain.RevenueDataDTO}
// @Failure 400 {object} domain.Envelope
// @Failure 401 {object} domain.Envelope
// @Security BearerAuth
// @Router /data [get]
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	filters, err := parseDataFilters(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	data, err := h.dataService.List(r.Context(), userCtx.CompanyID, filters)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondList(w, len(data), data)
}

func parseDataFilters(r *http.Request) (domain.RevenueDataFilters, error) {
	q := r.URL.Query()
	filters := domain.RevenueDataFilters{
		ProductCategory: strings.TrimSpace(q.Get("productCategory")),
		Region:          strings.TrimSpace(q.Get("region")),
	}

	if v := q.Get("startDate"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			return filters, domain.NewFieldValidationError("Invalid start date", map[string]string{"startDate": "Must be a valid date"})
		}
		filters.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			return filters, domain.NewFieldValidationError("Invalid end date", map[string]string{"endDate": "Must be a valid date"})
		}
		filters.EndDate = &t
	}
	return filters, nil
}

// Summary godoc
// @Summary Revenue totals
// @Tags Data
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.RevenueSummaryDTO}
// @Security BearerAuth
// @Router /data/summary [get]
func (h *DataHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	summary, err := h.dataService.Summary(r.Context(), userCtx.CompanyID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, summary)
}

// Create godoc
// @Summary Upload one revenue entry
// @Tags Data
// @Accept json
// @Produce json
// @Param request body domain.RevenueDataRequest true "Revenue entry"
// @Success 201 {object} domain.Envelope{data=domain.RevenueDataDTO}
// @Failure 400 {object} domain.Envelope
// @Security BearerAuth
// @Router /data [post]
func (h *DataHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.RevenueDataRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	data, err := h.dataService.Upload(r.Context(), userCtx.CompanyID, userCtx.UserID, &req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, data)
}

// Bulk godoc
// @Summary Upload many revenue entries
// @Description All entries are validated first and inserted together; one bad entry rejects the batch
// @Tags Data
// @Accept json
// @Produce json
// @Param request body domain.BulkUploadRequest true "Revenue entries"
// @Success 201 {object} domain.Envelope
// @Failure 400 {object} domain.Envelope
// @Security BearerAuth
// @Router /data/bulk [post]
func (h *DataHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.BulkUploadRequest
	if err := decode(r, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			err = service.ErrInvalidBulkFormat
		}
		h.responder.Error(w, r, err)
		return
	}

	count, err := h.dataService.BulkUpload(r.Context(), userCtx.CompanyID, userCtx.UserID, req.DataEntries)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, domain.Envelope{Success: true, Count: &count})
}

// Get godoc
// @Summary Get a revenue entry
// @Tags Data
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.Envelope{data=domain.RevenueDataDTO}
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /data/{id} [get]
func (h *DataHandler) Get(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	data, err := h.dataService.GetByID(r.Context(), userCtx.CompanyID, id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, data)
}

// Update godoc
// @Summary Update a revenue entry
// @Tags Data
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.UpdateRevenueDataRequest true "Fields to change"
// @Success 200 {object} domain.Envelope{data=domain.RevenueDataDTO}
// @Failure 400 {object} domain.Envelope
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /data/{id} [put]
func (h *DataHandler) Update(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	var req domain.UpdateRevenueDataRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	data, err := h.dataService.Update(r.Context(), userCtx.CompanyID, id, &req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, data)
}

// Delete godoc
// @Summary Delete a revenue entry
// @Tags Data
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.Envelope
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /data/{id} [delete]
func (h *DataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if err := h.dataService.Delete(r.Context(), userCtx.CompanyID, id); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, struct{}{})
}
