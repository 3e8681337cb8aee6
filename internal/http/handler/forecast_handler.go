package handler

import (
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"go.uber.org/zap"
)

type ForecastHandler struct {
	forecastService *service.ForecastService
	responder       *Responder
	logger          *zap.Logger
}

func NewForecastHandler(forecastService *service.ForecastService, responder *Responder, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
		responder:       responder,
		logger:          logger,
	}
}

// Generate godoc
// @Summary Generate a forecast
// @Description Projects monthly revenue from the company's history. Needs at least three data points.
// @Tags Forecasts
// @Accept json
// @Produce json
// @Param request body domain.GenerateForecastRequest true "Forecast options"
// @Success 201 {object} domain.Envelope{data=domain.ForecastDTO}
// @Failure 400 {object} domain.Envelope
// @Failure 401 {object} domain.Envelope
// @Security BearerAuth
// @Router /forecasts [post]
func (h *ForecastHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.GenerateForecastRequest
	if err := decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	forecast, err := h.forecastService.Generate(r.Context(), userCtx.CompanyID, userCtx.UserID, &req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, forecast)
}

// List godoc
// @Summary List forecasts
// @Tags Forecasts
// @Produce json
// @Success 200 {object} domain.Envelope{data=[]domain.ForecastDTO}
// @Security BearerAuth
// @Router /forecasts [get]
func (h *ForecastHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	forecasts, err := h.forecastService.List(r.Context(), userCtx.CompanyID)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondList(w, len(forecasts), forecasts)
}

// Get godoc
// @Summary Get a forecast
// @Tags Forecasts
// @Produce json
// @Param id path string true "Forecast ID"
// @Success 200 {object} domain.Envelope{data=domain.ForecastDTO}
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /forecasts/{id} [get]
func (h *ForecastHandler) Get(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	forecast, err := h.forecastService.GetByID(r.Context(), userCtx.CompanyID, id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	respondData(w, http.StatusOK, forecast)
}

// Delete godoc
// @Summary Delete a forecast
// @Tags Forecasts
// @Produce json
// @Param id path string true "Forecast ID"
// @Success 200 {object} domain.Envelope
// @Failure 403 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /forecasts/{id} [delete]
func (h *ForecastHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	if err := h.forecastService.Delete(r.Context(), userCtx.CompanyID, id); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.logger.Info("forecast deleted",
		zap.String("forecast_id", id.String()),
		zap.String("company_id", userCtx.CompanyID.String()),
	)
	respondData(w, http.StatusOK, struct{}{})
}
