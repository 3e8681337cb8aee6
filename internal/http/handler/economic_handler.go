package handler

import (
	"net/http"

	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EconomicHandler serves market and macroeconomic data. Everything here is shared across companies.
type EconomicHandler struct {
	economicService *service.EconomicService
	responder       *Responder
	logger          *zap.Logger
}

func NewEconomicHandler(economicService *service.EconomicService, responder *Responder, logger *zap.Logger) *EconomicHandler {
	return &EconomicHandler{
		economicService: economicService,
		responder:       responder,
		logger:          logger,
	}
}

// Live godoc
// @Summary Live economic dashboard
// @Description Current exchange rate, inflation, cotton price and market data. Each call stores a snapshot.
// @Tags Economic
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.LiveEconomicData}
// @Security BearerAuth
// @Router /economic/live [get]
func (h *EconomicHandler) Live(w http.ResponseWriter, r *http.Request) {
	data, err := h.economicService.Live(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	respondData(w, http.StatusOK, data)
}

// Historical godoc
// @Summary Historical economic snapshots
// @Tags Economic
// @Produce json
// @Param startDate query string true "Range start"
// @Param endDate query string true "Range end"
// @Success 200 {object} domain.Envelope{data=[]domain.EconomicSnapshot}
// @Failure 400 {object} domain.Envelope
// @Security BearerAuth
// @Router /economic/historical [get]
func (h *EconomicHandler) Historical(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := h.economicService.Historical(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	respondData(w, http.StatusOK, data)
}

// ExchangeRates godoc
// @Summary Exchange rates
// @Tags Economic
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.ExchangeRates}
// @Security BearerAuth
// @Router /economic/exchange-rates [get]
func (h *EconomicHandler) ExchangeRates(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.economicService.ExchangeRates(r.Context()))
}

// Indicators godoc
// @Summary Macroeconomic indicators
// @Tags Economic
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.EconomicIndicators}
// @Security BearerAuth
// @Router /economic/indicators [get]
func (h *EconomicHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.economicService.Indicators(r.Context()))
}

// IndustryData godoc
// @Summary Garment industry data
// @Tags Economic
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.IndustryData}
// @Security BearerAuth
// @Router /economic/industry-data [get]
func (h *EconomicHandler) IndustryData(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.economicService.IndustryData(r.Context()))
}

// SupplyChain godoc
// @Summary Supply chain status
// @Tags Economic
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.SupplyChainStatus}
// @Security BearerAuth
// @Router /economic/supply-chain [get]
func (h *EconomicHandler) SupplyChain(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.economicService.SupplyChain(r.Context()))
}

// TradePolicy godoc
// @Summary Trade policy updates
// @Tags Economic
// @Produce json
// @Success 200 {object} domain.Envelope{data=domain.TradePolicy}
// @Security BearerAuth
// @Router /economic/trade-policy [get]
func (h *EconomicHandler) TradePolicy(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.economicService.TradePolicy(r.Context()))
}

// Weather godoc
// @Summary Weather outlook
// @Description The region comes from the path or the region query parameter and defaults to western
// @Tags Economic
// @Produce json
// @Param region path string false "Region"
// @Param region query string false "Region"
// @Success 200 {object} domain.Envelope{data=domain.WeatherPatterns}
// @Security BearerAuth
// @Router /economic/weather [get]
// @Router /economic/weather/{region} [get]
func (h *EconomicHandler) Weather(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	if region == "" {
		region = r.URL.Query().Get("region")
	}
	respondData(w, http.StatusOK, h.economicService.Weather(r.Context(), region))
}

// CaptureSnapshot godoc
// @Summary Capture an economic snapshot
// @Description Stores the current key indicators immediately. Admins only.
// @Tags Economic
// @Produce json
// @Success 201 {object} domain.Envelope{data=domain.EconomicSnapshot}
// @Failure 403 {object} domain.Envelope
// @Security BearerAuth
// @Router /economic/snapshots [post]
func (h *EconomicHandler) CaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.economicService.CaptureSnapshot(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, snapshot)
}
