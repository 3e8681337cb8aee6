package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/forecast"
	"github.com/garmentiq/revenue-forecast-api/internal/mapper"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgForecastNotFound  = "Forecast not found"
	msgForecastForbidden = "Not authorized to access this forecast"
	msgForecastNoDelete  = "Not authorized to delete this forecast"
	msgForecastRequired  = "Please provide forecast type and number of months"
	msgNotEnoughHistory  = "Not enough historical data to generate forecast. Please add more data points."
	maxForecastMonths    = 60
)

// ForecastService generates and manages revenue forecasts
type ForecastService struct {
	forecastRepo *repository.ForecastRepository
	dataRepo     *repository.RevenueDataRepository
	snapshotRepo *repository.EconomicSnapshotRepository
	projector    *forecast.Projector
	now          func() time.Time
	logger       *zap.Logger
}

// NewForecastService creates a new forecast service instance
func NewForecastService(
	forecastRepo *repository.ForecastRepository,
	dataRepo *repository.RevenueDataRepository,
	snapshotRepo *repository.EconomicSnapshotRepository,
	projector *forecast.Projector,
	logger *zap.Logger,
) *ForecastService {
	return &ForecastService{
		forecastRepo: forecastRepo,
		dataRepo:     dataRepo,
		snapshotRepo: snapshotRepo,
		projector:    projector,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// Generate projects the company's recent history forward and stores the result
func (s *ForecastService) Generate(ctx context.Context, companyID, userID uuid.UUID, req *domain.GenerateForecastRequest) (*domain.ForecastDTO, error) {
	if req.ForecastType == "" || req.Months == 0 {
		return nil, domain.NewValidationError(msgForecastRequired)
	}
	forecastType := domain.ForecastType(req.ForecastType)
	if !forecastType.IsValid() {
		return nil, domain.NewFieldValidationError("Invalid forecast type",
			map[string]string{"forecastType": "Must be one of: short-term, medium-term, long-term"})
	}
	if req.Months < 1 || req.Months > maxForecastMonths {
		return nil, domain.NewFieldValidationError(
			fmt.Sprintf("Months must be between 1 and %d", maxForecastMonths),
			map[string]string{"months": fmt.Sprintf("Must be between 1 and %d", maxForecastMonths)})
	}

	points, err := s.dataRepo.Recent(ctx, companyID, forecast.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := make([]forecast.Observation, len(points))
	for i, p := range points {
		history[i] = forecast.Observation{Date: p.Date.UTC(), Revenue: p.Revenue}
	}

	series, err := s.projector.Project(history, req.Months)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientHistory) {
			return nil, domain.NewInsufficientDataError(msgNotEnoughHistory)
		}
		return nil, fmt.Errorf("failed to project revenue: %w", err)
	}

	factors := domain.ForecastFactors{
		EconomicIndicators: domain.FactorSetting{Included: req.IncludeEconomicIndicators},
		Seasonality:        domain.FactorSetting{Included: true},
	}
	if req.IncludeEconomicIndicators {
		factors.EconomicIndicators.Details = s.economicDetails(ctx)
	}

	now := s.now()
	record := &domain.Forecast{
		CompanyID:    companyID,
		ForecastDate: now,
		PeriodStart:  now,
		PeriodEnd:    now.AddDate(0, req.Months, 0),
		ForecastType: forecastType,
		ModelType:    domain.ModelEnsemble,
		ForecastData: series,
		Accuracy:     forecast.Backtest(history),
		Factors:      factors,
		CreatedBy:    userID,
	}
	if err := s.forecastRepo.Create(ctx, record); err != nil {
		return nil, mapper.FormatError("forecast", "create", err)
	}

	s.logger.Info("forecast generated",
		zap.String("forecast_id", record.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.Int("months", req.Months),
		zap.Int("history_points", len(history)),
		zap.String("accuracy_status", record.Accuracy.Status),
	)

	dto := mapper.ToForecastDTO(record)
	return &dto, nil
}

// economicDetails describes the latest stored indicators. Lookup failures are logged only.
func (s *ForecastService) economicDetails(ctx context.Context) map[string]string {
	snapshot, err := s.snapshotRepo.Latest(ctx)
	if err != nil {
		s.logger.Warn("failed to load latest economic snapshot", zap.Error(err))
		return map[string]string{"status": "unavailable"}
	}
	if snapshot == nil {
		return map[string]string{"status": "unavailable"}
	}
	return map[string]string{
		"exchangeRate": strconv.FormatFloat(snapshot.ExchangeRate, 'f', 2, 64),
		"inflation":    strconv.FormatFloat(snapshot.Inflation, 'f', 2, 64),
		"cottonPrice":  strconv.FormatFloat(snapshot.CottonPrice, 'f', 2, 64),
		"asOf":         snapshot.Date.UTC().Format("2006-01-02"),
		"source":       snapshot.Source,
	}
}

// List returns the company's forecasts newest first
func (s *ForecastService) List(ctx context.Context, companyID uuid.UUID) ([]domain.ForecastDTO, error) {
	forecasts, err := s.forecastRepo.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	return mapper.ToForecastDTOs(forecasts), nil
}

// GetByID returns one forecast owned by the company
func (s *ForecastService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.ForecastDTO, error) {
	f, err := s.getOwned(ctx, companyID, id, msgForecastForbidden)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToForecastDTO(f)
	return &dto, nil
}

// Delete removes a forecast after the ownership check
func (s *ForecastService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, companyID, id, msgForecastNoDelete); err != nil {
		return err
	}
	if err := s.forecastRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete forecast: %w", err)
	}
	s.logger.Info("forecast deleted",
		zap.String("forecast_id", id.String()),
		zap.String("company_id", companyID.String()),
	)
	return nil
}

// getOwned loads a forecast and checks it belongs to the company
func (s *ForecastService) getOwned(ctx context.Context, companyID, id uuid.UUID, forbidden string) (*domain.Forecast, error) {
	f, err := s.forecastRepo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFoundError(msgForecastNotFound)
		}
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}
	if err := checkOwnership(companyID, f.CompanyID, forbidden); err != nil {
		s.logger.Warn("cross-company forecast access denied",
			zap.String("forecast_id", id.String()),
			zap.String("company_id", companyID.String()),
		)
		return nil, err
	}
	return f, nil
}
