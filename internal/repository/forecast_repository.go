package repository

import (
	"context"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForecastRepository handles forecast data access operations
type ForecastRepository struct {
	db *gorm.DB
}

// NewForecastRepository creates a new forecast repository instance
func NewForecastRepository(db *gorm.DB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// Create persists a generated forecast
func (r *ForecastRepository) Create(ctx context.Context, forecast *domain.Forecast) error {
	return r.db.WithContext(ctx).Create(forecast).Error
}

// GetByID retrieves a forecast by its ID regardless of owner
func (r *ForecastRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Forecast, error) {
	var forecast domain.Forecast
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&forecast).Error
	if err != nil {
		return nil, err
	}
	return &forecast, nil
}

// List returns a company's forecasts, newest first
func (r *ForecastRepository) List(ctx context.Context, companyID uuid.UUID) ([]domain.Forecast, error) {
	var forecasts []domain.Forecast
	err := r.db.WithContext(ctx).
		Scopes(ForCompany(companyID)).
		Order("forecast_date DESC").
		Find(&forecasts).Error
	return forecasts, err
}

// Count returns the number of forecasts owned by a company
func (r *ForecastRepository) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Forecast{}).
		Scopes(ForCompany(companyID)).
		Count(&count).Error
	return count, err
}

// Delete removes a forecast
func (r *ForecastRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Forecast{}, "id = ?", id).Error
}
