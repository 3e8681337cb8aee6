package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bulkInsertBatchSize bounds the rows per INSERT statement in CreateBatch
const bulkInsertBatchSize = 100

// RevenueTotals are the aggregates behind the data summary
type RevenueTotals struct {
	Entries      int64
	TotalRevenue float64
	TotalCosts   float64
	FirstDate    *time.Time
	LastDate     *time.Time
}

// RevenueDataRepository handles revenue data access operations
type RevenueDataRepository struct {
	db *gorm.DB
}

// NewRevenueDataRepository creates a new revenue data repository instance
func NewRevenueDataRepository(db *gorm.DB) *RevenueDataRepository {
	return &RevenueDataRepository{db: db}
}

// Create inserts a single data point
func (r *RevenueDataRepository) Create(ctx context.Context, point *domain.RevenueDataPoint) error {
	return r.db.WithContext(ctx).Create(point).Error
}

// CreateBatch inserts all points in one transaction. Either every row is stored or none.
func (r *RevenueDataRepository) CreateBatch(ctx context.Context, points []domain.RevenueDataPoint) error {
	if len(points) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&points, bulkInsertBatchSize).Error
	})
}

// GetByID retrieves a data point by its ID regardless of owner
func (r *RevenueDataRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RevenueDataPoint, error) {
	var point domain.RevenueDataPoint
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&point).Error
	if err != nil {
		return nil, err
	}
	return &point, nil
}

// List returns a company's data points, newest first
func (r *RevenueDataRepository) List(ctx context.Context, companyID uuid.UUID, filters domain.RevenueDataFilters) ([]domain.RevenueDataPoint, error) {
	query := r.db.WithContext(ctx).
		Scopes(ForCompany(companyID), DateBetween("date", filters.StartDate, filters.EndDate))

	if filters.ProductCategory != "" {
		query = query.Where("product_category = ?", filters.ProductCategory)
	}
	if filters.Region != "" {
		query = query.Where("region = ?", filters.Region)
	}

	var points []domain.RevenueDataPoint
	err := query.Order("date DESC").Order("created_at DESC").Find(&points).Error
	return points, err
}

// Recent returns up to limit of the company's latest points in ascending date order
func (r *RevenueDataRepository) Recent(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.RevenueDataPoint, error) {
	var points []domain.RevenueDataPoint
	err := r.db.WithContext(ctx).
		Scopes(ForCompany(companyID)).
		Order("date DESC").
		Limit(limit).
		Find(&points).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// Update saves all fields of an existing data point
func (r *RevenueDataRepository) Update(ctx context.Context, point *domain.RevenueDataPoint) error {
	return r.db.WithContext(ctx).Save(point).Error
}

// Delete removes a data point
func (r *RevenueDataRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.RevenueDataPoint{}, "id = ?", id).Error
}

// Totals aggregates a company's history
func (r *RevenueDataRepository) Totals(ctx context.Context, companyID uuid.UUID) (*RevenueTotals, error) {
	var agg struct {
		Entries      int64
		TotalRevenue float64
		TotalCosts   float64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.RevenueDataPoint{}).
		Scopes(ForCompany(companyID)).
		Select("COUNT(*) as entries, COALESCE(SUM(revenue), 0) as total_revenue, COALESCE(SUM(costs), 0) as total_costs").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	totals := &RevenueTotals{
		Entries:      agg.Entries,
		TotalRevenue: agg.TotalRevenue,
		TotalCosts:   agg.TotalCosts,
	}
	if agg.Entries == 0 {
		return totals, nil
	}

	// MIN/MAX over a date column come back as text on sqlite, so read the boundary rows instead
	first, err := r.boundary(ctx, companyID, "date ASC")
	if err != nil {
		return nil, err
	}
	last, err := r.boundary(ctx, companyID, "date DESC")
	if err != nil {
		return nil, err
	}
	totals.FirstDate = first
	totals.LastDate = last
	return totals, nil
}

func (r *RevenueDataRepository) boundary(ctx context.Context, companyID uuid.UUID, order string) (*time.Time, error) {
	var point domain.RevenueDataPoint
	err := r.db.WithContext(ctx).
		Scopes(ForCompany(companyID)).
		Order(order).
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := point.Date
	return &d, nil
}
