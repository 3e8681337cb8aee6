package repository

import (
	"context"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportRepository handles report metadata
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns a company's reports, newest first
func (r *ReportRepository) List(ctx context.Context, companyID uuid.UUID) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.db.WithContext(ctx).
		Scopes(ForCompany(companyID)).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Report{}, "id = ?", id).Error
}
