package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"gorm.io/gorm"
)

// EconomicSnapshotRepository stores the global, append-only indicator history
type EconomicSnapshotRepository struct {
	db *gorm.DB
}

// NewEconomicSnapshotRepository creates a new snapshot repository instance
func NewEconomicSnapshotRepository(db *gorm.DB) *EconomicSnapshotRepository {
	return &EconomicSnapshotRepository{db: db}
}

// Create appends a snapshot
func (r *EconomicSnapshotRepository) Create(ctx context.Context, snapshot *domain.EconomicSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// CreateBatch appends several snapshots in one transaction
func (r *EconomicSnapshotRepository) CreateBatch(ctx context.Context, snapshots []domain.EconomicSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&snapshots, bulkInsertBatchSize).Error
	})
}

// InRange returns the snapshots dated within [start, end], oldest first
func (r *EconomicSnapshotRepository) InRange(ctx context.Context, start, end time.Time) ([]domain.EconomicSnapshot, error) {
	var snapshots []domain.EconomicSnapshot
	err := r.db.WithContext(ctx).
		Scopes(DateBetween("date", &start, &end)).
		Order("date ASC").
		Find(&snapshots).Error
	return snapshots, err
}

// Latest returns the most recent snapshot, or nil when none exist
func (r *EconomicSnapshotRepository) Latest(ctx context.Context) (*domain.EconomicSnapshot, error) {
	var snapshot domain.EconomicSnapshot
	err := r.db.WithContext(ctx).Order("date DESC").Order("created_at DESC").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
