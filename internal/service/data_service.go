package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/mapper"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgDataNotFound     = "Data not found"
	msgDataForbidden    = "Not authorized to access this data"
	msgDataNoUpdate     = "Not authorized to update this data"
	msgDataNoDelete     = "Not authorized to delete this data"
	msgBulkInvalid      = "Invalid data format for bulk upload"
	msgDateRevenueReqd  = "Please provide date and revenue"
	msgNegativeRevenue  = "Revenue cannot be negative"
	msgNegativeCosts    = "Costs cannot be negative"
	msgInvalidDataDate  = "Invalid date format"
	msgBulkEntryInvalid = "Entry %d: %s"
)

// ErrInvalidBulkFormat rejects a bulk upload whose entries are missing or not a list
var ErrInvalidBulkFormat = domain.NewValidationError(msgBulkInvalid)

// DataService manages a company's revenue history
type DataService struct {
	dataRepo *repository.RevenueDataRepository
	logger   *zap.Logger
}

// NewDataService creates a new data service instance
func NewDataService(dataRepo *repository.RevenueDataRepository, logger *zap.Logger) *DataService {
	return &DataService{
		dataRepo: dataRepo,
		logger:   logger,
	}
}

// Upload stores one entry for the caller's company
func (s *DataService) Upload(ctx context.Context, companyID, userID uuid.UUID, req *domain.RevenueDataRequest) (*domain.RevenueDataDTO, error) {
	point, verr := buildDataPoint(req)
	if verr != nil {
		return nil, verr
	}
	point.CompanyID = companyID
	point.UploadedBy = userID

	if err := s.dataRepo.Create(ctx, point); err != nil {
		return nil, fmt.Errorf("failed to create data entry: %w", err)
	}

	s.logger.Info("data entry uploaded",
		zap.String("data_id", point.ID.String()),
		zap.String("company_id", companyID.String()),
	)

	dto := mapper.ToRevenueDataDTO(point)
	return &dto, nil
}

// BulkUpload validates every entry first, then inserts them all in one transaction
func (s *DataService) BulkUpload(ctx context.Context, companyID, userID uuid.UUID, entries []domain.RevenueDataRequest) (int, error) {
	if len(entries) == 0 {
		return 0, ErrInvalidBulkFormat
	}

	points := make([]domain.RevenueDataPoint, 0, len(entries))
	for i := range entries {
		point, verr := buildDataPoint(&entries[i])
		if verr != nil {
			return 0, domain.NewValidationError(fmt.Sprintf(msgBulkEntryInvalid, i+1, verr.Message))
		}
		point.CompanyID = companyID
		point.UploadedBy = userID
		points = append(points, *point)
	}

	if err := s.dataRepo.CreateBatch(ctx, points); err != nil {
		return 0, fmt.Errorf("failed to bulk insert data: %w", err)
	}

	s.logger.Info("bulk data uploaded",
		zap.Int("count", len(points)),
		zap.String("company_id", companyID.String()),
	)
	return len(points), nil
}

// List returns the company's entries newest first
func (s *DataService) List(ctx context.Context, companyID uuid.UUID, filters domain.RevenueDataFilters) ([]domain.RevenueDataDTO, error) {
	points, err := s.dataRepo.List(ctx, companyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list data: %w", err)
	}
	return mapper.ToRevenueDataDTOs(points), nil
}

// GetByID returns one entry owned by the company
func (s *DataService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.RevenueDataDTO, error) {
	point, err := s.getOwned(ctx, companyID, id, msgDataForbidden)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToRevenueDataDTO(point)
	return &dto, nil
}

// Update applies a partial update after the ownership check
func (s *DataService) Update(ctx context.Context, companyID, id uuid.UUID, req *domain.UpdateRevenueDataRequest) (*domain.RevenueDataDTO, error) {
	point, err := s.getOwned(ctx, companyID, id, msgDataNoUpdate)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		d, err := domain.ParseDate(*req.Date)
		if err != nil {
			return nil, domain.NewFieldValidationError(msgInvalidDataDate, map[string]string{"date": msgInvalidDataDate})
		}
		point.Date = d
	}
	if req.Revenue != nil {
		if *req.Revenue < 0 {
			return nil, domain.NewFieldValidationError(msgNegativeRevenue, map[string]string{"revenue": msgNegativeRevenue})
		}
		point.Revenue = *req.Revenue
	}
	costs := req.Costs
	if costs == nil {
		costs = req.Expenses
	}
	if costs != nil {
		if *costs < 0 {
			return nil, domain.NewFieldValidationError(msgNegativeCosts, map[string]string{"costs": msgNegativeCosts})
		}
		point.Costs = *costs
	}
	if req.ProductCategory != nil {
		point.ProductCategory = strings.TrimSpace(*req.ProductCategory)
	}
	if req.Region != nil {
		point.Region = strings.TrimSpace(*req.Region)
	}
	if req.Notes != nil {
		point.Notes = *req.Notes
	}

	if err := s.dataRepo.Update(ctx, point); err != nil {
		return nil, fmt.Errorf("failed to update data entry: %w", err)
	}

	dto := mapper.ToRevenueDataDTO(point)
	return &dto, nil
}

// Delete removes an entry after the ownership check
func (s *DataService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, companyID, id, msgDataNoDelete); err != nil {
		return err
	}
	if err := s.dataRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete data entry: %w", err)
	}
	s.logger.Info("data entry deleted",
		zap.String("data_id", id.String()),
		zap.String("company_id", companyID.String()),
	)
	return nil
}

// Summary aggregates the company's history
func (s *DataService) Summary(ctx context.Context, companyID uuid.UUID) (*domain.RevenueSummaryDTO, error) {
	totals, err := s.dataRepo.Totals(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize data: %w", err)
	}
	dto := mapper.ToRevenueSummaryDTO(totals.Entries, totals.TotalRevenue, totals.TotalCosts, totals.FirstDate, totals.LastDate)
	return &dto, nil
}

func (s *DataService) getOwned(ctx context.Context, companyID, id uuid.UUID, forbidden string) (*domain.RevenueDataPoint, error) {
	point, err := s.dataRepo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFoundError(msgDataNotFound)
		}
		return nil, fmt.Errorf("failed to get data entry: %w", err)
	}
	if err := checkOwnership(companyID, point.CompanyID, forbidden); err != nil {
		s.logger.Warn("cross-company data access denied",
			zap.String("data_id", id.String()),
			zap.String("company_id", companyID.String()),
		)
		return nil, err
	}
	return point, nil
}

// buildDataPoint validates a request row and converts it to a model without owner fields
func buildDataPoint(req *domain.RevenueDataRequest) (*domain.RevenueDataPoint, *domain.Error) {
	if strings.TrimSpace(req.Date) == "" || req.Revenue == nil {
		return nil, domain.NewValidationError(msgDateRevenueReqd)
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, domain.NewFieldValidationError(msgInvalidDataDate, map[string]string{"date": msgInvalidDataDate})
	}
	if *req.Revenue < 0 {
		return nil, domain.NewFieldValidationError(msgNegativeRevenue, map[string]string{"revenue": msgNegativeRevenue})
	}
	var costs float64
	if c := req.CostValue(); c != nil {
		if *c < 0 {
			return nil, domain.NewFieldValidationError(msgNegativeCosts, map[string]string{"costs": msgNegativeCosts})
		}
		costs = *c
	}

	return &domain.RevenueDataPoint{
		Date:            date,
		Revenue:         *req.Revenue,
		Costs:           costs,
		ProductCategory: strings.TrimSpace(req.ProductCategory),
		Region:          strings.TrimSpace(req.Region),
		Notes:           req.Notes,
	}, nil
}
