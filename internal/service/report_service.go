package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/mapper"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/garmentiq/revenue-forecast-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	msgReportNotFound  = "Report not found"
	msgReportForbidden = "Not authorized to access this report"
	msgReportNoDelete  = "Not authorized to delete this report"
	msgReportFileGone  = "Report file not found"
	reportContentType  = "text/csv"
)

// csvHeader is the first row of every forecast report
var csvHeader = []string{"date", "predicted", "lowerBound", "upperBound"}

// ReportService exports forecasts as downloadable files
type ReportService struct {
	reportRepo   *repository.ReportRepository
	forecastRepo *repository.ForecastRepository
	storage      storage.Storage
	logger       *zap.Logger
}

// NewReportService creates a new report service instance
func NewReportService(
	reportRepo *repository.ReportRepository,
	forecastRepo *repository.ForecastRepository,
	store storage.Storage,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:   reportRepo,
		forecastRepo: forecastRepo,
		storage:      store,
		logger:       logger,
	}
}

// Generate renders a forecast as CSV, stores the file and records the report
func (s *ReportService) Generate(ctx context.Context, companyID, userID uuid.UUID, req *domain.GenerateReportRequest) (*domain.ReportDTO, error) {
	forecastID, err := uuid.Parse(strings.TrimSpace(req.ForecastID))
	if err != nil {
		return nil, domain.NewFieldValidationError("Invalid forecast id", map[string]string{"forecastId": "Must be a valid UUID"})
	}

	f, err := s.forecastRepo.GetByID(ctx, forecastID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFoundError(msgForecastNotFound)
		}
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}
	if err := checkOwnership(companyID, f.CompanyID, msgForecastForbidden); err != nil {
		return nil, err
	}

	content, err := renderForecastCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("forecast-%s-%s.csv", f.ForecastType, f.ForecastDate.UTC().Format("20060102"))
	}

	folder := "reports/" + companyID.String()
	storagePath, size, err := s.storage.Upload(ctx, folder, "report.csv", reportContentType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to upload report: %w", err)
	}

	report := &domain.Report{
		CompanyID:   companyID,
		ForecastID:  f.ID,
		Name:        name,
		Format:      domain.ReportFormatCSV,
		ContentType: reportContentType,
		StoragePath: storagePath,
		SizeBytes:   size,
		CreatedBy:   userID,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Error("failed to remove orphaned report file",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, mapper.FormatError("report", "create", err)
	}

	s.logger.Info("report generated",
		zap.String("report_id", report.ID.String()),
		zap.String("forecast_id", f.ID.String()),
		zap.String("company_id", companyID.String()),
		zap.Int64("size_bytes", size),
	)

	dto := mapper.ToReportDTO(report)
	return &dto, nil
}

// renderForecastCSV writes one row per forecast month
func renderForecastCSV(f *domain.Forecast) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, p := range f.ForecastData {
		row := []string{
			p.Date.UTC().Format(time.DateOnly),
			formatAmount(p.Revenue.Predicted),
			formatAmount(p.Revenue.LowerBound),
			formatAmount(p.Revenue.UpperBound),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// List returns the company's reports newest first
func (s *ReportService) List(ctx context.Context, companyID uuid.UUID) ([]domain.ReportDTO, error) {
	reports, err := s.reportRepo.List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return mapper.ToReportDTOs(reports), nil
}

// GetByID returns one report owned by the company
func (s *ReportService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.ReportDTO, error) {
	report, err := s.getOwned(ctx, companyID, id, msgReportForbidden)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToReportDTO(report)
	return &dto, nil
}

// Download opens the stored report file. The caller closes the reader.
func (s *ReportService) Download(ctx context.Context, companyID, id uuid.UUID) (io.ReadCloser, *domain.ReportDTO, error) {
	report, err := s.getOwned(ctx, companyID, id, msgReportForbidden)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Download(ctx, report.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, domain.NewNotFoundError(msgReportFileGone)
		}
		return nil, nil, fmt.Errorf("failed to download report: %w", err)
	}
	dto := mapper.ToReportDTO(report)
	return rc, &dto, nil
}

// Delete removes the report record and its stored file
func (s *ReportService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	report, err := s.getOwned(ctx, companyID, id, msgReportNoDelete)
	if err != nil {
		return err
	}
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if err := s.storage.Delete(ctx, report.StoragePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("failed to delete report file",
			zap.String("report_id", id.String()),
			zap.String("storage_path", report.StoragePath),
			zap.Error(err),
		)
	}
	return nil
}

func (s *ReportService) getOwned(ctx context.Context, companyID, id uuid.UUID, forbidden string) (*domain.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFoundError(msgReportNotFound)
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if err := checkOwnership(companyID, report.CompanyID, forbidden); err != nil {
		return nil, err
	}
	return report, nil
}
