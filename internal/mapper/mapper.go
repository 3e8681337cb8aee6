// Package mapper converts persistence models into the DTOs returned by the API.
package mapper

import (
	"fmt"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
)

// ToUserSummary converts a user and their company to the public summary
func ToUserSummary(user *domain.User, company *domain.Company) *domain.UserSummary {
	summary := &domain.UserSummary{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}
	if company != nil {
		summary.CompanyName = company.Name
	}
	return summary
}

// ToAddressDTO converts an embedded Address to its DTO
func ToAddressDTO(a domain.Address) domain.AddressDTO {
	return domain.AddressDTO{
		Street:     a.Street,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// FromAddressDTO converts a request address to the model. A nil address yields the zero value.
func FromAddressDTO(a *domain.AddressDTO) domain.Address {
	if a == nil {
		return domain.Address{}
	}
	return domain.Address{
		Street:     a.Street,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// ToCompanyDTO converts Company to CompanyDTO
func ToCompanyDTO(company *domain.Company) domain.CompanyDTO {
	return domain.CompanyDTO{
		ID:        company.ID,
		Name:      company.Name,
		Industry:  company.Industry,
		Size:      company.Size,
		Address:   ToAddressDTO(company.Address),
		Phone:     company.Phone,
		CreatedAt: company.CreatedAt,
	}
}

// ToProfileDTO converts a user and their company to the detailed profile view
func ToProfileDTO(user *domain.User, company *domain.Company) domain.ProfileDTO {
	return domain.ProfileDTO{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		Company:   ToCompanyDTO(company),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToRevenueDataDTO converts a data point, deriving profit. Costs are echoed as expenses too.
func ToRevenueDataDTO(point *domain.RevenueDataPoint) domain.RevenueDataDTO {
	return domain.RevenueDataDTO{
		ID:              point.ID,
		CompanyID:       point.CompanyID,
		Date:            point.Date.UTC(),
		Revenue:         point.Revenue,
		Costs:           point.Costs,
		Expenses:        point.Costs,
		Profit:          point.Profit(),
		ProductCategory: point.ProductCategory,
		Region:          point.Region,
		Notes:           point.Notes,
		UploadedBy:      point.UploadedBy,
		CreatedAt:       point.CreatedAt,
		UpdatedAt:       point.UpdatedAt,
	}
}

// ToRevenueDataDTOs converts a slice of data points
func ToRevenueDataDTOs(points []domain.RevenueDataPoint) []domain.RevenueDataDTO {
	dtos := make([]domain.RevenueDataDTO, len(points))
	for i := range points {
		dtos[i] = ToRevenueDataDTO(&points[i])
	}
	return dtos
}

// ToRevenueSummaryDTO builds the summary card from aggregated totals
func ToRevenueSummaryDTO(entries int64, totalRevenue, totalCosts float64, first, last *time.Time) domain.RevenueSummaryDTO {
	return domain.RevenueSummaryDTO{
		Entries:      entries,
		TotalRevenue: totalRevenue,
		TotalCosts:   totalCosts,
		TotalProfit:  totalRevenue - totalCosts,
		ProfitMargin: CalculateMargin(totalCosts, totalRevenue),
		FirstDate:    first,
		LastDate:     last,
	}
}

// ToForecastDTO converts Forecast to ForecastDTO
func ToForecastDTO(forecast *domain.Forecast) domain.ForecastDTO {
	data := []domain.ForecastPoint(forecast.ForecastData)
	if data == nil {
		data = []domain.ForecastPoint{}
	}
	return domain.ForecastDTO{
		ID:           forecast.ID,
		CompanyID:    forecast.CompanyID,
		ForecastDate: forecast.ForecastDate,
		ForecastPeriod: domain.ForecastPeriodDTO{
			Start: forecast.PeriodStart,
			End:   forecast.PeriodEnd,
		},
		ForecastType: forecast.ForecastType,
		ModelType:    forecast.ModelType,
		ForecastData: data,
		Accuracy:     forecast.Accuracy,
		Factors:      forecast.Factors,
		CreatedBy:    forecast.CreatedBy,
		CreatedAt:    forecast.CreatedAt,
	}
}

// ToForecastDTOs converts a slice of forecasts
func ToForecastDTOs(forecasts []domain.Forecast) []domain.ForecastDTO {
	dtos := make([]domain.ForecastDTO, len(forecasts))
	for i := range forecasts {
		dtos[i] = ToForecastDTO(&forecasts[i])
	}
	return dtos
}

// ToReportDTO converts Report to ReportDTO
func ToReportDTO(report *domain.Report) domain.ReportDTO {
	return domain.ReportDTO{
		ID:          report.ID,
		CompanyID:   report.CompanyID,
		ForecastID:  report.ForecastID,
		Name:        report.Name,
		Format:      report.Format,
		ContentType: report.ContentType,
		SizeBytes:   report.SizeBytes,
		CreatedBy:   report.CreatedBy,
		CreatedAt:   report.CreatedAt,
	}
}

// ToReportDTOs converts a slice of reports
func ToReportDTOs(reports []domain.Report) []domain.ReportDTO {
	dtos := make([]domain.ReportDTO, len(reports))
	for i := range reports {
		dtos[i] = ToReportDTO(&reports[i])
	}
	return dtos
}

// CalculateMargin calculates margin percentage
func CalculateMargin(cost, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return ((revenue - cost) / revenue) * 100
}

// FormatError creates a formatted error message
func FormatError(entity, operation string, err error) error {
	return fmt.Errorf("failed to %s %s: %w", operation, entity, err)
}
