package domain

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the uniform JSON response wrapper used by every endpoint
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Stack   string            `json:"stack,omitempty"`
}

// AuthResponse is returned by register, login and me. Token and user sit at the top level.
type AuthResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *UserSummary `json:"user"`
}

// ============================================================================
// Auth
// ============================================================================

type AddressDTO struct {
	Street     string `json:"street,omitempty" validate:"max=200"`
	City       string `json:"city,omitempty" validate:"max=100"`
	Province   string `json:"province,omitempty" validate:"max=100"`
	PostalCode string `json:"postalCode,omitempty" validate:"max=20"`
	Country    string `json:"country,omitempty" validate:"max=100"`
}

type RegisterRequest struct {
	CompanyName string      `json:"companyName" validate:"max=200"`
	Industry    string      `json:"industry,omitempty" validate:"omitempty,industry"`
	CompanySize string      `json:"companySize,omitempty" validate:"omitempty,oneof=small medium large"`
	Address     *AddressDTO `json:"address,omitempty" validate:"omitempty"`
	Phone       string      `json:"phone,omitempty" validate:"max=50"`
	FullName    string      `json:"fullName" validate:"max=200"`
	Email       string      `json:"email" validate:"omitempty,max=255,garment_email"`
	Password    string      `json:"password" validate:"omitempty,min=6,max=128"`
}

// LoginRequest carries no validation tags; missing fields get a dedicated message from the service
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what the auth service hands back after register or login
type AuthResult struct {
	Token string
	User  *UserSummary
}

// UserSummary is the public view of a user and their company
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Role        UserRole  `json:"role"`
	CompanyID   uuid.UUID `json:"companyId"`
	CompanyName string    `json:"companyName"`
}

type CompanyDTO struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Industry  Industry    `json:"industry"`
	Size      CompanySize `json:"size"`
	Address   AddressDTO  `json:"address"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ProfileDTO is the detailed view returned by the profile endpoints
type ProfileDTO struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      UserRole   `json:"role"`
	Company   CompanyDTO `json:"company"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	FullName        *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=200"`
	CurrentPassword string  `json:"currentPassword,omitempty"`
	NewPassword     string  `json:"newPassword,omitempty" validate:"omitempty,min=6"`
}

// ============================================================================
// Revenue data
// ============================================================================

// RevenueDataRequest is one uploaded row. Costs may also be sent as "expenses".
// Required fields and sign checks are enforced by the data service.
type RevenueDataRequest struct {
	Date            string   `json:"date" validate:"max=40"`
	Revenue         *float64 `json:"revenue"`
	Costs           *float64 `json:"costs,omitempty"`
	Expenses        *float64 `json:"expenses,omitempty"`
	ProductCategory string   `json:"productCategory,omitempty" validate:"max=100"`
	Region          string   `json:"region,omitempty" validate:"max=100"`
	Notes           string   `json:"notes,omitempty" validate:"max=2000"`
}

// CostValue returns costs, falling back to expenses, then zero
func (r *RevenueDataRequest) CostValue() *float64 {
	if r.Costs != nil {
		return r.Costs
	}
	return r.Expenses
}

type BulkUploadRequest struct {
	DataEntries []RevenueDataRequest `json:"dataEntries" validate:"dive"`
}

// UpdateRevenueDataRequest is a partial update; nil fields are left unchanged
type UpdateRevenueDataRequest struct {
	Date            *string  `json:"date,omitempty" validate:"omitempty,max=40"`
	Revenue         *float64 `json:"revenue,omitempty"`
	Costs           *float64 `json:"costs,omitempty"`
	Expenses        *float64 `json:"expenses,omitempty"`
	ProductCategory *string  `json:"productCategory,omitempty" validate:"omitempty,max=100"`
	Region          *string  `json:"region,omitempty" validate:"omitempty,max=100"`
	Notes           *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// RevenueDataFilters narrows a list query
type RevenueDataFilters struct {
	StartDate       *time.Time
	EndDate         *time.Time
	ProductCategory string
	Region          string
}

type RevenueDataDTO struct {
	ID              uuid.UUID `json:"id"`
	CompanyID       uuid.UUID `json:"companyId"`
	Date            time.Time `json:"date"`
	Revenue         float64   `json:"revenue"`
	Costs           float64   `json:"costs"`
	Expenses        float64   `json:"expenses"`
	Profit          float64   `json:"profit"`
	ProductCategory string    `json:"productCategory,omitempty"`
	Region          string    `json:"region,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	UploadedBy      uuid.UUID `json:"uploadedBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RevenueSummaryDTO aggregates a company's revenue history
type RevenueSummaryDTO struct {
	Entries      int64      `json:"entries"`
	TotalRevenue float64    `json:"totalRevenue"`
	TotalCosts   float64    `json:"totalCosts"`
	TotalProfit  float64    `json:"totalProfit"`
	ProfitMargin float64    `json:"profitMargin"`
	FirstDate    *time.Time `json:"firstDate,omitempty"`
	LastDate     *time.Time `json:"lastDate,omitempty"`
}

// ============================================================================
// Forecasts
// ============================================================================

type GenerateForecastRequest struct {
	ForecastType              string `json:"forecastType" validate:"max=20"`
	Months                    int    `json:"months"`
	IncludeEconomicIndicators bool   `json:"includeEconomicIndicators"`
}

type ForecastPeriodDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ForecastDTO struct {
	ID             uuid.UUID         `json:"id"`
	CompanyID      uuid.UUID         `json:"companyId"`
	ForecastDate   time.Time         `json:"forecastDate"`
	ForecastPeriod ForecastPeriodDTO `json:"forecastPeriod"`
	ForecastType   ForecastType      `json:"forecastType"`
	ModelType      ModelType         `json:"modelType"`
	ForecastData   []ForecastPoint   `json:"forecastData"`
	Accuracy       AccuracyMetrics   `json:"accuracy"`
	Factors        ForecastFactors   `json:"factors"`
	CreatedBy      uuid.UUID         `json:"createdBy"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ============================================================================
// Reports
// ============================================================================

type GenerateReportRequest struct {
	ForecastID string `json:"forecastId" validate:"required,uuid"`
	Name       string `json:"name,omitempty" validate:"max=200"`
}

type ReportDTO struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"companyId"`
	ForecastID  uuid.UUID `json:"forecastId"`
	Name        string    `json:"name"`
	Format      string    `json:"format"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
