package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Industry is the sector a company operates in
type Industry string

const (
	IndustryApparelManufacturing Industry = "apparel manufacturing"
	IndustryTextileProduction    Industry = "textile production"
	IndustryGarmentExport        Industry = "garment export"
	IndustryOther                Industry = "other"
)

// IsValid checks if the industry is one of the supported values
func (i Industry) IsValid() bool {
	switch i {
	case IndustryApparelManufacturing, IndustryTextileProduction, IndustryGarmentExport, IndustryOther:
		return true
	}
	return false
}

// CompanySize is a coarse headcount bracket
type CompanySize string

const (
	CompanySizeSmall  CompanySize = "small"
	CompanySizeMedium CompanySize = "medium"
	CompanySizeLarge  CompanySize = "large"
)

// IsValid checks if the size is one of the supported values
func (s CompanySize) IsValid() bool {
	switch s {
	case CompanySizeSmall, CompanySizeMedium, CompanySizeLarge:
		return true
	}
	return false
}

// UserRole is the role of a user within their company
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is supported
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ForecastType is the horizon label chosen when generating a forecast
type ForecastType string

const (
	ForecastShortTerm  ForecastType = "short-term"
	ForecastMediumTerm ForecastType = "medium-term"
	ForecastLongTerm   ForecastType = "long-term"
)

// IsValid checks if the forecast type is supported
func (t ForecastType) IsValid() bool {
	switch t {
	case ForecastShortTerm, ForecastMediumTerm, ForecastLongTerm:
		return true
	}
	return false
}

// ModelType labels the forecasting model. Only the trend projection is implemented;
// the other values exist for records created by other tools.
type ModelType string

const (
	ModelARIMA        ModelType = "ARIMA"
	ModelProphet      ModelType = "Prophet"
	ModelRandomForest ModelType = "RandomForest"
	ModelEnsemble     ModelType = "Ensemble"
)

// Snapshot sources
const (
	SnapshotSourceLive      = "live-api"
	SnapshotSourceSample    = "sample-data"
	SnapshotSourceWarehouse = "warehouse"
	SnapshotSourceScheduled = "scheduled"
)

// Report formats
const (
	ReportFormatCSV = "csv"
)

// DefaultCountry is applied to company addresses without a country
const DefaultCountry = "Sri Lanka"

var emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// IsValidEmail checks an address against the registration email rule
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Address is the postal address of a company
type Address struct {
	Street     string `gorm:"type:varchar(200)" json:"street,omitempty"`
	City       string `gorm:"type:varchar(100)" json:"city,omitempty"`
	Province   string `gorm:"type:varchar(100)" json:"province,omitempty"`
	PostalCode string `gorm:"type:varchar(20)" json:"postalCode,omitempty"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
}

// Company is a tenant. Every data record belongs to exactly one company.
type Company struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Name      string      `gorm:"type:varchar(200);not null"`
	Industry  Industry    `gorm:"type:varchar(50);not null"`
	Size      CompanySize `gorm:"type:varchar(20);not null"`
	Address   Address     `gorm:"embedded;embeddedPrefix:address_"`
	Phone     string      `gorm:"type:varchar(50)"`
	CreatedAt time.Time   `gorm:"not null"`
	UpdatedAt time.Time   `gorm:"not null"`
}

// BeforeCreate assigns the id and applies defaults
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Industry == "" {
		c.Industry = IndustryApparelManufacturing
	}
	if c.Size == "" {
		c.Size = CompanySizeSmall
	}
	if c.Address.Country == "" {
		c.Address.Country = DefaultCountry
	}
	return nil
}

// User is a person who signs in on behalf of a company
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName     string    `gorm:"type:varchar(200);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Role         UserRole  `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// BeforeCreate assigns the id and applies defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// RevenueDataPoint is one revenue/cost observation uploaded by a company.
// Profit is derived at read time and never stored.
type RevenueDataPoint struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index:idx_revenue_company_date"`
	Date            time.Time `gorm:"not null;index:idx_revenue_company_date"`
	Revenue         float64   `gorm:"not null"`
	Costs           float64   `gorm:"not null"`
	ProductCategory string    `gorm:"type:varchar(100)"`
	Region          string    `gorm:"type:varchar(100)"`
	Notes           string    `gorm:"type:text"`
	UploadedBy      uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName keeps the historical collection name
func (RevenueDataPoint) TableName() string {
	return "revenue_data"
}

// BeforeCreate assigns the id
func (d *RevenueDataPoint) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Profit returns revenue minus costs
func (d *RevenueDataPoint) Profit() float64 {
	return d.Revenue - d.Costs
}

// Forecast is an immutable projection generated from a company's revenue history
type Forecast struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ForecastDate time.Time       `gorm:"not null;index"`
	PeriodStart  time.Time       `gorm:"column:period_start;not null"`
	PeriodEnd    time.Time       `gorm:"column:period_end;not null"`
	ForecastType ForecastType    `gorm:"type:varchar(20);not null"`
	ModelType    ModelType       `gorm:"type:varchar(20);not null"`
	ForecastData ForecastSeries  `gorm:"not null"`
	Accuracy     AccuracyMetrics `gorm:"not null"`
	Factors      ForecastFactors `gorm:"not null"`
	CreatedBy    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// BeforeCreate assigns the id
func (f *Forecast) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// RevenueBand is a predicted revenue with its confidence bounds
type RevenueBand struct {
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound"`
}

// ForecastPoint is one projected month
type ForecastPoint struct {
	Date    time.Time   `json:"date"`
	Revenue RevenueBand `json:"revenue"`
}

// Accuracy statuses
const (
	AccuracyBacktest    = "backtest"
	AccuracyUnavailable = "unavailable"
)

// AccuracyMetrics holds backtest errors. The pointers are nil when no backtest was possible.
type AccuracyMetrics struct {
	MAPE   *float64 `json:"mape"`
	RMSE   *float64 `json:"rmse"`
	MAE    *float64 `json:"mae"`
	Status string   `json:"status"`
	// Samples is the number of one-step-ahead predictions the metrics were computed from
	Samples int `json:"samples"`
}

// FactorSetting records whether a factor was used and any details about it
type FactorSetting struct {
	Included bool              `json:"included"`
	Details  map[string]string `json:"details,omitempty"`
}

// ForecastFactors lists the external factors considered by a forecast
type ForecastFactors struct {
	EconomicIndicators FactorSetting `json:"economicIndicators"`
	Seasonality        FactorSetting `json:"seasonality"`
}

// EconomicSnapshot is a global, append-only observation of key indicators
type EconomicSnapshot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	ExchangeRate float64   `gorm:"not null" json:"exchangeRate"`
	Inflation    float64   `gorm:"not null" json:"inflation"`
	CottonPrice  float64   `gorm:"not null" json:"cottonPrice"`
	Source       string    `gorm:"type:varchar(30);not null" json:"source"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
}

// BeforeCreate assigns the id
func (e *EconomicSnapshot) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Report is an exported rendering of a forecast kept in object storage
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ForecastID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Format      string    `gorm:"type:varchar(10);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	StoragePath string    `gorm:"type:varchar(500);not null"`
	SizeBytes   int64     `gorm:"not null"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// BeforeCreate assigns the id
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
