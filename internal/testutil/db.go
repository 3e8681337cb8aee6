// Package testutil provides shared helpers for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/auth"
	"github.com/garmentiq/revenue-forecast-api/internal/database"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache memory database lets every pooled connection see the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateTestCompany inserts a company and returns it
func CreateTestCompany(t *testing.T, db *gorm.DB, name string) *domain.Company {
	t.Helper()
	company := &domain.Company{Name: name}
	require.NoError(t, db.Create(company).Error)
	return company
}

// CreateTestUser inserts a user for the company with the given password hash
func CreateTestUser(t *testing.T, db *gorm.DB, company *domain.Company, email, passwordHash string) *domain.User {
	t.Helper()
	user := &domain.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: passwordHash,
		CompanyID:    company.ID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateRevenueSeries inserts one point per month starting at start, using the given revenues
func CreateRevenueSeries(t *testing.T, db *gorm.DB, companyID, userID uuid.UUID, start time.Time, revenues ...float64) []domain.RevenueDataPoint {
	t.Helper()
	points := make([]domain.RevenueDataPoint, len(revenues))
	for i, r := range revenues {
		points[i] = domain.RevenueDataPoint{
			CompanyID:  companyID,
			Date:       start.AddDate(0, i, 0),
			Revenue:    r,
			Costs:      r * 0.8,
			UploadedBy: userID,
		}
	}
	if len(points) > 0 {
		require.NoError(t, db.Create(&points).Error)
	}
	return points
}

// UserContext builds an authenticated user context for the given company
func UserContext(userID, companyID uuid.UUID, role domain.UserRole) *auth.UserContext {
	return &auth.UserContext{
		UserID:    userID,
		Email:     "test@example.com",
		FullName:  "Test User",
		Role:      role,
		CompanyID: companyID,
	}
}
