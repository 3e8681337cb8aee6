package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForCompany scopes a query to records owned by the given company.
// Every company-owned table carries a company_id column.
func ForCompany(companyID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}

// DateBetween restricts column to [start, end]. Nil bounds are open.
func DateBetween(column string, start, end *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", start.UTC())
		}
		if end != nil {
			db = db.Where(column+" <= ?", end.UTC())
		}
		return db
	}
}
