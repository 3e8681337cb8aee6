package service

import (
	"errors"
	"strings"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// isUniqueViolation recognizes unique constraint failures from postgres and sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "sqlstate 23505")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// checkOwnership returns a Forbidden error when a record belongs to another company
func checkOwnership(callerCompany, recordCompany uuid.UUID, message string) error {
	if callerCompany != recordCompany {
		return domain.NewForbiddenError(message)
	}
	return nil
}
