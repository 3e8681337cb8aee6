package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ForecastSeries is the ordered list of projected months, stored as a JSON column
type ForecastSeries []ForecastPoint

// Value implements the driver.Valuer interface
func (s ForecastSeries) Value() (driver.Value, error) {
	if s == nil {
		s = ForecastSeries{}
	}
	return jsonValue(s)
}

// Scan implements the sql.Scanner interface
func (s *ForecastSeries) Scan(value interface{}) error {
	return jsonScan(value, s)
}

// GormDBDataType picks the JSON column type per dialect
func (ForecastSeries) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// Value implements the driver.Valuer interface
func (a AccuracyMetrics) Value() (driver.Value, error) {
	return jsonValue(a)
}

// Scan implements the sql.Scanner interface
func (a *AccuracyMetrics) Scan(value interface{}) error {
	return jsonScan(value, a)
}

// GormDBDataType picks the JSON column type per dialect
func (AccuracyMetrics) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

// Value implements the driver.Valuer interface
func (f ForecastFactors) Value() (driver.Value, error) {
	return jsonValue(f)
}

// Scan implements the sql.Scanner interface
func (f *ForecastFactors) Scan(value interface{}) error {
	return jsonScan(value, f)
}

// GormDBDataType picks the JSON column type per dialect
func (ForecastFactors) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonColumnType(db)
}

func jsonValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(value interface{}, target interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

func jsonColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "jsonb"
	case "sqlserver":
		return "nvarchar(max)"
	default:
		return "text"
	}
}
