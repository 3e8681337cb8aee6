package datawarehouse_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/config"
	"github.com/garmentiq/revenue-forecast-api/internal/datawarehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewClient_DisabledConfig(t *testing.T) {
	log := zap.NewNop()

	client, err := datawarehouse.NewClient(nil, log)
	assert.NoError(t, err)
	assert.Nil(t, client)

	client, err = datawarehouse.NewClient(&config.DataWarehouseConfig{Enabled: false}, log)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.DataWarehouseConfig
	}{
		{"missing URL", &config.DataWarehouseConfig{Enabled: true, User: "user", Password: "pass"}},
		{"missing user", &config.DataWarehouseConfig{Enabled: true, URL: "host:1433/db", Password: "pass"}},
		{"missing password", &config.DataWarehouseConfig{Enabled: true, URL: "host:1433/db", User: "user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := datawarehouse.NewClient(tt.cfg, zap.NewNop())
			assert.NoError(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestNilClient(t *testing.T) {
	var c *datawarehouse.Client
	assert.False(t, c.IsEnabled())
	assert.NoError(t, c.Close())
	assert.Equal(t, "disabled", c.HealthCheck(context.Background()).Status)

	_, err := c.LatestIndicators(context.Background())
	assert.Error(t, err)
}

// newSQLiteClient stands a sqlite database in for the warehouse
func newSQLiteClient(t *testing.T, query string) (*datawarehouse.Client, *sql.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	db, err := gdb.DB()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE economic_indicators (
		observed_at TEXT NOT NULL,
		usd_lkr_rate REAL NOT NULL,
		inflation_rate REAL NOT NULL,
		cotton_price_usd REAL NOT NULL
	)`)
	require.NoError(t, err)

	client := datawarehouse.NewClientWithDB(db, &config.DataWarehouseConfig{
		Enabled:         true,
		QueryTimeout:    5,
		IndicatorsQuery: query,
	}, zap.NewNop())
	return client, db
}

const sqliteIndicatorsQuery = "SELECT observed_at, usd_lkr_rate, inflation_rate, cotton_price_usd FROM economic_indicators ORDER BY observed_at DESC LIMIT 1"

func TestLatestIndicators(t *testing.T) {
	client, db := newSQLiteClient(t, sqliteIndicatorsQuery)
	ctx := context.Background()

	_, err := client.LatestIndicators(ctx)
	assert.ErrorIs(t, err, datawarehouse.ErrNoRows)

	_, err = db.Exec(`INSERT INTO economic_indicators VALUES
		('2025-04-01', 300.10, 5.1, 0.81),
		('2025-05-01', 301.25, 4.9, 0.84)`)
	require.NoError(t, err)

	ind, err := client.LatestIndicators(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), ind.ObservedAt)
	assert.InDelta(t, 301.25, ind.ExchangeRate, 1e-9)
	assert.InDelta(t, 4.9, ind.Inflation, 1e-9)
	assert.InDelta(t, 0.84, ind.CottonPrice, 1e-9)

	assert.Equal(t, "healthy", client.HealthCheck(ctx).Status)
}

func TestLatestIndicators_TooFewColumns(t *testing.T) {
	client, db := newSQLiteClient(t, "SELECT observed_at, usd_lkr_rate FROM economic_indicators")
	_, err := db.Exec(`INSERT INTO economic_indicators VALUES ('2025-04-01', 300.10, 5.1, 0.81)`)
	require.NoError(t, err)

	_, err = client.LatestIndicators(context.Background())
	assert.Error(t, err)
}
