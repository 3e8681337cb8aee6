package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/datawarehouse"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"github.com/garmentiq/revenue-forecast-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubWarehouse struct {
	indicators *datawarehouse.Indicators
	err        error
	calls      int
}

func (s *stubWarehouse) LatestIndicators(ctx context.Context) (*datawarehouse.Indicators, error) {
	s.calls++
	return s.indicators, s.err
}

func snapshots(t *testing.T, e *env) []domain.EconomicSnapshot {
	t.Helper()
	var out []domain.EconomicSnapshot
	require.NoError(t, e.db.Order("date ASC").Find(&out).Error)
	return out
}

func TestEconomicService_Live(t *testing.T) {
	e := newEnv(t)

	live, err := e.economic.Live(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 318.45, live.USDLKRRate)
	assert.Equal(t, 4.8, live.InflationRate)
	assert.Equal(t, 5.2, live.PreviousInflationRate)
	assert.Equal(t, 0.85, live.CottonPrice)
	assert.Equal(t, 2.4, live.CottonPriceChangePct)
	assert.Len(t, live.StockIndices, 3)
	assert.Equal(t, "United States", live.ExportStats.TopDestination)
	assert.Equal(t, domain.SnapshotSourceLive, live.Source)

	stored := snapshots(t, e)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.SnapshotSourceLive, stored[0].Source)
	assert.Equal(t, 318.45, stored[0].ExchangeRate)
}

func TestEconomicService_Live_FromWarehouse(t *testing.T) {
	e := newEnv(t)
	observed := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	wh := &stubWarehouse{indicators: &datawarehouse.Indicators{
		ObservedAt:   observed,
		ExchangeRate: 301.2,
		Inflation:    2.1,
		CottonPrice:  0.71,
	}}
	svc := service.NewEconomicService(repository.NewEconomicSnapshotRepository(e.db), e.cache, time.Minute, wh, zap.NewNop())
	ctx := context.Background()

	live, err := svc.Live(ctx)
	require.NoError(t, err)
	assert.Equal(t, 301.2, live.USDLKRRate)
	assert.Equal(t, 2.1, live.InflationRate)
	assert.Equal(t, 0.71, live.CottonPrice)
	assert.True(t, live.LastUpdatedExchangeRate.Equal(observed))
	assert.Equal(t, domain.SnapshotSourceWarehouse, live.Source)

	_, err = svc.Live(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, wh.calls, "warehouse lookup is cached")

	stored := snapshots(t, e)
	require.Len(t, stored, 2)
	assert.Equal(t, domain.SnapshotSourceWarehouse, stored[0].Source)
	assert.Equal(t, 301.2, stored[0].ExchangeRate)
}

func TestEconomicService_Live_WarehouseFailureFallsBack(t *testing.T) {
	e := newEnv(t)
	wh := &stubWarehouse{err: errors.New("connection reset")}
	svc := service.NewEconomicService(repository.NewEconomicSnapshotRepository(e.db), nil, time.Minute, wh, zap.NewNop())

	live, err := svc.Live(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 318.45, live.USDLKRRate)
	assert.Equal(t, domain.SnapshotSourceLive, live.Source)
}

func TestEconomicService_Historical_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.economic.Historical(ctx, "", "2025-01-31")
	requireKind(t, err, domain.KindValidation)
	assert.Equal(t, "Start date and end date are required", err.Error())

	_, err = e.economic.Historical(ctx, "2025-01-01", "yesterday")
	requireKind(t, err, domain.KindValidation)

	_, err = e.economic.Historical(ctx, "2025-02-01", "2025-01-01")
	requireKind(t, err, domain.KindValidation)
}

func TestEconomicService_Historical_SampleCountBound(t *testing.T) {
	tests := []struct {
		name   string
		end    string
		points int
	}{
		{"30 days", "2025-01-31", 30},
		{"31 days", "2025-02-01", 16},
		{"45 days", "2025-02-15", 23},
		{"59 days", "2025-03-01", 30},
		{"60 days", "2025-03-02", 30},
		{"90 days", "2025-04-01", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			samples, err := e.economic.Historical(context.Background(), "2025-01-01", tt.end)
			require.NoError(t, err)
			assert.Len(t, samples, tt.points)
			assert.LessOrEqual(t, len(samples), 30)
		})
	}
}

func TestEconomicService_Historical_SynthesizesSamples(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// 60 days gives a step of 2 and 30 points
	samples, err := e.economic.Historical(ctx, "2025-01-01", "2025-03-02")
	require.NoError(t, err)
	require.Len(t, samples, 30)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range samples {
		assert.True(t, s.Date.Equal(start.AddDate(0, 0, 2*i)), "sample %d date %s", i, s.Date)
		assert.InDelta(t, 315, s.ExchangeRate, 5)
		assert.InDelta(t, 5, s.Inflation, 0.5)
		assert.InDelta(t, 0.83, s.CottonPrice, 0.05)
		assert.Equal(t, domain.SnapshotSourceSample, s.Source)
	}
	assert.Len(t, snapshots(t, e), 30)

	again, err := e.economic.Historical(ctx, "2025-01-01", "2025-03-02")
	require.NoError(t, err)
	require.Len(t, again, 30)
	assert.Equal(t, samples[0].ExchangeRate, again[0].ExchangeRate)
	assert.Len(t, snapshots(t, e), 30, "stored samples are reused")
}

func TestEconomicService_Historical_ShortRange(t *testing.T) {
	e := newEnv(t)

	samples, err := e.economic.Historical(context.Background(), "2025-01-01", "2025-01-05")
	require.NoError(t, err)
	assert.Len(t, samples, 4)
}

func TestEconomicService_Historical_ReturnsStored(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	snapshot, err := e.economic.CaptureSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SnapshotSourceScheduled, snapshot.Source)

	day := snapshot.Date.UTC()
	got, err := e.economic.Historical(ctx, day.AddDate(0, 0, -1).Format(time.DateOnly), day.AddDate(0, 0, 1).Format(time.DateOnly))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snapshot.ID, got[0].ID)
}

func TestEconomicService_StaticPayloads(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	rates := e.economic.ExchangeRates(ctx)
	assert.Equal(t, "USD", rates.Base)
	assert.Equal(t, 318.45, rates.Rates["LKR"])
	assert.Equal(t, 24850.50, rates.Rates["VND"])

	indicators := e.economic.Indicators(ctx)
	assert.Equal(t, 112.4, indicators.LaborCostIndex)
	assert.Equal(t, 3450.0, indicators.FreightRates.AsiaToUS)
	assert.Equal(t, 107.3, indicators.CompetitorActivity["vietnam"].PriceIndex)

	industry := e.economic.IndustryData(ctx)
	require.Len(t, industry.Segments, 4)
	assert.Equal(t, "Casual Wear", industry.Segments[0].Name)
	assert.Len(t, industry.MajorMarkets, 6)
	assert.Equal(t, 32.3, industry.CompetitorAnalysis["china"].MarketShare)

	supply := e.economic.SupplyChain(ctx)
	assert.Equal(t, "Limited", supply.RawMaterialAvailability["polyester"].Status)
	assert.Equal(t, "High", supply.PortCongestion["losAngeles"].Status)
	assert.Len(t, supply.RiskAssessment.BiggestRisks, 3)

	policy := e.economic.TradePolicy(ctx)
	require.Len(t, policy.RecentUpdates, 3)
	assert.Equal(t, "Negative", policy.RecentUpdates[2].Impact)
	require.NotEmpty(t, policy.UpcomingChanges)
	assert.Equal(t, "UK Post-Brexit Trade Regulations", policy.UpcomingChanges[0].Title)
}

func TestEconomicService_StaticPayloadsAreCached(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.economic.Indicators(ctx)
	second := e.economic.Indicators(ctx)

	assert.Equal(t, 1, e.cache.hitCount("economic:indicators"))
	assert.True(t, first.LastUpdated.Equal(second.LastUpdated))
}

func TestEconomicService_Weather(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	def := e.economic.Weather(ctx, "")
	assert.Equal(t, service.DefaultWeatherRegion, def.Region)
	assert.Equal(t, "Southwest Monsoon", def.Season)
	assert.Len(t, def.Forecast, 5)

	north := e.economic.Weather(ctx, " Northern ")
	assert.Equal(t, "northern", north.Region)
	assert.Equal(t, "Dry season", north.Season)

	unknown := e.economic.Weather(ctx, "atlantis")
	assert.Equal(t, "atlantis", unknown.Region)
	assert.Equal(t, "Inter-monsoon", unknown.Season)
}
