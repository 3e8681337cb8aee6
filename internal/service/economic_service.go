package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/cache"
	"github.com/garmentiq/revenue-forecast-api/internal/datawarehouse"
	"github.com/garmentiq/revenue-forecast-api/internal/domain"
	"github.com/garmentiq/revenue-forecast-api/internal/repository"
	"go.uber.org/zap"
)

// Simulated baseline values
const (
	liveUSDLKRRate        = 318.45
	liveInflation         = 4.8
	livePreviousInflation = 5.2
	liveCottonPrice       = 0.85
	liveCottonChange      = 0.02
	liveCottonChangePct   = 2.4

	sampleExchangeRate = 315.0
	sampleInflation    = 5.0
	sampleCottonPrice  = 0.83

	maxSamplePoints = 30

	// DefaultWeatherRegion is used when the caller names no region
	DefaultWeatherRegion = "western"
)

const (
	cacheKeyWarehouse     = "economic:warehouse-indicators"
	cacheKeyExchangeRates = "economic:exchange-rates"
	cacheKeyIndicators    = "economic:indicators"
	cacheKeyIndustry      = "economic:industry-data"
	cacheKeySupplyChain   = "economic:supply-chain"
	cacheKeyTradePolicy   = "economic:trade-policy"
	cacheKeyWeatherPrefix = "economic:weather:"
)

// IndicatorSource supplies real indicator values, typically the data warehouse
type IndicatorSource interface {
	LatestIndicators(ctx context.Context) (*datawarehouse.Indicators, error)
}

// EconomicService serves economic indicators for the garment industry. Most payloads
// are simulated; the latest exchange rate, inflation and cotton price come from the
// warehouse when one is configured.
type EconomicService struct {
	snapshotRepo *repository.EconomicSnapshotRepository
	cache        cache.Cache
	ttl          time.Duration
	warehouse    IndicatorSource
	logger       *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewEconomicService creates a new economic service. warehouse may be nil.
func NewEconomicService(
	snapshotRepo *repository.EconomicSnapshotRepository,
	c cache.Cache,
	ttl time.Duration,
	warehouse IndicatorSource,
	logger *zap.Logger,
) *EconomicService {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &EconomicService{
		snapshotRepo: snapshotRepo,
		cache:        c,
		ttl:          ttl,
		warehouse:    warehouse,
		logger:       logger,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetRandSource replaces the random source used for sample data
func (s *EconomicService) SetRandSource(rnd *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd = rnd
}

// SetClock replaces the clock used for timestamps
func (s *EconomicService) SetClock(now func() time.Time) {
	s.now = now
}

// jitter returns a uniform value in [-spread, spread)
func (s *EconomicService) jitter(spread float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()*2*spread - spread
}

// cached returns the cached payload under key or builds and stores it.
// Cache failures never fail the request.
func cached[T any](ctx context.Context, s *EconomicService, key string, build func() T) T {
	var value T
	hit, err := s.cache.GetJSON(ctx, key, &value)
	if err != nil {
		s.logger.Warn("economic cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return value
	}
	value = build()
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("economic cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value
}

// Live returns the current dashboard payload and records a snapshot of its key values
func (s *EconomicService) Live(ctx context.Context) (*domain.LiveEconomicData, error) {
	now := s.now()
	data := simulatedLive(now)

	if ind := s.warehouseIndicators(ctx); ind != nil {
		data.USDLKRRate = ind.ExchangeRate
		data.InflationRate = ind.Inflation
		data.CottonPrice = ind.CottonPrice
		data.LastUpdatedExchangeRate = ind.ObservedAt
		data.LastUpdatedInflation = ind.ObservedAt
		data.LastUpdatedCottonPrice = ind.ObservedAt
		data.Source = domain.SnapshotSourceWarehouse
	}

	snapshot := &domain.EconomicSnapshot{
		Date:         now,
		ExchangeRate: data.USDLKRRate,
		Inflation:    data.InflationRate,
		CottonPrice:  data.CottonPrice,
		Source:       data.Source,
	}
	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store economic snapshot: %w", err)
	}
	return data, nil
}

// warehouseIndicators returns nil when no warehouse is configured or the lookup fails
func (s *EconomicService) warehouseIndicators(ctx context.Context) *datawarehouse.Indicators {
	if s.warehouse == nil {
		return nil
	}

	var ind datawarehouse.Indicators
	hit, err := s.cache.GetJSON(ctx, cacheKeyWarehouse, &ind)
	if err != nil {
		s.logger.Warn("economic cache read failed", zap.String("key", cacheKeyWarehouse), zap.Error(err))
	}
	if hit {
		return &ind
	}

	latest, err := s.warehouse.LatestIndicators(ctx)
	if err != nil {
		s.logger.Warn("warehouse indicators unavailable, using simulated values", zap.Error(err))
		return nil
	}
	if err := s.cache.SetJSON(ctx, cacheKeyWarehouse, latest, s.ttl); err != nil {
		s.logger.Warn("economic cache write failed", zap.String("key", cacheKeyWarehouse), zap.Error(err))
	}
	return latest
}

// CaptureSnapshot records the current key indicators with the scheduled source
func (s *EconomicService) CaptureSnapshot(ctx context.Context) (*domain.EconomicSnapshot, error) {
	snapshot := &domain.EconomicSnapshot{
		Date:         s.now(),
		ExchangeRate: liveUSDLKRRate,
		Inflation:    liveInflation,
		CottonPrice:  liveCottonPrice,
		Source:       domain.SnapshotSourceScheduled,
	}
	if ind := s.warehouseIndicators(ctx); ind != nil {
		snapshot.ExchangeRate = ind.ExchangeRate
		snapshot.Inflation = ind.Inflation
		snapshot.CottonPrice = ind.CottonPrice
	}
	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store economic snapshot: %w", err)
	}
	s.logger.Info("economic snapshot captured",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Float64("exchange_rate", snapshot.ExchangeRate),
	)
	return snapshot, nil
}

// Historical returns stored snapshots between start and end. When none exist, up to 30
// evenly spaced sample points are generated, stored and returned.
func (s *EconomicService) Historical(ctx context.Context, startDate, endDate string) ([]domain.EconomicSnapshot, error) {
	if strings.TrimSpace(startDate) == "" || strings.TrimSpace(endDate) == "" {
		return nil, domain.NewValidationError("Start date and end date are required")
	}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return nil, domain.NewFieldValidationError("Invalid date format", map[string]string{"startDate": "Must be a valid date"})
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		return nil, domain.NewFieldValidationError("Invalid date format", map[string]string{"endDate": "Must be a valid date"})
	}
	if end.Before(start) {
		return nil, domain.NewValidationError("End date must not be before start date")
	}

	stored, err := s.snapshotRepo.InRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load economic history: %w", err)
	}
	if len(stored) > 0 {
		return stored, nil
	}

	samples := s.sampleHistory(start, end)
	if len(samples) == 0 {
		return samples, nil
	}
	if err := s.snapshotRepo.CreateBatch(ctx, samples); err != nil {
		return nil, fmt.Errorf("failed to store sample economic history: %w", err)
	}
	s.logger.Info("generated sample economic history",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("points", len(samples)),
	)
	return samples, nil
}

func (s *EconomicService) sampleHistory(start, end time.Time) []domain.EconomicSnapshot {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	step := (days + maxSamplePoints - 1) / maxSamplePoints
	if step < 1 {
		step = 1
	}

	samples := make([]domain.EconomicSnapshot, 0, days/step+1)
	for i := 0; i < days; i += step {
		samples = append(samples, domain.EconomicSnapshot{
			Date:         start.AddDate(0, 0, i),
			ExchangeRate: sampleExchangeRate + s.jitter(5),
			Inflation:    sampleInflation + s.jitter(0.5),
			CottonPrice:  sampleCottonPrice + s.jitter(0.05),
			Source:       domain.SnapshotSourceSample,
		})
	}
	return samples
}

// ExchangeRates returns USD cross rates for currencies that matter to exporters
func (s *EconomicService) ExchangeRates(ctx context.Context) domain.ExchangeRates {
	return cached(ctx, s, cacheKeyExchangeRates, func() domain.ExchangeRates {
		return domain.ExchangeRates{
			Base: "USD",
			Date: s.now(),
			Rates: map[string]float64{
				"LKR": liveUSDLKRRate,
				"EUR": 0.93,
				"GBP": 0.79,
				"JPY": 151.20,
				"CNY": 7.23,
				"INR": 83.45,
				"BDT": 110.25,
				"VND": 24850.50,
			},
		}
	})
}

// Indicators returns cost and demand indices
func (s *EconomicService) Indicators(ctx context.Context) domain.EconomicIndicators {
	return cached(ctx, s, cacheKeyIndicators, func() domain.EconomicIndicators {
		return domain.EconomicIndicators{
			LaborCostIndex: 112.4,
			EnergyCosts:    0.14,
			FreightRates:   domain.FreightRates{AsiaToUS: 3450, AsiaToEurope: 3280},
			MarketDemand: map[string]float64{
				"us":    102.3,
				"eu":    98.7,
				"uk":    99.2,
				"japan": 97.8,
			},
			CompetitorActivity: map[string]domain.CompetitorActivity{
				"bangladesh": {ExportGrowth: 4.2, PriceIndex: 92.5},
				"vietnam":    {ExportGrowth: 5.7, PriceIndex: 107.3},
				"india":      {ExportGrowth: 3.1, PriceIndex: 97.4},
			},
			LastUpdated: s.now(),
		}
	})
}

// IndustryData returns market size, segments and competitor positions
func (s *EconomicService) IndustryData(ctx context.Context) domain.IndustryData {
	return cached(ctx, s, cacheKeyIndustry, func() domain.IndustryData {
		return domain.IndustryData{
			MarketSize: 5.2,
			Growth:     3.8,
			Segments: []domain.MarketSegment{
				{Name: "Casual Wear", Share: 42, Growth: 4.2},
				{Name: "Formal Wear", Share: 28, Growth: 2.1},
				{Name: "Sportswear", Share: 18, Growth: 6.7},
				{Name: "Others", Share: 12, Growth: 1.9},
			},
			MajorMarkets: []domain.MarketShare{
				{Country: "USA", Share: 35, Growth: 3.2},
				{Country: "EU", Share: 28, Growth: 2.7},
				{Country: "UK", Share: 15, Growth: 2.1},
				{Country: "Japan", Share: 8, Growth: 1.5},
				{Country: "Australia", Share: 6, Growth: 4.2},
				{Country: "Others", Share: 8, Growth: 3.8},
			},
			CompetitorAnalysis: map[string]domain.CompetitorProfile{
				"sriLanka":   {MarketShare: 2.4, CostIndex: 100, QualityIndex: 100},
				"bangladesh": {MarketShare: 6.8, CostIndex: 82, QualityIndex: 85},
				"vietnam":    {MarketShare: 5.2, CostIndex: 95, QualityIndex: 93},
				"india":      {MarketShare: 4.9, CostIndex: 88, QualityIndex: 90},
				"china":      {MarketShare: 32.3, CostIndex: 110, QualityIndex: 95},
			},
			LastUpdated: s.now(),
		}
	})
}

// SupplyChain returns material, shipping, port and labour conditions
func (s *EconomicService) SupplyChain(ctx context.Context) domain.SupplyChainStatus {
	return cached(ctx, s, cacheKeySupplyChain, func() domain.SupplyChainStatus {
		return domain.SupplyChainStatus{
			RawMaterialAvailability: map[string]domain.MaterialStatus{
				"cotton":    {Status: "Normal", Trend: "Stable", PriceImpact: "Neutral"},
				"polyester": {Status: "Limited", Trend: "Improving", PriceImpact: "Moderate"},
				"wool":      {Status: "Normal", Trend: "Stable", PriceImpact: "Neutral"},
			},
			ShippingStatus: map[string]domain.ShippingStatus{
				"asiaToUS": {Status: "Delayed", Delay: "2-3 days", CostImpact: "Moderate"},
				"asiaToEU": {Status: "Normal", Delay: "0-1 days", CostImpact: "Low"},
				"domestic": {Status: "Normal", Delay: "0 days", CostImpact: "None"},
			},
			PortCongestion: map[string]domain.PortStatus{
				"colombo":    {Status: "Moderate", Trend: "Improving"},
				"singapore":  {Status: "Low", Trend: "Stable"},
				"losAngeles": {Status: "High", Trend: "Worsening"},
			},
			LaborMarket: domain.LaborMarket{
				Availability:   "Good",
				WageInflation:  "Moderate",
				SkillShortages: []string{"Advanced Machinery Operators", "Quality Control Specialists"},
			},
			RiskAssessment: domain.RiskAssessment{
				Overall:      "Moderate",
				BiggestRisks: []string{"Shipping Delays", "Raw Material Cost Fluctuations", "Labor Cost Increases"},
			},
			LastUpdated: s.now(),
		}
	})
}

// TradePolicy returns recent and upcoming trade policy changes
func (s *EconomicService) TradePolicy(ctx context.Context) domain.TradePolicy {
	return cached(ctx, s, cacheKeyTradePolicy, func() domain.TradePolicy {
		return domain.TradePolicy{
			RecentUpdates: []domain.PolicyUpdate{
				{
					Title:              "US GSP Program Renewal",
					Description:        "The US has renewed its Generalized System of Preferences (GSP) program, which provides duty-free treatment for certain goods from designated beneficiary countries including Sri Lanka.",
					EffectiveDate:      "2025-01-01",
					Impact:             "Positive",
					AffectedCategories: []string{"Apparel", "Textiles", "Accessories"},
				},
				{
					Title:              "EU-Sri Lanka Trade Agreement Amendment",
					Description:        "The EU and Sri Lanka have amended their trade agreement to include reduced tariffs on garment exports from Sri Lanka to EU countries.",
					EffectiveDate:      "2025-04-01",
					Impact:             "Positive",
					AffectedCategories: []string{"All Garment Categories"},
				},
				{
					Title:              "New Carbon Border Adjustment Mechanism",
					Description:        "The EU is implementing a new Carbon Border Adjustment Mechanism that will affect imports from countries with less stringent climate policies.",
					EffectiveDate:      "2025-07-01",
					Impact:             "Negative",
					AffectedCategories: []string{"High-Carbon Production Methods"},
				},
			},
			UpcomingChanges: []domain.PolicyUpdate{
				{
					Title:              "UK Post-Brexit Trade Regulations",
					Description:        "New regulations affecting imports from Commonwealth countries, including updated rules of origin for textile inputs.",
					EffectiveDate:      "2025-10-01",
					Impact:             "Neutral",
					AffectedCategories: []string{"Apparel", "Textiles"},
				},
				{
					Title:              "US Forced Labor Due Diligence Rules",
					Description:        "Importers must document cotton sourcing across the supply chain. Mills with traceable inputs are expected to gain share.",
					EffectiveDate:      "2026-01-01",
					Impact:             "Mixed",
					AffectedCategories: []string{"Cotton Garments"},
				},
			},
			LastUpdated: s.now(),
		}
	})
}

type weatherProfile struct {
	season       string
	condition    string
	temperatureC float64
	humidityPct  float64
	rainfallMM   float64
	production   string
	demand       string
}

var weatherProfiles = map[string]weatherProfile{
	"western": {
		season: "Southwest Monsoon", condition: "Heavy showers", temperatureC: 29, humidityPct: 82, rainfallMM: 310,
		production: "Intermittent transport delays around Colombo and Katunayake zones; factory output largely unaffected.",
		demand:     "Domestic demand for rainwear and quick-dry fabrics rises during the monsoon.",
	},
	"central": {
		season: "Southwest Monsoon", condition: "Cloudy with showers", temperatureC: 22, humidityPct: 78, rainfallMM: 240,
		production: "Landslide risk on hill-country roads can slow raw material deliveries.",
		demand:     "Cooler weather supports knitwear sales in the hill country.",
	},
	"southern": {
		season: "Southwest Monsoon", condition: "Scattered showers", temperatureC: 28, humidityPct: 80, rainfallMM: 220,
		production: "Port of Galle operations normal; minor delays for road freight.",
		demand:     "Tourist season lull lowers resort wear demand.",
	},
	"northern": {
		season: "Dry season", condition: "Sunny", temperatureC: 32, humidityPct: 65, rainfallMM: 35,
		production: "High temperatures raise factory cooling costs.",
		demand:     "Steady demand for lightweight cotton garments.",
	},
	"eastern": {
		season: "Dry season", condition: "Mostly sunny", temperatureC: 31, humidityPct: 68, rainfallMM: 50,
		production: "Conditions favour outdoor drying and finishing processes.",
		demand:     "Peak tourist season lifts resort and beachwear sales.",
	},
}

// nationalWeather is served for regions without a dedicated profile
var nationalWeather = weatherProfile{
	season: "Inter-monsoon", condition: "Partly cloudy", temperatureC: 28, humidityPct: 75, rainfallMM: 180,
	production: "No island-wide disruption expected for garment production.",
	demand:     "Seasonal demand is stable across domestic markets.",
}

// Weather returns weather conditions for a Sri Lankan region. Unknown regions get the
// national profile.
func (s *EconomicService) Weather(ctx context.Context, region string) domain.WeatherPatterns {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		region = DefaultWeatherRegion
	}
	return cached(ctx, s, cacheKeyWeatherPrefix+region, func() domain.WeatherPatterns {
		profile, ok := weatherProfiles[region]
		if !ok {
			profile = nationalWeather
		}
		now := s.now()
		days := make([]domain.WeatherDay, 0, 5)
		for i := 1; i <= 5; i++ {
			days = append(days, domain.WeatherDay{
				Date:          now.AddDate(0, 0, i).Format("2006-01-02"),
				Condition:     profile.condition,
				TemperatureC:  profile.temperatureC + float64(i%3-1),
				RainfallMM:    math.Round(profile.rainfallMM/30*10) / 10,
				RainChancePct: math.Min(95, profile.humidityPct-10+float64(i%2)*5),
			})
		}
		return domain.WeatherPatterns{
			Region:            region,
			Season:            profile.season,
			CurrentCondition:  profile.condition,
			TemperatureC:      profile.temperatureC,
			HumidityPct:       profile.humidityPct,
			MonthlyRainfallMM: profile.rainfallMM,
			Forecast:          days,
			ProductionImpact:  profile.production,
			DemandImpact:      profile.demand,
			LastUpdated:       now,
		}
	})
}

func simulatedLive(now time.Time) *domain.LiveEconomicData {
	return &domain.LiveEconomicData{
		USDLKRRate:              liveUSDLKRRate,
		LastUpdatedExchangeRate: now,
		InflationRate:           liveInflation,
		PreviousInflationRate:   livePreviousInflation,
		LastUpdatedInflation:    now,
		CottonPrice:             liveCottonPrice,
		CottonPriceChange:       liveCottonChange,
		CottonPriceChangePct:    liveCottonChangePct,
		LastUpdatedCottonPrice:  now,
		Currencies: map[string]float64{
			"EUR": 0.93,
			"GBP": 0.79,
			"JPY": 151.20,
			"CNY": 7.23,
			"BDT": 110.25,
			"INR": 83.45,
		},
		StockIndices: []domain.StockIndex{
			{Symbol: "S&P 500", Close: 5247.48, Change: 15.29, ChangePercent: 0.29, Date: now},
			{Symbol: "FTSE 100", Close: 8078.86, Change: -12.35, ChangePercent: -0.15, Date: now},
			{Symbol: "NIKKEI 225", Close: 38807.39, Change: 92.14, ChangePercent: 0.24, Date: now},
		},
		ExportStats: domain.ExportStats{
			MonthlyValue:      452.8,
			YoYChange:         3.2,
			TopDestination:    "United States",
			SecondDestination: "European Union",
			ThirdDestination:  "United Kingdom",
			LastUpdated:       now,
		},
		ExchangeRateTrend:    "The LKR has depreciated by 2.3% against the USD over the past month, potentially improving export competitiveness but increasing input costs for imported materials.",
		InflationImpact:      "Inflation rate has decreased by 0.4 percentage points, which may reduce pressure on labor costs in the short term. Manufacturing costs should stabilize if this trend continues.",
		MaterialCostForecast: "Cotton prices have increased slightly (2.4%), but remain lower than the previous quarter. Overall material costs are expected to remain stable in the near term.",
		MarketOutlook:        "Major consumer markets show stable retail demand. US and EU apparel retail sales increased by 1.8% and 1.2% respectively in the last quarter, indicating steady demand for Sri Lankan exports.",
		Source:               domain.SnapshotSourceLive,
	}
}
