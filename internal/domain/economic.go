package domain

import "time"

// Payloads served by the economic endpoints. Values are simulated except where the
// warehouse supplies the latest exchange rate, inflation and cotton price.

type StockIndex struct {
	Symbol        string    `json:"symbol"`
	Close         float64   `json:"close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Date          time.Time `json:"date"`
}

type ExportStats struct {
	MonthlyValue      float64   `json:"monthlyValue"`
	YoYChange         float64   `json:"yoyChange"`
	TopDestination    string    `json:"topDestination"`
	SecondDestination string    `json:"secondDestination"`
	ThirdDestination  string    `json:"thirdDestination"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// LiveEconomicData is the dashboard snapshot of current conditions
type LiveEconomicData struct {
	USDLKRRate              float64            `json:"usdLkrRate"`
	LastUpdatedExchangeRate time.Time          `json:"lastUpdatedExchangeRate"`
	InflationRate           float64            `json:"inflationRate"`
	PreviousInflationRate   float64            `json:"previousInflationRate"`
	LastUpdatedInflation    time.Time          `json:"lastUpdatedInflation"`
	CottonPrice             float64            `json:"cottonPrice"`
	CottonPriceChange       float64            `json:"cottonPriceChange"`
	CottonPriceChangePct    float64            `json:"cottonPriceChangePercent"`
	LastUpdatedCottonPrice  time.Time          `json:"lastUpdatedCottonPrice"`
	Currencies              map[string]float64 `json:"currencies"`
	StockIndices            []StockIndex       `json:"stockIndices"`
	ExportStats             ExportStats        `json:"exportStats"`
	ExchangeRateTrend       string             `json:"exchangeRateTrend"`
	InflationImpact         string             `json:"inflationImpact"`
	MaterialCostForecast    string             `json:"materialCostForecast"`
	MarketOutlook           string             `json:"marketOutlook"`
	Source                  string             `json:"source"`
}

type ExchangeRates struct {
	Base  string             `json:"base"`
	Date  time.Time          `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

type FreightRates struct {
	AsiaToUS     float64 `json:"asiaToUS"`
	AsiaToEurope float64 `json:"asiaToEurope"`
}

type CompetitorActivity struct {
	ExportGrowth float64 `json:"exportGrowth"`
	PriceIndex   float64 `json:"priceIndex"`
}

// EconomicIndicators are cost and demand indices relevant to garment exporters
type EconomicIndicators struct {
	LaborCostIndex     float64                       `json:"laborCostIndex"`
	EnergyCosts        float64                       `json:"energyCosts"`
	FreightRates       FreightRates                  `json:"freightRates"`
	MarketDemand       map[string]float64            `json:"marketDemand"`
	CompetitorActivity map[string]CompetitorActivity `json:"competitorActivity"`
	LastUpdated        time.Time                     `json:"lastUpdated"`
}

type MarketSegment struct {
	Name   string  `json:"name"`
	Share  float64 `json:"share"`
	Growth float64 `json:"growth"`
}

type MarketShare struct {
	Country string  `json:"country"`
	Share   float64 `json:"share"`
	Growth  float64 `json:"growth"`
}

type CompetitorProfile struct {
	MarketShare  float64 `json:"marketShare"`
	CostIndex    float64 `json:"costIndex"`
	QualityIndex float64 `json:"qualityIndex"`
}

type IndustryData struct {
	MarketSize         float64                      `json:"marketSize"`
	Growth             float64                      `json:"growth"`
	Segments           []MarketSegment              `json:"segments"`
	MajorMarkets       []MarketShare                `json:"majorMarkets"`
	CompetitorAnalysis map[string]CompetitorProfile `json:"competitorAnalysis"`
	LastUpdated        time.Time                    `json:"lastUpdated"`
}

type MaterialStatus struct {
	Status      string `json:"status"`
	Trend       string `json:"trend"`
	PriceImpact string `json:"priceImpact"`
}

type ShippingStatus struct {
	Status     string `json:"status"`
	Delay      string `json:"delay"`
	CostImpact string `json:"costImpact"`
}

type PortStatus struct {
	Status string `json:"status"`
	Trend  string `json:"trend"`
}

type LaborMarket struct {
	Availability   string   `json:"availability"`
	WageInflation  string   `json:"wageInflation"`
	SkillShortages []string `json:"skillShortages"`
}

type RiskAssessment struct {
	Overall      string   `json:"overall"`
	BiggestRisks []string `json:"biggestRisks"`
}

type SupplyChainStatus struct {
	RawMaterialAvailability map[string]MaterialStatus `json:"rawMaterialAvailability"`
	ShippingStatus          map[string]ShippingStatus `json:"shippingStatus"`
	PortCongestion          map[string]PortStatus     `json:"portCongestion"`
	LaborMarket             LaborMarket               `json:"laborMarket"`
	RiskAssessment          RiskAssessment            `json:"riskAssessment"`
	LastUpdated             time.Time                 `json:"lastUpdated"`
}

type PolicyUpdate struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	EffectiveDate      string   `json:"effectiveDate"`
	Impact             string   `json:"impact"`
	AffectedCategories []string `json:"affectedCategories"`
}

type TradePolicy struct {
	RecentUpdates   []PolicyUpdate `json:"recentUpdates"`
	UpcomingChanges []PolicyUpdate `json:"upcomingChanges"`
	LastUpdated     time.Time      `json:"lastUpdated"`
}

type WeatherDay struct {
	Date          string  `json:"date"`
	Condition     string  `json:"condition"`
	TemperatureC  float64 `json:"temperatureC"`
	RainfallMM    float64 `json:"rainfallMm"`
	RainChancePct float64 `json:"rainChancePercent"`
}

// WeatherPatterns describes conditions that affect production and seasonal demand
type WeatherPatterns struct {
	Region            string       `json:"region"`
	Season            string       `json:"season"`
	CurrentCondition  string       `json:"currentCondition"`
	TemperatureC      float64      `json:"temperatureC"`
	HumidityPct       float64      `json:"humidityPercent"`
	MonthlyRainfallMM float64      `json:"monthlyRainfallMm"`
	Forecast          []WeatherDay `json:"forecast"`
	ProductionImpact  string       `json:"productionImpact"`
	DemandImpact      string       `json:"demandImpact"`
	LastUpdated       time.Time    `json:"lastUpdated"`
}
