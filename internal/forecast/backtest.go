package forecast

import (
	"math"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
)

// minBacktestSamples is the fewest one-step predictions needed to report metrics
const minBacktestSamples = 2

// Backtest replays the growth rule over history without noise. For each i ≥ 2 the point
// is predicted from point i-1 and the average growth of points[0..i-1]. MAPE skips
// zero actuals.
func Backtest(history []Observation) domain.AccuracyMetrics {
	var absSum, sqSum, pctSum float64
	var samples, pctSamples int

	for i := 2; i < len(history); i++ {
		growth := AverageGrowth(history[:i])
		predicted := history[i-1].Revenue * (1 + growth)
		actual := history[i].Revenue
		diff := actual - predicted

		absSum += math.Abs(diff)
		sqSum += diff * diff
		samples++
		if actual != 0 {
			pctSum += math.Abs(diff / actual)
			pctSamples++
		}
	}

	if samples < minBacktestSamples {
		return domain.AccuracyMetrics{Status: domain.AccuracyUnavailable, Samples: samples}
	}

	mae := round2(absSum / float64(samples))
	rmse := round2(math.Sqrt(sqSum / float64(samples)))
	metrics := domain.AccuracyMetrics{
		MAE:     &mae,
		RMSE:    &rmse,
		Status:  domain.AccuracyBacktest,
		Samples: samples,
	}
	if pctSamples > 0 {
		mape := round2(pctSum / float64(pctSamples) * 100)
		metrics.MAPE = &mape
	}
	return metrics
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
