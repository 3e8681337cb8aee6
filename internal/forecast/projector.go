// Package forecast implements the trend projection used to generate revenue forecasts
// and the one-step-ahead backtest that scores it against history.
package forecast

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/garmentiq/revenue-forecast-api/internal/domain"
)

const (
	// HistoryWindow is the number of most recent points a projection starts from
	HistoryWindow = 24
	// MinHistory is the fewest points a projection accepts
	MinHistory = 3
	// DefaultGrowth is used when no consecutive pair has a positive base
	DefaultGrowth = 0.02
	// Jitter is the half-width of the uniform noise added to each month's growth
	Jitter = 0.02
	// BandWidth is the relative distance of the bounds from the prediction
	BandWidth = 0.10
)

// ErrInsufficientHistory is returned when fewer than MinHistory points are given
var ErrInsufficientHistory = errors.New("insufficient history for projection")

// Observation is one historical month
type Observation struct {
	Date    time.Time
	Revenue float64
}

// Projector projects revenue forward from history. It is safe for concurrent use.
type Projector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewProjector creates a projector drawing noise from rnd. A nil rnd seeds from the clock.
func NewProjector(rnd *rand.Rand) *Projector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Projector{rnd: rnd}
}

// AverageGrowth is the mean month-over-month growth over pairs whose previous value is positive
func AverageGrowth(history []Observation) float64 {
	var sum float64
	var n int
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Revenue
		if prev <= 0 {
			continue
		}
		sum += (history[i].Revenue - prev) / prev
		n++
	}
	if n == 0 {
		return DefaultGrowth
	}
	return sum / float64(n)
}

// Project extends history (ascending by date) by months points. Each month compounds
// from the previous prediction with the average growth plus uniform noise.
func (p *Projector) Project(history []Observation, months int) ([]domain.ForecastPoint, error) {
	if len(history) < MinHistory {
		return nil, ErrInsufficientHistory
	}
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	growth := AverageGrowth(history)
	last := history[len(history)-1]
	revenue := last.Revenue
	date := last.Date

	points := make([]domain.ForecastPoint, 0, months)
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 0; i < months; i++ {
		g := growth + (p.rnd.Float64()*2-1)*Jitter
		revenue *= 1 + g
		date = date.AddDate(0, 1, 0)
		points = append(points, domain.ForecastPoint{
			Date:    date,
			Revenue: band(revenue),
		})
	}
	return points, nil
}

// band builds the ±BandWidth interval, keeping lower ≤ predicted ≤ upper for negative values too
func band(revenue float64) domain.RevenueBand {
	lower, upper := revenue*(1-BandWidth), revenue*(1+BandWidth)
	if lower > upper {
		lower, upper = upper, lower
	}
	return domain.RevenueBand{Predicted: revenue, LowerBound: lower, UpperBound: upper}
}
