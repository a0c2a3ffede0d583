// Package synthetic generates deterministic sample bar series used when
// the upstream provider is unavailable.
package synthetic

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"stockintel/internal/feature/marketdata/domain/entity"
	"stockintel/internal/feature/marketdata/usecase"
)

const (
	priceFloor  = 100.0
	trendPeriod = 50.0 // steps per trend cycle
	trendAmp    = 50.0
	noiseStd    = 20.0
)

// basePrices seeds the walk near each symbol's real price range.
var basePrices = map[string]float64{
	"INFY.NS":      1500,
	"TCS.NS":       3500,
	"RELIANCE.NS":  2500,
	"HDFCBANK.NS":  1700,
	"ICICIBANK.NS": 1000,
}

const defaultBasePrice = 1500.0

// Generator adapts this package to the ingest pipeline's
// FallbackGenerator interface.
type Generator struct{}

var _ usecase.FallbackGenerator = Generator{}

func (Generator) Generate(symbol string, days int) []entity.Bar {
	return Generate(symbol, days)
}

// Generate returns a plausible ascending weekday-only bar series for the
// symbol, ending at the current date. The series is deterministic per
// symbol: the seed is FNV-1a(symbol) mod 1000, so repeated fallbacks
// produce identical data. Exact values are not portable across
// implementations; only the shape (weekday dates, floor, OHLC invariant)
// is contractual.
func Generate(symbol string, days int) []entity.Bar {
	return GenerateAt(symbol, days, time.Now())
}

// GenerateAt is Generate with an explicit end date, for tests.
func GenerateAt(symbol string, days int, end time.Time) []entity.Bar {
	dates := tradingDatesBackward(end, days)
	rng := rand.New(rand.NewSource(int64(seed(symbol))))

	base, ok := basePrices[symbol]
	if !ok {
		base = defaultBasePrice
	}

	closes := make([]float64, days)
	price := base
	for i := 0; i < days; i++ {
		trend := math.Sin(float64(i)/trendPeriod) * trendAmp
		noise := rng.NormFloat64() * noiseStd
		price = math.Max(priceFloor, price+trend+noise)
		closes[i] = price
	}

	bars := make([]entity.Bar, days)
	for i, c := range closes {
		open := c * (1 + uniform(rng, -0.01, 0.01))
		high := c * (1 + uniform(rng, 0, 0.02))
		low := c * (1 - uniform(rng, 0, 0.02))

		// Force the OHLC invariant, then push slightly past the extremum.
		high = math.Max(high, math.Max(open, c)) * (1 + uniform(rng, 0, 0.01))
		low = math.Min(low, math.Min(open, c)) * (1 - uniform(rng, 0, 0.01))

		bars[i] = entity.Bar{
			Symbol: symbol,
			Date:   dates[i],
			Open:   open,
			High:   high,
			Low:    low,
			Close:  c,
			Volume: int64(uniform(rng, 1_000_000, 5_000_000)),
		}
	}
	return bars
}

// tradingDatesBackward collects the most recent `count` weekdays ending
// at or before `end`, returned ascending.
func tradingDatesBackward(end time.Time, count int) []time.Time {
	dates := make([]time.Time, 0, count)
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for len(dates) < count {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}

// seed derives the per-symbol RNG seed. FNV-1a is the documented stable
// hash; it keeps the fallback reproducible across runs and platforms.
func seed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32() % 1000
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
