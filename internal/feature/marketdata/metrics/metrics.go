// Package metrics derives per-row analytics from a raw daily bar series.
package metrics

import (
	"math"

	"stockintel/internal/feature/marketdata/domain/entity"
)

const (
	// MAWindow is the moving-average window in trading days.
	MAWindow = 7
	// RangeWindow approximates 52 weeks in trading days.
	RangeWindow = 252
	// VolatilityWindow is the daily-return stddev window.
	VolatilityWindow = 30
	// TradingDaysPerYear is used to annualize daily volatility.
	TradingDaysPerYear = 252
)

// Derive computes a MetricRow for every bar in the input. Bars must be
// sorted ascending by date; raw OHLCV values pass through untouched.
// Windows shrink at the start of the series (minimum one row).
//
// Any gap-filling of raw columns must happen before Derive: rolling
// statistics are persisted as computed and cannot be corrected later.
//
// Each rolling statistic is maintained incrementally (running sums and
// monotonic deques), so the whole pass is O(n) regardless of window size.
func Derive(bars []entity.Bar) []entity.MetricRow {
	rows := make([]entity.MetricRow, 0, len(bars))

	// closeSum tracks the trailing MAWindow closes; the deques hold the
	// trailing RangeWindow highs (decreasing) and lows (increasing);
	// retSum/retSumSq track the trailing VolatilityWindow returns.
	var (
		closeSum float64
		highs    monotonicDeque
		lows     monotonicDeque
		retSum   float64
		retSumSq float64
		returns  = make([]float64, 0, len(bars))
	)

	for i, b := range bars {
		var r float64
		if b.Open != 0 {
			r = (b.Close - b.Open) / b.Open
		}
		returns = append(returns, r)

		closeSum += b.Close
		if i >= MAWindow {
			closeSum -= bars[i-MAWindow].Close
		}
		maLen := min(i+1, MAWindow)

		highs.pushMax(i, b.High)
		highs.evict(i - RangeWindow)
		lows.pushMin(i, b.Low)
		lows.evict(i - RangeWindow)

		retSum += r
		retSumSq += r * r
		if i >= VolatilityWindow {
			old := returns[i-VolatilityWindow]
			retSum -= old
			retSumSq -= old * old
		}
		volLen := min(i+1, VolatilityWindow)

		rows = append(rows, entity.MetricRow{
			Bar:         b,
			DailyReturn: r,
			MA7:         closeSum / float64(maLen),
			RollingHigh: highs.front(),
			RollingLow:  lows.front(),
			Volatility:  annualizedStd(retSum, retSumSq, volLen),
		})
	}
	return rows
}

// annualizedStd returns the sample standard deviation (n-1 denominator)
// implied by a window's sum and sum of squares, scaled by sqrt(252).
// Windows with fewer than two rows yield 0 by convention.
func annualizedStd(sum, sumSq float64, n int) float64 {
	if n < 2 {
		return 0
	}
	variance := (sumSq - sum*sum/float64(n)) / float64(n-1)
	if variance < 0 {
		// Floating-point cancellation on near-constant windows.
		variance = 0
	}
	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear)
}

// monotonicDeque tracks the extremum of a sliding index window in O(1)
// amortized per push. Entries are (index, value) with values kept
// monotonic from front to back.
type monotonicDeque struct {
	idx []int
	val []float64
}

func (d *monotonicDeque) pushMax(i int, v float64) {
	for len(d.val) > 0 && d.val[len(d.val)-1] <= v {
		d.idx = d.idx[:len(d.idx)-1]
		d.val = d.val[:len(d.val)-1]
	}
	d.idx = append(d.idx, i)
	d.val = append(d.val, v)
}

func (d *monotonicDeque) pushMin(i int, v float64) {
	for len(d.val) > 0 && d.val[len(d.val)-1] >= v {
		d.idx = d.idx[:len(d.idx)-1]
		d.val = d.val[:len(d.val)-1]
	}
	d.idx = append(d.idx, i)
	d.val = append(d.val, v)
}

// evict drops front entries whose index is <= bound.
func (d *monotonicDeque) evict(bound int) {
	for len(d.idx) > 0 && d.idx[0] <= bound {
		d.idx = d.idx[1:]
		d.val = d.val[1:]
	}
}

func (d *monotonicDeque) front() float64 {
	return d.val[0]
}
