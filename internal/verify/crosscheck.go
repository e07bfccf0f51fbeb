package verify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// DefaultTolerance is the largest absolute deviation accepted by Report.OK
const DefaultTolerance = 1e-6

// Deviation is the largest absolute difference found for one indicator
type Deviation struct {
	Name    string
	MaxAbs  float64
	AtIndex int // -1 when nothing was compared
	Checked int
}

// Report is the result of comparing an indicator set against techan
type Report struct {
	Deviations []Deviation
}

// MaxAbs returns the largest deviation across all indicators
func (r Report) MaxAbs() float64 {
	var worst float64
	for _, d := range r.Deviations {
		if d.MaxAbs > worst {
			worst = d.MaxAbs
		}
	}
	return worst
}

// OK reports whether every deviation is within tol
func (r Report) OK(tol float64) bool {
	return r.MaxAbs() <= tol
}

// String renders e.g. "sma20=1.2e-13 sma50=3.1e-14 macd=8.0e-12"
func (r Report) String() string {
	parts := make([]string, 0, len(r.Deviations))
	for _, d := range r.Deviations {
		parts = append(parts, fmt.Sprintf("%s=%.1e", d.Name, d.MaxAbs))
	}
	return strings.Join(parts, " ")
}

// CrossCheck recomputes SMA short, SMA long and MACD with techan for the
// default periods and measures how far set deviates on the indices where
// set is defined.
func CrossCheck(prices []float64, set indicator.Set) Report {
	p := indicator.DefaultParams()
	series := timeSeries(prices)
	closes := techan.NewClosePriceIndicator(series)

	return Report{Deviations: []Deviation{
		compare(fmt.Sprintf("sma%d", p.SMAShort), set.SMAShort, techan.NewSimpleMovingAverage(closes, p.SMAShort)),
		compare(fmt.Sprintf("sma%d", p.SMALong), set.SMALong, techan.NewSimpleMovingAverage(closes, p.SMALong)),
		compare("macd", set.MACD, techan.NewMACDIndicator(closes, p.MACDFast, p.MACDSlow)),
	}}
}

// timeSeries loads closes into a techan series, one candle per minute
func timeSeries(prices []float64) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		period := techan.NewTimePeriod(start.Add(time.Duration(i)*time.Minute), time.Minute)
		candle := techan.NewCandle(period)
		candle.OpenPrice = big.NewDecimal(p)
		candle.MaxPrice = big.NewDecimal(p)
		candle.MinPrice = big.NewDecimal(p)
		candle.ClosePrice = big.NewDecimal(p)
		series.AddCandle(candle)
	}
	return series
}

func compare(name string, ours indicator.Series, reference techan.Indicator) Deviation {
	d := Deviation{Name: name, AtIndex: -1}
	// Ascending order keeps techan's recursive EMA cache shallow
	for i := 0; i < ours.Len(); i++ {
		v, ok := ours.Value(i)
		if !ok {
			continue
		}
		diff := math.Abs(v - reference.Calculate(i).Float())
		d.Checked++
		if diff > d.MaxAbs || d.AtIndex < 0 {
			d.MaxAbs = diff
			d.AtIndex = i
		}
	}
	return d
}
