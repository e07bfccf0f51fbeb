package indicator

import "fmt"

// Standard periods used by Compute
const (
	SMAShortWindow = 20
	SMALongWindow  = 50
	RSIWindow      = 14
	MACDFastPeriod = 12
	MACDSlowPeriod = 26
	MACDSignal     = 9
)

// Params holds the windows and periods for one pipeline run
type Params struct {
	SMAShort   int `json:"sma_short"`
	SMALong    int `json:"sma_long"`
	RSI        int `json:"rsi"`
	MACDFast   int `json:"macd_fast"`
	MACDSlow   int `json:"macd_slow"`
	MACDSignal int `json:"macd_signal"`
}

// DefaultParams returns the standard 20/50 SMA, 14 RSI and 12/26/9 MACD periods
func DefaultParams() Params {
	return Params{
		SMAShort:   SMAShortWindow,
		SMALong:    SMALongWindow,
		RSI:        RSIWindow,
		MACDFast:   MACDFastPeriod,
		MACDSlow:   MACDSlowPeriod,
		MACDSignal: MACDSignal,
	}
}

// MinLength returns the shortest series for which every indicator in the set
// has at least one defined value
func (p Params) MinLength() int {
	longest := p.SMALong
	if p.SMAShort > longest {
		longest = p.SMAShort
	}
	if p.RSI+1 > longest {
		longest = p.RSI + 1
	}
	slow := p.MACDSlow
	if p.MACDFast > slow {
		slow = p.MACDFast
	}
	if slow+p.MACDSignal-1 > longest {
		longest = slow + p.MACDSignal - 1
	}
	return longest
}

// String returns a compact name such as "sma20/50 rsi14 macd12/26/9"
func (p Params) String() string {
	return fmt.Sprintf("sma%d/%d rsi%d macd%d/%d/%d",
		p.SMAShort, p.SMALong, p.RSI, p.MACDFast, p.MACDSlow, p.MACDSignal)
}

// Set is the full indicator set for one price series. Every field has the
// length of the prices it was computed from.
type Set struct {
	SMAShort   Series `json:"sma_short"`
	SMALong    Series `json:"sma_long"`
	RSI        Series `json:"rsi"`
	MACD       Series `json:"macd"`
	MACDSignal Series `json:"macd_signal"`
}

// Len returns the length shared by all series in the set
func (s Set) Len() int {
	return s.SMAShort.Len()
}

// Equal reports whether two sets are bit-identical
func (s Set) Equal(other Set) bool {
	return s.SMAShort.Equal(other.SMAShort) &&
		s.SMALong.Equal(other.SMALong) &&
		s.RSI.Equal(other.RSI) &&
		s.MACD.Equal(other.MACD) &&
		s.MACDSignal.Equal(other.MACDSignal)
}

// UndefinedSet returns a set of length n with every position undefined
func UndefinedSet(n int) Set {
	return Set{
		SMAShort:   NewSeries(n),
		SMALong:    NewSeries(n),
		RSI:        NewSeries(n),
		MACD:       NewSeries(n),
		MACDSignal: NewSeries(n),
	}
}

// Compute computes the standard indicator set for one price series.
// It reads only prices and has no side effects; calling it twice on the same
// input yields bit-identical sets.
func Compute(prices []float64) Set {
	return ComputeWithParams(prices, DefaultParams())
}

// ComputeWithParams computes the indicator set using the given periods.
// Invalid periods yield undefined series rather than an error.
func ComputeWithParams(prices []float64, p Params) Set {
	macd, signal := MACD(prices, p.MACDFast, p.MACDSlow, p.MACDSignal)

	return Set{
		SMAShort:   SMA(prices, p.SMAShort),
		SMALong:    SMA(prices, p.SMALong),
		RSI:        RSI(prices, p.RSI),
		MACD:       macd,
		MACDSignal: signal,
	}
}
