package indicator

// SMA calculates the Simple Moving Average over a fixed window
// SMA[i] = Sum(prices[i-window+1..i]) / window
//
// Values are undefined for i < window-1. A non-positive window or a series
// shorter than the window yields an all-undefined result.
func SMA(prices []float64, window int) Series {
	n := len(prices)
	out := NewSeries(n)
	if window <= 0 || n < window {
		return out
	}

	p := PrefixSum(prices)
	w := float64(window)
	for i := window - 1; i < n; i++ {
		out.set(i, windowSum(p, i, window)/w)
	}

	return out
}
