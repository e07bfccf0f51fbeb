package indicator

// RSI calculates the Relative Strength Index over a trailing window
// RSI = 100 - (100 / (1 + RS))
// where RS = Average Gain / Average Loss over the window
//
// Gains and losses are simple window averages (not Wilder smoothing).
// A window with no losses has RSI 100. Values are undefined for i <= window-1,
// and entirely undefined when window <= 0 or len(prices) <= window.
func RSI(prices []float64, window int) Series {
	n := len(prices)
	out := NewSeries(n)
	if window <= 0 || n <= window {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change // Loss is positive
		}
	}

	g := PrefixSum(gains)
	l := PrefixSum(losses)
	w := float64(window)
	for i := window; i < n; i++ {
		avgGain := windowSum(g, i, window) / w
		avgLoss := windowSum(l, i, window) / w
		out.set(i, rsiValue(avgGain, avgLoss))
	}

	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0 // All gains, no losses
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
