package indicator

// MACD returns EMA(fast) - EMA(slow) wherever both are defined, together with
// its signal line EMAOf(macd, signal)
func MACD(prices []float64, fast, slow, signal int) (macd Series, signalLine Series) {
	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)

	macd = Difference(emaFast, emaSlow)
	signalLine = EMAOf(macd, signal)
	return macd, signalLine
}

// Difference returns a[i] - b[i] where both are defined, undefined elsewhere.
// The result has the length of the shorter input.
func Difference(a, b Series) Series {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}

	out := NewSeries(n)
	for i := 0; i < n; i++ {
		av, aok := a.Value(i)
		bv, bok := b.Value(i)
		if aok && bok {
			out.set(i, av-bv)
		}
	}
	return out
}
