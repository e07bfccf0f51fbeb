package indicator

// EMA calculates the Exponential Moving Average
// EMA[i] = Alpha * Price[i] + (1 - Alpha) * EMA[i-1]
// Alpha = 2 / (Period + 1)
//
// The recurrence is seeded at index period-1 with the arithmetic mean of the
// first period prices. Earlier positions are undefined. A non-positive period,
// an empty series or a series shorter than the period yields an all-undefined
// result. Each value depends on the previous one, so the scan is sequential.
func EMA(prices []float64, period int) Series {
	return emaScan(len(prices), period, func(i int) (float64, bool) {
		return prices[i], true
	})
}

// EMAOf applies the EMA recurrence to a series that may contain undefined
// positions. The seed is the mean of the first run of period consecutive
// defined values and lands on the last index of that run. An undefined input
// makes the output undefined and seeding starts over after it.
//
// For a fully defined input EMAOf is identical to EMA.
func EMAOf(s Series, period int) Series {
	return emaScan(s.Len(), period, s.Value)
}

func emaScan(n, period int, at func(int) (float64, bool)) Series {
	out := NewSeries(n)
	if period <= 0 || n == 0 || n < period {
		return out
	}

	alpha := 2.0 / (float64(period) + 1.0)
	run := 0 // consecutive defined inputs ending at i
	seeded := false
	var prev float64

	for i := 0; i < n; i++ {
		price, ok := at(i)
		if !ok {
			run = 0
			seeded = false
			continue
		}
		run++

		if seeded {
			prev = alpha*price + (1-alpha)*prev
			out.set(i, prev)
			continue
		}

		if run >= period {
			var sum float64
			for j := i - period + 1; j <= i; j++ {
				v, _ := at(j)
				sum += v
			}
			prev = sum / float64(period)
			seeded = true
			out.set(i, prev)
		}
	}

	return out
}
