package indicator

import (
	"math"
	"math/rand"
	"testing"
)

// randomWalk returns a deterministic price path starting at 100
func randomWalk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	prices := make([]float64, n)
	v := 100.0
	for i := range prices {
		v += rng.Float64() - 0.5
		prices[i] = v
	}
	return prices
}

// naiveSMA re-sums every window; used as an oracle for SMA
func naiveSMA(prices []float64, window int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(prices) < window {
		return out
	}
	for i := window - 1; i < len(prices); i++ {
		var sum float64
		for j := i - window + 1; j <= i; j++ {
			sum += prices[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// naiveRSI re-sums gains and losses for every window; used as an oracle for RSI
func naiveRSI(prices []float64, window int) []float64 {
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(prices) <= window {
		return out
	}
	for i := window; i < len(prices); i++ {
		var gain, loss float64
		for j := i - window + 1; j <= i; j++ {
			diff := prices[j] - prices[j-1]
			if diff > 0 {
				gain += diff
			} else {
				loss -= diff
			}
		}
		avgGain := gain / float64(window)
		avgLoss := loss / float64(window)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		out[i] = 100 - 100/(1+avgGain/avgLoss)
	}
	return out
}

func assertMatchesOracle(t *testing.T, name string, got Series, want []float64, tolerance float64) {
	t.Helper()

	if got.Len() != len(want) {
		t.Fatalf("%s: expected length %d, got %d", name, len(want), got.Len())
	}
	for i, w := range want {
		v, ok := got.Value(i)
		if math.IsNaN(w) {
			if ok {
				t.Errorf("%s[%d]: expected undefined, got %f", name, i, v)
			}
			continue
		}
		if !ok {
			t.Errorf("%s[%d]: expected %f, got undefined", name, i, w)
			continue
		}
		if math.Abs(v-w) > tolerance {
			t.Errorf("%s[%d]: expected %f, got %f", name, i, w, v)
		}
	}
}

func TestSMA_MatchesNaive(t *testing.T) {
	prices := randomWalk(500, 1)
	for _, window := range []int{1, 2, 5, 20, 50, 500} {
		assertMatchesOracle(t, "sma", SMA(prices, window), naiveSMA(prices, window), 1e-9)
	}
}

func TestRSI_MatchesNaive(t *testing.T) {
	prices := randomWalk(500, 2)
	for _, window := range []int{1, 2, 14, 30, 499} {
		assertMatchesOracle(t, "rsi", RSI(prices, window), naiveRSI(prices, window), 1e-9)
	}
}
