package verify

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	prices := make([]float64, n)
	v := 100.0
	for i := range prices {
		v += math.Sin(float64(i)*0.05) + rng.Float64() - 0.5
		prices[i] = v
	}
	return prices
}

func TestCrossCheck_AgreesWithTechan(t *testing.T) {
	prices := walk(300, 3)
	report := CrossCheck(prices, indicator.Compute(prices))

	require.Len(t, report.Deviations, 3)
	assert.Equal(t, "sma20", report.Deviations[0].Name)
	assert.Equal(t, "sma50", report.Deviations[1].Name)
	assert.Equal(t, "macd", report.Deviations[2].Name)

	assert.Equal(t, 300-19, report.Deviations[0].Checked)
	assert.Equal(t, 300-49, report.Deviations[1].Checked)
	assert.Equal(t, 300-25, report.Deviations[2].Checked)

	assert.True(t, report.OK(DefaultTolerance), "deviations too large: %s", report)
}

func TestCrossCheck_DetectsDivergence(t *testing.T) {
	prices := walk(120, 5)
	set := indicator.Compute(prices)
	set.SMAShort = indicator.SMA(prices, 10)

	report := CrossCheck(prices, set)
	assert.False(t, report.OK(DefaultTolerance))
	assert.Greater(t, report.Deviations[0].MaxAbs, DefaultTolerance)
}

func TestCrossCheck_ShortSeries(t *testing.T) {
	prices := walk(10, 1)
	report := CrossCheck(prices, indicator.Compute(prices))

	for _, d := range report.Deviations {
		assert.Equal(t, 0, d.Checked)
		assert.Equal(t, -1, d.AtIndex)
	}
	assert.True(t, report.OK(0))
}

func TestReport_String(t *testing.T) {
	r := Report{Deviations: []Deviation{{Name: "sma20", MaxAbs: 0.5}, {Name: "macd", MaxAbs: 0}}}
	assert.Equal(t, "sma20=5.0e-01 macd=0.0e+00", r.String())
	assert.Equal(t, 0.5, r.MaxAbs())
}
