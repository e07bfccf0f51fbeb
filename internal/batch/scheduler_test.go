package batch

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
	"github.com/mohamedkhairy/stock-cruncher/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSeries(count, points int) []models.PriceSeries {
	out := make([]models.PriceSeries, count)
	for t := 0; t < count; t++ {
		rng := rand.New(rand.NewSource(int64(t + 1)))
		closes := make([]float64, points)
		price := 100.0 + float64(t)
		for i := range closes {
			price += rng.Float64() - 0.5
			closes[i] = price
		}
		out[t] = models.PriceSeries{ID: fmt.Sprintf("T%03d", t), Closes: closes}
	}
	return out
}

func TestNewScheduler_DefaultWorkers(t *testing.T) {
	s := NewScheduler(Config{Workers: 0})
	assert.Greater(t, s.Workers(), 0)

	s = NewScheduler(Config{Workers: 3})
	assert.Equal(t, 3, s.Workers())
}

func TestRun_Empty(t *testing.T) {
	s := NewScheduler(Config{Workers: 4})
	results := s.Run(context.Background(), nil)
	assert.Empty(t, results)
}

func TestRun_MatchesSequential(t *testing.T) {
	series := makeSeries(40, 300)
	ctx := context.Background()

	sequential := NewScheduler(Config{Workers: 1}).Run(ctx, series)
	parallel := NewScheduler(Config{Workers: 8}).Run(ctx, series)

	require.Len(t, sequential, len(series))
	require.Len(t, parallel, len(series))

	for i := range series {
		require.NoError(t, sequential[i].Err)
		require.NoError(t, parallel[i].Err)
		assert.Equal(t, i, parallel[i].Index)
		assert.Equal(t, series[i].ID, parallel[i].ID)
		assert.True(t, sequential[i].Set.Equal(parallel[i].Set), "series %d differs between 1 and 8 workers", i)
		assert.True(t, parallel[i].Set.Equal(indicator.Compute(series[i].Closes)), "series %d differs from direct computation", i)
	}
}

func TestRun_MoreWorkersThanSeries(t *testing.T) {
	series := makeSeries(2, 60)
	results := NewScheduler(Config{Workers: 16}).Run(context.Background(), series)

	require.Len(t, results, 2)
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, 60, r.Set.Len())
		assert.Equal(t, series[i].ID, r.ID)
	}
}

func TestRun_MalformedSeriesIsIsolated(t *testing.T) {
	series := makeSeries(5, 80)
	series[2].Closes[10] = math.NaN()
	series[3].Dates = []string{"2024-01-01"}

	results := NewScheduler(Config{Workers: 3}).Run(context.Background(), series)

	for i, r := range results {
		switch i {
		case 2, 3:
			require.Error(t, r.Err)
			assert.ErrorIs(t, r.Err, models.ErrMalformedSeries)
			assert.Equal(t, 80, r.Set.Len())
			assert.Equal(t, 0, r.Set.SMAShort.DefinedCount())
			assert.Equal(t, 0, r.Set.MACDSignal.DefinedCount())
		default:
			require.NoError(t, r.Err)
			assert.True(t, r.Set.Equal(indicator.Compute(series[i].Closes)))
		}
	}

	stats := Summarize(results)
	assert.Equal(t, Stats{Series: 5, Succeeded: 3, Failed: 2}, stats)
}

func TestRun_PanicIsRecovered(t *testing.T) {
	series := makeSeries(4, 70)
	poison := series[1].Closes[0]

	compute := func(prices []float64) indicator.Set {
		if prices[0] == poison {
			panic("boom")
		}
		return indicator.Compute(prices)
	}

	results := NewScheduler(Config{Workers: 2}, WithCompute(compute)).Run(context.Background(), series)

	require.Error(t, results[1].Err)
	assert.ErrorIs(t, results[1].Err, ErrUnitPanicked)
	assert.Contains(t, results[1].Err.Error(), "boom")
	assert.Equal(t, 70, results[1].Set.Len())

	for _, i := range []int{0, 2, 3} {
		assert.NoError(t, results[i].Err)
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	series := makeSeries(10, 60)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	compute := func(prices []float64) indicator.Set {
		calls.Add(1)
		return indicator.Compute(prices)
	}

	results := NewScheduler(Config{Workers: 4}, WithCompute(compute)).Run(ctx, series)

	require.Len(t, results, 10)
	assert.Equal(t, int32(0), calls.Load())
	for i, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, 60, r.Set.Len())
	}
	assert.Equal(t, 10, Summarize(results).Cancelled)
}

func TestRun_CancelMidBatch(t *testing.T) {
	series := makeSeries(50, 60)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var once sync.Once
	compute := func(prices []float64) indicator.Set {
		once.Do(cancel)
		return indicator.Compute(prices)
	}

	results := NewScheduler(Config{Workers: 1}, WithCompute(compute)).Run(ctx, series)

	require.Len(t, results, 50)
	stats := Summarize(results)
	assert.GreaterOrEqual(t, stats.Succeeded, 1)
	assert.Greater(t, stats.Cancelled, 0)
	assert.Equal(t, 50, stats.Succeeded+stats.Cancelled)

	// Units that ran are complete and correct
	for i, r := range results {
		if r.Err == nil {
			assert.True(t, r.Set.Equal(indicator.Compute(series[i].Closes)))
		}
	}
}

func TestRun_OnUnitDone(t *testing.T) {
	series := makeSeries(12, 60)

	var mu sync.Mutex
	seen := make(map[int]bool)
	hook := func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		seen[r.Index] = true
	}

	NewScheduler(Config{Workers: 4}, WithOnUnitDone(hook)).Run(context.Background(), series)

	assert.Len(t, seen, 12)
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	series := makeSeries(3, 60)
	before := make([][]float64, len(series))
	for i := range series {
		before[i] = append([]float64(nil), series[i].Closes...)
	}

	NewScheduler(Config{Workers: 2}).Run(context.Background(), series)

	for i := range series {
		assert.Equal(t, before[i], series[i].Closes)
	}
}
