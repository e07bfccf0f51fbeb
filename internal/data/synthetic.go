package data

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mohamedkhairy/stock-cruncher/internal/models"
)

// GeneratorConfig controls the synthetic random walk
type GeneratorConfig struct {
	Tickers int
	Points  int
	Seed    int64
}

// Generate builds Tickers random-walk series of Points closes each.
// Ticker t starts at 100+t and moves by sin(i*0.01) + (r-50)*0.001 per
// step, r uniform in [0,100). Each ticker draws from its own source seeded
// from (Seed, t), so output depends only on the config.
func Generate(cfg GeneratorConfig) []models.PriceSeries {
	if cfg.Tickers <= 0 || cfg.Points <= 0 {
		return nil
	}

	out := make([]models.PriceSeries, cfg.Tickers)
	for t := 0; t < cfg.Tickers; t++ {
		rng := rand.New(rand.NewSource(cfg.Seed*1_000_003 + int64(t)))
		closes := make([]float64, cfg.Points)
		v := 100.0 + float64(t)
		for i := range closes {
			v += math.Sin(float64(i)*0.01) + float64(rng.Intn(100)-50)*0.001
			closes[i] = v
		}
		out[t] = models.PriceSeries{
			ID:     TickerID(t),
			Closes: closes,
		}
	}
	return out
}

// TickerID names synthetic ticker t, e.g. "T007"
func TickerID(t int) string {
	return fmt.Sprintf("T%03d", t)
}
