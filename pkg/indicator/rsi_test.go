package indicator

import (
	"math"
	"testing"
)

func TestRSI_IncreasingPrices(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = float64(i)
	}

	rsi := RSI(prices, 14)
	for i := 0; i < 14; i++ {
		if rsi.IsDefined(i) {
			t.Errorf("RSI should be undefined at %d", i)
		}
	}
	for i := 14; i < len(prices); i++ {
		v, ok := rsi.Value(i)
		if !ok {
			t.Fatalf("RSI should be defined at %d", i)
		}
		if v != 100.0 {
			t.Errorf("Expected RSI 100 with no losses at %d, got %f", i, v)
		}
	}
}

func TestRSI_DecreasingPrices(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 - float64(i)
	}

	rsi := RSI(prices, 5)
	for i := 5; i < len(prices); i++ {
		if v, _ := rsi.Value(i); v != 0 {
			t.Errorf("Expected RSI 0 with no gains at %d, got %f", i, v)
		}
	}
}

func TestRSI_ConstantPrices(t *testing.T) {
	prices := []float64{5, 5, 5, 5, 5}
	rsi := RSI(prices, 2)

	for i := 2; i < len(prices); i++ {
		if v, _ := rsi.Value(i); v != 100 {
			t.Errorf("Expected RSI 100 for flat prices at %d, got %f", i, v)
		}
	}
}

func TestRSI_Alternating(t *testing.T) {
	prices := []float64{1, 2, 1, 2, 1}
	rsi := RSI(prices, 2)

	for i := 2; i < len(prices); i++ {
		v, ok := rsi.Value(i)
		if !ok {
			t.Fatalf("RSI should be defined at %d", i)
		}
		if math.Abs(v-50) > 1e-9 {
			t.Errorf("Expected RSI 50 at %d, got %f", i, v)
		}
	}
}

func TestRSI_KnownValue(t *testing.T) {
	// gains over the window ending at 3: 2, 0, 1; losses: 0, 1, 0
	prices := []float64{10, 12, 11, 12}
	rsi := RSI(prices, 3)

	expected := 100 - 100/(1+(3.0/3)/(1.0/3))
	v, ok := rsi.Value(3)
	if !ok {
		t.Fatal("RSI should be defined at 3")
	}
	if math.Abs(v-expected) > 1e-9 {
		t.Errorf("Expected %f, got %f", expected, v)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	prices := make([]float64, 14)
	for _, window := range []int{0, -2, 14, 15} {
		rsi := RSI(prices, window)
		if rsi.Len() != len(prices) {
			t.Errorf("RSI(%d): expected length %d, got %d", window, len(prices), rsi.Len())
		}
		if rsi.DefinedCount() != 0 {
			t.Errorf("RSI(%d): expected all undefined, got %d defined", window, rsi.DefinedCount())
		}
	}
}
