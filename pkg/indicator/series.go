package indicator

import (
	"encoding/json"
	"math"

	"github.com/moznion/go-optional"
)

// Series is an indicator series aligned by index with the prices it was
// computed from. Positions where no value is computable yet are undefined.
// Definedness is tracked separately from the values, so a computed 0 is never
// mistaken for "not yet computable".
type Series struct {
	values  []float64
	defined []bool
}

// NewSeries creates a series of length n with every position undefined
func NewSeries(n int) Series {
	if n < 0 {
		n = 0
	}
	return Series{
		values:  make([]float64, n),
		defined: make([]bool, n),
	}
}

// FromValues creates a fully defined series holding a copy of values
func FromValues(values []float64) Series {
	s := NewSeries(len(values))
	copy(s.values, values)
	for i := range s.defined {
		s.defined[i] = true
	}
	return s
}

// FromFloats is the inverse of Floats: NaN entries become undefined
func FromFloats(values []float64) Series {
	s := NewSeries(len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			s.set(i, v)
		}
	}
	return s
}

// Len returns the number of positions in the series
func (s Series) Len() int {
	return len(s.values)
}

// At returns the value at index i, or None if it is undefined or out of range
func (s Series) At(i int) optional.Option[float64] {
	if v, ok := s.Value(i); ok {
		return optional.Some(v)
	}
	return optional.None[float64]()
}

// Last returns the final value, or None if it is undefined or the series is empty
func (s Series) Last() optional.Option[float64] {
	return s.At(len(s.values) - 1)
}

// Value returns the value at index i and whether it is defined
func (s Series) Value(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) || !s.defined[i] {
		return 0, false
	}
	return s.values[i], true
}

// IsDefined reports whether index i holds a computed value
func (s Series) IsDefined(i int) bool {
	return i >= 0 && i < len(s.defined) && s.defined[i]
}

// DefinedCount returns how many positions hold a value
func (s Series) DefinedCount() int {
	count := 0
	for _, ok := range s.defined {
		if ok {
			count++
		}
	}
	return count
}

// FirstDefined returns the first defined index, or -1 if there is none
func (s Series) FirstDefined() int {
	for i, ok := range s.defined {
		if ok {
			return i
		}
	}
	return -1
}

// Floats returns the values with undefined positions rendered as NaN.
// Intended for export and plotting only; computation never reads NaN back.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		if s.defined[i] {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Equal reports whether both series have the same definedness and
// bit-identical values at every defined position
func (s Series) Equal(other Series) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for i := range s.values {
		if s.defined[i] != other.defined[i] {
			return false
		}
		if s.defined[i] && math.Float64bits(s.values[i]) != math.Float64bits(other.values[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the series as an array with null for undefined positions
func (s Series) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s.values))
	for i := range s.values {
		if s.defined[i] {
			v := s.values[i]
			out[i] = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the MarshalJSON form, null entries become undefined
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewSeries(len(raw))
	for i, v := range raw {
		if v != nil {
			s.set(i, *v)
		}
	}
	return nil
}

func (s *Series) set(i int, v float64) {
	s.values[i] = v
	s.defined[i] = true
}
