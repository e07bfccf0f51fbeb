package indicator

// PrefixSum returns P with len(a)+1 entries where P[0] = 0 and
// P[i+1] = P[i] + a[i]. The sum of a[lo:hi] is P[hi] - P[lo].
func PrefixSum(a []float64) []float64 {
	p := make([]float64, len(a)+1)
	for i, v := range a {
		p[i+1] = p[i] + v
	}
	return p
}

// windowSum returns the sum of the window ending at index i (inclusive)
func windowSum(p []float64, i, window int) float64 {
	return p[i+1] - p[i+1-window]
}
