package models

// ewma applies a single exponential moving average step with a
// smoothing factor of k = 2/(period+1).
func ewma(prev, sample float64, period int) float64 {
	k := 2 / (float64(period) + 1)
	return sample*k + prev*(1-k)
}
