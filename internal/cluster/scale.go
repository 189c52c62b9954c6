package cluster

import "math"

// Standardize returns a copy of rows with every column scaled to zero mean
// and unit (population) variance. Constant columns become 0 and any
// non-finite value is replaced by 0.
func Standardize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	n := float64(len(rows))
	dims := len(rows[0])

	means := make([]float64, dims)
	for _, r := range rows {
		for d := 0; d < dims; d++ {
			means[d] += finiteOrZero(r[d])
		}
	}
	for d := range means {
		means[d] /= n
	}

	stds := make([]float64, dims)
	for _, r := range rows {
		for d := 0; d < dims; d++ {
			diff := finiteOrZero(r[d]) - means[d]
			stds[d] += diff * diff
		}
	}
	for d := range stds {
		stds[d] = math.Sqrt(stds[d] / n)
	}

	out := make([][]float64, len(rows))
	for i, r := range rows {
		scaled := make([]float64, dims)
		for d := 0; d < dims; d++ {
			if stds[d] <= 1e-12*math.Max(1, math.Abs(means[d])) {
				continue
			}
			scaled[d] = finiteOrZero((finiteOrZero(r[d]) - means[d]) / stds[d])
		}
		out[i] = scaled
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
