// Package cluster partitions standardized feature rows into behavioural
// groups and names them.
package cluster

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Result is the outcome of one clustering fit.
type Result struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// Clusterer partitions rows into k groups.
type Clusterer interface {
	Fit(rows [][]float64, k int) (Result, error)
}

// KMeans is Lloyd's algorithm with k-means++ seeding and several restarts.
// The same Seed over the same rows always yields the same Result.
type KMeans struct {
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64
}

// NewKMeans returns a KMeans with the usual restart and iteration limits.
func NewKMeans(seed int64) *KMeans {
	return &KMeans{Seed: seed, NInit: 10, MaxIter: 300, Tol: 1e-4}
}

// Fit implements Clusterer.
func (km *KMeans) Fit(rows [][]float64, k int) (Result, error) {
	n := len(rows)
	if n == 0 {
		return Result{}, errors.New("no rows to cluster")
	}
	if k < 1 || k > n {
		return Result{}, fmt.Errorf("k=%d out of range for %d rows", k, n)
	}
	dims := len(rows[0])
	for i, r := range rows {
		if len(r) != dims {
			return Result{}, fmt.Errorf("row %d has %d columns, want %d", i, len(r), dims)
		}
	}

	nInit := km.NInit
	if nInit < 1 {
		nInit = 1
	}
	maxIter := km.MaxIter
	if maxIter < 1 {
		maxIter = 300
	}

	rng := rand.New(rand.NewSource(km.Seed)) //nolint:gosec // reproducible seeding, not security

	var best Result
	for run := 0; run < nInit; run++ {
		centroids := seedPlusPlus(rows, k, rng)
		res := lloyd(rows, centroids, maxIter, km.Tol)
		if run == 0 || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centroids, each drawn with probability
// proportional to its squared distance from the nearest centroid so far.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(rows[rng.Intn(n)]))

	dist := make([]float64, n)
	for i, r := range rows {
		dist[i] = sqDist(r, centroids[0])
	}

	for len(centroids) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		pick := 0
		if total <= 0 {
			pick = rng.Intn(n)
		} else {
			target := rng.Float64() * total
			var cum float64
			pick = n - 1
			for i, d := range dist {
				cum += d
				if cum >= target && d > 0 {
					pick = i
					break
				}
			}
		}

		c := clone(rows[pick])
		centroids = append(centroids, c)
		for i, r := range rows {
			if d := sqDist(r, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

func lloyd(rows [][]float64, centroids [][]float64, maxIter int, tol float64) Result {
	n, k := len(rows), len(centroids)
	dims := len(rows[0])
	labels := make([]int, n)

	for iter := 0; iter < maxIter; iter++ {
		assign(rows, centroids, labels)

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, r := range rows {
			c := labels[i]
			counts[c]++
			for d, v := range r {
				sums[c][d] += v
			}
		}

		var shift float64
		for c := 0; c < k; c++ {
			next := sums[c]
			if counts[c] == 0 {
				next = clone(rows[farthest(rows, centroids, labels)])
			} else {
				for d := range next {
					next[d] /= float64(counts[c])
				}
			}
			shift += sqDist(next, centroids[c])
			centroids[c] = next
		}

		if shift <= tol {
			break
		}
	}

	inertia := assign(rows, centroids, labels)
	return Result{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// assign labels every row with its nearest centroid (lowest index on ties)
// and returns the total squared distance.
func assign(rows, centroids [][]float64, labels []int) float64 {
	var inertia float64
	for i, r := range rows {
		bestC, bestD := 0, math.Inf(1)
		for c, cen := range centroids {
			if d := sqDist(r, cen); d < bestD {
				bestC, bestD = c, d
			}
		}
		labels[i] = bestC
		inertia += bestD
	}
	return inertia
}

func farthest(rows, centroids [][]float64, labels []int) int {
	idx, maxD := 0, -1.0
	for i, r := range rows {
		if d := sqDist(r, centroids[labels[i]]); d > maxD {
			idx, maxD = i, d
		}
	}
	return idx
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
