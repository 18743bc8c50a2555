package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/mkrish/go-crime-routes/internal/geo"
)

// KMeans partitions incident coordinates into K spatial hotspots with
// Lloyd's algorithm on raw (lat, lon) treated as a 2-D Euclidean plane.
// A fixed Seed makes the assignment reproducible for identical input.
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int
}

func NewKMeans(k int) *KMeans {
	return &KMeans{
		K:       k,
		Seed:    0,
		MaxIter: 100,
	}
}

// Assign returns one cluster id in [0, K) per input point, in input order.
// With fewer points than K no clustering happens: every point lands in the
// single degenerate cluster 0.
func (km *KMeans) Assign(points []geo.Point) []int {
	assignment := make([]int, len(points))
	if len(points) < km.K || km.K < 2 {
		return assignment
	}

	data := make([][]float64, len(points))
	for i, p := range points {
		data[i] = []float64{p.Lat, p.Lon}
	}

	centroids := km.initCentroids(data)

	for iter := 0; iter < km.MaxIter; iter++ {
		changed := false
		for i, v := range data {
			best := nearestCentroid(v, centroids)
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		recomputeCentroids(data, assignment, centroids)
	}

	return assignment
}

// initCentroids seeds with K distinct input points chosen by a seeded
// shuffle (Forgy initialization).
func (km *KMeans) initCentroids(data [][]float64) [][]float64 {
	rng := rand.New(rand.NewSource(km.Seed))
	perm := rng.Perm(len(data))

	centroids := make([][]float64, km.K)
	for i := 0; i < km.K; i++ {
		centroids[i] = []float64{data[perm[i]][0], data[perm[i]][1]}
	}
	return centroids
}

func nearestCentroid(v []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(v, centroid, 2); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// recomputeCentroids moves each centroid to the mean of its members. A
// centroid that lost every member keeps its previous position, which keeps
// the run deterministic.
func recomputeCentroids(data [][]float64, assignment []int, centroids [][]float64) {
	k := len(centroids)
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, 2)
	}

	for i, v := range data {
		c := assignment[i]
		floats.Add(sums[c], v)
		counts[c]++
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
		copy(centroids[c], sums[c])
	}
}
