package cluster

import "math"

// Noise is the sentinel label assigned to points that belong to no cluster.
const Noise = -1

// cosineDistance computes 1 - cosine similarity between two vectors.
// Embeddings are direction-sensitive semantic vectors, so cosine (not
// Euclidean) distance is used everywhere in this package.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1.0
	}

	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// distanceMatrix computes the full symmetric pairwise cosine-distance matrix.
// It is computed once per corpus load and shared read-only across every
// clustering run in a sweep, which keeps the grid search at one O(n²d) pass
// instead of one per cell.
func distanceMatrix(embeddings [][]float32) [][]float64 {
	n := len(embeddings)
	dists := make([][]float64, n)
	for i := range dists {
		dists[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := cosineDistance(embeddings[i], embeddings[j])
			dists[i][j] = d
			dists[j][i] = d
		}
	}

	return dists
}

// neighborsWithin returns the indices of all points within eps of point i,
// including i itself. Index order is ascending, which keeps cluster
// expansion deterministic.
func neighborsWithin(dists [][]float64, i int, eps float64) []int {
	var result []int
	for j := range dists[i] {
		if dists[i][j] <= eps {
			result = append(result, j)
		}
	}
	return result
}
