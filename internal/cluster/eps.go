package cluster

import "sort"

// EstimateEps derives a DBSCAN neighborhood radius from the k-distance curve
// of the corpus instead of a hand-picked threshold.
//
// For every point it computes the cosine distance to its min_samples-th
// nearest neighbor (the point itself counts as the first neighbor, matching
// the leave-one-out convention), sorts the resulting k-distances ascending,
// and returns the value at the elbow: the index of maximum discrete second
// derivative, offset by one. With fewer than three points the mean
// k-distance is returned.
func EstimateEps(embeddings [][]float32, minSamples int) float64 {
	return estimateEps(distanceMatrix(embeddings), minSamples)
}

func estimateEps(dists [][]float64, minSamples int) float64 {
	n := len(dists)
	if n == 0 {
		return 0
	}

	kDistances := kDistanceCurve(dists, minSamples)

	if len(kDistances) <= 2 {
		var sum float64
		for _, d := range kDistances {
			sum += d
		}
		return sum / float64(len(kDistances))
	}

	// Discrete second derivative of the sorted curve; the elbow is the
	// point of steepest curvature increase, past which neighbor distances
	// grow fastest.
	elbow := 0
	best := kDistances[2] - 2*kDistances[1] + kDistances[0]
	for i := 1; i+2 < len(kDistances); i++ {
		d2 := kDistances[i+2] - 2*kDistances[i+1] + kDistances[i]
		if d2 > best {
			best = d2
			elbow = i
		}
	}

	return kDistances[elbow+1]
}

// kDistanceCurve returns the sorted distances from each point to its
// min_samples-th nearest neighbor (self included as the zero-distance
// first neighbor).
func kDistanceCurve(dists [][]float64, minSamples int) []float64 {
	n := len(dists)

	// k neighbors among the other points.
	k := minSamples - 1
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}

	kDistances := make([]float64, 0, n)
	row := make([]float64, 0, n-1)

	for i := 0; i < n; i++ {
		row = row[:0]
		for j := 0; j < n; j++ {
			if j != i {
				row = append(row, dists[i][j])
			}
		}
		if len(row) == 0 {
			kDistances = append(kDistances, 0)
			continue
		}
		sort.Float64s(row)
		kDistances = append(kDistances, row[k-1])
	}

	sort.Float64s(kDistances)
	return kDistances
}
