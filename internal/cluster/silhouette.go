package cluster

// silhouetteScore computes the mean silhouette coefficient over the
// non-noise subset of a labeling, using cosine distance. It is an internal
// quality metric: no ground-truth labels are needed.
//
// It returns errQualityUnavailable when the score is not meaningful: fewer
// than two points survive the noise filter, or the survivors all share one
// label.
func silhouetteScore(dists [][]float64, labels []int) (float64, error) {
	// Collect non-noise member lists per cluster.
	members := make(map[int][]int)
	var points []int
	for i, label := range labels {
		if label == Noise {
			continue
		}
		members[label] = append(members[label], i)
		points = append(points, i)
	}

	if len(points) < 2 || len(members) < 2 {
		return 0, errQualityUnavailable
	}

	var total float64
	for _, i := range points {
		own := labels[i]

		// a: mean distance to the other members of i's own cluster.
		// Singleton clusters contribute a silhouette of zero.
		if len(members[own]) < 2 {
			continue
		}
		var a float64
		for _, j := range members[own] {
			if j != i {
				a += dists[i][j]
			}
		}
		a /= float64(len(members[own]) - 1)

		// b: smallest mean distance to any other cluster.
		b := -1.0
		for label, other := range members {
			if label == own {
				continue
			}
			var sum float64
			for _, j := range other {
				sum += dists[i][j]
			}
			mean := sum / float64(len(other))
			if b < 0 || mean < b {
				b = mean
			}
		}

		den := a
		if b > den {
			den = b
		}
		if den > 0 {
			total += (b - a) / den
		}
	}

	return total / float64(len(points)), nil
}
