package cluster

import "math"

// OPTICS builds a density reachability ordering of the corpus and extracts
// clusters from steep areas of the reachability plot. It handles
// variable-density clusters better than DBSCAN because no single radius is
// imposed; xi controls how sharp a drop in reachability starts a cluster.
// Outliers receive the Noise label.
func OPTICS(embeddings [][]float32, params ReachabilityClusterParams) ([]int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return optics(distanceMatrix(embeddings), params), nil
}

func optics(dists [][]float64, params ReachabilityClusterParams) []int {
	n := len(dists)
	order, reach := reachabilityOrdering(dists, params.MinSamples)
	return extractXiClusters(order, reach, params, n)
}

// coreDistances returns, for each point, the distance to its min_samples-th
// nearest neighbor (self included), or +Inf when the corpus is too small
// for the point to ever be a core point.
func coreDistances(dists [][]float64, minSamples int) []float64 {
	n := len(dists)
	k := minSamples - 1 // neighbors among the other points

	core := make([]float64, n)
	row := make([]float64, n-1)

	for i := 0; i < n; i++ {
		if k < 1 || k > n-1 {
			core[i] = math.Inf(1)
			continue
		}
		row = row[:0]
		for j := 0; j < n; j++ {
			if j != i {
				row = append(row, dists[i][j])
			}
		}
		core[i] = kthSmallest(row, k)
	}

	return core
}

// kthSmallest returns the k-th smallest value (1-based) of row.
// row is scratch space and is reordered in place.
func kthSmallest(row []float64, k int) float64 {
	// Selection by partial sort; rows are short enough that a full sort
	// would also do, but this avoids repeated allocations in the sweep.
	for i := 0; i < k; i++ {
		minIdx := i
		for j := i + 1; j < len(row); j++ {
			if row[j] < row[minIdx] {
				minIdx = j
			}
		}
		row[i], row[minIdx] = row[minIdx], row[i]
	}
	return row[k-1]
}

// reachabilityOrdering runs the OPTICS expansion with an unbounded
// neighborhood radius, producing the visit order and the reachability
// distance of each visited point. Ties in the seed queue break toward the
// lower point index so the ordering is deterministic.
func reachabilityOrdering(dists [][]float64, minSamples int) (order []int, reach []float64) {
	n := len(dists)
	core := coreDistances(dists, minSamples)

	reachOf := make([]float64, n)
	for i := range reachOf {
		reachOf[i] = math.Inf(1)
	}
	processed := make([]bool, n)

	order = make([]int, 0, n)
	reach = make([]float64, 0, n)

	for start := 0; start < n; start++ {
		if processed[start] {
			continue
		}

		processed[start] = true
		order = append(order, start)
		reach = append(reach, reachOf[start])

		if math.IsInf(core[start], 1) {
			continue
		}

		updateSeeds(dists, core, reachOf, processed, start)

		for {
			next := popMinReachable(reachOf, processed)
			if next < 0 {
				break
			}
			processed[next] = true
			order = append(order, next)
			reach = append(reach, reachOf[next])

			if !math.IsInf(core[next], 1) {
				updateSeeds(dists, core, reachOf, processed, next)
			}
		}
	}

	return order, reach
}

// updateSeeds lowers the reachability of every unprocessed point that is
// closer (in reachability terms) to center than to any previously expanded
// core point.
func updateSeeds(dists [][]float64, core, reachOf []float64, processed []bool, center int) {
	for p := range reachOf {
		if processed[p] {
			continue
		}
		newReach := math.Max(core[center], dists[center][p])
		if newReach < reachOf[p] {
			reachOf[p] = newReach
		}
	}
}

// popMinReachable returns the unprocessed point with the smallest finite
// reachability, or -1 when none remains reachable from the current
// component.
func popMinReachable(reachOf []float64, processed []bool) int {
	best := -1
	for p := range reachOf {
		if processed[p] || math.IsInf(reachOf[p], 1) {
			continue
		}
		if best < 0 || reachOf[p] < reachOf[best] {
			best = p
		}
	}
	return best
}

// extractXiClusters walks the reachability plot and cuts clusters at steep
// areas: a relative drop of at least xi starts a cluster, a relative rise of
// at least xi ends it. Segments shorter than min_samples stay noise.
func extractXiClusters(order []int, reach []float64, params ReachabilityClusterParams, n int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}

	ratio := 1.0 - params.Xi
	clusterID := 0
	start := -1

	closeCluster := func(end int) {
		if start >= 0 && end-start >= params.MinSamples {
			for k := start; k < end; k++ {
				labels[order[k]] = clusterID
			}
			clusterID++
		}
		start = -1
	}

	for i := 1; i < len(order); i++ {
		prev, cur := reach[i-1], reach[i]

		steepDown := cur <= prev*ratio
		steepUp := math.IsInf(cur, 1) || (!math.IsInf(prev, 1) && cur >= prev/ratio)

		if steepUp {
			closeCluster(i)
			continue
		}
		if steepDown && start < 0 {
			// The high-reachability predecessor is the point the valley
			// descends from; it opens the cluster.
			start = i - 1
		}
	}
	closeCluster(len(order))

	return labels
}
