package cluster

// DBSCAN groups mutually density-connected points under cosine distance.
// Points whose eps-neighborhood holds fewer than min_samples members (self
// included) and which are not density-reachable from a core point receive
// the Noise label.
//
// Points are visited in index order and cluster ids are assigned in
// discovery order, so identical input always produces identical labels.
func DBSCAN(embeddings [][]float32, params DensityClusterParams) ([]int, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return dbscan(distanceMatrix(embeddings), params), nil
}

func dbscan(dists [][]float64, params DensityClusterParams) []int {
	n := len(dists)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	clusterID := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := neighborsWithin(dists, i, params.Eps)
		if len(neighbors) < params.MinSamples {
			continue // stays noise unless reached from a core point later
		}

		expandCluster(dists, labels, visited, i, neighbors, clusterID, params)
		clusterID++
	}

	return labels
}

// expandCluster grows cluster clusterID from seed point i by breadth-first
// density reachability.
func expandCluster(dists [][]float64, labels []int, visited []bool, i int, seeds []int, clusterID int, params DensityClusterParams) {
	labels[i] = clusterID

	queue := append([]int(nil), seeds...)
	for head := 0; head < len(queue); head++ {
		j := queue[head]

		if labels[j] == Noise {
			labels[j] = clusterID // border point
		}

		if visited[j] {
			continue
		}
		visited[j] = true
		labels[j] = clusterID

		neighbors := neighborsWithin(dists, j, params.Eps)
		if len(neighbors) >= params.MinSamples {
			queue = append(queue, neighbors...)
		}
	}
}
