package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/trendscope/trendscope/internal/trend"
)

// makeBlobs builds a synthetic corpus of nClusters tight clusters of
// perCluster unit vectors each. Cluster centers are mutually orthogonal
// axes, so within-cluster cosine similarity is near 1 and across-cluster
// similarity is near 0.
func makeBlobs(rng *rand.Rand, nClusters, perCluster, dim int, noise float64) [][]float32 {
	vectors := make([][]float32, 0, nClusters*perCluster)

	for c := 0; c < nClusters; c++ {
		for p := 0; p < perCluster; p++ {
			v := make([]float64, dim)
			v[c%dim] = 1.0
			for d := range v {
				v[d] += rng.NormFloat64() * noise
			}
			vectors = append(vectors, normalize(v))
		}
	}

	return vectors
}

// makeUniformRandom builds n random unit vectors with no cluster structure.
func makeUniformRandom(rng *rand.Rand, n, dim int) [][]float32 {
	vectors := make([][]float32, n)
	for i := range vectors {
		v := make([]float64, dim)
		for d := range v {
			v[d] = rng.NormFloat64()
		}
		vectors[i] = normalize(v)
	}
	return vectors
}

func normalize(v []float64) []float32 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}

// makeRecords builds trend records for a blob corpus, one category per
// cluster in round-robin order.
func makeRecords(n, perCluster int) []trend.Record {
	records := make([]trend.Record, n)
	for i := range records {
		cluster := i / perCluster
		records[i] = trend.Record{
			ID:       fmt.Sprintf("t%03d", i),
			Text:     fmt.Sprintf("topic %d insight number %d", cluster, i),
			Category: trend.Categories[cluster%len(trend.Categories)],
			Score:    0.5,
			Date:     "2024-08-01",
		}
	}
	return records
}
