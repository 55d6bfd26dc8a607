package cluster

import "fmt"

// DensityClusterParams configures a DBSCAN run.
type DensityClusterParams struct {
	// Eps is the neighborhood radius in cosine-distance units.
	Eps float64

	// MinSamples is the minimum neighborhood size (including the point
	// itself) for a point to be a core point.
	MinSamples int
}

// Validate checks the parameters before a run.
func (p DensityClusterParams) Validate() error {
	if p.Eps <= 0 {
		return fmt.Errorf("cluster: eps must be positive, got %g", p.Eps)
	}
	if p.MinSamples < 1 {
		return fmt.Errorf("cluster: min_samples must be >= 1, got %d", p.MinSamples)
	}
	return nil
}

// ReachabilityClusterParams configures an OPTICS run.
type ReachabilityClusterParams struct {
	// MinSamples is the minimum neighborhood size for core-distance
	// computation, and the minimum extracted cluster size.
	MinSamples int

	// Xi is the cluster-extraction sensitivity: the minimum relative drop
	// in reachability that starts a cluster. Must be in (0, 1).
	Xi float64
}

// Validate checks the parameters before a run.
func (p ReachabilityClusterParams) Validate() error {
	if p.MinSamples < 2 {
		return fmt.Errorf("cluster: min_samples must be >= 2, got %d", p.MinSamples)
	}
	if p.Xi <= 0 || p.Xi >= 1 {
		return fmt.Errorf("cluster: xi must be in (0, 1), got %g", p.Xi)
	}
	return nil
}

// defaultDBSCANMinSamples derives min_samples from embedding dimensionality:
// 2*dim/100, floored at 5 and capped at 20.
func defaultDBSCANMinSamples(dim int) int {
	return clamp(2*dim/100, 5, 20)
}

// defaultOPTICSMinSamples derives min_samples from corpus size: n/100,
// floored at 5 and capped at 20.
func defaultOPTICSMinSamples(n int) int {
	return clamp(n/100, 5, 20)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
