package cluster

import "errors"

// ErrEmptyCorpus is returned by discovery calls when the backing store
// contains no trend records. It is fatal to the call; callers should load
// data before retrying.
var ErrEmptyCorpus = errors.New("cluster: no trends found in store")

// errQualityUnavailable marks labelings for which a silhouette score is not
// meaningful (fewer than two effective clusters, or too few points). It is
// recovered inside the parameter sweep and never escapes to callers.
var errQualityUnavailable = errors.New("cluster: silhouette score unavailable")
