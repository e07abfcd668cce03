package router

import (
	"sync/atomic"

	"github.com/routepool/routepool/models"
)

// roundRobin cycles through the snapshot order with an atomic counter. Over
// N consecutive selections on a stable pool of size N every endpoint is
// chosen exactly once.
type roundRobin struct {
	next uint64
}

func NewRoundRobin() Algorithm {
	return &roundRobin{}
}

func (r *roundRobin) Select(snapshot *models.Snapshot, _ string, exclude map[string]bool) (*models.BackendEndpoint, error) {
	if snapshot.Empty() {
		return nil, models.ErrNoHealthyBackend
	}

	n := len(snapshot.Endpoints)
	for attempt := 0; attempt < n; attempt++ {
		idx := int((atomic.AddUint64(&r.next, 1) - 1) % uint64(n))
		endpoint := &snapshot.Endpoints[idx]
		if !exclude[endpoint.Id] {
			return endpoint, nil
		}
	}
	return nil, models.ErrNoHealthyBackend
}
