package router

import (
	"sync"

	"github.com/routepool/routepool/models"
)

// weightedRoundRobin implements smooth weighted round-robin: each selection
// raises every candidate's current weight by its configured weight, picks
// the highest, and lowers the winner by the weight total. Selection
// frequency converges to the weight proportions without bursts.
type weightedRoundRobin struct {
	mu      sync.Mutex
	current map[string]int
}

func NewWeightedRoundRobin() Algorithm {
	return &weightedRoundRobin{
		current: map[string]int{},
	}
}

func (w *weightedRoundRobin) Select(snapshot *models.Snapshot, _ string, exclude map[string]bool) (*models.BackendEndpoint, error) {
	if snapshot.Empty() {
		return nil, models.ErrNoHealthyBackend
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	total := 0
	var best *models.BackendEndpoint
	for i := range snapshot.Endpoints {
		endpoint := &snapshot.Endpoints[i]
		if exclude[endpoint.Id] {
			continue
		}
		weight := endpoint.Weight
		if weight <= 0 {
			continue
		}
		total += weight
		w.current[endpoint.Id] += weight
		if best == nil || w.current[endpoint.Id] > w.current[best.Id] {
			best = endpoint
		}
	}
	if best == nil {
		return nil, models.ErrNoHealthyBackend
	}
	w.current[best.Id] -= total
	return best, nil
}
