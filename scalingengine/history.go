package scalingengine

import (
	"sync"

	"github.com/routepool/routepool/models"
)

// DecisionHistory is the bounded in-memory audit log of scaling decisions.
// Oldest entries fall off once capacity is reached.
type DecisionHistory struct {
	lock     sync.RWMutex
	capacity int
	entries  []models.ScalingDecision
}

func NewDecisionHistory(capacity int) *DecisionHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &DecisionHistory{
		capacity: capacity,
	}
}

func (h *DecisionHistory) Append(decision models.ScalingDecision) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.entries = append(h.entries, decision)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[len(h.entries)-h.capacity:]
	}
}

// Query returns the recorded decisions of a pool in [start, end), oldest
// first. end < 0 means no upper bound.
func (h *DecisionHistory) Query(poolId string, start int64, end int64) []models.ScalingDecision {
	h.lock.RLock()
	defer h.lock.RUnlock()

	result := []models.ScalingDecision{}
	for _, decision := range h.entries {
		if decision.PoolId != poolId {
			continue
		}
		if decision.Timestamp < start {
			continue
		}
		if end >= 0 && decision.Timestamp >= end {
			continue
		}
		result = append(result, decision)
	}
	return result
}
