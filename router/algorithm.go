package router

import (
	"fmt"

	"github.com/routepool/routepool/models"
)

// Algorithm selects an eligible endpoint from a snapshot. The exclude set
// carries the endpoints already tried for the current request; an algorithm
// never returns an excluded endpoint. Implementations are safe for
// concurrent use.
type Algorithm interface {
	Select(snapshot *models.Snapshot, clientKey string, exclude map[string]bool) (*models.BackendEndpoint, error)
}

// connectionAware is implemented by algorithms that track per-endpoint
// in-flight request counts.
type connectionAware interface {
	OnStart(endpointId string)
	OnDone(endpointId string)
}

func NewAlgorithm(kind models.RoutingAlgorithm) (Algorithm, error) {
	switch kind {
	case models.RoundRobin:
		return NewRoundRobin(), nil
	case models.WeightedRoundRobin:
		return NewWeightedRoundRobin(), nil
	case models.LeastConnections:
		return NewLeastConnections(), nil
	case models.ClientAffinity:
		return NewHashRing(defaultVirtualNodes), nil
	default:
		return nil, fmt.Errorf("unknown routing algorithm: %s", kind)
	}
}
