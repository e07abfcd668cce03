package models

import (
	"fmt"
	"time"
)

type HealthState string

const (
	HealthUnknown   HealthState = "unknown"
	HealthHealthy   HealthState = "healthy"
	HealthUnhealthy HealthState = "unhealthy"
	HealthDraining  HealthState = "draining"
)

// BackendEndpoint is one addressable instance of a service behind the
// router. Health and the hysteresis counters are mutated only by the health
// prober, through the registry; membership only by provisioner events.
type BackendEndpoint struct {
	Id                   string      `json:"id"`
	Address              string      `json:"address"`
	Port                 int         `json:"port"`
	Weight               int         `json:"weight"`
	Health               HealthState `json:"health"`
	ConsecutiveSuccesses int         `json:"consecutive_successes"`
	ConsecutiveFailures  int         `json:"consecutive_failures"`
	Generation           uint64      `json:"generation"`
	LastCheckedAt        time.Time   `json:"last_checked_at"`
}

func (e *BackendEndpoint) URL() string {
	return fmt.Sprintf("http://%s:%d", e.Address, e.Port)
}

func (e *BackendEndpoint) Eligible() bool {
	return e.Health == HealthHealthy
}

// Snapshot is an immutable point-in-time view of a pool's eligible
// endpoints. Once published it is never mutated; the registry swaps in a
// fresh snapshot on every membership or health change.
type Snapshot struct {
	PoolId    string
	Version   uint64
	Endpoints []BackendEndpoint
}

func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Endpoints) == 0
}

type RoutingAlgorithm string

const (
	RoundRobin         RoutingAlgorithm = "round-robin"
	WeightedRoundRobin RoutingAlgorithm = "weighted-round-robin"
	LeastConnections   RoutingAlgorithm = "least-connections"
	ClientAffinity     RoutingAlgorithm = "client-affinity"
)

func (a RoutingAlgorithm) Valid() bool {
	switch a {
	case RoundRobin, WeightedRoundRobin, LeastConnections, ClientAffinity:
		return true
	}
	return false
}

// BackendPool is the managed set of endpoints for one logical service.
type BackendPool struct {
	Id          string           `json:"id"`
	Endpoints   []*BackendEndpoint `json:"endpoints"`
	Algorithm   RoutingAlgorithm `json:"routing_algorithm"`
	MinReplicas int              `json:"min_replicas"`
	MaxReplicas int              `json:"max_replicas"`
}

// HealthCheckSpec describes how endpoints of a pool are probed and the
// hysteresis thresholds governing health transitions.
type HealthCheckSpec struct {
	Path               string        `yaml:"path" json:"path"`
	Interval           time.Duration `yaml:"interval" json:"interval"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout"`
	HealthyThreshold   int           `yaml:"healthy_threshold" json:"healthy_threshold"`
	UnhealthyThreshold int           `yaml:"unhealthy_threshold" json:"unhealthy_threshold"`
}
