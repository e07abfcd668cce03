package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	cache "github.com/patrickmn/go-cache"

	"github.com/routepool/routepool/models"
)

const drainCacheCleanupInterval = 1 * time.Second

type poolState struct {
	id        string
	spec      models.HealthCheckSpec
	endpoints []*models.BackendEndpoint
	version   uint64
	snapshot  atomic.Pointer[models.Snapshot]
}

// Registry is the single source of truth for pool membership and endpoint
// health. All writes are serialized through one mutex; readers take the
// current snapshot from an atomically swapped pointer and never block
// writers. Membership is changed only by provisioner events (or static
// config at startup), health fields only by probe reports.
type Registry struct {
	logger     lager.Logger
	clock      clock.Clock
	lock       sync.Mutex
	pools      map[string]*poolState
	generation uint64
	drainGrace *cache.Cache
}

func NewRegistry(logger lager.Logger, clk clock.Clock, drainGracePeriod time.Duration) *Registry {
	r := &Registry{
		logger:     logger.Session("registry"),
		clock:      clk,
		pools:      map[string]*poolState{},
		drainGrace: cache.New(drainGracePeriod, drainCacheCleanupInterval),
	}
	r.drainGrace.OnEvicted(func(key string, value interface{}) {
		poolId, endpointId, ok := splitDrainKey(key)
		if !ok {
			return
		}
		generation, ok := value.(uint64)
		if !ok {
			return
		}
		r.finishDrain(poolId, endpointId, generation)
	})
	return r
}

func (r *Registry) CreatePool(poolId string, spec models.HealthCheckSpec) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, exists := r.pools[poolId]; exists {
		return
	}
	p := &poolState{
		id:   poolId,
		spec: spec,
	}
	p.snapshot.Store(&models.Snapshot{PoolId: poolId})
	r.pools[poolId] = p
	r.logger.Info("pool-created", lager.Data{"poolId": poolId})
}

// AddEndpoint registers a new endpoint with health unknown. It must pass the
// normal health hysteresis before it becomes eligible for routing. Re-adding
// an existing endpoint id replaces it under a fresh generation.
func (r *Registry) AddEndpoint(poolId string, endpoint models.BackendEndpoint) error {
	if err := r.addEndpoint(poolId, endpoint); err != nil {
		return err
	}
	// go-cache runs OnEvicted synchronously on the deleting goroutine, so
	// the pending drain entry must be dropped outside r.lock. The eviction
	// callback compares generations and leaves the fresh endpoint alone.
	r.drainGrace.Delete(drainKey(poolId, endpoint.Id))
	return nil
}

func (r *Registry) addEndpoint(poolId string, endpoint models.BackendEndpoint) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return fmt.Errorf("unknown pool: %s", poolId)
	}

	r.generation++
	endpoint.Generation = r.generation
	endpoint.Health = models.HealthUnknown
	endpoint.ConsecutiveSuccesses = 0
	endpoint.ConsecutiveFailures = 0
	if endpoint.Weight <= 0 {
		endpoint.Weight = 1
	}

	replaced := false
	for i, existing := range p.endpoints {
		if existing.Id == endpoint.Id {
			p.endpoints[i] = &endpoint
			replaced = true
			break
		}
	}
	if !replaced {
		p.endpoints = append(p.endpoints, &endpoint)
	}

	r.rebuildSnapshot(p)
	r.logger.Info("endpoint-added", lager.Data{"poolId": poolId, "endpointId": endpoint.Id, "generation": endpoint.Generation})
	return nil
}

// MarkDraining flips an endpoint to draining so it stops receiving new
// traffic, and schedules its removal once the grace period elapses.
// Draining is terminal until removal.
func (r *Registry) MarkDraining(poolId string, endpointId string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return
	}
	for _, endpoint := range p.endpoints {
		if endpoint.Id == endpointId {
			if endpoint.Health == models.HealthDraining {
				return
			}
			endpoint.Health = models.HealthDraining
			r.drainGrace.SetDefault(drainKey(poolId, endpointId), endpoint.Generation)
			r.rebuildSnapshot(p)
			r.logger.Info("endpoint-draining", lager.Data{"poolId": poolId, "endpointId": endpointId})
			return
		}
	}
}

func (r *Registry) RemoveEndpoint(poolId string, endpointId string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return
	}
	for i, endpoint := range p.endpoints {
		if endpoint.Id == endpointId {
			p.endpoints = append(p.endpoints[:i], p.endpoints[i+1:]...)
			r.rebuildSnapshot(p)
			r.logger.Info("endpoint-removed", lager.Data{"poolId": poolId, "endpointId": endpointId})
			return
		}
	}
}

// finishDrain removes an endpoint whose drain grace period elapsed. The
// generation pins the removal to the endpoint that was draining when the
// grace entry was set; a re-added endpoint carries a newer generation and
// survives.
func (r *Registry) finishDrain(poolId string, endpointId string, generation uint64) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return
	}
	for i, endpoint := range p.endpoints {
		if endpoint.Id == endpointId {
			if endpoint.Generation != generation {
				return
			}
			p.endpoints = append(p.endpoints[:i], p.endpoints[i+1:]...)
			r.rebuildSnapshot(p)
			r.logger.Info("drain-grace-elapsed", lager.Data{"poolId": poolId, "endpointId": endpointId})
			return
		}
	}
}

// ReportProbe applies one probe result to the hysteresis state machine. A
// report carrying a stale generation, or targeting a draining or removed
// endpoint, is discarded without effect.
func (r *Registry) ReportProbe(poolId string, endpointId string, generation uint64, success bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return
	}
	var endpoint *models.BackendEndpoint
	for _, e := range p.endpoints {
		if e.Id == endpointId {
			endpoint = e
			break
		}
	}
	if endpoint == nil || endpoint.Generation != generation || endpoint.Health == models.HealthDraining {
		return
	}

	endpoint.LastCheckedAt = r.clock.Now()
	if success {
		endpoint.ConsecutiveSuccesses++
		endpoint.ConsecutiveFailures = 0
	} else {
		endpoint.ConsecutiveFailures++
		endpoint.ConsecutiveSuccesses = 0
	}

	oldHealth := endpoint.Health
	switch endpoint.Health {
	case models.HealthUnknown, models.HealthUnhealthy:
		if endpoint.ConsecutiveSuccesses >= p.spec.HealthyThreshold {
			endpoint.Health = models.HealthHealthy
		}
	case models.HealthHealthy:
		if endpoint.ConsecutiveFailures >= p.spec.UnhealthyThreshold {
			endpoint.Health = models.HealthUnhealthy
		}
	}

	if endpoint.Health != oldHealth {
		r.rebuildSnapshot(p)
		r.logger.Info("health-transition", lager.Data{
			"poolId":     poolId,
			"endpointId": endpointId,
			"from":       oldHealth,
			"to":         endpoint.Health,
		})
	}
}

// Snapshot returns the current immutable view of a pool's eligible
// endpoints. It never blocks and the returned value never mutates.
func (r *Registry) Snapshot(poolId string) *models.Snapshot {
	r.lock.Lock()
	p, exists := r.pools[poolId]
	r.lock.Unlock()
	if !exists {
		return &models.Snapshot{PoolId: poolId}
	}
	return p.snapshot.Load()
}

// Endpoints returns a copy of every registered endpoint of a pool,
// regardless of health. Used by the prober and the metrics collector.
func (r *Registry) Endpoints(poolId string) []models.BackendEndpoint {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return nil
	}
	result := make([]models.BackendEndpoint, 0, len(p.endpoints))
	for _, endpoint := range p.endpoints {
		result = append(result, *endpoint)
	}
	return result
}

// PoolSize is the number of non-draining endpoints, the current size the
// autoscaler steers on.
func (r *Registry) PoolSize(poolId string) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return 0
	}
	size := 0
	for _, endpoint := range p.endpoints {
		if endpoint.Health != models.HealthDraining {
			size++
		}
	}
	return size
}

func (r *Registry) PoolIds() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	ids := make([]string, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) HealthCheckSpec(poolId string) (models.HealthCheckSpec, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, exists := r.pools[poolId]
	if !exists {
		return models.HealthCheckSpec{}, false
	}
	return p.spec, true
}

// rebuildSnapshot publishes a fresh copy-on-write snapshot of the eligible
// endpoints. Caller must hold r.lock.
func (r *Registry) rebuildSnapshot(p *poolState) {
	p.version++
	eligible := make([]models.BackendEndpoint, 0, len(p.endpoints))
	for _, endpoint := range p.endpoints {
		if endpoint.Eligible() {
			eligible = append(eligible, *endpoint)
		}
	}
	p.snapshot.Store(&models.Snapshot{
		PoolId:    p.id,
		Version:   p.version,
		Endpoints: eligible,
	})
}

func drainKey(poolId, endpointId string) string {
	return poolId + "#" + endpointId
}

func splitDrainKey(key string) (string, string, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '#' {
			return key[:i], key[i+1:], true
		}
	}
	return "", "", false
}
