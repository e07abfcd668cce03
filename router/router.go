package router

import (
	"sync"
	"sync/atomic"

	"code.cloudfoundry.org/lager/v3"

	"github.com/routepool/routepool/models"
)

// SnapshotProvider hands out the current immutable pool view.
type SnapshotProvider interface {
	Snapshot(poolId string) *models.Snapshot
}

// Router selects eligible backends for one pool and owns per-request
// failover bookkeeping. A failed attempt raises a soft failure counter for
// the endpoint but never changes registry health; only the prober does that.
type Router struct {
	logger     lager.Logger
	poolId     string
	snapshots  SnapshotProvider
	algorithm  Algorithm
	tracker    *ConnTracker
	maxRetries atomic.Int32
	failures   sync.Map // endpoint id -> *int64
}

func NewRouter(logger lager.Logger, poolId string, snapshots SnapshotProvider, algorithm Algorithm, tracker *ConnTracker, maxRetries int) *Router {
	r := &Router{
		logger:    logger.Session("router", lager.Data{"poolId": poolId}),
		poolId:    poolId,
		snapshots: snapshots,
		algorithm: algorithm,
		tracker:   tracker,
	}
	r.maxRetries.Store(int32(maxRetries))
	return r
}

func (r *Router) PoolId() string {
	return r.poolId
}

func (r *Router) MaxRetries() int {
	return int(r.maxRetries.Load())
}

// SetMaxRetries is called on config reload.
func (r *Router) SetMaxRetries(maxRetries int) {
	r.maxRetries.Store(int32(maxRetries))
}

// Select picks an endpoint for clientKey from the current snapshot,
// skipping the endpoints already tried for this request.
func (r *Router) Select(clientKey string, exclude map[string]bool) (*models.BackendEndpoint, error) {
	snapshot := r.snapshots.Snapshot(r.poolId)
	return r.algorithm.Select(snapshot, clientKey, exclude)
}

// RequestStarted marks an attempt against an endpoint as in flight.
func (r *Router) RequestStarted(endpointId string) {
	r.tracker.Start(endpointId)
	if aware, ok := r.algorithm.(connectionAware); ok {
		aware.OnStart(endpointId)
	}
}

// RequestFinished ends an in-flight attempt. failed marks a transport-level
// failure (connect error or timeout) and bumps the soft failure counter.
func (r *Router) RequestFinished(endpointId string, failed bool) {
	r.tracker.Done(endpointId)
	if aware, ok := r.algorithm.(connectionAware); ok {
		aware.OnDone(endpointId)
	}
	if failed {
		counter, _ := r.failures.LoadOrStore(endpointId, new(int64))
		atomic.AddInt64(counter.(*int64), 1)
	}
}

// SoftFailures reports the per-request failure count of an endpoint. The
// count is observability only; it never feeds health transitions.
func (r *Router) SoftFailures(endpointId string) int64 {
	if counter, ok := r.failures.Load(endpointId); ok {
		return atomic.LoadInt64(counter.(*int64))
	}
	return 0
}

func (r *Router) ActiveConnections(endpointId string) int64 {
	return r.tracker.Active(endpointId)
}
