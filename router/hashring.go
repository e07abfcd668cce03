package router

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/routepool/routepool/models"
)

const defaultVirtualNodes = 128

type ringNode struct {
	hash       uint32
	endpointId string
}

// hashRing provides client-affinity selection via consistent hashing: each
// endpoint is placed on the ring at a fixed number of virtual positions, so
// a pool-size change only remaps the keys nearest the changed endpoint
// instead of reshuffling every client.
type hashRing struct {
	mu       sync.Mutex
	replicas int
	version  uint64
	nodes    []ringNode
	byId     map[string]models.BackendEndpoint
}

func NewHashRing(replicas int) Algorithm {
	return &hashRing{
		replicas: replicas,
		byId:     map[string]models.BackendEndpoint{},
	}
}

func (r *hashRing) Select(snapshot *models.Snapshot, clientKey string, exclude map[string]bool) (*models.BackendEndpoint, error) {
	if snapshot.Empty() {
		return nil, models.ErrNoHealthyBackend
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.syncLocked(snapshot)
	if len(r.nodes) == 0 {
		return nil, models.ErrNoHealthyBackend
	}

	key := hashKey(clientKey)
	start := sort.Search(len(r.nodes), func(i int) bool {
		return r.nodes[i].hash >= key
	})

	// walk clockwise past excluded endpoints, at most once around the ring
	seen := map[string]bool{}
	for i := 0; i < len(r.nodes) && len(seen) < len(r.byId); i++ {
		node := r.nodes[(start+i)%len(r.nodes)]
		if seen[node.endpointId] {
			continue
		}
		seen[node.endpointId] = true
		if exclude[node.endpointId] {
			continue
		}
		endpoint := r.byId[node.endpointId]
		return &endpoint, nil
	}
	return nil, models.ErrNoHealthyBackend
}

func (r *hashRing) syncLocked(snapshot *models.Snapshot) {
	if snapshot.Version == r.version && len(r.byId) == len(snapshot.Endpoints) {
		return
	}

	r.byId = map[string]models.BackendEndpoint{}
	r.nodes = r.nodes[:0]
	for _, endpoint := range snapshot.Endpoints {
		r.byId[endpoint.Id] = endpoint
		for replica := 0; replica < r.replicas; replica++ {
			r.nodes = append(r.nodes, ringNode{
				hash:       hashKey(fmt.Sprintf("%s#%d", endpoint.Id, replica)),
				endpointId: endpoint.Id,
			})
		}
	}
	sort.Slice(r.nodes, func(i, j int) bool { return r.nodes[i].hash < r.nodes[j].hash })
	r.version = snapshot.Version
}

func hashKey(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}
