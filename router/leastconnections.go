package router

import (
	"container/heap"
	"sync"

	"github.com/routepool/routepool/models"
)

type connEntry struct {
	endpoint models.BackendEndpoint
	conns    int64
	index    int
}

type connHeap []*connEntry

func (h connHeap) Len() int { return len(h) }

func (h connHeap) Less(i, j int) bool {
	if h[i].conns != h[j].conns {
		return h[i].conns < h[j].conns
	}
	return h[i].endpoint.Id < h[j].endpoint.Id
}

func (h connHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *connHeap) Push(x interface{}) {
	entry := x.(*connEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *connHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// leastConnections keeps an indexed min-heap over active connection counts.
// Ties resolve to the lowest endpoint id. Connection count changes on
// request start/end adjust the heap in O(log n). The heap is rebuilt lazily
// when the snapshot version moves; counts of surviving endpoints carry over.
type leastConnections struct {
	mu      sync.Mutex
	version uint64
	entries connHeap
	byId    map[string]*connEntry
}

func NewLeastConnections() Algorithm {
	return &leastConnections{
		byId: map[string]*connEntry{},
	}
}

func (l *leastConnections) Select(snapshot *models.Snapshot, _ string, exclude map[string]bool) (*models.BackendEndpoint, error) {
	if snapshot.Empty() {
		return nil, models.ErrNoHealthyBackend
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.syncLocked(snapshot)

	// pop excluded entries aside, take the min, put everything back
	var parked []*connEntry
	var chosen *connEntry
	for l.entries.Len() > 0 {
		entry := heap.Pop(&l.entries).(*connEntry)
		if exclude[entry.endpoint.Id] {
			parked = append(parked, entry)
			continue
		}
		chosen = entry
		break
	}
	if chosen != nil {
		heap.Push(&l.entries, chosen)
	}
	for _, entry := range parked {
		heap.Push(&l.entries, entry)
	}
	if chosen == nil {
		return nil, models.ErrNoHealthyBackend
	}
	endpoint := chosen.endpoint
	return &endpoint, nil
}

func (l *leastConnections) OnStart(endpointId string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.byId[endpointId]; ok {
		entry.conns++
		heap.Fix(&l.entries, entry.index)
	}
}

func (l *leastConnections) OnDone(endpointId string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.byId[endpointId]; ok && entry.conns > 0 {
		entry.conns--
		heap.Fix(&l.entries, entry.index)
	}
}

func (l *leastConnections) syncLocked(snapshot *models.Snapshot) {
	if snapshot.Version == l.version && l.entries.Len() == len(snapshot.Endpoints) {
		return
	}

	fresh := map[string]*connEntry{}
	l.entries = l.entries[:0]
	for _, endpoint := range snapshot.Endpoints {
		entry := &connEntry{endpoint: endpoint}
		if old, ok := l.byId[endpoint.Id]; ok {
			entry.conns = old.conns
		}
		fresh[endpoint.Id] = entry
		l.entries = append(l.entries, entry)
	}
	l.byId = fresh
	heap.Init(&l.entries)
	l.version = snapshot.Version
}
