package router

import (
	"sync"
	"sync/atomic"
)

// ConnTracker counts in-flight proxied requests per endpoint. Counts feed
// the least-connections algorithm and the metrics collector's
// active-connection samples.
type ConnTracker struct {
	counts sync.Map // endpoint id -> *int64
}

func NewConnTracker() *ConnTracker {
	return &ConnTracker{}
}

func (t *ConnTracker) counter(endpointId string) *int64 {
	if c, ok := t.counts.Load(endpointId); ok {
		return c.(*int64)
	}
	c, _ := t.counts.LoadOrStore(endpointId, new(int64))
	return c.(*int64)
}

func (t *ConnTracker) Start(endpointId string) {
	atomic.AddInt64(t.counter(endpointId), 1)
}

func (t *ConnTracker) Done(endpointId string) {
	atomic.AddInt64(t.counter(endpointId), -1)
}

func (t *ConnTracker) Active(endpointId string) int64 {
	if c, ok := t.counts.Load(endpointId); ok {
		return atomic.LoadInt64(c.(*int64))
	}
	return 0
}

func (t *ConnTracker) Forget(endpointId string) {
	t.counts.Delete(endpointId)
}
