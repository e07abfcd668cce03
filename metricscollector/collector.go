package metricscollector

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"

	"github.com/routepool/routepool/collection"
	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/registry"
)

// ConnectionReader supplies live in-flight request counts per endpoint.
type ConnectionReader interface {
	ActiveConnections(endpointId string) int64
}

type fetchTask struct {
	poolId   string
	endpoint models.BackendEndpoint
}

// Collector samples every backend on a fixed interval and keeps a bounded
// rolling window per backend. One fetch task per backend per tick keeps
// writes to a given window serialized while different backends are sampled
// fully in parallel. A failed fetch is recorded as an unknown sample so the
// gap is visible but never read as zero load.
type Collector struct {
	logger           lager.Logger
	clock            clock.Clock
	registry         *registry.Registry
	fetcher          MetricFetcher
	connections      ConnectionReader
	collectInterval  time.Duration
	windowSize       int
	smoothingSamples int
	workerCount      int
	taskChan         chan fetchTask
	doneChan         chan bool

	windowLock sync.RWMutex
	windows    map[string]*collection.Window // keyed by backend id
}

func NewCollector(logger lager.Logger, clk clock.Clock, reg *registry.Registry, fetcher MetricFetcher, connections ConnectionReader,
	collectInterval time.Duration, windowSize int, smoothingSamples int, workerCount int, taskChanSize int) *Collector {
	return &Collector{
		logger:           logger.Session("metrics-collector"),
		clock:            clk,
		registry:         reg,
		fetcher:          fetcher,
		connections:      connections,
		collectInterval:  collectInterval,
		windowSize:       windowSize,
		smoothingSamples: smoothingSamples,
		workerCount:      workerCount,
		taskChan:         make(chan fetchTask, taskChanSize),
		doneChan:         make(chan bool),
		windows:          map[string]*collection.Window{},
	}
}

func (c *Collector) Start() {
	for i := 0; i < c.workerCount; i++ {
		go c.startWorker()
	}
	go c.startTicker()
	c.logger.Info("started")
}

func (c *Collector) Stop() {
	close(c.doneChan)
	c.logger.Info("stopped")
}

func (c *Collector) startTicker() {
	ticker := c.clock.NewTicker(c.collectInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.doneChan:
			return
		case <-ticker.C():
			c.enqueueAll()
		}
	}
}

func (c *Collector) enqueueAll() {
	for _, poolId := range c.registry.PoolIds() {
		for _, endpoint := range c.registry.Endpoints(poolId) {
			if endpoint.Health == models.HealthDraining {
				continue
			}
			select {
			case c.taskChan <- fetchTask{poolId: poolId, endpoint: endpoint}:
			default:
				c.logger.Error("fetch-queue-full", nil, lager.Data{"poolId": poolId, "endpointId": endpoint.Id})
			}
		}
	}
}

func (c *Collector) startWorker() {
	for {
		select {
		case <-c.doneChan:
			return
		case task := <-c.taskChan:
			c.collectOne(task)
		}
	}
}

func (c *Collector) collectOne(task fetchTask) {
	sample, err := c.fetcher.Fetch(task.endpoint)
	if err != nil {
		c.logger.Debug("fetch-failed", lager.Data{"poolId": task.poolId, "endpointId": task.endpoint.Id, "error": err.Error()})
		sample = &models.MetricSample{
			Timestamp: c.clock.Now().UnixNano(),
			BackendId: task.endpoint.Id,
			Unknown:   true,
		}
	}
	if !sample.Unknown && c.connections != nil {
		sample.ActiveConnections = c.connections.ActiveConnections(task.endpoint.Id)
	}
	c.window(task.endpoint.Id).Put(sample)
}

func (c *Collector) window(backendId string) *collection.Window {
	c.windowLock.RLock()
	w, ok := c.windows[backendId]
	c.windowLock.RUnlock()
	if ok {
		return w
	}

	c.windowLock.Lock()
	defer c.windowLock.Unlock()
	if w, ok = c.windows[backendId]; ok {
		return w
	}
	w = collection.NewWindow(c.windowSize)
	c.windows[backendId] = w
	return w
}

// Smoothed returns the moving average over a backend's most recent samples,
// excluding unknown ones. ok is false when no usable sample exists.
func (c *Collector) Smoothed(backendId string) (models.MetricSample, bool) {
	c.windowLock.RLock()
	w, exists := c.windows[backendId]
	c.windowLock.RUnlock()
	if !exists {
		return models.MetricSample{BackendId: backendId, Unknown: true}, false
	}

	var cpu, mem, latency float64
	var conns int64
	known := 0
	for _, d := range w.Recent(c.smoothingSamples) {
		sample := d.(*models.MetricSample)
		if sample.Unknown {
			continue
		}
		cpu += sample.CPUPct
		mem += sample.MemPct
		latency += sample.LatencyP95Ms
		conns = sample.ActiveConnections
		known++
	}
	if known == 0 {
		return models.MetricSample{BackendId: backendId, Unknown: true}, false
	}
	return models.MetricSample{
		Timestamp:         c.clock.Now().UnixNano(),
		BackendId:         backendId,
		CPUPct:            cpu / float64(known),
		MemPct:            mem / float64(known),
		LatencyP95Ms:      latency / float64(known),
		ActiveConnections: conns,
	}, true
}

// Aggregate folds the smoothed per-backend views of a pool into the single
// value the autoscaler steers on. Backends without a usable sample are
// excluded; a pool with none reports Unknown so a collection gap never
// looks like idle load.
func (c *Collector) Aggregate(poolId string) models.PoolAggregate {
	aggregate := models.PoolAggregate{PoolId: poolId}

	for _, endpoint := range c.registry.Endpoints(poolId) {
		if endpoint.Health == models.HealthDraining {
			continue
		}
		sample, ok := c.Smoothed(endpoint.Id)
		if !ok {
			continue
		}
		aggregate.AvgCPU += sample.CPUPct
		aggregate.AvgLatencyMs += sample.LatencyP95Ms
		aggregate.TotalConnections += sample.ActiveConnections
		aggregate.SampledBackends++
	}

	if aggregate.SampledBackends == 0 {
		aggregate.Unknown = true
		return aggregate
	}
	aggregate.AvgCPU /= float64(aggregate.SampledBackends)
	aggregate.AvgLatencyMs /= float64(aggregate.SampledBackends)
	return aggregate
}
