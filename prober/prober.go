package prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"

	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/registry"
)

type probeTask struct {
	poolId   string
	endpoint models.BackendEndpoint
	spec     models.HealthCheckSpec
}

// HealthProber probes every registered endpoint of every pool on the pool's
// check interval, with bounded worker concurrency, and feeds the results
// into the registry's hysteresis state machine. Draining endpoints are not
// probed. A result for a removed or replaced endpoint is discarded by the
// registry through its generation tag.
type HealthProber struct {
	logger      lager.Logger
	clock       clock.Clock
	registry    *registry.Registry
	client      *http.Client
	workerCount int
	taskChan    chan probeTask
	doneChan    chan bool
}

func NewHealthProber(logger lager.Logger, clk clock.Clock, reg *registry.Registry, client *http.Client, workerCount int, taskChanSize int) *HealthProber {
	return &HealthProber{
		logger:      logger.Session("health-prober"),
		clock:       clk,
		registry:    reg,
		client:      client,
		workerCount: workerCount,
		taskChan:    make(chan probeTask, taskChanSize),
		doneChan:    make(chan bool),
	}
}

func (p *HealthProber) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.startWorker()
	}
	for _, poolId := range p.registry.PoolIds() {
		spec, ok := p.registry.HealthCheckSpec(poolId)
		if !ok {
			continue
		}
		go p.startPoolTicker(poolId, spec)
	}
	p.logger.Info("started")
}

func (p *HealthProber) Stop() {
	close(p.doneChan)
	p.logger.Info("stopped")
}

func (p *HealthProber) startPoolTicker(poolId string, spec models.HealthCheckSpec) {
	ticker := p.clock.NewTicker(spec.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.doneChan:
			return
		case <-ticker.C():
			p.enqueuePool(poolId, spec)
		}
	}
}

func (p *HealthProber) enqueuePool(poolId string, spec models.HealthCheckSpec) {
	for _, endpoint := range p.registry.Endpoints(poolId) {
		if endpoint.Health == models.HealthDraining {
			continue
		}
		select {
		case p.taskChan <- probeTask{poolId: poolId, endpoint: endpoint, spec: spec}:
		default:
			p.logger.Error("probe-queue-full", nil, lager.Data{"poolId": poolId, "endpointId": endpoint.Id})
		}
	}
}

func (p *HealthProber) startWorker() {
	for {
		select {
		case <-p.doneChan:
			return
		case task := <-p.taskChan:
			err := p.Probe(task.endpoint, task.spec)
			if err != nil {
				p.logger.Debug("probe-failed", lager.Data{"poolId": task.poolId, "endpointId": task.endpoint.Id, "error": err.Error()})
			}
			p.registry.ReportProbe(task.poolId, task.endpoint.Id, task.endpoint.Generation, err == nil)
		}
	}
}

// Probe performs one health check against an endpoint. Timeouts, connection
// failures and non-2xx responses are returned as distinct error types; the
// registry treats all of them as one failed check.
func (p *HealthProber) Probe(endpoint models.BackendEndpoint, spec models.HealthCheckSpec) error {
	target := fmt.Sprintf("%s%s", endpoint.URL(), spec.Path)

	ctx, cancel := context.WithTimeout(context.Background(), spec.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &models.ConnectError{Endpoint: target, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &models.TimeoutError{Endpoint: target}
		}
		return &models.ConnectError{Endpoint: target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &models.UnhealthyStatusError{Endpoint: target, StatusCode: resp.StatusCode}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
