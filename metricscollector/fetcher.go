package metricscollector

import (
	"encoding/json"
	"fmt"
	"net/http"

	"code.cloudfoundry.org/clock"

	"github.com/routepool/routepool/models"
)

// MetricFetcher retrieves one load sample from a backend.
type MetricFetcher interface {
	Fetch(endpoint models.BackendEndpoint) (*models.MetricSample, error)
}

type backendStats struct {
	CPUPct       float64 `json:"cpu_pct"`
	MemPct       float64 `json:"mem_pct"`
	LatencyP95Ms float64 `json:"latency_p95_ms"`
}

// HTTPMetricFetcher scrapes a stats endpoint exposed by each backend.
type HTTPMetricFetcher struct {
	client    *http.Client
	clock     clock.Clock
	statsPath string
}

func NewHTTPMetricFetcher(client *http.Client, clk clock.Clock, statsPath string) *HTTPMetricFetcher {
	return &HTTPMetricFetcher{
		client:    client,
		clock:     clk,
		statsPath: statsPath,
	}
}

func (f *HTTPMetricFetcher) Fetch(endpoint models.BackendEndpoint) (*models.MetricSample, error) {
	target := endpoint.URL() + f.statsPath

	resp, err := f.client.Get(target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats endpoint %s returned %d", target, resp.StatusCode)
	}

	var stats backendStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats from %s: %w", target, err)
	}

	return &models.MetricSample{
		Timestamp:    f.clock.Now().UnixNano(),
		BackendId:    endpoint.Id,
		CPUPct:       stats.CPUPct,
		MemPct:       stats.MemPct,
		LatencyP95Ms: stats.LatencyP95Ms,
	}, nil
}
