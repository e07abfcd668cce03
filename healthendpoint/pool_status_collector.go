package healthendpoint

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/registry"
)

// ConnectionReader reports live routing counters for an endpoint.
type ConnectionReader interface {
	ActiveConnections(endpointId string) int64
	SoftFailures(endpointId string) int64
}

// poolStatusCollector exposes per-pool and per-backend gauges scraped from
// the registry on collection, in the standard exposition format.
type poolStatusCollector struct {
	namespace   string
	registry    *registry.Registry
	connections ConnectionReader

	poolSizeDesc    *prometheus.Desc
	healthCountDesc *prometheus.Desc
	activeConnsDesc *prometheus.Desc
	softFailsDesc   *prometheus.Desc
}

func NewPoolStatusCollector(namespace string, reg *registry.Registry, connections ConnectionReader) prometheus.Collector {
	return &poolStatusCollector{
		namespace:   namespace,
		registry:    reg,
		connections: connections,
		poolSizeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "size"),
			"Number of non-draining endpoints in the pool",
			[]string{"pool_id"}, nil,
		),
		healthCountDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pool", "endpoints"),
			"Number of endpoints per health state",
			[]string{"pool_id", "health"}, nil,
		),
		activeConnsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "backend", "active_connections"),
			"In-flight proxied requests per backend",
			[]string{"pool_id", "backend_id"}, nil,
		),
		softFailsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "backend", "soft_failures_total"),
			"Per-request routing failures per backend",
			[]string{"pool_id", "backend_id"}, nil,
		),
	}
}

func (c *poolStatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.poolSizeDesc
	ch <- c.healthCountDesc
	ch <- c.activeConnsDesc
	ch <- c.softFailsDesc
}

func (c *poolStatusCollector) Collect(ch chan<- prometheus.Metric) {
	for _, poolId := range c.registry.PoolIds() {
		endpoints := c.registry.Endpoints(poolId)

		healthCounts := map[models.HealthState]int{}
		for _, endpoint := range endpoints {
			healthCounts[endpoint.Health]++

			if c.connections != nil {
				ch <- prometheus.MustNewConstMetric(c.activeConnsDesc, prometheus.GaugeValue,
					float64(c.connections.ActiveConnections(endpoint.Id)), poolId, endpoint.Id)
				ch <- prometheus.MustNewConstMetric(c.softFailsDesc, prometheus.CounterValue,
					float64(c.connections.SoftFailures(endpoint.Id)), poolId, endpoint.Id)
			}
		}

		ch <- prometheus.MustNewConstMetric(c.poolSizeDesc, prometheus.GaugeValue,
			float64(c.registry.PoolSize(poolId)), poolId)
		for _, health := range []models.HealthState{models.HealthUnknown, models.HealthHealthy, models.HealthUnhealthy, models.HealthDraining} {
			ch <- prometheus.MustNewConstMetric(c.healthCountDesc, prometheus.GaugeValue,
				float64(healthCounts[health]), poolId, string(health))
		}
	}
}
