package models

// MetricSample is one observation of a backend's load, or of the pool in
// aggregate when BackendId is empty. A sample that could not be collected is
// recorded with Unknown set so the aggregation can exclude it instead of
// treating the gap as zero load.
type MetricSample struct {
	Timestamp         int64   `json:"timestamp"`
	BackendId         string  `json:"backend_id,omitempty"`
	CPUPct            float64 `json:"cpu_pct"`
	MemPct            float64 `json:"mem_pct"`
	ActiveConnections int64   `json:"active_connections"`
	LatencyP95Ms      float64 `json:"latency_p95_ms"`
	Unknown           bool    `json:"unknown,omitempty"`
}

func (m *MetricSample) GetTimestamp() int64 {
	return m.Timestamp
}

// PoolAggregate is the smoothed pool-wide view the autoscaler steers on.
// Unknown is true when no backend produced a usable sample this round.
type PoolAggregate struct {
	PoolId           string  `json:"pool_id"`
	AvgCPU           float64 `json:"avg_cpu"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	TotalConnections int64   `json:"total_connections"`
	SampledBackends  int     `json:"sampled_backends"`
	Unknown          bool    `json:"unknown"`
}
