package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/routepool/routepool/db"
	"github.com/routepool/routepool/healthendpoint"
	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/models"
)

const (
	DefaultLoggingLevel = "info"

	DefaultProxyPort      = 8080
	DefaultAPIPort        = 8081
	DefaultHealthPort     = 8083
	DefaultHealthPath     = "/health"
	DefaultMaxRetries     = 2
	DefaultAttemptTimeout = 10 * time.Second

	DefaultProbeInterval      = 10 * time.Second
	DefaultProbeTimeout       = 2 * time.Second
	DefaultHealthyThreshold   = 2
	DefaultUnhealthyThreshold = 3
	DefaultProberWorkerCount  = 8
	DefaultProberQueueSize    = 256
	DefaultDrainGracePeriod   = 30 * time.Second

	DefaultCollectInterval     = 15 * time.Second
	DefaultMetricWindowSize    = 60
	DefaultSmoothingSamples    = 3
	DefaultCollectorWorkers    = 8
	DefaultCollectorQueueSize  = 256
	DefaultStatsPath           = "/stats"
	DefaultEvaluationInterval  = 15 * time.Second
	DefaultDecisionHistorySize = 200

	DefaultBreakerConsecutiveFailures = 3
	DefaultBreakerBackOffInitial      = 5 * time.Second
	DefaultBreakerBackOffMax          = 2 * time.Minute

	DefaultHandshakeTimeout = 10 * time.Second

	DefaultCutoffDays    = 30
	DefaultRefreshDays   = 1
	DefaultMaxAmount     = 10
	DefaultValidDuration = 1 * time.Second

	DefaultHTTPClientTimeout = 5 * time.Second
)

type ProxyConfig struct {
	Server         helpers.ServerConfig `yaml:"server"`
	Pool           string               `yaml:"pool"`
	HealthPath     string               `yaml:"health_path"`
	MaxRetries     int                  `yaml:"max_retries"`
	AttemptTimeout time.Duration        `yaml:"attempt_timeout"`
}

type PoolConfig struct {
	Id          string                  `yaml:"id"`
	Algorithm   models.RoutingAlgorithm `yaml:"algorithm"`
	HealthCheck models.HealthCheckSpec  `yaml:"health_check"`
	Policy      *models.ScalingPolicy   `yaml:"policy"`
	PolicyFile  string                  `yaml:"policy_file"`
	Backends    []BackendConfig         `yaml:"backends"`
}

type BackendConfig struct {
	Id      string `yaml:"id"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	Weight  int    `yaml:"weight"`
}

type ProberConfig struct {
	WorkerCount      int           `yaml:"worker_count"`
	QueueSize        int           `yaml:"queue_size"`
	DrainGracePeriod time.Duration `yaml:"drain_grace_period"`
}

type CollectorConfig struct {
	CollectInterval  time.Duration `yaml:"collect_interval"`
	WindowSize       int           `yaml:"window_size"`
	SmoothingSamples int           `yaml:"smoothing_samples"`
	WorkerCount      int           `yaml:"worker_count"`
	QueueSize        int           `yaml:"queue_size"`
	StatsPath        string        `yaml:"stats_path"`
}

type BreakerConfig struct {
	ConsecutiveFailures int64         `yaml:"consecutive_failures"`
	BackOffInitial      time.Duration `yaml:"backoff_initial"`
	BackOffMax          time.Duration `yaml:"backoff_max"`
}

type EngineConfig struct {
	EvaluationInterval  time.Duration `yaml:"evaluation_interval"`
	DecisionHistorySize int           `yaml:"decision_history_size"`
	Breaker             BreakerConfig `yaml:"breaker"`
}

type ProvisionerConfig struct {
	APIURL           string          `yaml:"api_url"`
	EventsURL        string          `yaml:"events_url"`
	TLSClientCerts   models.TLSCerts `yaml:"tls_client_certs"`
	HandshakeTimeout time.Duration   `yaml:"handshake_timeout"`
}

type DBConfig struct {
	DecisionDB  db.DatabaseConfig `yaml:"decision_db"`
	CutoffDays  int               `yaml:"cutoff_days"`
	RefreshDays int               `yaml:"refresh_days"`
}

type RateLimitConfig struct {
	MaxAmount     int           `yaml:"max_amount"`
	ValidDuration time.Duration `yaml:"valid_duration"`
}

type Config struct {
	Logging     helpers.LoggingConfig       `yaml:"logging"`
	Proxy       ProxyConfig                 `yaml:"proxy"`
	API         helpers.ServerConfig        `yaml:"api"`
	Health      healthendpoint.HealthConfig `yaml:"health"`
	Pools       []PoolConfig                `yaml:"pools"`
	Prober      ProberConfig                `yaml:"prober"`
	Collector   CollectorConfig             `yaml:"collector"`
	Engine      EngineConfig                `yaml:"engine"`
	Provisioner ProvisionerConfig           `yaml:"provisioner"`
	DB          DBConfig                    `yaml:"db"`
	RateLimit   RateLimitConfig             `yaml:"rate_limit"`

	HTTPClientTimeout time.Duration `yaml:"http_client_timeout"`
}

func defaultConfig() Config {
	return Config{
		Logging: helpers.LoggingConfig{Level: DefaultLoggingLevel},
		Proxy: ProxyConfig{
			Server:         helpers.ServerConfig{Port: DefaultProxyPort},
			HealthPath:     DefaultHealthPath,
			MaxRetries:     DefaultMaxRetries,
			AttemptTimeout: DefaultAttemptTimeout,
		},
		API: helpers.ServerConfig{Port: DefaultAPIPort},
		Health: healthendpoint.HealthConfig{
			ServerConfig: helpers.ServerConfig{Port: DefaultHealthPort},
		},
		Prober: ProberConfig{
			WorkerCount:      DefaultProberWorkerCount,
			QueueSize:        DefaultProberQueueSize,
			DrainGracePeriod: DefaultDrainGracePeriod,
		},
		Collector: CollectorConfig{
			CollectInterval:  DefaultCollectInterval,
			WindowSize:       DefaultMetricWindowSize,
			SmoothingSamples: DefaultSmoothingSamples,
			WorkerCount:      DefaultCollectorWorkers,
			QueueSize:        DefaultCollectorQueueSize,
			StatsPath:        DefaultStatsPath,
		},
		Engine: EngineConfig{
			EvaluationInterval:  DefaultEvaluationInterval,
			DecisionHistorySize: DefaultDecisionHistorySize,
			Breaker: BreakerConfig{
				ConsecutiveFailures: DefaultBreakerConsecutiveFailures,
				BackOffInitial:      DefaultBreakerBackOffInitial,
				BackOffMax:          DefaultBreakerBackOffMax,
			},
		},
		Provisioner: ProvisionerConfig{
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		DB: DBConfig{
			CutoffDays:  DefaultCutoffDays,
			RefreshDays: DefaultRefreshDays,
		},
		RateLimit: RateLimitConfig{
			MaxAmount:     DefaultMaxAmount,
			ValidDuration: DefaultValidDuration,
		},
		HTTPClientTimeout: DefaultHTTPClientTimeout,
	}
}

func LoadConfig(bytes []byte) (*Config, error) {
	conf := defaultConfig()
	if err := yaml.UnmarshalStrict(bytes, &conf); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	for i := range conf.Pools {
		applyPoolDefaults(&conf.Pools[i])
	}
	return &conf, nil
}

func applyPoolDefaults(pool *PoolConfig) {
	if pool.Algorithm == "" {
		pool.Algorithm = models.RoundRobin
	}
	hc := &pool.HealthCheck
	if hc.Path == "" {
		hc.Path = DefaultHealthPath
	}
	if hc.Interval == 0 {
		hc.Interval = DefaultProbeInterval
	}
	if hc.Timeout == 0 {
		hc.Timeout = DefaultProbeTimeout
	}
	if hc.HealthyThreshold == 0 {
		hc.HealthyThreshold = DefaultHealthyThreshold
	}
	if hc.UnhealthyThreshold == 0 {
		hc.UnhealthyThreshold = DefaultUnhealthyThreshold
	}
}

func (c *Config) Validate() error {
	if len(c.Pools) == 0 {
		return fmt.Errorf("configuration error: no pools configured")
	}
	seen := map[string]bool{}
	for _, pool := range c.Pools {
		if pool.Id == "" {
			return fmt.Errorf("configuration error: pool id is empty")
		}
		if seen[pool.Id] {
			return fmt.Errorf("configuration error: duplicate pool id %q", pool.Id)
		}
		seen[pool.Id] = true
		if !pool.Algorithm.Valid() {
			return fmt.Errorf("configuration error: pool %s: unknown algorithm %q", pool.Id, pool.Algorithm)
		}
		if pool.HealthCheck.HealthyThreshold < 1 || pool.HealthCheck.UnhealthyThreshold < 1 {
			return fmt.Errorf("configuration error: pool %s: health thresholds must be at least 1", pool.Id)
		}
		if pool.Policy != nil && pool.PolicyFile != "" {
			return fmt.Errorf("configuration error: pool %s: policy and policy_file are mutually exclusive", pool.Id)
		}
		if pool.Policy != nil {
			if err := pool.Policy.Validate(); err != nil {
				return fmt.Errorf("configuration error: pool %s: %w", pool.Id, err)
			}
		}
		for _, backend := range pool.Backends {
			if backend.Id == "" || backend.Address == "" || backend.Port <= 0 {
				return fmt.Errorf("configuration error: pool %s: backend needs id, address and port", pool.Id)
			}
		}
	}
	if c.Proxy.Pool == "" {
		c.Proxy.Pool = c.Pools[0].Id
	}
	if !seen[c.Proxy.Pool] {
		return fmt.Errorf("configuration error: proxy pool %q is not a configured pool", c.Proxy.Pool)
	}
	if c.Proxy.MaxRetries < 0 {
		return fmt.Errorf("configuration error: proxy max_retries is negative")
	}
	if c.Proxy.AttemptTimeout <= 0 {
		return fmt.Errorf("configuration error: proxy attempt_timeout is not positive")
	}
	if c.Collector.WindowSize <= 0 {
		return fmt.Errorf("configuration error: collector window_size is not positive")
	}
	if c.Collector.SmoothingSamples <= 0 {
		return fmt.Errorf("configuration error: collector smoothing_samples is not positive")
	}
	if c.Engine.EvaluationInterval <= 0 {
		return fmt.Errorf("configuration error: engine evaluation_interval is not positive")
	}
	if c.RateLimit.MaxAmount <= 0 {
		return fmt.Errorf("configuration error: rate_limit max_amount is not positive")
	}
	if c.RateLimit.ValidDuration <= 0 {
		return fmt.Errorf("configuration error: rate_limit valid_duration is not positive")
	}
	if err := c.Health.Validate(); err != nil {
		return err
	}
	return nil
}
