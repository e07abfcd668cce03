package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/sigmon"

	"github.com/routepool/routepool/api"
	"github.com/routepool/routepool/cmd/routepool/config"
	"github.com/routepool/routepool/configrender"
	"github.com/routepool/routepool/db"
	"github.com/routepool/routepool/db/sqldb"
	"github.com/routepool/routepool/healthendpoint"
	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/metricscollector"
	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/policyvalidator"
	"github.com/routepool/routepool/prober"
	"github.com/routepool/routepool/provisioner"
	"github.com/routepool/routepool/pruner"
	"github.com/routepool/routepool/ratelimiter"
	"github.com/routepool/routepool/registry"
	"github.com/routepool/routepool/router"
	"github.com/routepool/routepool/scalingengine"
)

func main() {
	var path string
	flag.StringVar(&path, "c", "", "config file")
	flag.Parse()
	if path == "" {
		_, _ = fmt.Fprintln(os.Stderr, "missing config file\nUsage: use '-c' option to specify the config file path")
		os.Exit(1)
	}

	templateBytes, err := os.ReadFile(path)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to read config file %q: %s\n", path, err.Error())
		os.Exit(1)
	}
	template := string(templateBytes)

	rendered, err := configrender.Render(template, envMap())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to render config file %q: %s\n", path, err.Error())
		os.Exit(1)
	}
	conf, err := config.LoadConfig([]byte(rendered.Text))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config file %q: %s\n", path, err.Error())
		os.Exit(1)
	}
	if err := conf.Validate(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to validate configuration: %s\n", err.Error())
		os.Exit(1)
	}

	logger := helpers.InitLoggerFromConfig(&conf.Logging, "routepool")
	rpClock := clock.NewClock()

	store, err := configrender.NewStore(logger, template, envMap())
	if err != nil {
		logger.Fatal("failed-to-initialize-config-store", err)
	}

	reg := registry.NewRegistry(logger, rpClock, conf.Prober.DrainGracePeriod)
	validator := policyvalidator.NewPolicyValidator()
	policies, err := seedPools(conf, reg, validator)
	if err != nil {
		logger.Fatal("failed-to-seed-pools", err)
	}

	probeClient, err := helpers.CreateHTTPClient(nil, conf.HTTPClientTimeout)
	if err != nil {
		logger.Fatal("failed-to-create-probe-client", err)
	}
	healthProber := prober.NewHealthProber(logger, rpClock, reg, probeClient,
		conf.Prober.WorkerCount, conf.Prober.QueueSize)

	algorithm, err := router.NewAlgorithm(poolAlgorithm(conf))
	if err != nil {
		logger.Fatal("failed-to-create-routing-algorithm", err)
	}
	tracker := router.NewConnTracker()
	rt := router.NewRouter(logger, conf.Proxy.Pool, reg, algorithm, tracker, conf.Proxy.MaxRetries)
	proxyHandler := router.NewProxyHandler(logger, rt, nil, conf.Proxy.HealthPath, conf.Proxy.AttemptTimeout)

	fetchClient, err := helpers.CreateHTTPClient(nil, conf.HTTPClientTimeout)
	if err != nil {
		logger.Fatal("failed-to-create-stats-client", err)
	}
	fetcher := metricscollector.NewHTTPMetricFetcher(fetchClient, rpClock, conf.Collector.StatsPath)
	collector := metricscollector.NewCollector(logger, rpClock, reg, fetcher, rt,
		conf.Collector.CollectInterval, conf.Collector.WindowSize, conf.Collector.SmoothingSamples,
		conf.Collector.WorkerCount, conf.Collector.QueueSize)

	var decisionDB db.DecisionDB
	if conf.DB.DecisionDB.URL != "" {
		decisionDB, err = sqldb.NewDecisionSQLDB(conf.DB.DecisionDB, logger.Session("decision-db"))
		if err != nil {
			logger.Fatal("failed-to-connect-decision-db", err, lager.Data{"dbConfig": conf.DB.DecisionDB})
		}
		defer func() { _ = decisionDB.Close() }()
	}

	provClient, err := helpers.CreateHTTPClient(&conf.Provisioner.TLSClientCerts, conf.HTTPClientTimeout)
	if err != nil {
		logger.Fatal("failed-to-create-provisioner-client", err)
	}
	prov := provisioner.NewHTTPProvisioner(logger, provClient, conf.Provisioner.APIURL)
	engine := scalingengine.NewScalingEngine(logger, rpClock, prov, collector, reg,
		scalingengine.AlwaysLeader{}, newBreaker(conf.Engine.Breaker), decisionDB,
		conf.Engine.DecisionHistorySize)
	for poolId, policy := range policies {
		engine.SetPolicy(poolId, policy)
	}
	controller := scalingengine.NewController(logger, rpClock, conf.Engine.EvaluationInterval, engine)

	var nozzle *provisioner.EventNozzle
	if conf.Provisioner.EventsURL != "" {
		tlsConfig, err := clientTLS(&conf.Provisioner.TLSClientCerts)
		if err != nil {
			logger.Fatal("failed-to-create-nozzle-tls-config", err)
		}
		nozzle = provisioner.NewEventNozzle(logger, rpClock, conf.Provisioner.EventsURL,
			tlsConfig, conf.Provisioner.HandshakeTimeout, reg)
	}

	reload := reloadFunc(logger, template, store, engine, rt, validator)
	store.Subscribe(func(rendered *configrender.RenderedConfig) {
		logger.Info("config-reloaded", lager.Data{"vars": len(rendered.Vars)})
	})

	httpStatusCollector := healthendpoint.NewHTTPStatusCollector("routepool", "proxy")
	promRegistry := prometheus.NewRegistry()
	healthendpoint.RegisterCollectors(promRegistry, []prometheus.Collector{
		httpStatusCollector,
		healthendpoint.NewPoolStatusCollector("routepool", reg, rt),
	}, true, logger.Session("prometheus"))

	limiter := ratelimiter.DefaultRateLimiter(conf.RateLimit.MaxAmount, conf.RateLimit.ValidDuration,
		logger.Session("proxy-rate-limiter"))
	proxyServer, err := router.NewServer(logger, conf.Proxy.Server, proxyHandler, limiter, httpStatusCollector)
	if err != nil {
		logger.Fatal("failed-to-create-proxy-server", err)
	}

	apiHandler := api.NewHandler(logger, reg, collector, engine, reload)
	apiServer, err := api.NewServer(logger, conf.API, apiHandler)
	if err != nil {
		logger.Fatal("failed-to-create-api-server", err)
	}

	checkers := []healthendpoint.Checker{
		healthendpoint.PoolChecker(conf.Proxy.Pool, func() int {
			snapshot := reg.Snapshot(conf.Proxy.Pool)
			if snapshot == nil {
				return 0
			}
			return len(snapshot.Endpoints)
		}),
	}
	if decisionDB != nil {
		checkers = append(checkers, healthendpoint.DbChecker("decision-db", decisionDB))
	}
	healthServer, err := healthendpoint.NewServer(logger, conf.Health, checkers, promRegistry)
	if err != nil {
		logger.Fatal("failed-to-create-health-server", err)
	}

	members := grouper.Members{
		{Name: "prober", Runner: loopRunner(healthProber.Start, healthProber.Stop)},
		{Name: "collector", Runner: loopRunner(collector.Start, collector.Stop)},
		{Name: "controller", Runner: loopRunner(controller.Start, controller.Stop)},
		{Name: "proxy", Runner: proxyServer},
		{Name: "api", Runner: apiServer},
		{Name: "health", Runner: healthServer},
	}
	if nozzle != nil {
		members = append(grouper.Members{
			{Name: "nozzle", Runner: loopRunner(nozzle.Start, nozzle.Stop)},
		}, members...)
	}
	if decisionDB != nil {
		decisionPruner := pruner.NewDecisionDBPruner(logger, decisionDB,
			time.Duration(conf.DB.RefreshDays)*24*time.Hour, conf.DB.CutoffDays, rpClock)
		members = append(members, grouper.Member{
			Name: "pruner", Runner: loopRunner(decisionPruner.Start, decisionPruner.Stop),
		})
	}

	go watchReloadSignal(logger, reload)

	monitor := ifrit.Invoke(sigmon.New(grouper.NewOrdered(os.Interrupt, members)))
	logger.Info("started")

	err = <-monitor.Wait()
	if err != nil {
		logger.Error("exited-with-failure", err)
		os.Exit(1)
	}
	logger.Info("exited")
}

// loopRunner adapts a Start/Stop component to an ifrit runner.
func loopRunner(start func(), stop func()) ifrit.Runner {
	return ifrit.RunFunc(func(signals <-chan os.Signal, ready chan<- struct{}) error {
		start()
		close(ready)
		<-signals
		stop()
		return nil
	})
}

func envMap() map[string]string {
	env := map[string]string{}
	for _, entry := range os.Environ() {
		if name, value, found := strings.Cut(entry, "="); found {
			env[name] = value
		}
	}
	return env
}

func poolAlgorithm(conf *config.Config) models.RoutingAlgorithm {
	for _, pool := range conf.Pools {
		if pool.Id == conf.Proxy.Pool {
			return pool.Algorithm
		}
	}
	return models.RoundRobin
}

// seedPools registers the configured pools and their static backends and
// collects the validated scaling policies.
func seedPools(conf *config.Config, reg *registry.Registry, validator *policyvalidator.PolicyValidator) (map[string]models.ScalingPolicy, error) {
	policies := map[string]models.ScalingPolicy{}
	for _, pool := range conf.Pools {
		reg.CreatePool(pool.Id, pool.HealthCheck)
		for _, backend := range pool.Backends {
			err := reg.AddEndpoint(pool.Id, models.BackendEndpoint{
				Id:      backend.Id,
				Address: backend.Address,
				Port:    backend.Port,
				Weight:  backend.Weight,
			})
			if err != nil {
				return nil, err
			}
		}
		policy, err := poolPolicy(pool, validator)
		if err != nil {
			return nil, err
		}
		if policy != nil {
			policies[pool.Id] = *policy
		}
	}
	return policies, nil
}

func poolPolicy(pool config.PoolConfig, validator *policyvalidator.PolicyValidator) (*models.ScalingPolicy, error) {
	if pool.PolicyFile != "" {
		raw, err := os.ReadFile(pool.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file for pool %s: %w", pool.Id, err)
		}
		policy, err := validator.Validate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid policy for pool %s: %w", pool.Id, err)
		}
		return policy, nil
	}
	return pool.Policy, nil
}

// reloadFunc re-renders the config template against the current environment
// and applies the reloadable settings. A failed render or validation leaves
// the active configuration untouched.
func reloadFunc(logger lager.Logger, template string, store *configrender.Store,
	engine *scalingengine.ScalingEngine, rt *router.Router, validator *policyvalidator.PolicyValidator) api.ReloadFunc {
	return func() error {
		env := envMap()
		rendered, err := configrender.Render(template, env)
		if err != nil {
			return err
		}
		newConf, err := config.LoadConfig([]byte(rendered.Text))
		if err != nil {
			return err
		}
		if err := newConf.Validate(); err != nil {
			return err
		}
		if err := store.Reload(template, env); err != nil {
			return err
		}
		for _, pool := range newConf.Pools {
			policy, err := poolPolicy(pool, validator)
			if err != nil {
				logger.Error("reload-skipping-pool-policy", err, lager.Data{"poolId": pool.Id})
				continue
			}
			if policy != nil {
				engine.SetPolicy(pool.Id, *policy)
			}
		}
		rt.SetMaxRetries(newConf.Proxy.MaxRetries)
		return nil
	}
}

func watchReloadSignal(logger lager.Logger, reload api.ReloadFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR2)
	for range signals {
		if err := reload(); err != nil {
			logger.Error("reload-rejected", err)
			continue
		}
		logger.Info("reload-applied")
	}
}

func newBreaker(conf config.BreakerConfig) *circuit.Breaker {
	expBackOff := backoff.NewExponentialBackOff()
	expBackOff.InitialInterval = conf.BackOffInitial
	expBackOff.MaxInterval = conf.BackOffMax
	expBackOff.MaxElapsedTime = 0
	return circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackOff,
		ShouldTrip: circuit.ConsecutiveTripFunc(conf.ConsecutiveFailures),
	})
}

func clientTLS(certs *models.TLSCerts) (*tls.Config, error) {
	if certs == nil || certs.CertFile == "" {
		return nil, nil
	}
	return certs.CreateClientConfig()
}
