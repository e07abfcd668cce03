package healthendpoint

import (
	"net/http"

	"code.cloudfoundry.org/lager/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tedsuo/ifrit"

	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/models"
)

type HealthConfig struct {
	ServerConfig          helpers.ServerConfig `yaml:"server_config" json:"server_config"`
	BasicAuth             models.BasicAuth     `yaml:"basic_auth" json:"basic_auth"`
	ReadinessCheckEnabled bool                 `yaml:"readiness_enabled" json:"readiness_enabled"`
}

func (c *HealthConfig) Validate() error {
	return c.BasicAuth.Validate()
}

// NewServer serves liveness, readiness and the Prometheus exposition
// endpoint. Exposition output is the scrape surface for external systems;
// readiness is left unauthenticated for platform probes while everything
// else honors the configured basic auth.
func NewServer(logger lager.Logger, conf HealthConfig, healthCheckers []Checker, gatherer prometheus.Gatherer) (ifrit.Runner, error) {
	router, err := NewHealthRouter(logger, conf, healthCheckers, gatherer)
	if err != nil {
		return nil, err
	}
	return helpers.NewHTTPServer(logger, conf.ServerConfig, router)
}

func NewHealthRouter(logger lager.Logger, conf HealthConfig, healthCheckers []Checker, gatherer prometheus.Gatherer) (*mux.Router, error) {
	router := mux.NewRouter()
	promHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})

	if conf.ReadinessCheckEnabled {
		router.Handle("/health/readiness", readiness(healthCheckers))
	}

	authed := router.PathPrefix("").Subrouter()
	if conf.BasicAuth.Username != "" || conf.BasicAuth.UsernameHash != "" {
		basicAuthentication, err := helpers.CreateBasicAuthMiddleware(logger, conf.BasicAuth)
		if err != nil {
			return nil, err
		}
		authed.Use(basicAuthentication.Middleware)
	}
	authed.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	authed.PathPrefix("").Handler(promHandler)

	return router, nil
}
