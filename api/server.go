package api

import (
	"code.cloudfoundry.org/lager/v3"
	"github.com/gorilla/mux"
	"github.com/tedsuo/ifrit"

	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/routes"
)

// NewServer exposes the operator API: pool state, aggregates, the scaling
// audit history and the config-reload trigger.
func NewServer(logger lager.Logger, conf helpers.ServerConfig, handler *Handler) (ifrit.Runner, error) {
	return helpers.NewHTTPServer(logger, conf, NewRouter(handler))
}

func NewRouter(handler *Handler) *mux.Router {
	r := routes.ApiRoutes()
	r.Get(routes.PoolSnapshotRouteName).Handler(VarsFunc(handler.GetPoolSnapshot))
	r.Get(routes.PoolEndpointsRouteName).Handler(VarsFunc(handler.GetPoolEndpoints))
	r.Get(routes.PoolAggregateRouteName).Handler(VarsFunc(handler.GetPoolAggregate))
	r.Get(routes.DecisionHistoriesRouteName).Handler(VarsFunc(handler.GetScalingHistories))
	r.Get(routes.ReloadRouteName).Handler(VarsFunc(handler.ReloadConfig))
	return r
}
