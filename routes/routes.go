package routes

import (
	"net/http"

	"github.com/gorilla/mux"
)

const (
	PoolSnapshotPath      = "/v1/pools/{poolid}/snapshot"
	PoolSnapshotRouteName = "GetPoolSnapshot"

	PoolEndpointsPath      = "/v1/pools/{poolid}/endpoints"
	PoolEndpointsRouteName = "GetPoolEndpoints"

	PoolAggregatePath      = "/v1/pools/{poolid}/aggregate"
	PoolAggregateRouteName = "GetPoolAggregate"

	DecisionHistoriesPath      = "/v1/pools/{poolid}/scaling_histories"
	DecisionHistoriesRouteName = "GetScalingHistories"

	ReloadPath      = "/v1/config/reload"
	ReloadRouteName = "ReloadConfig"
)

func ApiRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Path(PoolSnapshotPath).Methods(http.MethodGet).Name(PoolSnapshotRouteName)
	r.Path(PoolEndpointsPath).Methods(http.MethodGet).Name(PoolEndpointsRouteName)
	r.Path(PoolAggregatePath).Methods(http.MethodGet).Name(PoolAggregateRouteName)
	r.Path(DecisionHistoriesPath).Methods(http.MethodGet).Name(DecisionHistoriesRouteName)
	r.Path(ReloadPath).Methods(http.MethodPost).Name(ReloadRouteName)
	return r
}
