package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"code.cloudfoundry.org/lager/v3"
	"github.com/gorilla/mux"

	"github.com/routepool/routepool/metricscollector"
	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/registry"
	"github.com/routepool/routepool/scalingengine"
)

type VarsFunc func(w http.ResponseWriter, r *http.Request, vars map[string]string)

func (vh VarsFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	vh(w, r, vars)
}

// ReloadFunc re-renders and swaps the active configuration; it returns the
// aggregated render error when the reload is rejected.
type ReloadFunc func() error

type Handler struct {
	logger    lager.Logger
	registry  *registry.Registry
	collector *metricscollector.Collector
	engine    *scalingengine.ScalingEngine
	reload    ReloadFunc
}

func NewHandler(logger lager.Logger, reg *registry.Registry, collector *metricscollector.Collector, engine *scalingengine.ScalingEngine, reload ReloadFunc) *Handler {
	return &Handler{
		logger:    logger.Session("api-handler"),
		registry:  reg,
		collector: collector,
		engine:    engine,
		reload:    reload,
	}
}

func (h *Handler) GetPoolSnapshot(w http.ResponseWriter, r *http.Request, vars map[string]string) {
	snapshot := h.registry.Snapshot(vars["poolid"])
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) GetPoolEndpoints(w http.ResponseWriter, r *http.Request, vars map[string]string) {
	endpoints := h.registry.Endpoints(vars["poolid"])
	if endpoints == nil {
		endpoints = []models.BackendEndpoint{}
	}
	writeJSON(w, http.StatusOK, endpoints)
}

func (h *Handler) GetPoolAggregate(w http.ResponseWriter, r *http.Request, vars map[string]string) {
	aggregate := h.collector.Aggregate(vars["poolid"])
	writeJSON(w, http.StatusOK, aggregate)
}

func (h *Handler) GetScalingHistories(w http.ResponseWriter, r *http.Request, vars map[string]string) {
	poolId := vars["poolid"]
	logger := h.logger.WithData(lager.Data{"poolId": poolId})

	start, ok := parseInt64Param(r, "start", 0)
	if !ok {
		logger.Info("bad-start-param", lager.Data{"start": r.URL.Query().Get("start")})
		writeError(w, http.StatusBadRequest, "error parsing start time")
		return
	}
	end, ok := parseInt64Param(r, "end", -1)
	if !ok {
		logger.Info("bad-end-param", lager.Data{"end": r.URL.Query().Get("end")})
		writeError(w, http.StatusBadRequest, "error parsing end time")
		return
	}

	histories := h.engine.Histories(poolId, start, end)
	writeJSON(w, http.StatusOK, histories)
}

func (h *Handler) ReloadConfig(w http.ResponseWriter, r *http.Request, vars map[string]string) {
	if err := h.reload(); err != nil {
		h.logger.Error("reload-rejected", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func parseInt64Param(r *http.Request, name string, defaultValue int64) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, true
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, models.ErrorResponse{Code: http.StatusText(code), Message: message})
}
