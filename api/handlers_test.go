package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	"github.com/cenkalti/backoff/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/routepool/routepool/api"
	"github.com/routepool/routepool/fakes"
	"github.com/routepool/routepool/metricscollector"
	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/registry"
	"github.com/routepool/routepool/scalingengine"
)

var _ = Describe("Handler", func() {
	var (
		logger    *lagertest.TestLogger
		clk       *fakeclock.FakeClock
		reg       *registry.Registry
		collector *metricscollector.Collector
		engine    *scalingengine.ScalingEngine
		reloadErr error
		reloads   int
		server    *httptest.Server
	)

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("api")
		clk = fakeclock.NewFakeClock(time.Now())
		reg = registry.NewRegistry(logger, clk, 30*time.Minute)
		reg.CreatePool("web", models.HealthCheckSpec{
			Path: "/health", Interval: 10 * time.Second, Timeout: time.Second,
			HealthyThreshold: 1, UnhealthyThreshold: 1,
		})
		collector = metricscollector.NewCollector(logger, clk, reg, &fakes.FakeMetricFetcher{}, nil,
			15*time.Second, 10, 3, 1, 8)

		expBackOff := backoff.NewExponentialBackOff()
		expBackOff.MaxElapsedTime = 0
		breaker := circuit.NewBreakerWithOptions(&circuit.Options{
			BackOff:    expBackOff,
			ShouldTrip: circuit.ConsecutiveTripFunc(10),
		})
		engine = scalingengine.NewScalingEngine(logger, clk, &fakes.FakeProvisioner{}, collector, reg,
			scalingengine.AlwaysLeader{}, breaker, nil, 10)

		reloadErr = nil
		reloads = 0
		handler := api.NewHandler(logger, reg, collector, engine, func() error {
			reloads++
			return reloadErr
		})
		server = httptest.NewServer(api.NewRouter(handler))
	})

	AfterEach(func() {
		server.Close()
	})

	readAll := func(resp *http.Response) ([]byte, error) {
		return io.ReadAll(resp.Body)
	}

	get := func(path string) (*http.Response, []byte) {
		resp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()
		var body []byte
		body, err = readAll(resp)
		Expect(err).NotTo(HaveOccurred())
		return resp, body
	}

	Describe("GET /v1/pools/{poolid}/snapshot", func() {
		It("returns the current snapshot", func() {
			Expect(reg.AddEndpoint("web", models.BackendEndpoint{Id: "a", Address: "10.0.0.1", Port: 8080})).To(Succeed())
			endpoints := reg.Endpoints("web")
			reg.ReportProbe("web", "a", endpoints[0].Generation, true)

			resp, body := get("/v1/pools/web/snapshot")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var snapshot models.Snapshot
			Expect(json.Unmarshal(body, &snapshot)).To(Succeed())
			Expect(snapshot.PoolId).To(Equal("web"))
			Expect(snapshot.Endpoints).To(HaveLen(1))
		})
	})

	Describe("GET /v1/pools/{poolid}/endpoints", func() {
		It("returns every endpoint regardless of health", func() {
			Expect(reg.AddEndpoint("web", models.BackendEndpoint{Id: "a", Address: "10.0.0.1", Port: 8080})).To(Succeed())

			resp, body := get("/v1/pools/web/endpoints")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var endpoints []models.BackendEndpoint
			Expect(json.Unmarshal(body, &endpoints)).To(Succeed())
			Expect(endpoints).To(HaveLen(1))
			Expect(endpoints[0].Health).To(Equal(models.HealthUnknown))
		})

		It("returns an empty list for an unknown pool", func() {
			resp, body := get("/v1/pools/ghost/endpoints")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(MatchJSON(`[]`))
		})
	})

	Describe("GET /v1/pools/{poolid}/aggregate", func() {
		It("returns the pool aggregate", func() {
			resp, body := get("/v1/pools/web/aggregate")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var aggregate models.PoolAggregate
			Expect(json.Unmarshal(body, &aggregate)).To(Succeed())
			Expect(aggregate.PoolId).To(Equal("web"))
			Expect(aggregate.Unknown).To(BeTrue())
		})
	})

	Describe("GET /v1/pools/{poolid}/scaling_histories", func() {
		It("returns the recorded decisions", func() {
			resp, body := get("/v1/pools/web/scaling_histories")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(string(body)).To(MatchJSON(`[]`))
		})

		It("rejects an unparsable start parameter", func() {
			resp, _ := get("/v1/pools/web/scaling_histories?start=not-a-number")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unparsable end parameter", func() {
			resp, _ := get("/v1/pools/web/scaling_histories?end=not-a-number")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /v1/config/reload", func() {
		post := func() *http.Response {
			resp, err := http.Post(server.URL+"/v1/config/reload", "application/json", nil)
			Expect(err).NotTo(HaveOccurred())
			_ = resp.Body.Close()
			return resp
		}

		It("triggers a reload", func() {
			resp := post()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(reloads).To(Equal(1))
		})

		It("surfaces a rejected reload as a 400", func() {
			reloadErr = errors.New("missing variables: [REQUIRED]")
			resp := post()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects GET on the reload route", func() {
			resp, _ := get("/v1/config/reload")
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})
	})
})
