package prober_test

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/prober"
	"github.com/routepool/routepool/registry"
)

var _ = Describe("HealthProber", func() {
	var (
		logger *lagertest.TestLogger
		clk    *fakeclock.FakeClock
		reg    *registry.Registry
		p      *prober.HealthProber
		server *ghttp.Server
		spec   models.HealthCheckSpec
	)

	serverEndpoint := func(id string) models.BackendEndpoint {
		host, portStr, err := net.SplitHostPort(server.Addr())
		Expect(err).NotTo(HaveOccurred())
		port, err := strconv.Atoi(portStr)
		Expect(err).NotTo(HaveOccurred())
		return models.BackendEndpoint{Id: id, Address: host, Port: port}
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("prober")
		clk = fakeclock.NewFakeClock(time.Now())
		reg = registry.NewRegistry(logger, clk, 30*time.Minute)
		server = ghttp.NewServer()
		spec = models.HealthCheckSpec{
			Path:               "/health",
			Interval:           10 * time.Second,
			Timeout:            500 * time.Millisecond,
			HealthyThreshold:   2,
			UnhealthyThreshold: 3,
		}
		p = prober.NewHealthProber(logger, clk, reg, &http.Client{}, 2, 16)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("Probe", func() {
		It("succeeds on a 2xx response", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/health"),
				ghttp.RespondWith(http.StatusOK, "ok"),
			))
			Expect(p.Probe(serverEndpoint("1"), spec)).To(Succeed())
		})

		It("returns an UnhealthyStatusError on a non-2xx response", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, ""))
			err := p.Probe(serverEndpoint("1"), spec)
			Expect(err).To(BeAssignableToTypeOf(&models.UnhealthyStatusError{}))
			Expect(err.(*models.UnhealthyStatusError).StatusCode).To(Equal(http.StatusInternalServerError))
		})

		It("returns a ConnectError when the endpoint is unreachable", func() {
			endpoint := serverEndpoint("1")
			server.Close()
			err := p.Probe(endpoint, spec)
			Expect(err).To(BeAssignableToTypeOf(&models.ConnectError{}))
		})

		It("returns a TimeoutError when the check exceeds its timeout", func() {
			server.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			})
			spec.Timeout = 20 * time.Millisecond
			err := p.Probe(serverEndpoint("1"), spec)
			Expect(err).To(BeAssignableToTypeOf(&models.TimeoutError{}))
		})
	})

	Describe("Start", func() {
		BeforeEach(func() {
			reg.CreatePool("web", spec)
			Expect(reg.AddEndpoint("web", serverEndpoint("1"))).To(Succeed())
		})

		AfterEach(func() {
			p.Stop()
		})

		It("probes on the pool's interval and drives the hysteresis to healthy", func() {
			server.AllowUnhandledRequests = true
			server.UnhandledRequestStatusCode = http.StatusOK

			p.Start()
			clk.WaitForWatcherAndIncrement(spec.Interval)
			Eventually(func() int { return len(server.ReceivedRequests()) }).Should(BeNumerically(">=", 1))
			clk.WaitForWatcherAndIncrement(spec.Interval)

			Eventually(func() models.HealthState {
				return reg.Endpoints("web")[0].Health
			}).Should(Equal(models.HealthHealthy))
		})

		It("does not probe draining endpoints", func() {
			server.AllowUnhandledRequests = true
			server.UnhandledRequestStatusCode = http.StatusOK
			reg.MarkDraining("web", "1")

			p.Start()
			clk.WaitForWatcherAndIncrement(spec.Interval)
			Consistently(func() int { return len(server.ReceivedRequests()) }).Should(BeZero())
		})
	})
})
