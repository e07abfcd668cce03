package provisioner_test

import (
	"errors"
	"net/http"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/provisioner"
)

var _ = Describe("HTTPProvisioner", func() {
	var (
		server *ghttp.Server
		client *provisioner.HTTPProvisioner
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		client = provisioner.NewHTTPProvisioner(lagertest.NewTestLogger("provisioner"), &http.Client{}, server.URL())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("ListInstances", func() {
		It("returns the pool's instances", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/v1/pools/web/instances"),
				ghttp.RespondWith(http.StatusOK, `{"instances":[{"id":"a","address":"10.0.0.1","port":8080}]}`),
			))

			instances, err := client.ListInstances("web")
			Expect(err).NotTo(HaveOccurred())
			Expect(instances).To(HaveLen(1))
			Expect(instances[0].Id).To(Equal("a"))
			Expect(instances[0].Port).To(Equal(8080))
		})

		It("wraps an unexpected status in a ProvisionerError", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, ""))
			_, err := client.ListInstances("web")
			var provErr *models.ProvisionerError
			Expect(errors.As(err, &provErr)).To(BeTrue())
			Expect(provErr.Op).To(Equal("list_instances"))
			Expect(provErr.PoolId).To(Equal("web"))
		})

		It("wraps an unreachable server in a ProvisionerError", func() {
			server.Close()
			_, err := client.ListInstances("web")
			var provErr *models.ProvisionerError
			Expect(errors.As(err, &provErr)).To(BeTrue())
		})
	})

	Describe("Scale", func() {
		It("puts the target count", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPut, "/v1/pools/web/scale"),
				ghttp.VerifyContentType("application/json"),
				ghttp.VerifyJSON(`{"target_count": 6}`),
				ghttp.RespondWith(http.StatusAccepted, ""),
			))

			Expect(client.Scale("web", 6)).To(Succeed())
		})

		It("accepts a 200 as well", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, ""))
			Expect(client.Scale("web", 3)).To(Succeed())
		})

		It("wraps a rejection in a ProvisionerError", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusConflict, ""))
			err := client.Scale("web", 3)
			var provErr *models.ProvisionerError
			Expect(errors.As(err, &provErr)).To(BeTrue())
			Expect(provErr.Op).To(Equal("scale"))
		})
	})
})
