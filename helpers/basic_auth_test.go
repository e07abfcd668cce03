package helpers_test

import (
	"net/http"
	"net/http/httptest"

	"code.cloudfoundry.org/lager/v3/lagertest"
	"golang.org/x/crypto/bcrypt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/models"
)

var _ = Describe("BasicAuthenticationMiddleware", func() {
	var (
		logger  *lagertest.TestLogger
		ba      models.BasicAuth
		handler http.Handler
	)

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("basic-auth")
		ba = models.BasicAuth{}
	})

	JustBeforeEach(func() {
		middleware, err := helpers.CreateBasicAuthMiddleware(logger, ba)
		Expect(err).NotTo(HaveOccurred())
		handler = middleware.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
	})

	serve := func(username, password string, withCreds bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/stats", nil)
		if withCreds {
			req.SetBasicAuth(username, password)
		}
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp
	}

	Context("when no credentials are configured", func() {
		It("passes every request through", func() {
			Expect(serve("", "", false).Code).To(Equal(http.StatusOK))
		})
	})

	Context("when cleartext credentials are configured", func() {
		BeforeEach(func() {
			ba = models.BasicAuth{Username: "operator", Password: "s3cret"}
		})

		It("accepts matching credentials", func() {
			Expect(serve("operator", "s3cret", true).Code).To(Equal(http.StatusOK))
		})

		It("rejects a wrong password", func() {
			Expect(serve("operator", "wrong", true).Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a request without credentials", func() {
			Expect(serve("", "", false).Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("when pre-hashed credentials are configured", func() {
		BeforeEach(func() {
			usernameHash, err := bcrypt.GenerateFromPassword([]byte("operator"), bcrypt.MinCost)
			Expect(err).NotTo(HaveOccurred())
			passwordHash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
			Expect(err).NotTo(HaveOccurred())
			ba = models.BasicAuth{UsernameHash: string(usernameHash), PasswordHash: string(passwordHash)}
		})

		It("accepts credentials matching the hashes", func() {
			Expect(serve("operator", "s3cret", true).Code).To(Equal(http.StatusOK))
		})

		It("rejects a wrong username", func() {
			Expect(serve("intruder", "s3cret", true).Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
