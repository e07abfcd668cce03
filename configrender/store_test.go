package configrender_test

import (
	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/routepool/routepool/configrender"
)

var _ = Describe("Store", func() {
	var (
		logger   *lagertest.TestLogger
		store    *configrender.Store
		template string
		env      map[string]string
		err      error
	)

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("store")
		template = "host: ${HOST:-localhost}\n"
		env = map[string]string{}
	})

	JustBeforeEach(func() {
		store, err = configrender.NewStore(logger, template, env)
	})

	Describe("NewStore", func() {
		It("renders the initial configuration", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Active().Text).To(Equal("host: localhost\n"))
		})

		Context("when the initial render fails", func() {
			BeforeEach(func() {
				template = "host: ${HOST}\n"
			})

			It("returns the render error", func() {
				Expect(err).To(HaveOccurred())
				Expect(store).To(BeNil())
			})
		})
	})

	Describe("Reload", func() {
		It("swaps the active configuration on success", func() {
			err := store.Reload(template, map[string]string{"HOST": "db.internal"})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Active().Text).To(Equal("host: db.internal\n"))
		})

		It("keeps the previous configuration on failure", func() {
			before := store.Active()
			err := store.Reload("host: ${HOST}\n", map[string]string{})
			Expect(err).To(HaveOccurred())
			Expect(store.Active()).To(BeIdenticalTo(before))
		})

		It("notifies subscribers after a successful swap", func() {
			var seen []*configrender.RenderedConfig
			store.Subscribe(func(rendered *configrender.RenderedConfig) {
				seen = append(seen, rendered)
			})

			Expect(store.Reload(template, map[string]string{"HOST": "a"})).To(Succeed())
			Expect(store.Reload("host: ${HOST}\n", map[string]string{})).NotTo(Succeed())
			Expect(store.Reload(template, map[string]string{"HOST": "b"})).To(Succeed())

			Expect(seen).To(HaveLen(2))
			Expect(seen[0].Text).To(Equal("host: a\n"))
			Expect(seen[1].Text).To(Equal("host: b\n"))
		})
	})
})
