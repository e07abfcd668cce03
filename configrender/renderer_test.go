package configrender_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/routepool/routepool/configrender"
	"github.com/routepool/routepool/models"
)

var _ = Describe("Render", func() {
	var (
		template string
		env      map[string]string
		rendered *configrender.RenderedConfig
		err      error
	)

	BeforeEach(func() {
		env = map[string]string{}
	})

	JustBeforeEach(func() {
		rendered, err = configrender.Render(template, env)
	})

	Context("when every placeholder resolves from the environment", func() {
		BeforeEach(func() {
			template = "host: ${DB_HOST}\nport: ${DB_PORT}\n"
			env["DB_HOST"] = "db.internal"
			env["DB_PORT"] = "5432"
		})

		It("substitutes the values", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rendered.Text).To(Equal("host: db.internal\nport: 5432\n"))
		})

		It("records the coerced variable values", func() {
			Expect(rendered.Vars).To(HaveKeyWithValue("DB_HOST", "db.internal"))
			Expect(rendered.Vars).To(HaveKeyWithValue("DB_PORT", int64(5432)))
		})
	})

	Context("when a placeholder has a default", func() {
		BeforeEach(func() {
			template = "host: ${DB_HOST:-localhost}\n"
		})

		Context("and the variable is unset", func() {
			It("uses the default", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(rendered.Text).To(Equal("host: localhost\n"))
				Expect(rendered.Vars).To(HaveKeyWithValue("DB_HOST", "localhost"))
			})
		})

		Context("and the variable is set", func() {
			BeforeEach(func() {
				env["DB_HOST"] = "db.internal"
			})

			It("prefers the environment value", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(rendered.Text).To(Equal("host: db.internal\n"))
			})
		})

		Context("and the variable is set to the empty string", func() {
			BeforeEach(func() {
				env["DB_HOST"] = ""
			})

			It("uses the empty value, not the default", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(rendered.Text).To(Equal("host: \n"))
			})
		})
	})

	Context("when a required variable is missing", func() {
		BeforeEach(func() {
			template = "value: ${REQUIRED}"
		})

		It("fails and names the variable", func() {
			var confErr *models.ConfigurationError
			Expect(errors.As(err, &confErr)).To(BeTrue())
			Expect(confErr.MissingVars).To(Equal([]string{"REQUIRED"}))
			Expect(rendered).To(BeNil())
		})
	})

	Context("when several required variables are missing", func() {
		BeforeEach(func() {
			template = "${ZULU} ${ALPHA} ${MIKE} ${ALPHA}"
		})

		It("reports all of them once, sorted", func() {
			var confErr *models.ConfigurationError
			Expect(errors.As(err, &confErr)).To(BeTrue())
			Expect(confErr.MissingVars).To(Equal([]string{"ALPHA", "MIKE", "ZULU"}))
		})
	})

	Context("type coercion", func() {
		BeforeEach(func() {
			template = "${BOOL} ${INT} ${NEG} ${FLOAT} ${STR}"
			env["BOOL"] = "true"
			env["INT"] = "42"
			env["NEG"] = "-7"
			env["FLOAT"] = "0.75"
			env["STR"] = "10s"
		})

		It("coerces booleans, integers and floats and keeps the rest as strings", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rendered.Vars).To(HaveKeyWithValue("BOOL", true))
			Expect(rendered.Vars).To(HaveKeyWithValue("INT", int64(42)))
			Expect(rendered.Vars).To(HaveKeyWithValue("NEG", int64(-7)))
			Expect(rendered.Vars).To(HaveKeyWithValue("FLOAT", 0.75))
			Expect(rendered.Vars).To(HaveKeyWithValue("STR", "10s"))
		})
	})

	Context("when the template has no placeholders", func() {
		BeforeEach(func() {
			template = "plain: text\n"
		})

		It("returns the template unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rendered.Text).To(Equal(template))
			Expect(rendered.Vars).To(BeEmpty())
		})
	})

	Context("when a placeholder is unterminated", func() {
		BeforeEach(func() {
			template = "value: ${OOPS"
		})

		It("keeps it verbatim", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(rendered.Text).To(Equal("value: ${OOPS"))
		})
	})

	Describe("determinism and idempotence", func() {
		BeforeEach(func() {
			template = "a: ${A:-1}\nb: ${B}\n"
			env["B"] = "two"
		})

		It("produces byte-identical output for identical inputs", func() {
			again, err2 := configrender.Render(template, env)
			Expect(err).NotTo(HaveOccurred())
			Expect(err2).NotTo(HaveOccurred())
			Expect(again.Text).To(Equal(rendered.Text))
		})

		It("is a no-op on already-rendered output", func() {
			again, err2 := configrender.Render(rendered.Text, env)
			Expect(err2).NotTo(HaveOccurred())
			Expect(again.Text).To(Equal(rendered.Text))
		})
	})
})
