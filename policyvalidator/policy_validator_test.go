package policyvalidator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/routepool/routepool/policyvalidator"
)

var _ = Describe("PolicyValidator", func() {
	var validator *policyvalidator.PolicyValidator

	BeforeEach(func() {
		validator = policyvalidator.NewPolicyValidator()
	})

	It("accepts a well-formed policy document", func() {
		policy, err := validator.Validate([]byte(`{
			"scale_up_threshold": 80,
			"scale_down_threshold": 20,
			"debounce_ticks": 3,
			"step_size": 2,
			"min_replicas": 2,
			"max_replicas": 10
		}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(policy.ScaleUpThreshold).To(Equal(80.0))
		Expect(policy.MaxReplicas).To(Equal(10))
	})

	It("rejects a document missing required fields", func() {
		_, err := validator.Validate([]byte(`{"scale_up_threshold": 80}`))
		Expect(err).To(BeAssignableToTypeOf(policyvalidator.ValidationErrors{}))
		Expect(err.Error()).To(ContainSubstring("scale_down_threshold"))
	})

	It("rejects out-of-range thresholds", func() {
		_, err := validator.Validate([]byte(`{
			"scale_up_threshold": 120,
			"scale_down_threshold": 20,
			"min_replicas": 2,
			"max_replicas": 10
		}`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed JSON", func() {
		_, err := validator.Validate([]byte(`not json`))
		Expect(err).To(HaveOccurred())
	})

	It("applies the semantic rules after the schema", func() {
		_, err := validator.Validate([]byte(`{
			"scale_up_threshold": 30,
			"scale_down_threshold": 50,
			"debounce_ticks": 3,
			"step_size": 1,
			"min_replicas": 2,
			"max_replicas": 10
		}`))
		Expect(err).To(MatchError(ContainSubstring("scale_down_threshold")))
	})
})
