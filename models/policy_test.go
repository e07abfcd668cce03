package models_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/routepool/routepool/models"
)

var _ = Describe("ScalingPolicy", func() {
	var policy models.ScalingPolicy

	BeforeEach(func() {
		policy = models.ScalingPolicy{
			ScaleUpThreshold:   80,
			ScaleDownThreshold: 20,
			DebounceTicks:      3,
			CoolDown:           5 * time.Minute,
			StepSize:           2,
			MinReplicas:        2,
			MaxReplicas:        10,
		}
	})

	Describe("Validate", func() {
		It("accepts a sane policy", func() {
			Expect(policy.Validate()).To(Succeed())
		})

		It("rejects min_replicas below 1", func() {
			policy.MinReplicas = 0
			Expect(policy.Validate()).To(MatchError(ContainSubstring("min_replicas")))
		})

		It("rejects max_replicas below min_replicas", func() {
			policy.MaxReplicas = 1
			Expect(policy.Validate()).To(MatchError(ContainSubstring("max_replicas")))
		})

		It("rejects a non-positive step size", func() {
			policy.StepSize = 0
			Expect(policy.Validate()).To(MatchError(ContainSubstring("step_size")))
		})

		It("rejects debounce ticks below 1", func() {
			policy.DebounceTicks = 0
			Expect(policy.Validate()).To(MatchError(ContainSubstring("debounce_ticks")))
		})

		It("rejects overlapping thresholds", func() {
			policy.ScaleDownThreshold = 90
			Expect(policy.Validate()).To(MatchError(ContainSubstring("scale_down_threshold")))
		})
	})

	Describe("Clamp", func() {
		It("bounds a size to the replica range", func() {
			Expect(policy.Clamp(1)).To(Equal(2))
			Expect(policy.Clamp(5)).To(Equal(5))
			Expect(policy.Clamp(12)).To(Equal(10))
		})
	})
})

var _ = Describe("BackendEndpoint", func() {
	It("builds its probe URL from address and port", func() {
		endpoint := models.BackendEndpoint{Id: "a", Address: "10.0.0.1", Port: 8080}
		Expect(endpoint.URL()).To(Equal("http://10.0.0.1:8080"))
	})

	It("is eligible only while healthy", func() {
		endpoint := models.BackendEndpoint{Health: models.HealthHealthy}
		Expect(endpoint.Eligible()).To(BeTrue())
		for _, health := range []models.HealthState{models.HealthUnknown, models.HealthUnhealthy, models.HealthDraining} {
			endpoint.Health = health
			Expect(endpoint.Eligible()).To(BeFalse())
		}
	})
})

var _ = Describe("ConfigurationError", func() {
	It("lists every missing variable", func() {
		err := &models.ConfigurationError{MissingVars: []string{"DB_HOST", "DB_PORT"}}
		Expect(err.Error()).To(ContainSubstring("DB_HOST, DB_PORT"))
	})
})
