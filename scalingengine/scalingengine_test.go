package scalingengine_test

import (
	"errors"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"code.cloudfoundry.org/lager/v3/lagertest"
	"github.com/cenkalti/backoff/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/routepool/routepool/fakes"
	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/scalingengine"
)

const testPool = "web"

type stubAggregator struct {
	aggregate models.PoolAggregate
}

func (s *stubAggregator) Aggregate(string) models.PoolAggregate {
	return s.aggregate
}

type stubSizer struct {
	size int
}

func (s *stubSizer) PoolSize(string) int {
	return s.size
}

func newTestBreaker() *circuit.Breaker {
	expBackOff := backoff.NewExponentialBackOff()
	expBackOff.MaxElapsedTime = 0
	return circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackOff,
		ShouldTrip: circuit.ConsecutiveTripFunc(10),
	})
}

var _ = Describe("ScalingEngine", func() {
	var (
		logger      *lagertest.TestLogger
		clk         *fakeclock.FakeClock
		provisioner *fakes.FakeProvisioner
		leaderGate  *fakes.FakeLeaderGate
		decisionDB  *fakes.FakeDecisionDB
		aggregator  *stubAggregator
		sizer       *stubSizer
		engine      *scalingengine.ScalingEngine
		policy      models.ScalingPolicy
	)

	evaluateAt := func(cpu float64) *models.ScalingDecision {
		aggregator.aggregate = models.PoolAggregate{PoolId: testPool, AvgCPU: cpu, SampledBackends: 2}
		return engine.Evaluate(testPool)
	}

	BeforeEach(func() {
		logger = lagertest.NewTestLogger("engine")
		clk = fakeclock.NewFakeClock(time.Now())
		provisioner = &fakes.FakeProvisioner{}
		leaderGate = &fakes.FakeLeaderGate{}
		leaderGate.IsLeaderReturns(true)
		decisionDB = &fakes.FakeDecisionDB{}
		aggregator = &stubAggregator{}
		sizer = &stubSizer{size: 4}
		policy = models.ScalingPolicy{
			ScaleUpThreshold:   80,
			ScaleDownThreshold: 20,
			DebounceTicks:      3,
			CoolDown:           5 * time.Minute,
			StepSize:           2,
			MinReplicas:        2,
			MaxReplicas:        10,
		}
		engine = scalingengine.NewScalingEngine(logger, clk, provisioner, aggregator, sizer,
			leaderGate, newTestBreaker(), decisionDB, 100)
		engine.SetPolicy(testPool, policy)
	})

	Describe("debounce", func() {
		It("acts only once the breach has persisted for the debounce window", func() {
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(85)).To(BeNil())
			Expect(provisioner.ScaleCallCount()).To(BeZero())

			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Action).To(Equal(models.ActionScaleUp))
			Expect(decision.Status).To(Equal(models.DecisionSucceeded))
			Expect(provisioner.ScaleCallCount()).To(Equal(1))

			poolId, target := provisioner.ScaleArgsForCall(0)
			Expect(poolId).To(Equal(testPool))
			Expect(target).To(Equal(6))
		})

		It("resets the streak when the metric returns inside the band", func() {
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(50)).To(BeNil())
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(85)).To(BeNil())
			Expect(provisioner.ScaleCallCount()).To(BeZero())
		})

		It("resets the opposite streak on a breach in the other direction", func() {
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(10)).To(BeNil())
			Expect(evaluateAt(10)).To(BeNil())
			decision := evaluateAt(10)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Action).To(Equal(models.ActionScaleDown))
		})

		It("leaves the breach counters untouched on an unknown aggregate", func() {
			Expect(evaluateAt(85)).To(BeNil())
			Expect(evaluateAt(85)).To(BeNil())

			aggregator.aggregate = models.PoolAggregate{PoolId: testPool, Unknown: true}
			Expect(engine.Evaluate(testPool)).To(BeNil())

			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionSucceeded))
		})
	})

	Describe("scale down", func() {
		It("steps down and clamps at the minimum", func() {
			sizer.size = 3
			evaluateAt(10)
			evaluateAt(10)
			decision := evaluateAt(10)
			Expect(decision).NotTo(BeNil())
			Expect(decision.TargetSize).To(Equal(policy.MinReplicas))
			_, target := provisioner.ScaleArgsForCall(0)
			Expect(target).To(Equal(2))
		})
	})

	Describe("clamping", func() {
		It("clamps the target to the maximum and ignores when already there", func() {
			sizer.size = 10
			evaluateAt(85)
			evaluateAt(85)
			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionIgnored))
			Expect(decision.TargetSize).To(Equal(10))
			Expect(decision.Error).To(ContainSubstring("replica bound"))
			Expect(provisioner.ScaleCallCount()).To(BeZero())
		})

		It("keeps the target inside the policy range when the step overshoots", func() {
			sizer.size = 9
			evaluateAt(85)
			evaluateAt(85)
			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionSucceeded))
			Expect(decision.TargetSize).To(Equal(10))
		})
	})

	Describe("cooldown", func() {
		It("ignores a breach that completes during the cooldown period", func() {
			evaluateAt(85)
			evaluateAt(85)
			Expect(evaluateAt(85).Status).To(Equal(models.DecisionSucceeded))

			clk.Increment(time.Minute)
			evaluateAt(85)
			evaluateAt(85)
			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionIgnored))
			Expect(decision.Error).To(ContainSubstring("cooldown"))
			Expect(provisioner.ScaleCallCount()).To(Equal(1))
		})

		It("acts again once the cooldown has elapsed", func() {
			evaluateAt(85)
			evaluateAt(85)
			Expect(evaluateAt(85).Status).To(Equal(models.DecisionSucceeded))

			clk.Increment(policy.CoolDown + time.Second)
			evaluateAt(85)
			evaluateAt(85)
			Expect(evaluateAt(85).Status).To(Equal(models.DecisionSucceeded))
			Expect(provisioner.ScaleCallCount()).To(Equal(2))
		})
	})

	Describe("leader gate", func() {
		It("records the decision as ignored when not leader", func() {
			leaderGate.IsLeaderReturns(false)
			evaluateAt(85)
			evaluateAt(85)
			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionIgnored))
			Expect(decision.Error).To(Equal("not leader"))
			Expect(provisioner.ScaleCallCount()).To(BeZero())
		})
	})

	Describe("provisioner failures", func() {
		It("records a failed decision and retries on the next tick", func() {
			provisioner.ScaleReturnsOnCall(0, &models.ProvisionerError{Op: "scale", PoolId: testPool, Err: errors.New("boom")})

			evaluateAt(85)
			evaluateAt(85)
			decision := evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionFailed))

			// the breach streak survives the failure, so the next tick retries
			decision = evaluateAt(85)
			Expect(decision).NotTo(BeNil())
			Expect(decision.Status).To(Equal(models.DecisionSucceeded))
			Expect(provisioner.ScaleCallCount()).To(Equal(2))
		})
	})

	Describe("decision recording", func() {
		It("appends every decision to the history", func() {
			evaluateAt(85)
			evaluateAt(85)
			evaluateAt(85)
			decisions := engine.Histories(testPool, 0, -1)
			Expect(decisions).To(HaveLen(1))
			Expect(decisions[0].Action).To(Equal(models.ActionScaleUp))
			Expect(decisions[0].OldSize).To(Equal(4))
			Expect(decisions[0].TargetSize).To(Equal(6))
			Expect(decisions[0].Id).NotTo(BeEmpty())
		})

		It("persists decisions to the decision database", func() {
			evaluateAt(85)
			evaluateAt(85)
			evaluateAt(85)
			Expect(decisionDB.SaveDecisionCallCount()).To(Equal(1))
			Expect(decisionDB.SaveDecisionArgsForCall(0).Status).To(Equal(models.DecisionSucceeded))
		})
	})

	Describe("Evaluate on a pool without a policy", func() {
		It("does nothing", func() {
			Expect(engine.Evaluate("unmanaged")).To(BeNil())
		})
	})
})
