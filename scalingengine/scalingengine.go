package scalingengine

import (
	"fmt"
	"sync"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager/v3"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/routepool/routepool/db"
	"github.com/routepool/routepool/helpers"
	"github.com/routepool/routepool/models"
	"github.com/routepool/routepool/provisioner"
)

// LeaderGate must return true before any scale call is issued, so multiple
// controller instances can run behind an external leader election.
type LeaderGate interface {
	IsLeader() bool
}

// AlwaysLeader is the single-instance deployment gate.
type AlwaysLeader struct{}

func (AlwaysLeader) IsLeader() bool { return true }

// PoolSizer reports the current non-draining size of a pool.
type PoolSizer interface {
	PoolSize(poolId string) int
}

// Aggregator supplies the smoothed pool-wide load view.
type Aggregator interface {
	Aggregate(poolId string) models.PoolAggregate
}

type poolScalingState struct {
	upBreachTicks   int
	downBreachTicks int
	lastActionAt    int64
}

// ScalingEngine evaluates one pool per tick against its policy and, when a
// threshold breach has persisted for the debounce window and the cooldown
// has expired, asks the provisioner for a new target size. Provisioner
// failures trip a circuit breaker whose backoff bounds the retry rate; the
// breach counters survive a failed call so the next tick retries.
type ScalingEngine struct {
	logger      lager.Logger
	clock       clock.Clock
	provisioner provisioner.Provisioner
	aggregator  Aggregator
	sizer       PoolSizer
	leaderGate  LeaderGate
	breaker     *circuit.Breaker
	decisionDB  db.DecisionDB

	lock     sync.Mutex
	policies map[string]models.ScalingPolicy
	states   map[string]*poolScalingState
	history  *DecisionHistory
}

func NewScalingEngine(logger lager.Logger, clk clock.Clock, prov provisioner.Provisioner, aggregator Aggregator, sizer PoolSizer,
	leaderGate LeaderGate, breaker *circuit.Breaker, decisionDB db.DecisionDB, historySize int) *ScalingEngine {
	return &ScalingEngine{
		logger:      logger.Session("scaling-engine"),
		clock:       clk,
		provisioner: prov,
		aggregator:  aggregator,
		sizer:       sizer,
		leaderGate:  leaderGate,
		breaker:     breaker,
		decisionDB:  decisionDB,
		policies:    map[string]models.ScalingPolicy{},
		states:      map[string]*poolScalingState{},
		history:     NewDecisionHistory(historySize),
	}
}

// SetPolicy installs or replaces the policy of a pool. Called at startup
// and on config reload.
func (e *ScalingEngine) SetPolicy(poolId string, policy models.ScalingPolicy) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.policies[poolId] = policy
	if _, exists := e.states[poolId]; !exists {
		e.states[poolId] = &poolScalingState{}
	}
}

func (e *ScalingEngine) PoolIds() []string {
	e.lock.Lock()
	defer e.lock.Unlock()
	ids := make([]string, 0, len(e.policies))
	for id := range e.policies {
		ids = append(ids, id)
	}
	return ids
}

func (e *ScalingEngine) Histories(poolId string, start int64, end int64) []models.ScalingDecision {
	return e.history.Query(poolId, start, end)
}

// Evaluate runs one control-loop pass for a pool.
func (e *ScalingEngine) Evaluate(poolId string) *models.ScalingDecision {
	e.lock.Lock()
	policy, hasPolicy := e.policies[poolId]
	state := e.states[poolId]
	e.lock.Unlock()
	if !hasPolicy {
		return nil
	}

	logger := e.logger.WithData(lager.Data{"poolId": poolId})

	aggregate := e.aggregator.Aggregate(poolId)
	if aggregate.Unknown {
		// no usable samples this tick; breach counters are left untouched so
		// a collection gap neither triggers nor cancels a pending action
		logger.Debug("aggregate-unknown")
		return nil
	}

	metric := aggregate.AvgCPU
	action := models.ActionNone
	switch {
	case metric > policy.ScaleUpThreshold:
		state.upBreachTicks++
		state.downBreachTicks = 0
		if state.upBreachTicks >= policy.DebounceTicks {
			action = models.ActionScaleUp
		}
	case metric < policy.ScaleDownThreshold:
		state.downBreachTicks++
		state.upBreachTicks = 0
		if state.downBreachTicks >= policy.DebounceTicks {
			action = models.ActionScaleDown
		}
	default:
		state.upBreachTicks = 0
		state.downBreachTicks = 0
	}

	if action == models.ActionNone {
		return nil
	}

	now := e.clock.Now()
	currentSize := e.sizer.PoolSize(poolId)
	decision := e.newDecision(poolId, now.UnixNano(), action, currentSize)
	decision.Reason = fmt.Sprintf("avg cpu %.1f%% breached %s threshold for %d ticks",
		metric, action, policy.DebounceTicks)

	if !e.leaderGate.IsLeader() {
		decision.Status = models.DecisionIgnored
		decision.TargetSize = currentSize
		decision.Error = "not leader"
		e.record(logger, decision)
		return decision
	}

	if now.UnixNano()-state.lastActionAt < int64(policy.CoolDown) {
		decision.Status = models.DecisionIgnored
		decision.TargetSize = currentSize
		decision.Error = "pool in cooldown period"
		e.record(logger, decision)
		return decision
	}

	rawTarget := currentSize + policy.StepSize
	if action == models.ActionScaleDown {
		rawTarget = currentSize - policy.StepSize
	}
	target := policy.Clamp(rawTarget)
	if target != rawTarget {
		logger.Info("capacity-clamped", lager.Data{"error": (&models.CapacityError{
			PoolId: poolId, Requested: rawTarget, Min: policy.MinReplicas, Max: policy.MaxReplicas,
		}).Error()})
	}
	decision.TargetSize = target

	if target == currentSize {
		decision.Status = models.DecisionIgnored
		decision.Error = "pool already at replica bound"
		e.record(logger, decision)
		return decision
	}

	err := e.breaker.Call(func() error {
		return e.provisioner.Scale(poolId, target)
	}, 0)
	if err != nil {
		decision.Status = models.DecisionFailed
		decision.Error = err.Error()
		logger.Error("scale-call-failed", err, lager.Data{"targetSize": target})
		e.record(logger, decision)
		return decision
	}

	state.lastActionAt = now.UnixNano()
	state.upBreachTicks = 0
	state.downBreachTicks = 0
	decision.Status = models.DecisionSucceeded
	logger.Info("scale-requested", lager.Data{"action": action, "oldSize": currentSize, "targetSize": target})
	e.record(logger, decision)
	return decision
}

func (e *ScalingEngine) newDecision(poolId string, timestamp int64, action models.ScalingAction, currentSize int) *models.ScalingDecision {
	id, err := helpers.GenerateGUID()
	if err != nil {
		id = fmt.Sprintf("%s-%d", poolId, timestamp)
	}
	return &models.ScalingDecision{
		Id:        id,
		PoolId:    poolId,
		Timestamp: timestamp,
		Action:    action,
		OldSize:   currentSize,
	}
}

func (e *ScalingEngine) record(logger lager.Logger, decision *models.ScalingDecision) {
	e.history.Append(*decision)
	if e.decisionDB != nil {
		if err := e.decisionDB.SaveDecision(decision); err != nil {
			logger.Error("failed-to-save-decision", err, lager.Data{"decision": decision})
		}
	}
}
