package models

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// ErrNoHealthyBackend is returned by a routing algorithm when the
	// snapshot holds no eligible endpoint at all.
	ErrNoHealthyBackend = errors.New("no healthy backend available")

	// ErrUpstreamUnavailable is returned by the router once every retry
	// candidate for a request has been exhausted.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Probe failures. The prober treats all three identically for the purpose of
// the hysteresis counters; the distinction is kept for logs and metrics.
type TimeoutError struct {
	Endpoint string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("probe timed out: %s", e.Endpoint)
}

type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("probe connect failed: %s: %s", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

type UnhealthyStatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *UnhealthyStatusError) Error() string {
	return fmt.Sprintf("probe got unhealthy status %d from %s", e.StatusCode, e.Endpoint)
}

// ProvisionerError wraps a failed provisioner call. It is logged and retried
// on the next controller tick, never fatal to the control loop.
type ProvisionerError struct {
	Op     string
	PoolId string
	Err    error
}

func (e *ProvisionerError) Error() string {
	return fmt.Sprintf("provisioner %s failed for pool %s: %s", e.Op, e.PoolId, e.Err)
}

func (e *ProvisionerError) Unwrap() error {
	return e.Err
}

// ConfigurationError aggregates every unresolved required variable of a
// render pass, so an operator sees the full list at once.
type ConfigurationError struct {
	MissingVars []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: missing required variables: %s", strings.Join(e.MissingVars, ", "))
}

// CapacityError records a scale request outside the policy's replica range.
// The request is clamped and carries on; the error only feeds a warning log.
type CapacityError struct {
	PoolId    string
	Requested int
	Min       int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("requested size %d for pool %s is outside [%d, %d]", e.Requested, e.PoolId, e.Min, e.Max)
}
