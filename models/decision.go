package models

type ScalingAction string

const (
	ActionScaleUp   ScalingAction = "scale_up"
	ActionScaleDown ScalingAction = "scale_down"
	ActionNone      ScalingAction = "none"
)

type DecisionStatus string

const (
	DecisionSucceeded DecisionStatus = "succeeded"
	DecisionFailed    DecisionStatus = "failed"
	DecisionIgnored   DecisionStatus = "ignored"
)

// ScalingDecision is one entry of the append-only scaling audit history.
type ScalingDecision struct {
	Id         string         `json:"id"`
	PoolId     string         `json:"pool_id"`
	Timestamp  int64          `json:"timestamp"`
	Action     ScalingAction  `json:"action"`
	OldSize    int            `json:"old_size"`
	TargetSize int            `json:"target_size"`
	Reason     string         `json:"reason"`
	Status     DecisionStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
}
