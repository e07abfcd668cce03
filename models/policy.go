package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScalingPolicy drives the autoscaler control loop for one pool.
type ScalingPolicy struct {
	ScaleUpThreshold   float64       `yaml:"scale_up_threshold" json:"scale_up_threshold"`
	ScaleDownThreshold float64       `yaml:"scale_down_threshold" json:"scale_down_threshold"`
	DebounceTicks      int           `yaml:"debounce_ticks" json:"debounce_ticks"`
	CoolDown           time.Duration `yaml:"cooldown" json:"cooldown"`
	StepSize           int           `yaml:"step_size" json:"step_size"`
	MinReplicas        int           `yaml:"min_replicas" json:"min_replicas"`
	MaxReplicas        int           `yaml:"max_replicas" json:"max_replicas"`
}

func (p *ScalingPolicy) Validate() error {
	if p.MinReplicas < 1 {
		return fmt.Errorf("policy error: min_replicas %d is less than 1", p.MinReplicas)
	}
	if p.MaxReplicas < p.MinReplicas {
		return fmt.Errorf("policy error: max_replicas %d is less than min_replicas %d", p.MaxReplicas, p.MinReplicas)
	}
	if p.StepSize < 1 {
		return fmt.Errorf("policy error: step_size %d is less than 1", p.StepSize)
	}
	if p.DebounceTicks < 1 {
		return fmt.Errorf("policy error: debounce_ticks %d is less than 1", p.DebounceTicks)
	}
	if p.ScaleDownThreshold >= p.ScaleUpThreshold {
		return fmt.Errorf("policy error: scale_down_threshold %v is not below scale_up_threshold %v", p.ScaleDownThreshold, p.ScaleUpThreshold)
	}
	return nil
}

// Clamp bounds a requested pool size to the policy's replica range.
func (p *ScalingPolicy) Clamp(size int) int {
	if size < p.MinReplicas {
		return p.MinReplicas
	}
	if size > p.MaxReplicas {
		return p.MaxReplicas
	}
	return size
}

func (p *ScalingPolicy) String() string {
	b, err := json.Marshal(p)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
