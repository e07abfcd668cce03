package policyvalidator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/routepool/routepool/models"
)

// policySchema constrains externally supplied scaling-policy documents
// before they reach the control loop.
const policySchema = `{
	"$schema": "http://json-schema.org/draft-04/schema#",
	"type": "object",
	"required": ["scale_up_threshold", "scale_down_threshold", "min_replicas", "max_replicas"],
	"properties": {
		"scale_up_threshold":   {"type": "number", "minimum": 0, "maximum": 100},
		"scale_down_threshold": {"type": "number", "minimum": 0, "maximum": 100},
		"debounce_ticks":       {"type": "integer", "minimum": 1},
		"cooldown":             {"type": "integer", "minimum": 0},
		"step_size":            {"type": "integer", "minimum": 1},
		"min_replicas":         {"type": "integer", "minimum": 1},
		"max_replicas":         {"type": "integer", "minimum": 1}
	}
}`

type PolicyValidationErrors struct {
	Context     string `json:"context"`
	Description string `json:"description"`
}

type ValidationErrors []PolicyValidationErrors

var _ error = ValidationErrors{}

func (v ValidationErrors) Error() string {
	var errs []string
	for _, failure := range v {
		errs = append(errs, fmt.Sprintf("%s-%s", failure.Context, failure.Description))
	}
	return strings.Join(errs, ", ")
}

type PolicyValidator struct {
	schemaLoader gojsonschema.JSONLoader
}

func NewPolicyValidator() *PolicyValidator {
	return &PolicyValidator{
		schemaLoader: gojsonschema.NewStringLoader(policySchema),
	}
}

// Validate checks a raw policy document against the schema and the
// semantic rules, returning the parsed policy on success. Schema failures
// are reported together, not one at a time.
func (v *PolicyValidator) Validate(raw []byte) (*models.ScalingPolicy, error) {
	documentLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(v.schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("invalid policy document: %w", err)
	}
	if !result.Valid() {
		validationErrors := ValidationErrors{}
		for _, resultError := range result.Errors() {
			validationErrors = append(validationErrors, PolicyValidationErrors{
				Context:     resultError.Context().String(),
				Description: resultError.Description(),
			})
		}
		return nil, validationErrors
	}

	policy := &models.ScalingPolicy{}
	if err := json.Unmarshal(raw, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}
