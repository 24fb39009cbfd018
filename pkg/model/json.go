package model

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON rejects any action string other than Update or Delete,
// per §4.5's requirement that unknown enum values fail deserialization.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("action: %w", err)
	}

	switch Action(s) {
	case ActionUpdate, ActionDelete:
		*a = Action(s)
		return nil
	default:
		return fmt.Errorf("action: unknown action %q", s)
	}
}

// deploymentStepAlias avoids infinite recursion through DeploymentStep's
// own UnmarshalJSON when decoding the rest of the struct's fields.
type deploymentStepAlias DeploymentStep

// UnmarshalJSON tolerates a missing or null components field, treating it
// as an empty slice per §4.5.
func (d *DeploymentStep) UnmarshalJSON(data []byte) error {
	var alias deploymentStepAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("deploymentStep: %w", err)
	}

	if alias.Components == nil {
		alias.Components = []ComponentStep{}
	}

	*d = DeploymentStep(alias)
	return nil
}
