package model

import "fmt"

// Validate checks a ComponentValidationRule for internal consistency: a
// name appearing in both the required and optional list for the same
// field is almost certainly a config mistake, and an empty PropertyDesc
// name is never meaningful.
func (r ComponentValidationRule) Validate() error {
	if err := validatePropertyDescs("changeDetectionProperties", r.ChangeDetectionProperties); err != nil {
		return err
	}
	if err := validatePropertyDescs("changeDetectionMetadata", r.ChangeDetectionMetadata); err != nil {
		return err
	}
	if err := disjoint("properties", r.RequiredProperties, r.OptionalProperties); err != nil {
		return err
	}
	if err := disjoint("metadata", r.RequiredMetadata, r.OptionalMetadata); err != nil {
		return err
	}
	return nil
}

// Validate checks a ValidationRule and, if AllowSidecar is set, its
// sidecar rule.
func (r ValidationRule) Validate() error {
	if err := r.ComponentValidationRule.Validate(); err != nil {
		return fmt.Errorf("componentValidationRule: %w", err)
	}
	if r.AllowSidecar {
		if err := r.SidecarValidationRule.Validate(); err != nil {
			return fmt.Errorf("sidecarValidationRule: %w", err)
		}
	}
	return nil
}

func validatePropertyDescs(field string, descs []PropertyDesc) error {
	for i, d := range descs {
		if d.Name == "" {
			return fmt.Errorf("%s[%d]: name cannot be empty", field, i)
		}
	}
	return nil
}

func disjoint(field string, required, optional []string) error {
	requiredSet := make(map[string]struct{}, len(required))
	for _, name := range required {
		if name == "" {
			return fmt.Errorf("required%s: name cannot be empty", field)
		}
		requiredSet[name] = struct{}{}
	}
	for _, name := range optional {
		if name == "" {
			return fmt.Errorf("optional%s: name cannot be empty", field)
		}
		if _, ok := requiredSet[name]; ok {
			return fmt.Errorf("%q listed as both required and optional %s", name, field)
		}
	}
	return nil
}
