package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-bindstat/pkg/errs"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxExperimentName = 128
	MaxValency        = 16

	// Regular expressions
	experimentNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("expname", func(fl validator.FieldLevel) bool {
		return experimentNamePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})
}

// Struct validates s against its `validate` tags. Failures wrap
// errs.ErrArgument.
func Struct(s any) error {
	if s == nil {
		return errs.Argument("value to validate cannot be nil")
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrArgument, formatValidationError(err))
	}
	return nil
}

// ValidateExperimentName checks that name is usable in output file names.
func ValidateExperimentName(name string) error {
	if name == "" {
		return errs.Argument("experiment name cannot be empty")
	}
	if len(name) > MaxExperimentName {
		return errs.Argument("experiment name exceeds maximum length of %d characters", MaxExperimentName)
	}
	if err := validate.Var(name, "expname"); err != nil {
		return errs.Argument("experiment name %q contains invalid characters (letters, digits, '_', '.', '-' allowed)", name)
	}
	return nil
}

// ValidateStartIndices checks a molecule type layout: non-negative,
// strictly increasing, and below total.
func ValidateStartIndices(starts []int, total int) error {
	if len(starts) == 0 {
		return errs.Argument("start index list cannot be empty")
	}
	for i, s := range starts {
		if s < 0 {
			return errs.Argument("start index %d at position %d is negative", s, i)
		}
		if i > 0 && s <= starts[i-1] {
			return errs.Argument("start indices must be strictly increasing, got %v", starts)
		}
	}
	if last := starts[len(starts)-1]; total <= last {
		return errs.Argument("total molecules %d must exceed last start index %d", total, last)
	}
	return nil
}

// ValidateSites checks the receptor site pair used for singleton classes.
func ValidateSites(siteA, siteB int) error {
	if siteA < 0 || siteB < 0 {
		return errs.Argument("site ids must be non-negative, got %d and %d", siteA, siteB)
	}
	if siteA == siteB {
		return errs.Argument("site A and site B must differ, both are %d", siteA)
	}
	return nil
}

// ValidateValency checks a ligand valency for site reports.
func ValidateValency(valency int) error {
	return NewConfigValidator("flags").RangeInt("valency", valency, 2, MaxValency).Validate()
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min", "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max", "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, param)
		case "expname":
			return fmt.Errorf("%s: %q contains invalid characters", field, e.Value())
		case "regexp":
			return fmt.Errorf("%s: %q is not a valid regular expression", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
