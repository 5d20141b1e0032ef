package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks field rules, then the requirements of the current
// environment. All problems are reported together.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
				Message: describe(fe),
			})
		}
	}

	switch cfg.Environment {
	case Production:
		// Production never falls back to local or default credentials.
		if cfg.Database.URL == "" && cfg.Database.Password == "" {
			errs = append(errs, ValidationError{Field: "Database", Message: "DATABASE_URL or the db_password secret is required in production"})
		}
		if strings.HasPrefix(cfg.Database.URL, "sqlite:") {
			errs = append(errs, ValidationError{Field: "Database.URL", Message: "sqlite is not allowed in production"})
		}
		if cfg.Database.SSLMode == "disable" && cfg.Database.URL == "" {
			errs = append(errs, ValidationError{Field: "Database.SSLMode", Message: "must not be disable in production"})
		}
	case CI:
		if cfg.Database.URL == "" && cfg.Database.Password == "" {
			errs = append(errs, ValidationError{Field: "Database", Message: "DATABASE_URL or DB_PASSWORD is required in CI"})
		}
	}

	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + fe.Param() + " is empty"
	case "email":
		return fmt.Sprintf("%q is not a valid email", fe.Value())
	case "oneof":
		return fmt.Sprintf("%v is not one of %s", fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
}
