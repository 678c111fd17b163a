package validator

import (
	"errors"
	"fmt"
	"strings"

	"dometriks/pkg/logger"
	"dometriks/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type EngineerValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEngineerValidator(log *logger.Logger) *EngineerValidator {
	log.Info("Engineer validator initialized successfully")

	return &EngineerValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// ValidateLocationUpdate enforces the pair rule only: latitude and
// longitude together or not at all. Coordinate ranges are deliberately
// not checked, matching what the field app has always been allowed to
// send.
func (v *EngineerValidator) ValidateLocationUpdate(update *model.LocationUpdate) error {
	if update.Empty() {
		return ValidationErrors{
			ValidationError{
				Field:   "LocationUpdate",
				Message: "at least one of latitude/longitude or is_online must be provided",
			},
		}
	}

	if (update.Latitude == nil) != (update.Longitude == nil) {
		return ValidationErrors{
			ValidationError{
				Field:   "Location",
				Message: "latitude and longitude must be supplied together",
			},
		}
	}

	return nil
}

// ValidateCompletion requires the document reference; the upload happens
// elsewhere, only its name is recorded.
func (v *EngineerValidator) ValidateCompletion(req *model.CompletionRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *EngineerValidator) ValidateAccountStatus(status model.EngineerAccountStatus) error {
	for _, allowed := range model.AdminEngineerStatuses() {
		if status == allowed {
			return nil
		}
	}
	return ValidationErrors{
		ValidationError{
			Field:   "Status",
			Message: fmt.Sprintf("status must be one of: %s", joinAccountStatuses(model.AdminEngineerStatuses())),
		},
	}
}

func joinAccountStatuses(statuses []model.EngineerAccountStatus) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func (v *EngineerValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
