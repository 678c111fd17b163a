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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("geo_point", validateGeoPoint); err != nil {
		log.Fatal("Failed to register 'geo_point' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateGeoPoint(fl validator.FieldLevel) bool {
	point, ok := fl.Field().Interface().(model.GeoPoint)
	if !ok {
		return false
	}
	return point.Valid()
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// Coordinates arrive as a latitude/longitude pair; a half pair can
	// neither form a point nor be silently dropped.
	if (booking.Latitude == nil) != (booking.Longitude == nil) {
		return ValidationErrors{
			ValidationError{
				Field:   "Coordinates",
				Message: "latitude and longitude must be supplied together",
			},
		}
	}

	// A deferred visit needs a concrete slot.
	if booking.ScheduleNow != nil && !*booking.ScheduleNow {
		if booking.ScheduleDate == "" || booking.ScheduleTime == "" {
			return ValidationErrors{
				ValidationError{
					Field:   "ScheduleDate",
					Message: "schedule_date and schedule_time are required when schedule_now is false",
				},
			}
		}
	}

	return nil
}

// ValidateStatus checks an administrative status transition against the
// set the admin endpoint is allowed to set.
func (v *BookingValidator) ValidateStatus(status model.BookingStatus) error {
	for _, allowed := range model.AdminBookingStatuses() {
		if status == allowed {
			return nil
		}
	}
	return ValidationErrors{
		ValidationError{
			Field:   "Status",
			Message: fmt.Sprintf("status must be one of: %s", joinBookingStatuses(model.AdminBookingStatuses())),
		},
	}
}

func joinBookingStatuses(statuses []model.BookingStatus) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "geo_point":
			message = fmt.Sprintf("%s must be a GeoJSON Point with longitude in [-180,180] and latitude in [-90,90]", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
