package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"carcare/internal/domain"
	"carcare/internal/models"

	"github.com/go-playground/validator/v10"
)

// CreateBookingRequest is what a customer submits from the booking form.
// Identity fields come from the profile, never from the request.
type CreateBookingRequest struct {
	ServiceIDs        []string `json:"service_ids" validate:"omitempty,max=11,dive,required"`
	ServiceName       string   `json:"service_name" validate:"max=200"`
	VehicleType       string   `json:"vehicle_type" validate:"vehicle_type"`
	VehicleNumber     string   `json:"vehicle_number" validate:"max=20"`
	VehicleMakeModel  string   `json:"vehicle_make_model" validate:"required,max=100"`
	ServiceMode       string   `json:"service_mode" validate:"service_mode"`
	Address           string   `json:"address" validate:"max=500"`
	Notes             string   `json:"notes" validate:"max=1000"`
	PreferredDateTime string   `json:"preferred_date_time" validate:"required,max=64"`
}

type RescheduleRequest struct {
	PreferredDateTime string `json:"preferred_date_time" validate:"required,max=64"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RequestValidator wraps validator.v10 with the booking-specific rules and
// turns failures into domain validation errors.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("vehicle_type", validateVehicleType)
	_ = v.RegisterValidation("service_mode", validateServiceMode)
	return &RequestValidator{validate: v}
}

func validateVehicleType(fl validator.FieldLevel) bool {
	_, ok := models.ParseVehicleType(fl.Field().String())
	return ok
}

func validateServiceMode(fl validator.FieldLevel) bool {
	switch models.ServiceMode(strings.TrimSpace(fl.Field().String())) {
	case "", models.ModeHomeService, models.ModePickupDrop:
		return true
	}
	return false
}

// Struct validates req and reports every failing field in one error.
func (v *RequestValidator) Struct(req interface{}) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return domain.Invalid("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "vehicle_type":
		return fmt.Sprintf("%s must be one of Sedan, Hatchback, SUV, Luxury", fe.Field())
	case "service_mode":
		return fmt.Sprintf("%s must be %q or %q", fe.Field(), models.ModeHomeService, models.ModePickupDrop)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
