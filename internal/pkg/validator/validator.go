package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
)

// Validator checks request DTOs against their validate tags
type Validator struct {
	validate *validator.Validate
	enums    map[string][]string
}

// ValidationError describes one rejected field, keyed by its json name
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// New creates a validator with the alert_status, closure_reason and channel tags registered
func New() *Validator {
	v := &Validator{
		validate: validator.New(),
		enums:    make(map[string][]string),
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	statuses := make([]string, len(alert.Statuses))
	for i, s := range alert.Statuses {
		statuses[i] = string(s)
	}
	v.enum("alert_status", statuses, func(s string) bool {
		_, ok := alert.ParseStatus(s)
		return ok
	})

	reasons := []alert.ClosureReason{alert.ClosureFounded, alert.ClosureCancelled, alert.ClosureDuplicated}
	names := make([]string, len(reasons))
	for i, r := range reasons {
		names[i] = string(r)
	}
	v.enum("closure_reason", names, func(s string) bool {
		return alert.ClosureReason(s).Valid()
	})

	channels := make([]string, len(notification.Channels))
	for i, c := range notification.Channels {
		channels[i] = string(c)
	}
	v.enum("channel", channels, func(s string) bool {
		_, ok := notification.ParseChannel(s)
		return ok
	})

	return v
}

// enum registers a string tag whose accepted values are listed in error messages
func (v *Validator) enum(tag string, values []string, accept func(string) bool) {
	v.enums[tag] = values
	_ = v.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return accept(fl.Field().String())
	})
}

// Validate returns one entry per failing field, or nil when i is valid
func (v *Validator) Validate(i interface{}) []ValidationError {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fmt.Sprintf("%v", fe.Value()),
			Message: v.message(fe),
		})
	}
	return out
}

var messages = map[string]string{
	"required":  "%[1]s is required",
	"email":     "%[1]s must be a valid email address",
	"min":       "%[1]s must be at least %[2]s characters long",
	"max":       "%[1]s must be at most %[2]s characters long",
	"gt":        "%[1]s must be greater than %[2]s",
	"gte":       "%[1]s must be greater than or equal to %[2]s",
	"lte":       "%[1]s must be less than or equal to %[2]s",
	"oneof":     "%[1]s must be one of [%[2]s]",
	"url":       "%[1]s must be a valid URL",
	"latitude":  "%[1]s must be a valid latitude",
	"longitude": "%[1]s must be a valid longitude",
}

func (v *Validator) message(fe validator.FieldError) string {
	if values, ok := v.enums[fe.Tag()]; ok {
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), strings.Join(values, " "))
	}
	if format, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed validation for tag: %s", fe.Field(), fe.Tag())
}
