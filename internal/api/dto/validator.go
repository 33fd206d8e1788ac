package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("pastdate", isPastDate)
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// isPastDate accepts YYYY-MM-DD strings strictly before today (UTC).
func isPastDate(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return d.Before(today)
}

// maxBytes bounds the UTF-8 length of a string; max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

var messages = map[string]string{
	"required": "The field '%s' is required.",
	"email":    "The field '%s' must be a valid email address.",
	"min":      "The field '%s' must be at least %s characters long.",
	"max":      "The field '%s' must be no longer than %s characters.",
	"gt":       "The field '%s' must be greater than %s.",
	"gte":      "The field '%s' must be greater than or equal to %s.",
	"oneof":    "The field '%s' must be one of %s.",
	"datetime": "The field '%s' must be a date formatted as %s.",
	"pastdate": "The field '%s' must be a date in the past.",
	"maxbytes": "The field '%s' must be at most %s bytes long.",
}

func message(field string, e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, field, e.Param())
	}
	return fmt.Sprintf(msg, field)
}

// ValidateStruct validates s and returns a map of JSON field names to messages.
// An empty map means s is valid.
func ValidateStruct(s any) map[string]string {
	result := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return result
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		result["_"] = err.Error()
		return result
	}
	for _, e := range validationErrs {
		result[e.Field()] = message(e.Field(), e)
	}
	return result
}
