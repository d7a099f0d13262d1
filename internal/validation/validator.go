// Package validation checks decoded request payloads and reports failures as
// a map from JSON field name to human readable messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldErrors maps a JSON field name to its error messages
type FieldErrors map[string][]string

// Add appends msg to field
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Merge copies every message of other into fe
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, strings.Join(fe[field], " ")))
	}
	return strings.Join(messages, "; ")
}

// JSONName is the name f is known by in request bodies, or "" when the
// field is excluded from JSON.
func JSONName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// GetValidator returns the shared validator instance
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report fields by their JSON name
		validate.RegisterTagNameFunc(JSONName)

		// notblank rejects strings that are empty once surrounding whitespace is removed
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})

	return validate
}

// Struct validates every field of s. It returns nil when s is valid.
func Struct(s any) FieldErrors {
	return translate(GetValidator().Struct(s))
}

// Partial validates only the fields of s that are set: nil pointer fields are
// skipped, which gives PATCH semantics to inputs built from pointers.
func Partial(s any) FieldErrors {
	rv := reflect.Indirect(reflect.ValueOf(s))
	if rv.Kind() != reflect.Struct {
		return Struct(s)
	}

	// StructExcept resolves names relative to the top-level struct.
	rt := rv.Type()
	var skip []string
	for i := 0; i < rt.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.Pointer && f.IsNil() {
			skip = append(skip, rt.Field(i).Name)
		}
	}
	return translate(GetValidator().StructExcept(s, skip...))
}

func translate(err error) FieldErrors {
	if err == nil {
		return nil
	}

	out := FieldErrors{}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		out.Add("non_field_errors", err.Error())
		return out
	}

	for _, fe := range validationErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}
