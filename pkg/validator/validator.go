package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/charlesng35/pitchbase/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		if err.Param != "" {
			parts[i] = err.Field + " failed on " + err.Tag + "=" + err.Param
		} else {
			parts[i] = err.Field + " failed on " + err.Tag
		}
	}
	return strings.Join(parts, "; ")
}

// FieldErrors converts the failures into client-facing field errors rooted at location
// (for example "body" or "query").
func (v ValidationErrors) FieldErrors(location string) []appErrors.FieldError {
	out := make([]appErrors.FieldError, 0, len(v))
	for _, failure := range v {
		msg, kind := describe(failure)
		out = append(out, appErrors.FieldError{
			Loc:  []string{location, failure.Field},
			Msg:  msg,
			Type: kind,
		})
	}
	return out
}

func describe(failure ValidationError) (string, string) {
	switch failure.Tag {
	case "required":
		return "Field required", "missing"
	case "email":
		return "value is not a valid email address", "value_error"
	case "min":
		return fmt.Sprintf("String should have at least %s characters", failure.Param), "string_too_short"
	case "max":
		return fmt.Sprintf("String should have at most %s characters", failure.Param), "string_too_long"
	case "gte":
		return fmt.Sprintf("Input should be greater than or equal to %s", failure.Param), "greater_than_equal"
	case "lte":
		return fmt.Sprintf("Input should be less than or equal to %s", failure.Param), "less_than_equal"
	case "uuid", "uuid4":
		return "Input should be a valid UUID", "uuid_parsing"
	default:
		if failure.Param != "" {
			return fmt.Sprintf("failed validation: %s=%s", failure.Tag, failure.Param), failure.Tag
		}
		return "failed validation: " + failure.Tag, failure.Tag
	}
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		failures := make(ValidationErrors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return getValidator().RegisterValidation(tag, fn)
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "" {
				name = fld.Tag.Get("form")
			}
			if name == "" {
				return fld.Name
			}

			comma := strings.Index(name, ",")
			if comma != -1 {
				name = name[:comma]
			}

			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
