package handlers

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/pitchbase/pkg/errors"
	"github.com/charlesng35/pitchbase/pkg/response"
	appValidator "github.com/charlesng35/pitchbase/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When binding or validation fails, a 422 response is written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, invalidBody(err))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		var ve appValidator.ValidationErrors
		if errors.As(err, &ve) {
			response.Error(c, appErrors.NewValidation(ve.FieldErrors("body")...))
			return false
		}
		response.Error(c, appErrors.NewValidation(appErrors.FieldError{
			Loc:  []string{"body"},
			Msg:  err.Error(),
			Type: "value_error",
		}))
		return false
	}

	return true
}

func invalidBody(err error) error {
	if errors.Is(err, io.EOF) {
		return appErrors.NewFieldError("Field required", "missing", "body")
	}
	return appErrors.NewFieldError("JSON decode error", "json_invalid", "body")
}

// parseIntQuery reads an optional integer query parameter. A value that is present but not
// an integer is reported as a query validation error.
func parseIntQuery(c *gin.Context, key string, fallback int) (int, *appErrors.FieldError) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, &appErrors.FieldError{
			Loc:  []string{"query", key},
			Msg:  "Input should be a valid integer, unable to parse string as an integer",
			Type: "int_parsing",
		}
	}
	return parsed, nil
}
