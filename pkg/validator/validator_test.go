package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type testQuery struct {
	Page int `form:"page" validate:"gte=1"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := testPayload{
		Name:  "Acme",
		Email: "alice@example.com",
	}

	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructFailures(t *testing.T) {
	payload := testPayload{
		Name:  strings.Repeat("a", 101),
		Email: "invalid",
	}

	err := ValidateStruct(payload)
	require.Error(t, err)

	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, vErrs, 2)
	require.Equal(t, "name", vErrs[0].Field)
	require.Equal(t, "max", vErrs[0].Tag)
	require.Equal(t, "100", vErrs[0].Param)
}

func TestFieldErrorsUseLocation(t *testing.T) {
	err := ValidateStruct(testPayload{Email: "a@example.com"})
	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := vErrs.FieldErrors("body")
	require.Len(t, fields, 1)
	require.Equal(t, []string{"body", "name"}, fields[0].Loc)
	require.Equal(t, "missing", fields[0].Type)
}

func TestFormTagNames(t *testing.T) {
	err := ValidateStruct(testQuery{Page: 0})
	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Equal(t, "page", vErrs[0].Field)

	fields := vErrs.FieldErrors("query")
	require.Equal(t, "greater_than_equal", fields[0].Type)
}
