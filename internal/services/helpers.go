package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gorm.io/datatypes"

	apperrors "github.com/charlesng35/pitchbase/pkg/errors"
)

// MaxOrganizationNameLength bounds organization names after trimming.
const MaxOrganizationNameLength = 100

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// normaliseOrganizationName trims name and enforces the 1..100 character bound.
func normaliseOrganizationName(name string) (string, error) {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	switch {
	case length == 0:
		return "", apperrors.NewFieldError("String should have at least 1 character", "string_too_short", "body", "name")
	case length > MaxOrganizationNameLength:
		return "", apperrors.NewFieldError("String should have at most 100 characters", "string_too_long", "body", "name")
	}
	return name, nil
}

// defaultOrganizationName names the organization created alongside a new profile.
func defaultOrganizationName(name *string) string {
	const suffix = "'s Organization"
	if name == nil || strings.TrimSpace(*name) == "" {
		return "Default Organization"
	}
	trimmed := strings.TrimSpace(*name)
	limit := MaxOrganizationNameLength - utf8.RuneCountInString(suffix)
	if runes := []rune(trimmed); len(runes) > limit {
		trimmed = strings.TrimSpace(string(runes[:limit]))
	}
	return trimmed + suffix
}

func attributionMap(values map[string]string) datatypes.JSONMap {
	if len(values) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
