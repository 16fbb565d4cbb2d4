package services

import (
	"strconv"

	apperrors "github.com/charlesng35/pitchbase/pkg/errors"
)

const (
	// DefaultPage is used when the caller omits page.
	DefaultPage = 1
	// DefaultPageSize is used when the caller omits size.
	DefaultPageSize = 50
	// MaxPageSize is the largest accepted page size.
	MaxPageSize = 100
)

// PageRequest selects a window of a list ordered by creation time.
type PageRequest struct {
	Page int
	Size int
}

// DefaultPageRequest returns the first page with the default size.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: DefaultPage, Size: DefaultPageSize}
}

// Validate reports out-of-range values as query validation errors.
func (p PageRequest) Validate() error {
	var details []apperrors.FieldError
	if p.Page < 1 {
		details = append(details, apperrors.FieldError{
			Loc:  []string{"query", "page"},
			Msg:  "Input should be greater than or equal to 1",
			Type: "greater_than_equal",
		})
	}
	if p.Size < 1 {
		details = append(details, apperrors.FieldError{
			Loc:  []string{"query", "size"},
			Msg:  "Input should be greater than or equal to 1",
			Type: "greater_than_equal",
		})
	} else if p.Size > MaxPageSize {
		details = append(details, apperrors.FieldError{
			Loc:  []string{"query", "size"},
			Msg:  "Input should be less than or equal to " + strconv.Itoa(MaxPageSize),
			Type: "less_than_equal",
		})
	}
	if len(details) > 0 {
		return apperrors.NewValidation(details...)
	}
	return nil
}

// Pages returns how many pages of p.Size hold total rows.
func (p PageRequest) Pages(total int64) int64 {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return (total + int64(p.Size) - 1) / int64(p.Size)
}

// PastEnd reports whether p starts after the last row. It compares page numbers rather
// than offsets so huge page values cannot overflow.
func (p PageRequest) PastEnd(total int64) bool {
	return int64(p.Page-1) >= p.Pages(total)
}

// Offset returns the number of rows to skip. Callers check PastEnd first.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}
