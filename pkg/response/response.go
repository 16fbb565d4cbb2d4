package response

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/pitchbase/pkg/errors"
)

// ErrorBody is the JSON payload written for every failed request. Detail is either
// a human readable string or, for validation failures, a list of field errors.
type ErrorBody struct {
	Detail any    `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// Page is the pagination envelope returned by list endpoints.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

// NewPage assembles a pagination envelope, computing the page count from total and size.
func NewPage[T any](items []T, total, page, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if size > 0 && total > 0 {
		pages = int(math.Ceil(float64(total) / float64(size)))
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: pages,
	}
}

// Success writes data as the JSON response body.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// NoContent writes an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := ErrorBody{Detail: appErr.Message, Code: appErr.Code}
	if len(appErr.Details) > 0 {
		body.Detail = appErr.Details
	}

	c.JSON(status, body)
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
