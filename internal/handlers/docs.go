package handlers

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/pitchbase/pkg/errors"
	"github.com/charlesng35/pitchbase/pkg/response"
	"github.com/charlesng35/pitchbase/web"
)

// OpenAPI serves the embedded OpenAPI document.
func OpenAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := web.OpenAPI()
		if err != nil {
			response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	}
}

// Docs serves the human readable documentation page.
func Docs() gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := web.Docs()
		if err == nil {
			var page []byte
			if page, err = fs.ReadFile(docs, "index.html"); err == nil {
				c.Data(http.StatusOK, "text/html; charset=utf-8", page)
				return
			}
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
	}
}
