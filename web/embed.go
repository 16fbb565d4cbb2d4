package web

import (
	"embed"
	"io/fs"
)

//go:embed docs
var docsFS embed.FS

// Docs returns the embedded API documentation (openapi.json and index.html).
func Docs() (fs.FS, error) {
	return fs.Sub(docsFS, "docs")
}

// OpenAPI returns the raw OpenAPI document.
func OpenAPI() ([]byte, error) {
	return docsFS.ReadFile("docs/openapi.json")
}
