package echo

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// TemplateRenderer adapts the embedded html/template set to echo's Renderer
// interface.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer returns the renderer over the embedded page templates.
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{templates: pageTemplates}
}

// Render implements echo.Renderer.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
