// Package web serves the server-rendered OrderFlow pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orderflow/orderflow/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"statusTitle": func(s domain.OrderStatus) string { return s.Title() },
	"deptTitle":   func(d domain.Department) string { return d.Title() },
	"actionLabel": func(s domain.OrderStatus) string {
		label, _ := s.ActionLabel()
		return label
	},
	"statusClass": func(s domain.OrderStatus) string { return strings.ReplaceAll(string(s), " ", "-") },
}

// Renderer implements echo.Renderer. Every page is parsed together with the
// layout and the shared partials.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	shared := []string{"templates/layout.html", "templates/partials.html"}

	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, entry := range entries {
		name := strings.TrimSuffix(path.Base(entry), ".html")
		if name == "layout" || name == "partials" {
			continue
		}
		files := append(append([]string{}, shared...), entry)
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
