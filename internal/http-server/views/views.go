// Package views renders the HTML pages from embedded templates.
package views

import (
	"bytes"
	"devEvents/internal/models"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	PageHome   = "home"
	PageEvent  = "event"
	PageError  = "error"
	baseLayout = "templates/base.html"
)

type Renderer struct {
	templates map[string]*template.Template
}

// HomeData feeds the listing page.
type HomeData struct {
	Events []models.Event
}

// EventData feeds the detail page.
type EventData struct {
	Event   *models.Event
	Similar []models.Event
	// Booked is "1" or "0" after a form post, empty otherwise.
	Booked string
}

type ErrorData struct {
	Status  int
	Message string
}

func New() (*Renderer, error) {
	return NewFromFS(templatesFS)
}

// NewFromFS parses every page under templates/ together with the base layout.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	const op = "views.New"

	r := &Renderer{templates: make(map[string]*template.Template)}

	pages, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, page := range pages {
		if page == baseLayout {
			continue
		}

		name := strings.TrimSuffix(strings.TrimPrefix(page, "templates/"), ".html")

		tmpl, err := template.New("").Funcs(funcs()).ParseFS(fsys, baseLayout, page)
		if err != nil {
			return nil, fmt.Errorf("%s: parsing %s: %w", op, name, err)
		}

		r.templates[name] = tmpl
	}

	return r, nil
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}
}

// Render executes the page into a buffer first so a template failure never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)

	return err
}

// Error renders the error page, falling back to plain text.
func (r *Renderer) Error(w http.ResponseWriter, status int, msg string) {
	if err := r.Render(w, status, PageError, ErrorData{Status: status, Message: msg}); err != nil {
		http.Error(w, msg, status)
	}
}
