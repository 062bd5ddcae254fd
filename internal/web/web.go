// Package web holds the embedded server-rendered pages.
package web

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/weifish0/file-upload-sys/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page template once at startup. Each file is a
// standalone page (no layout inheritance; the pages are small).
func Templates() *template.Template {
	t := template.New("").Funcs(template.FuncMap{
		"filesize": service.HumanSize,
	})
	return template.Must(t.ParseFS(templateFS, "templates/*.html"))
}

// Render writes a page; a template failure at this point is a programming
// error, logged and answered with a bare 500.
func Render(w http.ResponseWriter, t *template.Template, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
