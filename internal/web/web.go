package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"roomcompare/internal/config"
	"roomcompare/internal/logger"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed templates/*
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

// PageData is rendered into the index template.
type PageData struct {
	Title           string
	ContainerHeight int
}

// StaticHandler serves the embedded css and js under /static/.
func StaticHandler() (http.Handler, error) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create static filesystem: %w", err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))), nil
}

// IndexHandler renders the comparison page.
func IndexHandler(cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	data := PageData{
		Title:           "Compare Room Images",
		ContainerHeight: cfg.ContainerHeight,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, data); err != nil {
			logger.Error("Failed to execute template: %v", err)
		}
	}
}
