// Package ui serves the run browser, the JSON API and the metrics endpoint.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gora/domain/core"
	"gora/internal"
	apperrors "gora/internal/errors"
	"gora/internal/manager"
	"gora/models"
	"gora/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App represents the UI application
type App struct {
	router    *chi.Mux
	repo      ports.RunRepository
	api       http.Handler
	templates *template.Template
	logger    *internal.Logger
}

// NewApp creates the UI. api, when set, is mounted under /api.
func NewApp(repo ports.RunRepository, api http.Handler, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	funcMap := template.FuncMap{
		"when": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		repo:      repo,
		api:       api,
		templates: templates,
		logger:    logger.Named("ui"),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// Handler returns the root handler.
func (a *App) Handler() http.Handler { return a.router }

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		a.logger.Error("static files unavailable: %v", err)
	} else {
		a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	a.router.Get("/", a.handleIndex)
	a.router.Get("/runs/{id}", a.handleRun)
	a.router.Get("/runs/{id}/report.md", a.handleReportMarkdown)
	a.router.Get("/healthz", a.handleHealth)
	a.router.Handle("/metrics", promhttp.Handler())

	// The API engine routes on the full path, so it sees /api/... unchanged.
	if a.api != nil {
		a.router.Mount("/api", a.api)
	}
}

type indexPage struct {
	Runs []*models.Run
}

type runPage struct {
	Run    *models.Run
	Report template.HTML
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := a.repo.ListRuns(r.Context(), 50)
	if err != nil {
		a.renderError(w, err)
		return
	}
	a.renderTemplate(w, "index.html", indexPage{Runs: runs})
}

func (a *App) loadRun(w http.ResponseWriter, r *http.Request) (*models.Run, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		a.renderError(w, apperrors.InvalidInput("invalid run ID", err))
		return nil, false
	}
	run, err := a.repo.GetRun(r.Context(), id)
	if err != nil {
		a.renderError(w, err)
		return nil, false
	}
	return run, true
}

func (a *App) handleRun(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	// RenderHTML drops raw HTML, so the result is safe to embed.
	report := template.HTML(manager.RenderHTML([]byte(run.Report)))
	a.renderTemplate(w, "run.html", runPage{Run: run, Report: report})
}

func (a *App) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	run, ok := a.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ID.String()+".md"))
	_, _ = w.Write([]byte(run.Report))
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok"))
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("template %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (a *App) renderError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}
