package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gora/adapters/occam"
	"gora/adapters/postgres"
	"gora/app"
	"gora/internal"
	"gora/internal/api"
	"gora/internal/config"
	"gora/internal/testkit"
	"gora/ports"
	"gora/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo ports.RunRepository

	// Analysis
	Settings      app.Settings
	Reader        *occam.Reader
	FitService    *app.FitService
	SearchService *app.SearchService

	// Web
	SSEHub     *api.SSEHub
	RunHandler *api.RunHandler
	UI         *ui.App
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Settings: app.SettingsFromConfig(cfg.Analysis),
		Reader:   occam.NewReader(logger),
	}

	return c, nil
}

// InitWithDatabase initializes components on top of a PostgreSQL run store
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.RunRepo = postgres.NewRunRepository(db)
	return c.initServices()
}

// InitInMemory initializes components with runs kept in process memory
func (c *Container) InitInMemory() error {
	c.RunRepo = testkit.NewInMemoryRunRepository()
	return c.initServices()
}

func (c *Container) initServices() error {
	c.FitService = app.NewFitService(c.Settings, c.RunRepo, c.Logger)
	c.SearchService = app.NewSearchService(c.Settings, c.RunRepo, c.Logger)
	c.SSEHub = api.NewSSEHub(c.Logger)
	c.RunHandler = api.NewRunHandler(c.FitService, c.SearchService, c.RunRepo, c.Reader, c.SSEHub)

	gin.SetMode(c.Config.Server.GinMode)
	engine := api.NewRouter(c.RunHandler)

	var err error
	c.UI, err = ui.NewApp(c.RunRepo, engine, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize UI: %w", err)
	}

	c.Logger.Info("container initialized (persistent store: %t)", c.DB != nil)
	return nil
}

// Handler returns the root HTTP handler
func (c *Container) Handler() http.Handler {
	if c.UI == nil {
		return http.NotFoundHandler()
	}
	return c.UI.Handler()
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
