package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"datagent/adapters/charts"
	"datagent/adapters/excel"
	"datagent/adapters/llm"
	"datagent/adapters/postgres"
	"datagent/app"
	"datagent/internal"
	"datagent/internal/api"
	"datagent/internal/config"
	"datagent/internal/metrics"
	"datagent/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Recorder

	// Infrastructure
	DB *sqlx.DB

	// Ingestion and rendering, usable without a database
	Pipeline *app.IngestionPipeline
	Charts   ports.ChartRenderer

	// Set by InitWithDatabase
	DatasetRepo    ports.DatasetRepository
	Agent          *llm.Agent
	DatasetService *app.DatasetService
	QueryService   *app.QueryService
}

// New creates a container with the database-free components wired
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	logger = internal.LoggerOr(logger)
	recorder := metrics.NewRecorder()

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Metrics:  recorder,
		Pipeline: app.NewIngestionPipeline(excel.NewOpener(), cfg.Ingestion, recorder, logger),
		Charts:   charts.NewRenderer(cfg.Visualization, logger),
	}, nil
}

// InitWithDatabase wires the repository, the query agent and the services
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := c.Config.RequireAI(); err != nil {
		return err
	}

	client, err := llm.NewOpenAIClient(c.Config.AI)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	c.DB = db
	c.DatasetRepo = postgres.NewDatasetRepository(db)
	c.Agent = llm.NewAgent(client, c.Logger)
	c.DatasetService = app.NewDatasetService(c.Pipeline, c.DatasetRepo, c.Logger)
	c.QueryService = app.NewQueryService(c.Pipeline, c.DatasetRepo, c.Agent, c.Charts, c.Metrics, c.Logger)

	c.Logger.Info("container initialized", slog.String("model", c.Config.AI.OpenAIModel))
	return nil
}

// Server builds the HTTP API over the wired services
func (c *Container) Server() (*api.Server, error) {
	if c.DatasetService == nil || c.QueryService == nil {
		return nil, fmt.Errorf("container not initialized with a database")
	}
	return api.NewServer(c.Config, c.DatasetService, c.QueryService, c.Metrics, c.Logger), nil
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
