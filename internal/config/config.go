package config

import (
	stderrors "errors"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"datagent/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database      DatabaseConfig
	AI            AIConfig
	Server        ServerConfig
	Paths         PathConfig
	Ingestion     IngestionConfig
	Visualization VisualizationConfig
	Logging       LoggingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string `envconfig:"DATABASE_URL"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10" validate:"min=1"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5" validate:"min=0"`
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	OpenAIKey   string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel string        `envconfig:"GPT_MODEL" default:"gpt-3.5-turbo-16k" validate:"required"`
	BaseURL     string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1" validate:"required,url"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"1500" validate:"min=1"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.2" validate:"gte=0,lte=2"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"5000" validate:"required,numeric"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// PathConfig holds file system paths
type PathConfig struct {
	UploadFolder string `envconfig:"UPLOAD_FOLDER" default:"uploads" validate:"required"`
}

// IngestionConfig bounds the work done per uploaded file
type IngestionConfig struct {
	MaxFileSize     int64 `envconfig:"MAX_CONTENT_LENGTH" default:"16777216" validate:"min=1"`
	MaxCells        int   `envconfig:"MAX_CELLS" default:"5000000" validate:"min=1"`
	MaxSheets       int   `envconfig:"MAX_SHEETS" default:"256" validate:"min=1"`
	SampleSize      int   `envconfig:"SAMPLE_SIZE" default:"100" validate:"min=1"`
	MinCompleteness int   `envconfig:"MIN_COMPLETENESS" default:"50" validate:"min=0,max=100"`
	PreviewRows     int   `envconfig:"PREVIEW_ROWS" default:"5" validate:"min=0"`
	HistogramBins   int   `envconfig:"HISTOGRAM_BINS" default:"10" validate:"min=1"`
}

// VisualizationConfig holds chart rendering defaults
type VisualizationConfig struct {
	MaxRows       int    `envconfig:"MAX_ROWS_FOR_VISUALIZATION" default:"10000" validate:"min=1"`
	Height        int    `envconfig:"DEFAULT_CHART_HEIGHT" default:"400" validate:"min=1"`
	Width         int    `envconfig:"DEFAULT_CHART_WIDTH" default:"800" validate:"min=1"`
	Template      string `envconfig:"CHART_TEMPLATE" default:"plotly_white"`
	HistogramBins int    `envconfig:"CHART_HISTOGRAM_BINS" default:"30" validate:"min=1"`
	SampleSeed    int64  `envconfig:"CHART_SAMPLE_SEED" default:"42"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"INFO" validate:"oneof=ERROR WARN INFO DEBUG TRACE error warn info debug trace"`
}

// Load reads .env files (when present) and the environment, applies defaults
// and validates the result. Settings only the server needs are checked by
// RequireDatabase and RequireAI.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "failed to read .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "configuration validation failed for %s", invalidFields(err))
	}

	return &cfg, nil
}

// invalidFields lists the struct paths rejected by the validator
func invalidFields(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return "configuration"
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = strings.TrimPrefix(fe.Namespace(), "Config.")
	}
	return strings.Join(fields, ", ")
}

// RequireDatabase checks that a database connection is configured
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	return nil
}

// RequireAI checks that a language model key is configured
func (c *Config) RequireAI() error {
	if c.AI.OpenAIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required")
	}
	return nil
}

// DefaultIngestionConfig returns the ingestion limits used when no environment is loaded
func DefaultIngestionConfig() IngestionConfig {
	return IngestionConfig{
		MaxFileSize:     16 * 1024 * 1024,
		MaxCells:        5000000,
		MaxSheets:       256,
		SampleSize:      100,
		MinCompleteness: 50,
		PreviewRows:     5,
		HistogramBins:   10,
	}
}

// DefaultVisualizationConfig returns the chart defaults used when no environment is loaded
func DefaultVisualizationConfig() VisualizationConfig {
	return VisualizationConfig{
		MaxRows:       10000,
		Height:        400,
		Width:         800,
		Template:      "plotly_white",
		HistogramBins: 30,
		SampleSeed:    42,
	}
}
