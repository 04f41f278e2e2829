// Package config loads service settings from defaults, an optional TOML
// file, a .env file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dvloznov/statement-pdf/internal/delivery"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/dvloznov/statement-pdf/internal/logger"
	"github.com/dvloznov/statement-pdf/internal/render"
	"github.com/dvloznov/statement-pdf/internal/statement"
)

// EnvConfigPath names the environment variable holding the TOML path.
const EnvConfigPath = "STATEMENT_CONFIG"

// Storage backends.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Audit backends.
const (
	AuditMemory   = "memory"
	AuditBigQuery = "bigquery"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig      `toml:"server"`
	Statement StatementConfig   `toml:"statement"`
	Fonts     render.FontConfig `toml:"fonts"`
	Delivery  DeliveryConfig    `toml:"delivery"`
	Audit     AuditConfig       `toml:"audit"`
	Jobs      JobsConfig        `toml:"jobs"`
	Log       LogConfig         `toml:"log"`
	Metrics   MetricsConfig     `toml:"metrics"`
}

type ServerConfig struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	PublicBaseURL   string        `toml:"public_base_url"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type StatementConfig struct {
	Layout            string `toml:"layout"`
	SignConvention    string `toml:"sign_convention"`
	OrganizationName  string `toml:"organization_name"`
	LogoPath          string `toml:"logo_path"`
	BrandingImagePath string `toml:"branding_image_path"`
	SignaturePath     string `toml:"signature_path"`
}

type DeliveryConfig struct {
	Mode      string `toml:"mode"`
	Storage   string `toml:"storage"`
	OutputDir string `toml:"output_dir"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
}

type AuditConfig struct {
	Backend   string `toml:"backend"`
	Capacity  int    `toml:"capacity"`
	ProjectID string `toml:"project_id"`
	Dataset   string `toml:"dataset"`
	Table     string `toml:"table"`
}

type JobsConfig struct {
	Enabled    bool `toml:"enabled"`
	Workers    int  `toml:"workers"`
	BufferSize int  `toml:"buffer_size"`
	MaxRetries int  `toml:"max_retries"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := statement.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			MaxBodyBytes:    10 << 20,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Statement: StatementConfig{
			Layout:           string(opts.Layout),
			SignConvention:   string(opts.Convention),
			OrganizationName: opts.OrganizationName,
			LogoPath:         opts.LogoPath,
			SignaturePath:    opts.SignaturePath,
		},
		Fonts: render.FontConfig{
			Family:      opts.FontFamily,
			Normal:      "./Roboto-Regular.ttf",
			Bold:        "./Roboto-Medium.ttf",
			Italics:     "./Roboto-Italic.ttf",
			BoldItalics: "./Roboto-MediumItalic.ttf",
		},
		Delivery: DeliveryConfig{
			Mode:      string(delivery.ModePersist),
			Storage:   StorageLocal,
			OutputDir: "generated_pdfs",
		},
		Audit: AuditConfig{
			Backend:  AuditMemory,
			Capacity: 1000,
			Table:    "statement_audit",
		},
		Jobs: JobsConfig{
			Enabled:    true,
			Workers:    5,
			BufferSize: 100,
			MaxRetries: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(logger.FormatConsole),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads .env (when present) into the process environment and then
// builds the configuration from path and os.LookupEnv. An empty path falls
// back to $STATEMENT_CONFIG; no file at all is fine.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Load: reading .env: %w", err)
	}
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path == "" {
		path, _ = lookup(EnvConfigPath)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("Load: decoding %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	str("HOST", &c.Server.Host)
	str("STATEMENT_PUBLIC_BASE_URL", &c.Server.PublicBaseURL)
	str("STATEMENT_LAYOUT", &c.Statement.Layout)
	str("STATEMENT_SIGN_CONVENTION", &c.Statement.SignConvention)
	str("STATEMENT_ORG_NAME", &c.Statement.OrganizationName)
	str("STATEMENT_LOGO", &c.Statement.LogoPath)
	str("STATEMENT_BRANDING_IMAGE", &c.Statement.BrandingImagePath)
	str("STATEMENT_SIGNATURE", &c.Statement.SignaturePath)
	str("STATEMENT_FONT_FAMILY", &c.Fonts.Family)
	str("STATEMENT_FONT_NORMAL", &c.Fonts.Normal)
	str("STATEMENT_FONT_BOLD", &c.Fonts.Bold)
	str("STATEMENT_FONT_ITALICS", &c.Fonts.Italics)
	str("STATEMENT_FONT_BOLD_ITALICS", &c.Fonts.BoldItalics)
	str("STATEMENT_DELIVERY", &c.Delivery.Mode)
	str("STATEMENT_STORAGE", &c.Delivery.Storage)
	str("STATEMENT_OUTPUT_DIR", &c.Delivery.OutputDir)
	str("GCS_BUCKET", &c.Delivery.Bucket)
	str("STATEMENT_GCS_PREFIX", &c.Delivery.Prefix)
	str("STATEMENT_AUDIT_BACKEND", &c.Audit.Backend)
	str("STATEMENT_AUDIT_PROJECT", &c.Audit.ProjectID)
	str("STATEMENT_AUDIT_DATASET", &c.Audit.Dataset)
	str("STATEMENT_AUDIT_TABLE", &c.Audit.Table)
	str("STATEMENT_LOG_LEVEL", &c.Log.Level)
	str("STATEMENT_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	for key, dst := range map[string]*int{
		"STATEMENT_JOB_WORKERS":     &c.Jobs.Workers,
		"STATEMENT_JOB_MAX_RETRIES": &c.Jobs.MaxRetries,
	} {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
	}
	for key, dst := range map[string]*bool{
		"STATEMENT_JOBS_ENABLED":    &c.Jobs.Enabled,
		"STATEMENT_METRICS_ENABLED": &c.Metrics.Enabled,
	} {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate rejects unknown enum values and incomplete backend settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive"))
	}
	if _, err := ledger.ParseMode(c.Statement.Layout); err != nil {
		errs = append(errs, fmt.Errorf("statement.layout: %w", err))
	}
	if _, err := ledger.ParseSignConvention(c.Statement.SignConvention); err != nil {
		errs = append(errs, fmt.Errorf("statement.sign_convention: %w", err))
	}
	if _, err := delivery.ParseMode(c.Delivery.Mode); err != nil {
		errs = append(errs, fmt.Errorf("delivery.mode: %w", err))
	}

	switch c.Delivery.Storage {
	case StorageLocal:
		if c.Delivery.OutputDir == "" {
			errs = append(errs, fmt.Errorf("delivery.output_dir is required for local storage"))
		}
	case StorageGCS:
		if c.Delivery.Bucket == "" {
			errs = append(errs, fmt.Errorf("delivery.bucket is required for gcs storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("delivery.storage: unknown backend %q", c.Delivery.Storage))
	}

	switch c.Audit.Backend {
	case AuditMemory:
	case AuditBigQuery:
		if c.Audit.ProjectID == "" || c.Audit.Dataset == "" {
			errs = append(errs, fmt.Errorf("audit.project_id and audit.dataset are required for bigquery"))
		}
	default:
		errs = append(errs, fmt.Errorf("audit.backend: unknown backend %q", c.Audit.Backend))
	}

	if c.Jobs.Enabled && c.Jobs.Workers < 1 {
		errs = append(errs, fmt.Errorf("jobs.workers must be at least 1"))
	}
	if c.Jobs.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("jobs.max_retries must not be negative"))
	}

	switch logger.Format(c.Log.Format) {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// StatementOptions converts the statement section for the builder.
// Call after Validate.
func (c *Config) StatementOptions() statement.Options {
	layout, _ := ledger.ParseMode(c.Statement.Layout)
	convention, _ := ledger.ParseSignConvention(c.Statement.SignConvention)
	return statement.Options{
		Layout:            layout,
		Convention:        convention,
		OrganizationName:  c.Statement.OrganizationName,
		LogoPath:          c.Statement.LogoPath,
		BrandingImagePath: c.Statement.BrandingImagePath,
		SignaturePath:     c.Statement.SignaturePath,
		FontFamily:        c.Fonts.Family,
	}
}

// RenderConfig returns the renderer settings.
func (c *Config) RenderConfig() render.Config {
	rc := render.DefaultConfig()
	rc.Fonts = c.Fonts
	rc.Fonts.Family = strings.TrimSpace(rc.Fonts.Family)
	return rc
}

// DeliveryMode returns the parsed delivery mode. Call after Validate.
func (c *Config) DeliveryMode() delivery.Mode {
	mode, _ := delivery.ParseMode(c.Delivery.Mode)
	return mode
}
