// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Engine() EngineConfig
	Report() ReportConfig
	// Warnings lists the values that were replaced by defaults while loading.
	Warnings() []string

	// Report Setters
	SetReportFormat(string)
	SetReportOutput(string)
	SetReportDatabaseType(string)
	SetReportMetricsFile(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg DatabaseConfig `mapstructure:"database" yaml:"database"`
	EngineCfg   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	ReportCfg   ReportConfig   `mapstructure:"report" yaml:"report"`

	warnings []string
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig { return c.DatabaseCfg }
func (c *Config) Engine() EngineConfig     { return c.EngineCfg }
func (c *Config) Report() ReportConfig     { return c.ReportCfg }
func (c *Config) Warnings() []string       { return c.warnings }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetReportFormat(f string)       { c.ReportCfg.Format = f }
func (c *Config) SetReportOutput(p string)       { c.ReportCfg.Output = p }
func (c *Config) SetReportDatabaseType(d string) { c.ReportCfg.DatabaseType = d }
func (c *Config) SetReportMetricsFile(p string)  { c.ReportCfg.MetricsFile = p }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" validate:"gte=0"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the database connection details for report history.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// EngineConfig tunes report generation. Values are loosely validated by the
// engine itself: anything unusable falls back to a default with a warning.
type EngineConfig struct {
	Weights             map[string]float64    `mapstructure:"weights" yaml:"weights"`
	PriorityFactors     PriorityFactorsConfig `mapstructure:"priority_factors" yaml:"priority_factors"`
	SimilarityThreshold float64               `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	DimensionOrder      []string              `mapstructure:"dimension_order" yaml:"dimension_order"`
}

// PriorityFactorsConfig weighs the components of a recommendation's priority.
type PriorityFactorsConfig struct {
	Severity float64 `mapstructure:"severity" yaml:"severity"`
	Impact   float64 `mapstructure:"impact" yaml:"impact"`
	Effort   float64 `mapstructure:"effort" yaml:"effort"`
}

// ReportConfig holds the defaults of the report command. Flags override them.
type ReportConfig struct {
	Format       string `mapstructure:"format" yaml:"format" validate:"oneof=json sarif text"`
	Output       string `mapstructure:"output" yaml:"output"`
	DatabaseType string `mapstructure:"database_type" yaml:"database_type"`
	Concurrency  int    `mapstructure:"concurrency" yaml:"concurrency"`
	MetricsFile  string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

const defaultConcurrency = 4

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "sqlanalyzer")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Database --
	v.SetDefault("database.url", "")

	// -- Engine --
	v.SetDefault("engine.weights.performance", 0.4)
	v.SetDefault("engine.weights.security", 0.4)
	v.SetDefault("engine.weights.standards", 0.2)
	v.SetDefault("engine.priority_factors.severity", 0.5)
	v.SetDefault("engine.priority_factors.impact", 0.3)
	v.SetDefault("engine.priority_factors.effort", 0.2)
	v.SetDefault("engine.similarity_threshold", 0.8)
	v.SetDefault("engine.dimension_order", []string{"performance", "security", "standards"})

	// -- Report --
	v.SetDefault("report.format", "json")
	v.SetDefault("report.output", "")
	v.SetDefault("report.database_type", "unknown")
	v.SetDefault("report.concurrency", defaultConcurrency)
	v.SetDefault("report.metrics_file", "")
}

// NewConfigFromViper builds a validated Config from a populated viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The connection string usually carries credentials, so it is read from
	// the environment under a stable name.
	_ = v.BindEnv("database.url", "SQLANALYZER_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.sanitize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// sanitize replaces values that cannot work with their defaults and records
// a warning for each.
func (c *Config) sanitize() {
	if c.ReportCfg.Concurrency < 1 {
		c.warnf("report.concurrency %d is not positive; using %d", c.ReportCfg.Concurrency, defaultConcurrency)
		c.ReportCfg.Concurrency = defaultConcurrency
	}
	switch strings.ToLower(c.LoggerCfg.Level) {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		c.warnf("logger.level %q is unknown; using info", c.LoggerCfg.Level)
		c.LoggerCfg.Level = "info"
	}
	c.ReportCfg.Format = strings.ToLower(strings.TrimSpace(c.ReportCfg.Format))
}

func (c *Config) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// validate is configured to report field paths using the mapstructure keys,
// so errors read like "report.format" rather than "ReportCfg.Format".
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ToYAML renders the configuration as a YAML document suitable for a
// config file.
func (c *Config) ToYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to render config as YAML: %w", err)
	}
	return out, nil
}
