package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"log-analyzer/application"
)

// EnvPrefix namespaces the environment overrides, e.g. LOG_ANALYZER_REPORT_SIZE.
const EnvPrefix = "LOG_ANALYZER"

type Config struct {
	ReportSize     int     `mapstructure:"report_size" yaml:"report_size"`
	ReportDir      string  `mapstructure:"report_dir" yaml:"report_dir"`
	ReportTemplate string  `mapstructure:"report_template" yaml:"report_template"`
	LogDir         string  `mapstructure:"log_dir" yaml:"log_dir"`
	ErrorThreshold float64 `mapstructure:"error_threshold" yaml:"error_threshold"`
	Force          bool    `mapstructure:"force" yaml:"force"`

	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	ClickHouseDSN   string `mapstructure:"clickhouse_dsn" yaml:"clickhouse_dsn"`
	ClickHouseTable string `mapstructure:"clickhouse_table" yaml:"clickhouse_table"`
	MetricsFile     string `mapstructure:"metrics_file" yaml:"metrics_file"`
	ConsoleRows     int    `mapstructure:"console_rows" yaml:"console_rows"`
}

func Default() Config {
	return Config{
		ReportSize:      application.DefaultReportSize,
		ReportDir:       "./reports",
		LogDir:          "./log",
		ErrorThreshold:  application.DefaultErrorThreshold,
		LogLevel:        "info",
		ClickHouseTable: "path_stats",
		ConsoleRows:     10,
	}
}

// flagKeys maps flags whose name does not follow the key with dashes.
var flagKeys = map[string]string{
	"template": "report_template",
}

func (c Config) settings() map[string]any {
	return map[string]any{
		"report_size":      c.ReportSize,
		"report_dir":       c.ReportDir,
		"report_template":  c.ReportTemplate,
		"log_dir":          c.LogDir,
		"error_threshold":  c.ErrorThreshold,
		"force":            c.Force,
		"log_file":         c.LogFile,
		"log_level":        c.LogLevel,
		"clickhouse_dsn":   c.ClickHouseDSN,
		"clickhouse_table": c.ClickHouseTable,
		"metrics_file":     c.MetricsFile,
		"console_rows":     c.ConsoleRows,
	}
}

// Load layers, in increasing precedence, the built-in defaults, the config
// file at path (skipped when empty), LOG_ANALYZER_* environment variables and
// the flags of fs that were set on the command line. File keys match
// case-insensitively, so {"REPORT_SIZE": 500} loads like report_size: 500.
// Keys the analyzer does not know are ignored.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	defaults := Default().settings()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml", ".toml":
		default:
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if fs != nil {
		var errs []error
		fs.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if _, known := defaults[key]; !known {
				return
			}
			if err := v.BindPFlag(key, f); err != nil {
				errs = append(errs, err)
			}
		})
		if err := errors.Join(errs...); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.ReportSize < 1 {
		errs = append(errs, fmt.Errorf("report_size must be at least 1, got %d", c.ReportSize))
	}
	if c.ErrorThreshold < 0 || c.ErrorThreshold > 1 {
		errs = append(errs, fmt.Errorf("error_threshold must be within [0, 1], got %g", c.ErrorThreshold))
	}
	if c.LogDir == "" {
		errs = append(errs, errors.New("log_dir must not be empty"))
	}
	if c.ReportDir == "" {
		errs = append(errs, errors.New("report_dir must not be empty"))
	}
	if c.ClickHouseDSN != "" && c.ClickHouseTable == "" {
		errs = append(errs, errors.New("clickhouse_table must not be empty when clickhouse_dsn is set"))
	}
	return errors.Join(errs...)
}

// YAML renders the effective settings in the config file format.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Options returns the pipeline settings.
func (c Config) Options() application.Options {
	return application.Options{
		ReportSize:     c.ReportSize,
		ErrorThreshold: c.ErrorThreshold,
		Force:          c.Force,
	}
}
