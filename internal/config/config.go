package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig points at the GeoNames resources.
type SourceConfig struct {
	CitiesURL   string `yaml:"cities_url" mapstructure:"cities_url"`
	CitiesEntry string `yaml:"cities_entry" mapstructure:"cities_entry"`
	Admin1URL   string `yaml:"admin1_url" mapstructure:"admin1_url"`
}

// FetchConfig configures the downloaders.
type FetchConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Progress          bool    `yaml:"progress" mapstructure:"progress"`
}

// OutputConfig configures where the build writes.
type OutputConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	WorkDir       string `yaml:"work_dir" mapstructure:"work_dir"`
	KeepTemp      bool   `yaml:"keep_temp" mapstructure:"keep_temp"`
	SQLitePath    string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	XLSXPath      string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
	PostgresURL   string `yaml:"postgres_url" mapstructure:"postgres_url"`
	PostgresTable string `yaml:"postgres_table" mapstructure:"postgres_table"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

const envPrefix = "WORLDCITIES"

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.cities_url", "http://download.geonames.org/export/dump/cities15000.zip")
	v.SetDefault("source.cities_entry", "cities15000.txt")
	v.SetDefault("source.admin1_url", "http://download.geonames.org/export/dump/admin1CodesASCII.txt")
	v.SetDefault("fetch.user_agent", "world-cities/1.0")
	v.SetDefault("fetch.timeout_secs", 0)
	v.SetDefault("fetch.requests_per_second", 2.0)
	v.SetDefault("fetch.progress", false)
	v.SetDefault("output.path", "data/world-cities.csv")
	v.SetDefault("output.work_dir", ".")
	v.SetDefault("output.keep_temp", false)
	v.SetDefault("output.sqlite_path", "")
	v.SetDefault("output.xlsx_path", "")
	v.SetDefault("output.postgres_url", "")
	v.SetDefault("output.postgres_table", "world_cities")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults returns the configuration used when no file or environment
// overrides are present.
func Defaults() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal defaults")
	}
	return &cfg, nil
}

// Validate rejects settings the build cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Source.CitiesURL == "":
		return eris.New("config: source.cities_url is required")
	case c.Source.CitiesEntry == "":
		return eris.New("config: source.cities_entry is required")
	case c.Source.Admin1URL == "":
		return eris.New("config: source.admin1_url is required")
	case c.Output.Path == "":
		return eris.New("config: output.path is required")
	case c.Output.WorkDir == "":
		return eris.New("config: output.work_dir is required")
	case c.Fetch.TimeoutSecs < 0:
		return eris.Errorf("config: fetch.timeout_secs must not be negative, got %d", c.Fetch.TimeoutSecs)
	case c.Fetch.RequestsPerSecond < 0:
		return eris.Errorf("config: fetch.requests_per_second must not be negative, got %g", c.Fetch.RequestsPerSecond)
	case c.Output.PostgresURL != "" && c.Output.PostgresTable == "":
		return eris.New("config: output.postgres_table is required when output.postgres_url is set")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
