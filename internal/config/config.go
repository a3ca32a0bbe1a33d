package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parcelworks/siteassess/internal/classify"
	"github.com/parcelworks/siteassess/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Baidu       BaiduConfig                 `yaml:"baidu" mapstructure:"baidu"`
	Pipeline    PipelineConfig              `yaml:"pipeline" mapstructure:"pipeline"`
	Report      ReportConfig                `yaml:"report" mapstructure:"report"`
	Server      ServerConfig                `yaml:"server" mapstructure:"server"`
	Log         LogConfig                   `yaml:"log" mapstructure:"log"`
	Fields      []model.FieldDescriptor     `yaml:"fields" mapstructure:"fields"`
	Comparisons map[string]classify.RuleSet `yaml:"comparisons" mapstructure:"comparisons"`
}

// BaiduConfig holds map provider credentials and client tuning.
type BaiduConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	QPS         float64 `yaml:"qps" mapstructure:"qps"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PipelineConfig configures the enrichment run.
type PipelineConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ReportConfig configures workbook emission.
type ReportConfig struct {
	Output string `yaml:"output" mapstructure:"output"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITEASSESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("baidu.base_url", "https://api.map.baidu.com")
	v.SetDefault("baidu.qps", 20.0)
	v.SetDefault("baidu.burst", 5)
	v.SetDefault("baidu.timeout_secs", 10)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("report.output", "评估报告.xlsx")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

	if len(cfg.Fields) == 0 {
		cfg.Fields = model.DefaultDescriptors()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field descriptors against the recognized field table and
// every comparison rule set for well-formed intervals.
func (c *Config) Validate() error {
	if err := model.ValidateFields(c.Fields, model.DefaultFieldTable()); err != nil {
		return eris.Wrap(err, "config: fields")
	}
	for key, rules := range c.Comparisons {
		if err := rules.Validate(); err != nil {
			return eris.Wrapf(err, "config: comparison rules for field %s", key)
		}
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
