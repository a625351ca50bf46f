// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Survey   SurveySource   `yaml:"survey" mapstructure:"survey"`
	Tracking TrackingSource `yaml:"tracking" mapstructure:"tracking"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy" mapstructure:"taxonomy"`
	Scorer   ScorerConfig   `yaml:"scorer" mapstructure:"scorer"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests/sec per client
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SurveySource maps the site survey extract's columns by header name.
type SurveySource struct {
	Sheet            string `yaml:"sheet" mapstructure:"sheet"`
	SiteKey          string `yaml:"site_key" mapstructure:"site_key"`
	Number           string `yaml:"number" mapstructure:"number"`
	Responder        string `yaml:"responder" mapstructure:"responder"`
	Label            string `yaml:"label" mapstructure:"label"`
	Category         string `yaml:"category" mapstructure:"category"`
	ReferenceAddress string `yaml:"reference_address" mapstructure:"reference_address"`
}

// TrackingSource maps the tracking extract's columns by header name. The
// extract may span several sheets; every sheet exposing the required columns
// is read.
type TrackingSource struct {
	SiteKey      string `yaml:"site_key" mapstructure:"site_key"`
	Category     string `yaml:"category" mapstructure:"category"`
	TicketUPR    string `yaml:"ticket_upr" mapstructure:"ticket_upr"`
	Ticket501511 string `yaml:"ticket_501511" mapstructure:"ticket_501511"`
	RoadCategory string `yaml:"road_category" mapstructure:"road_category"`
}

// TaxonomyConfig points at an optional taxonomy override file.
type TaxonomyConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ScorerConfig holds the conformity scoring policy. The weights and the pass
// threshold are business constants with no derivation; they are configuration,
// not algorithm.
type ScorerConfig struct {
	PrimaryWeight   float64 `yaml:"primary_weight" mapstructure:"primary_weight"`
	SecondaryWeight float64 `yaml:"secondary_weight" mapstructure:"secondary_weight"`
	TicketWeight    float64 `yaml:"ticket_weight" mapstructure:"ticket_weight"`
	GapWeight       float64 `yaml:"gap_weight" mapstructure:"gap_weight"`
	PassThreshold   float64 `yaml:"pass_threshold" mapstructure:"pass_threshold"`
}

// WeightSum returns the sum of the four rate weights.
func (c ScorerConfig) WeightSum() float64 {
	return c.PrimaryWeight + c.SecondaryWeight + c.TicketWeight + c.GapWeight
}

// Validate checks that a ScorerConfig is internally consistent.
func (c ScorerConfig) Validate() error {
	var errs []string

	weights := map[string]float64{
		"primary_weight":   c.PrimaryWeight,
		"secondary_weight": c.SecondaryWeight,
		"ticket_weight":    c.TicketWeight,
		"gap_weight":       c.GapWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	sum := c.WeightSum()
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	// Allow tolerance for floating-point.
	if math.Abs(sum-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.3f", sum))
	}

	if c.PassThreshold < 0 || c.PassThreshold > 100 {
		errs = append(errs, "pass_threshold must be between 0 and 100")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMMUNEQC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "communeqc.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("survey.site_key", "Code IMB")
	v.SetDefault("survey.number", "Numero Voie")
	v.SetDefault("survey.responder", "Repondant")
	v.SetDefault("survey.label", "Libelle Voie")
	v.SetDefault("survey.category", "Motif")
	v.SetDefault("survey.reference_address", "Adresse BAN")
	v.SetDefault("tracking.site_key", "IMB")
	v.SetDefault("tracking.category", "Motif Voie")
	v.SetDefault("tracking.ticket_upr", "Ticket UPR")
	v.SetDefault("tracking.ticket_501511", "Ticket 501/511")
	v.SetDefault("tracking.road_category", "Acte de Voie")
	v.SetDefault("scorer.primary_weight", 0.30)
	v.SetDefault("scorer.secondary_weight", 0.60)
	v.SetDefault("scorer.ticket_weight", 0.05)
	v.SetDefault("scorer.gap_weight", 0.05)
	v.SetDefault("scorer.pass_threshold", 90.0)

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

	return &cfg, nil
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
