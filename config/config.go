package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SessionStoreCookie = "cookie"
	SessionStoreMySQL  = "mysql"
)

type MySQLConfig struct {
	DSN            string `yaml:"dsn"`
	Schema         string `yaml:"schema"`
	MaxConnections int    `yaml:"max_connections" validate:"gte=0"`
}

type AgentConfig struct {
	Addr string `yaml:"addr" validate:"required"`
	// JWTSecret, when set, makes the agent verify token signatures.
	JWTSecret string `yaml:"jwt_secret"`
}

type SlackConfig struct {
	Token        string `yaml:"token"`
	InfoChannel  string `yaml:"info_channel"`
	ErrorChannel string `yaml:"error_channel"`
}

type ReportConfig struct {
	Bucket string `yaml:"bucket"`
	Sender string `yaml:"sender" validate:"omitempty,email"`
}

type Config struct {
	APIURL            string        `yaml:"api_url" validate:"required,url"`
	StateDir          string        `yaml:"state_dir" validate:"required"`
	SessionStore      string        `yaml:"session_store" validate:"oneof=cookie mysql"`
	MySQL             MySQLConfig   `yaml:"mysql"`
	LogLevel          string        `yaml:"log_level" validate:"oneof=trace debug info warn error off"`
	LogJSON           bool          `yaml:"log_json"`
	Timezone          string        `yaml:"timezone"`
	GeofenceRadius    float64       `yaml:"geofence_radius" validate:"gt=0"`
	PingInterval      time.Duration `yaml:"ping_interval" validate:"gt=0"`
	DetectionInterval time.Duration `yaml:"detection_interval" validate:"gt=0"`
	SSMParameter      string        `yaml:"ssm_parameter"`
	Agent             AgentConfig   `yaml:"agent"`
	Slack             SlackConfig   `yaml:"slack"`
	Report            ReportConfig  `yaml:"report"`
}

// Location returns the zone used to print dates, UTC when unset or unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) SessionDir() string {
	return filepath.Join(c.StateDir, "sessions")
}

func Default() *Config {
	stateDir := ".timeclock"
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".timeclock")
	}
	return &Config{
		APIURL:            "http://localhost:8000",
		StateDir:          stateDir,
		SessionStore:      SessionStoreCookie,
		MySQL:             MySQLConfig{MaxConnections: 5},
		LogLevel:          "info",
		GeofenceRadius:    100,
		PingInterval:      5 * time.Minute,
		DetectionInterval: 2 * time.Second,
		Agent:             AgentConfig{Addr: "127.0.0.1:8787"},
	}
}

// ParameterLoader returns the YAML stored under an SSM parameter.
type ParameterLoader func(ctx context.Context, name string) (string, error)

type LoadOptions struct {
	// EnvFile is a dotenv file; a missing file is ignored.
	EnvFile string
	// File is a YAML config file; a missing file is ignored.
	File string
	// Parameters loads the SSM overlay named by ssm_parameter.
	Parameters ParameterLoader
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load layers defaults, the dotenv file, the YAML file, the SSM overlay and
// TIMECLOCK_* environment variables, in that order, and validates the result.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg := Default()

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if opts.EnvFile != "" {
		dotenv, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", opts.EnvFile, err)
		}
		lookup = withFallback(lookup, dotenv)
	}

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("unmarshal config %s: %w", opts.File, err)
			}
		}
	}

	if v, ok := lookup("TIMECLOCK_SSM_PARAMETER"); ok && v != "" {
		cfg.SSMParameter = v
	}
	if cfg.SSMParameter != "" && opts.Parameters != nil {
		raw, err := opts.Parameters(ctx, cfg.SSMParameter)
		if err != nil {
			return nil, fmt.Errorf("load parameter %s: %w", cfg.SSMParameter, err)
		}
		if err := yaml.Unmarshal([]byte(raw), cfg); err != nil {
			return nil, fmt.Errorf("unmarshal parameter %s: %w", cfg.SSMParameter, err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.SessionStore == SessionStoreMySQL && c.MySQL.DSN == "" {
		return fmt.Errorf("invalid config: mysql.dsn is required when session_store is mysql")
	}
	return nil
}

func withFallback(primary func(string) (string, bool), fallback map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TIMECLOCK_API_URL":       &cfg.APIURL,
		"TIMECLOCK_STATE_DIR":     &cfg.StateDir,
		"TIMECLOCK_SESSION_STORE": &cfg.SessionStore,
		"TIMECLOCK_MYSQL_DSN":     &cfg.MySQL.DSN,
		"TIMECLOCK_MYSQL_SCHEMA":  &cfg.MySQL.Schema,
		"TIMECLOCK_LOG_LEVEL":     &cfg.LogLevel,
		"TIMECLOCK_TIMEZONE":      &cfg.Timezone,
		"TIMECLOCK_AGENT_ADDR":    &cfg.Agent.Addr,
		"TIMECLOCK_JWT_SECRET":    &cfg.Agent.JWTSecret,
		"TIMECLOCK_REPORT_BUCKET": &cfg.Report.Bucket,
		"TIMECLOCK_REPORT_SENDER": &cfg.Report.Sender,
		"SLACK_BOT_TOKEN":         &cfg.Slack.Token,
		"SLACK_INFO_CHANNEL":      &cfg.Slack.InfoChannel,
		"SLACK_ERROR_CHANNEL":     &cfg.Slack.ErrorChannel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("TIMECLOCK_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TIMECLOCK_LOG_JSON: %w", err)
		}
		cfg.LogJSON = b
	}
	if v, ok := lookup("TIMECLOCK_GEOFENCE_RADIUS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TIMECLOCK_GEOFENCE_RADIUS: %w", err)
		}
		cfg.GeofenceRadius = f
	}
	if v, ok := lookup("TIMECLOCK_MYSQL_MAX_CONNECTIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TIMECLOCK_MYSQL_MAX_CONNECTIONS: %w", err)
		}
		cfg.MySQL.MaxConnections = n
	}
	durations := map[string]*time.Duration{
		"TIMECLOCK_PING_INTERVAL":      &cfg.PingInterval,
		"TIMECLOCK_DETECTION_INTERVAL": &cfg.DetectionInterval,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}
