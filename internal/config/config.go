// Package config handles loading and parsing application configuration.
// Values come from (lowest to highest priority):
//  1. env-default struct tags
//  2. a .env file in the working directory, if present
//  3. an optional YAML file: CONFIG_PATH=/path/to/config.yaml or --config
//  4. the process environment
//
// The parsed values are returned as a *Config that main hands to every
// constructor; nothing reads the environment after start-up.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in Storage.Driver.
const (
	DriverXata   = "xata"
	DriverSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	Storage    `yaml:"storage"`
	Xata       `yaml:"xata"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr            string        `yaml:"address"          env:"HTTP_SERVER_ADDR"             env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Storage selects and tunes the student store.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"xata"`
	Table  string `yaml:"table"  env:"STORAGE_TABLE"  env-default:"tbl_students"`

	// Timeout bounds every individual store call.
	Timeout time.Duration `yaml:"timeout" env:"STORAGE_TIMEOUT" env-default:"10s"`

	// Path is the SQLite .db file; ignored by the xata driver.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/students.db"`
}

// Xata holds the three connection knobs of the hosted database.
// They are not required at load time: a store built from empty values
// fails on its first call, which /health reports.
type Xata struct {
	APIKey string `yaml:"api_key" env:"XATA_API_KEY"`

	// DatabaseURL has the form https://{workspace}.{region}.xata.sh/db/{database}
	DatabaseURL string `yaml:"database_url" env:"XATA_DATABASE_URL"`
	Branch      string `yaml:"branch"       env:"XATA_BRANCH"       env-default:"main"`
}

// Configured reports whether both the API key and database URL are set.
func (x Xata) Configured() bool {
	return x.APIKey != "" && x.DatabaseURL != ""
}

// Load builds a Config from args (without the program name) and the
// environment. A .env file is loaded first when one exists; variables
// already present in the environment win over it.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: read .env: %w", err)
	}

	flags := flag.NewFlagSet("school-api", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configFlag := flags.String("config", "", "Path to the configuration YAML file")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("config.Load: parse flags: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = *configFlag
	}

	var cfg Config
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config.Load: config file %s: %w", configPath, err)
		}
		// ReadConfig parses the file, then applies env overrides and defaults.
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", configPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverXata, DriverSQLite:
	default:
		return fmt.Errorf("config: unknown storage driver %q (want %q or %q)",
			c.Storage.Driver, DriverXata, DriverSQLite)
	}
	if c.Storage.Table == "" {
		return errors.New("config: storage table must not be empty")
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("config: storage timeout must be positive, got %s", c.Storage.Timeout)
	}
	return nil
}

// MustLoad reads, validates, and returns the application config from the
// command line and environment. It exits the process on failure.
func MustLoad() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}
	return cfg
}
