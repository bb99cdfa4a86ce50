// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file,
// a .env file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN selects the Postgres backend when set.
	DatabaseDSN string `json:"database_dsn"`

	// DataFile is the JSON file used when no database is configured.
	DataFile string `json:"data_file"`

	LogLevel string `json:"log_level"`

	// LowStockSchedule is the cron spec for the low-stock scan.
	LowStockSchedule string `json:"low_stock_schedule"`

	// LoginRate and LoginBurst throttle login and signup per client.
	LoginRate  float64 `json:"login_rate"`
	LoginBurst int     `json:"login_burst"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses the command-line flags, the config file, a .env file in the
// working directory and environment variables, in increasing priority.
func Parse() (*Options, error) {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	return load(os.Args[1:], os.Getenv)
}

func load(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("clinic", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.DataFile, "f", "clinic.json", "path to the data file")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.StringVar(&options.LowStockSchedule, "s", "@every 1h", "low-stock scan schedule")
	fs.Float64Var(&options.LoginRate, "login-rate", 1, "login attempts per second per client")
	fs.IntVar(&options.LoginBurst, "login-burst", 5, "login attempt burst per client")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS key")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	overrides := map[string]*string{
		"SERVER_ADDRESS":     &options.Port,
		"DATABASE_DSN":       &options.DatabaseDSN,
		"DATA_FILE":          &options.DataFile,
		"LOG_LEVEL":          &options.LogLevel,
		"LOW_STOCK_SCHEDULE": &options.LowStockSchedule,
		"TLS_CERT":           &options.TLSCert,
		"TLS_KEY":            &options.TLSKey,
	}
	for name, dst := range overrides {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	if v := getenv("LOGIN_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("LOGIN_RATE: %w", err)
		}
		options.LoginRate = rate
	}
	if v := getenv("LOGIN_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("LOGIN_BURST: %w", err)
		}
		options.LoginBurst = burst
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// Validate reports settings the server cannot start with.
func (o *Options) Validate() error {
	switch {
	case o.Port == "":
		return errors.New("server address must be provided")
	case o.DatabaseDSN == "" && o.DataFile == "":
		return errors.New("either a database DSN or a data file must be provided")
	case o.LoginRate <= 0:
		return errors.New("login rate must be positive")
	case o.LoginBurst <= 0:
		return errors.New("login burst must be positive")
	case (o.TLSCert == "") != (o.TLSKey == ""):
		return errors.New("TLS certificate and key must be set together")
	}
	return nil
}
