// Package config arma la configuración del servicio: defaults, archivo YAML
// opcional y variables de entorno (en ese orden de prioridad creciente).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
	CORS    CORS    `yaml:"cors"`
	Seed    Seed    `yaml:"seed"`
}

type HTTP struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Storage struct {
	Driver Driver `yaml:"driver"`
	// DSN: ruta del archivo para sqlite, URL de conexión para postgres.
	DSN string `yaml:"dsn"`
}

type Log struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	AppName string `yaml:"app_name"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Seed struct {
	DefaultTypes bool `yaml:"default_types"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: Storage{Driver: DriverMemory},
		Log: Log{
			Level:   "info",
			Format:  "text",
			AppName: "pedigree-tracker",
		},
		CORS: CORS{AllowedOrigins: []string{"*"}},
	}
}

// Load aplica defaults, luego path (si no es vacío) y por último el entorno.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	// HTTP_ADDR gana sobre PORT
	if v, ok := get("PORT"); ok {
		c.HTTP.Addr = ":" + v
	}
	if v, ok := get("HTTP_ADDR"); ok {
		c.HTTP.Addr = v
	}

	if v, ok := get("DB_DRIVER"); ok {
		c.Storage.Driver = Driver(strings.ToLower(v))
	}
	if v, ok := get("DB_DSN"); ok {
		c.Storage.DSN = v
		// compat: DB_DSN solo implica postgres
		if _, set := get("DB_DRIVER"); !set {
			c.Storage.Driver = DriverPostgres
		}
	}

	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := get("APP_NAME"); ok {
		c.Log.AppName = v
	}

	if v, ok := get("CORS_ALLOWED_ORIGINS"); ok {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}

	if v, ok := get("PEDIGREE_CREATE_DEFAULT_DATA"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PEDIGREE_CREATE_DEFAULT_DATA: %w", err)
		}
		c.Seed.DefaultTypes = b
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported (memory, sqlite, postgres)", c.Storage.Driver))
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}

	return errors.Join(errs...)
}
