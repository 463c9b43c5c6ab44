package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment maps one deployment onto its backend and frontend origins.
type Environment struct {
	BackendURL  string `yaml:"backendUrl"`
	FrontendURL string `yaml:"frontendUrl"`
}

type Config struct {
	Environment  string                 `yaml:"environment"`
	Environments map[string]Environment `yaml:"environments"`
	HTTP         struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"http"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		CacheTTL string `yaml:"cacheTtl"`
	} `yaml:"quiz"`
	Results struct {
		PageSize     int    `yaml:"pageSize"`
		PollInterval string `yaml:"pollInterval"`
	} `yaml:"results"`
	Invites struct {
		Channel   string `yaml:"channel"`
		Delay     string `yaml:"delay"`
		LedgerTTL string `yaml:"ledgerTtl"`
	} `yaml:"invites"`
	WhatsApp struct {
		APIURL        string `yaml:"apiUrl"`
		PhoneNumberID string `yaml:"phoneNumberId"`
		AccessToken   string `yaml:"accessToken"`
	} `yaml:"whatsapp"`
}

// Endpoints are the origins resolved once at startup and injected into clients.
type Endpoints struct {
	Name        string
	BackendURL  string
	FrontendURL string
}

// Default is used when no config file exists.
func Default() Config {
	cfg := Config{
		Environment: "development",
		Environments: map[string]Environment{
			"development": {BackendURL: "http://localhost:8080", FrontendURL: "http://localhost:5173"},
		},
	}
	cfg.Results.PageSize = 10
	cfg.Results.PollInterval = "5s"
	cfg.Invites.Channel = "link"
	cfg.Invites.Delay = "1s"
	cfg.Quiz.CacheTTL = "1m"
	return cfg
}

// Load reads YAML config from path, falling back to defaults when the file does not exist,
// then applies .env and environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("config %s not found, using defaults", path)
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUIZ_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); v != "" {
		cfg.WhatsApp.PhoneNumberID = v
	}
	if v := os.Getenv("WHATSAPP_ACCESS_TOKEN"); v != "" {
		cfg.WhatsApp.AccessToken = v
	}
}

// Endpoints resolves the selected environment. BACKEND_URL and FRONTEND_URL override the
// mapped values.
func (c Config) Endpoints() (Endpoints, error) {
	env, ok := c.Environments[c.Environment]
	if !ok {
		return Endpoints{}, fmt.Errorf("unknown environment %q", c.Environment)
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		env.BackendURL = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		env.FrontendURL = v
	}
	if env.BackendURL == "" {
		return Endpoints{}, fmt.Errorf("environment %q has no backendUrl", c.Environment)
	}
	return Endpoints{
		Name:        c.Environment,
		BackendURL:  strings.TrimSuffix(env.BackendURL, "/"),
		FrontendURL: strings.TrimSuffix(env.FrontendURL, "/"),
	}, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
