package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSheetURL is the published CyberHunt clue sheet.
const DefaultSheetURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTteOhCv0kUJUO1MKgPAFT5cThiKSnmAl-b6BORgta6jUP-XDMGg9qqmoCLIR3Y5FT0Sf088Szp5gru/pub?output=csv"

// Question sources.
const (
	SourceSheet    = "sheet"
	SourcePostgres = "postgres"
)

type Config struct {
	Server struct {
		Bind    string `yaml:"bind"`
		Port    string `yaml:"port"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Questions struct {
		Source  string `yaml:"source"`
		URL     string `yaml:"url"`
		Limit   int    `yaml:"limit"`
		Timeout string `yaml:"timeout"`
		TTL     string `yaml:"ttl"`
	} `yaml:"questions"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Admin struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Secret   string `yaml:"secret"`
	} `yaml:"admin"`
	Leaderboard struct {
		RefreshInterval string `yaml:"refresh_interval"`
	} `yaml:"leaderboard"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Bind = "0.0.0.0"
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Questions.Source = SourceSheet
	cfg.Questions.URL = DefaultSheetURL
	cfg.Questions.Limit = 12
	cfg.Questions.Timeout = "15s"
	cfg.Questions.TTL = "10m"
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "Samonilla"
	cfg.Leaderboard.RefreshInterval = "2s"
	return cfg
}

// Load reads YAML config from path over the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Questions.Limit <= 0 {
		cfg.Questions.Limit = 12
	}
	return cfg, nil
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
