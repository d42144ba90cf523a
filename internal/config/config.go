// Package config loads the application configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	ListenAddress string        `yaml:"listen_address"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
}

type Spotify struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
}

type Ticketmaster struct {
	APIKey string `yaml:"api_key"`
}

type SeatGeek struct {
	ClientID string `yaml:"client_id"`
}

type Search struct {
	City        string        `yaml:"city"`
	StateCode   string        `yaml:"state_code"`
	RadiusMiles int           `yaml:"radius_miles"`
	BatchSize   int           `yaml:"batch_size"`
	BatchDelay  time.Duration `yaml:"batch_delay"`
}

type Scoring struct {
	ExactMatchPoints   float64 `yaml:"exact_match_points"`
	PartialMatchPoints float64 `yaml:"partial_match_points"`
	TokenMatchPoints   float64 `yaml:"token_match_points"`
	PopularityWeight   float64 `yaml:"popularity_weight"`
}

type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

type Config struct {
	Server       Server       `yaml:"server"`
	Spotify      Spotify      `yaml:"spotify"`
	Ticketmaster Ticketmaster `yaml:"ticketmaster"`
	SeatGeek     SeatGeek     `yaml:"seatgeek"`
	Search       Search       `yaml:"search"`
	Scoring      Scoring      `yaml:"scoring"`
	Storage      Storage      `yaml:"storage"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Search.City == "" {
		c.Search.City = "Austin"
	}
	if c.Search.StateCode == "" {
		c.Search.StateCode = "TX"
	}
	if c.Search.RadiusMiles == 0 {
		c.Search.RadiusMiles = 50
	}
	if c.Search.BatchSize == 0 {
		c.Search.BatchSize = 20
	}
	if c.Search.BatchDelay == 0 {
		c.Search.BatchDelay = 500 * time.Millisecond
	}
}
