package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr         string `env:"ADDR" envDefault:":8080"`
	APIBaseURL   string `env:"API_URL" envDefault:"https://innovationc-coach-backend.onrender.com/api"`
	MediaBaseURL string `env:"MEDIA_URL" envDefault:"https://innovationc-coach-backend.onrender.com"`
	DBPath       string `env:"DB_PATH" envDefault:"console.db"`

	// SessionKey seals platform tokens at rest. Hex-encoded, 32 bytes.
	// Empty means a random per-process key (sessions die on restart).
	SessionKey    string `env:"SESSION_KEY"`
	SecureCookies bool   `env:"SECURE_COOKIES"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
