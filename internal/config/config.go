// Package config loads service configuration from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config for the HTTP service and default encoder
type Config struct {
	Listen      string `env:"FFCOUNTDOWN_LISTEN"       envDefault:":3002"`
	Storage     string `env:"FFCOUNTDOWN_STORAGE"      envDefault:"memory"`
	StoragePath string `env:"FFCOUNTDOWN_STORAGE_PATH" envDefault:"./data"`
	DSN         string `env:"FFCOUNTDOWN_DSN"          envDefault:"ffcountdown.db"`
	Encoder     string `env:"FFCOUNTDOWN_ENCODER"      envDefault:"auto"`
	FFmpeg      string `env:"FFCOUNTDOWN_FFMPEG"       envDefault:"ffmpeg"`
	FFprobe     string `env:"FFCOUNTDOWN_FFPROBE"      envDefault:"ffprobe"`
	LogLevel    string `env:"FFCOUNTDOWN_LOG_LEVEL"    envDefault:"info"`
}

// Load reads optional .env files, then parses the environment.
// Variables already set are not overridden by .env files.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logrus.WithField("file", f).Debug("No .env file found")
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level parses LogLevel
func (c Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}
