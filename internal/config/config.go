package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	_ "github.com/joho/godotenv/autoload"
)

type (
	// Properties holds all application configuration. It is parsed once at
	// startup and passed into each component at construction.
	Properties struct {
		Port      string `env:"PORT" envDefault:"8080"`
		Env       string `env:"APP_ENV" envDefault:"development"`
		JWTSecret string `env:"JWT_SECRET"`

		DB     DBProperties     `envPrefix:"DB_"`
		S3     S3Properties     `envPrefix:"S3_"`
		Page   PageProperties   `envPrefix:"PAGE_"`
		Upload UploadProperties `envPrefix:"UPLOAD_"`
	}

	DBProperties struct {
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     string `env:"PORT" envDefault:"5432"`
		User     string `env:"USER" envDefault:"postgres"`
		Password string `env:"PASSWORD"`
		Name     string `env:"NAME" envDefault:"petzone"`
		SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	}

	S3Properties struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"petzone"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
	}

	PageProperties struct {
		DefaultLimit int `env:"DEFAULT_LIMIT" envDefault:"20"`
		MaxLimit     int `env:"MAX_LIMIT" envDefault:"100"`
	}

	UploadProperties struct {
		MaxBytes       int64    `env:"MAX_BYTES" envDefault:"10485760"`
		AllowedFormats []string `env:"ALLOWED_FORMATS" envSeparator:"," envDefault:"jpg,jpeg,png,gif"`
	}
)

// ReadProperties parses configuration from the environment.
func ReadProperties() (*Properties, error) {
	cfg := &Properties{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config error: %w", err)
	}
	return cfg, nil
}

// Production reports whether the app runs with production settings.
func (p *Properties) Production() bool {
	return p.Env == "production"
}
