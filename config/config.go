// Package config loads process configuration from the environment. Every
// component receives its settings at construction; nothing reads the
// environment after startup.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		HTTP       HTTP
		Mongo      Mongo
		Auth       Auth
		Razorpay   Razorpay
		Cloudinary Cloudinary
		Postmark   Postmark
	}

	HTTP struct {
		Port           string        `env:"PORT" env-default:"8000"`
		AllowedOrigin  string        `env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
		RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"15s"`
	}

	Mongo struct {
		URI      string `env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
		Database string `env:"MONGO_DB" env-default:"propmarket"`
	}

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET" env-required:"true"`
		TokenTTL  time.Duration `env:"TOKEN_TTL" env-default:"24h"`
	}

	Razorpay struct {
		KeyID         string        `env:"RAZORPAY_KEY_ID" env-required:"true"`
		KeySecret     string        `env:"RAZORPAY_KEY_SECRET" env-required:"true"`
		WebhookSecret string        `env:"RAZORPAY_WEBHOOK_SECRET" env-required:"true"`
		Currency      string        `env:"CURRENCY" env-default:"INR"`
		Timeout       time.Duration `env:"RAZORPAY_TIMEOUT" env-default:"10s"`
	}

	Cloudinary struct {
		CloudName string `env:"CLOUDINARY_CLOUD_NAME" env-required:"true"`
		APIKey    string `env:"CLOUDINARY_API_KEY" env-required:"true"`
		APISecret string `env:"CLOUDINARY_API_SECRET" env-required:"true"`
		Folder    string `env:"CLOUDINARY_FOLDER" env-default:"properties"`
	}

	// Postmark is optional; with an empty token the service skips emails.
	Postmark struct {
		ServerToken string `env:"POSTMARK_API_TOKEN"`
		Sender      string `env:"EMAIL_SENDER"`
	}
)

func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}
