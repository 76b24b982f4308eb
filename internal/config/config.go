// Package config loads runtime settings from CHORESTORE_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dukerupert/chorestore/internal/photo"
)

const Prefix = "CHORESTORE"

// devSecret signs tokens when no secret is configured outside production.
const devSecret = "chorestore-development-secret-do-not-use"

type Config struct {
	Env       string `default:"development"`
	Port      string `default:"8080"`
	DBPath    string `envconfig:"DB_PATH" default:"chorestore.db"`
	LogLevel  string `split_words:"true" default:"info"`
	LogFormat string `split_words:"true" default:"text"`

	JWTSecret   string   `envconfig:"JWT_SECRET"`
	TimeZone    string   `split_words:"true" default:"Local"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT"`

	PostmarkToken string `split_words:"true"`
	PostmarkFrom  string `split_words:"true" default:"noreply@chorestore.app"`
	BaseURL       string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	PhotoBackend  string `split_words:"true" default:"none"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL   string `envconfig:"S3_PUBLIC_URL"`
	CloudinaryURL string `envconfig:"CLOUDINARY_URL"`
}

// Load reads envFile (when it exists) into the environment without
// overriding variables already set, then processes CHORESTORE_* vars.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks settings that cannot be defaulted and fills the
// development token secret.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.Production() {
			return errors.New("CHORESTORE_JWT_SECRET is required in production")
		}
		c.JWTSecret = devSecret
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.PhotoBackend) {
	case photo.BackendNone, photo.BackendS3, photo.BackendCloudinary:
	default:
		return fmt.Errorf("CHORESTORE_PHOTO_BACKEND must be none, s3 or cloudinary, got %q", c.PhotoBackend)
	}
	return nil
}

// Location resolves the time zone that defines "today" for chore generation.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("CHORESTORE_TIME_ZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) Photo() photo.Config {
	return photo.Config{
		Backend: c.PhotoBackend,
		S3: photo.S3Config{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			PublicURL: c.S3PublicURL,
		},
		CloudinaryURL: c.CloudinaryURL,
	}
}
