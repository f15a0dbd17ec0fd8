// Package config reads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Defaults.
const (
	DefaultAddr              = "127.0.0.1:8000"
	DefaultMongoDatabase     = "musicapppr"
	DefaultClassifierTimeout = 30 * time.Second
	DefaultRecommendLimit    = 10
	DefaultMaxUploadBytes    = 10 << 20
	DefaultMaxImagePixels    = 40_000_000
)

var (
	// ErrMissingDatabaseURL is returned when the postgres driver is selected without DATABASE_URL.
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")

	// ErrMissingMongoURI is returned when the mongo driver is selected without MONGO_URI.
	ErrMissingMongoURI = errors.New("missing MONGO_URI environment variable")

	// ErrUnknownDriver is returned for an unsupported STORAGE_DRIVER.
	ErrUnknownDriver = errors.New("unknown STORAGE_DRIVER")

	// ErrInvalidValue is returned when a numeric variable is not a positive integer.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config holds service configuration.
type Config struct {
	Addr          string
	StorageDriver string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	TextClassifierURL string
	FaceClassifierURL string
	ClassifierTimeout time.Duration

	RecommendLimit int
	MaxUploadBytes int64
	MaxImagePixels int
	LogMode        string

	SpotifyID     string
	SpotifySecret string
	LastFMAPIKey  string
}

// Load reads configuration from environment variables, applying defaults
// for unset optional values.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:              env("MOODTUNES_ADDR", DefaultAddr),
		StorageDriver:     strings.ToLower(env("STORAGE_DRIVER", DriverPostgres)),
		DatabaseURL:       env("DATABASE_URL", ""),
		MongoURI:          env("MONGO_URI", ""),
		MongoDatabase:     env("MONGO_DATABASE", DefaultMongoDatabase),
		TextClassifierURL: env("TEXT_CLASSIFIER_URL", ""),
		FaceClassifierURL: env("FACE_CLASSIFIER_URL", ""),
		LogMode:           env("LOG_MODE", "dev"),
		SpotifyID:         env("SPOTIFY_ID", ""),
		SpotifySecret:     env("SPOTIFY_SECRET", ""),
		LastFMAPIKey:      env("LASTFM_API_KEY", ""),
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, ErrMissingDatabaseURL
		}
	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, ErrMissingMongoURI
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StorageDriver)
	}

	timeout, err := positiveInt("CLASSIFIER_TIMEOUT_SECONDS", int(DefaultClassifierTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.ClassifierTimeout = time.Duration(timeout) * time.Second

	if cfg.RecommendLimit, err = positiveInt("RECOMMEND_LIMIT", DefaultRecommendLimit); err != nil {
		return nil, err
	}

	maxUpload, err := positiveInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.MaxImagePixels, err = positiveInt("MAX_IMAGE_PIXELS", DefaultMaxImagePixels); err != nil {
		return nil, err
	}

	return cfg, nil
}

func env(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func positiveInt(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, v)
	}
	return i, nil
}
