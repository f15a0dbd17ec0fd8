package config

import (
	"errors"
	"testing"
	"time"
)

var allVars = []string{
	"MOODTUNES_ADDR", "STORAGE_DRIVER", "DATABASE_URL", "MONGO_URI", "MONGO_DATABASE",
	"TEXT_CLASSIFIER_URL", "FACE_CLASSIFIER_URL", "CLASSIFIER_TIMEOUT_SECONDS",
	"RECOMMEND_LIMIT", "MAX_UPLOAD_BYTES", "MAX_IMAGE_PIXELS", "LOG_MODE", "SPOTIFY_ID", "SPOTIFY_SECRET", "LASTFM_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allVars {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/moodtunes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.StorageDriver != DriverPostgres {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, DriverPostgres)
	}
	if cfg.MongoDatabase != DefaultMongoDatabase {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.ClassifierTimeout != 30*time.Second {
		t.Errorf("ClassifierTimeout = %v", cfg.ClassifierTimeout)
	}
	if cfg.RecommendLimit != 10 {
		t.Errorf("RecommendLimit = %d", cfg.RecommendLimit)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.MaxImagePixels != DefaultMaxImagePixels {
		t.Errorf("MaxImagePixels = %d", cfg.MaxImagePixels)
	}
	if cfg.TextClassifierURL != "" || cfg.FaceClassifierURL != "" {
		t.Error("classifier URLs should default to empty")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MOODTUNES_ADDR", ":9000")
	t.Setenv("STORAGE_DRIVER", "Mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DATABASE", "tunes")
	t.Setenv("TEXT_CLASSIFIER_URL", "http://text:5000")
	t.Setenv("CLASSIFIER_TIMEOUT_SECONDS", "5")
	t.Setenv("RECOMMEND_LIMIT", " 25 ")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("MAX_IMAGE_PIXELS", "4096")
	t.Setenv("LOG_MODE", "prod")
	t.Setenv("LASTFM_API_KEY", " abc123 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr != ":9000" || cfg.StorageDriver != DriverMongo || cfg.MongoDatabase != "tunes" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.TextClassifierURL != "http://text:5000" {
		t.Errorf("TextClassifierURL = %q", cfg.TextClassifierURL)
	}
	if cfg.ClassifierTimeout != 5*time.Second || cfg.RecommendLimit != 25 || cfg.MaxUploadBytes != 1024 {
		t.Errorf("numeric overrides not applied: %+v", cfg)
	}
	if cfg.LogMode != "prod" {
		t.Errorf("LogMode = %q", cfg.LogMode)
	}
	if cfg.MaxImagePixels != 4096 {
		t.Errorf("MaxImagePixels = %d", cfg.MaxImagePixels)
	}
	if cfg.LastFMAPIKey != "abc123" {
		t.Errorf("LastFMAPIKey = %q", cfg.LastFMAPIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "postgres without url",
			env:     map[string]string{},
			wantErr: ErrMissingDatabaseURL,
		},
		{
			name:    "mongo without uri",
			env:     map[string]string{"STORAGE_DRIVER": "mongo"},
			wantErr: ErrMissingMongoURI,
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"STORAGE_DRIVER": "sqlite"},
			wantErr: ErrUnknownDriver,
		},
		{
			name:    "non-numeric limit",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "RECOMMEND_LIMIT": "ten"},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "zero timeout",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "CLASSIFIER_TIMEOUT_SECONDS": "0"},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "zero image pixels",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "MAX_IMAGE_PIXELS": "0"},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative upload size",
			env:     map[string]string{"DATABASE_URL": "postgres://x", "MAX_UPLOAD_BYTES": "-1"},
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if cfg != nil {
				t.Error("Load() returned non-nil config with error")
			}
		})
	}
}
