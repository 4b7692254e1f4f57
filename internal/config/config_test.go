package config

import (
	"errors"
	"testing"
	"time"

	"github.com/sunnyzhifei/web-reader-ai/internal/types"
)

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Config{SeedURL: "https://example.com/doc", MaxDepth: 1, MaxPages: 10}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.OutputFormat != types.FormatMarkdown {
		t.Errorf("OutputFormat = %v, want markdown", cfg.OutputFormat)
	}
	if cfg.OutputDir == "" {
		t.Error("OutputDir not defaulted")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing seed", Config{MaxDepth: 1, MaxPages: 10}, ErrInvalidSeedURL},
		{"bad scheme", Config{SeedURL: "ftp://x.com/a", MaxDepth: 1, MaxPages: 10}, ErrInvalidSeedURL},
		{"no host", Config{SeedURL: "https://", MaxDepth: 1, MaxPages: 10}, ErrInvalidSeedURL},
		{"negative depth", Config{SeedURL: "https://x.com", MaxDepth: -1, MaxPages: 10}, ErrInvalidDepth},
		{"depth over limit", Config{SeedURL: "https://x.com", MaxDepth: MaxDepthLimit + 1, MaxPages: 10}, ErrInvalidDepth},
		{"zero pages", Config{SeedURL: "https://x.com", MaxDepth: 1, MaxPages: 0}, ErrInvalidPageLimit},
		{"pages over limit", Config{SeedURL: "https://x.com", MaxDepth: 1, MaxPages: MaxPagesLimit + 1}, ErrInvalidPageLimit},
		{"bad format", Config{SeedURL: "https://x.com", MaxDepth: 1, MaxPages: 10, OutputFormat: "pdf"}, ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.SeedURL = "https://example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
