package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Expected default addr, got %q", cfg.Addr)
	}
	if cfg.Storage.Kind != StorageMemory {
		t.Errorf("Expected memory storage default, got %q", cfg.Storage.Kind)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `{"addr": ":9000", "storage": {"kind": "s3", "bucket": "b"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Expected :9000, got %q", cfg.Addr)
	}
	if cfg.Storage.Kind != StorageS3 || cfg.Storage.Bucket != "b" {
		t.Errorf("Unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"s3 without bucket", func(c *Config) { c.Storage = StorageConfig{Kind: StorageS3} }, true},
		{"s3 with bucket", func(c *Config) { c.Storage = StorageConfig{Kind: StorageS3, Bucket: "b"} }, false},
		{"http without base url", func(c *Config) { c.Storage = StorageConfig{Kind: StorageHTTP} }, true},
		{"unknown kind", func(c *Config) { c.Storage.Kind = "postgres" }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
