package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("address = %q", cfg.Server.Address())
	}
	if cfg.Export.Format != "" || cfg.Export.Quality != 0.92 {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if cfg.Export.VideoDuration != 2.5 || cfg.Export.VideoFPS != 30 {
		t.Errorf("video defaults = %+v", cfg.Export)
	}
	if cfg.Video.FFmpegPath != "ffmpeg" {
		t.Errorf("ffmpeg path = %q", cfg.Video.FFmpegPath)
	}
	if cfg.Upload.MaxPixels != 50_000_000 {
		t.Errorf("max pixels = %d", cfg.Upload.MaxPixels)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Session.TTL)
	}
	if cfg.Brand.Phone == "" || cfg.Brand.Address == "" {
		t.Errorf("brand defaults missing: %+v", cfg.Brand)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ficha.yaml")
	yaml := `
server:
  port: 9000
brand:
  phone: "111 222"
export:
  format: jpg
  quality: 0.8
auth:
  api_keys: ["k1", "k2"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FICHA_SERVER_PORT", "9100")
	t.Setenv("FICHA_SESSION_TTL", "15m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
	if cfg.Brand.Phone != "111 222" {
		t.Errorf("phone = %q", cfg.Brand.Phone)
	}
	if cfg.Export.Format != "jpg" || cfg.Export.Quality != 0.8 {
		t.Errorf("export = %+v", cfg.Export)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[1] != "k2" {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
	if cfg.Session.TTL != 15*time.Minute {
		t.Errorf("ttl = %v", cfg.Session.TTL)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}

	const key = "FICHA_TEST_ENVFILE_PHONE"
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(key+"=555 1234\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(key) })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if got := os.Getenv(key); got != "555 1234" {
		t.Errorf("%s = %q", key, got)
	}
}
