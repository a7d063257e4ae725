// Package config handles application configuration using Viper.
// Sources are merged in priority order: environment (optionally seeded from a
// .env file), then the YAML file, then defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override: FICHA_SERVER_PORT=9090.
const EnvPrefix = "FICHA"

// Config is the root configuration struct.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Brand     BrandConfig     `mapstructure:"brand"`
	Fonts     FontsConfig     `mapstructure:"fonts"`
	Export    ExportConfig    `mapstructure:"export"`
	Video     VideoConfig     `mapstructure:"video"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Session   SessionConfig   `mapstructure:"session"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// BrandConfig is the dealership identity printed on every design.
type BrandConfig struct {
	Address         string `mapstructure:"address"`
	Phone           string `mapstructure:"phone"`
	LogoPath        string `mapstructure:"logo_path"`
	ContactIconPath string `mapstructure:"contact_icon_path"`
}

// FontsConfig points at TTF/OTF files. Empty paths use the embedded Go fonts.
type FontsConfig struct {
	Regular string `mapstructure:"regular"`
	Medium  string `mapstructure:"medium"`
	Bold    string `mapstructure:"bold"`
}

// ExportConfig holds the defaults new sessions start with.
type ExportConfig struct {
	Format        string  `mapstructure:"format"`
	Quality       float64 `mapstructure:"quality"`
	VideoDuration float64 `mapstructure:"video_duration"`
	VideoFPS      float64 `mapstructure:"video_fps"`
}

type VideoConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
	// MaxSide bounds decoded photos; 0 keeps full resolution.
	MaxSide int `mapstructure:"max_side"`
	// MaxPixels rejects photos whose header declares more pixels.
	MaxPixels int64 `mapstructure:"max_pixels"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LoadEnvFile seeds the process environment from a .env file. A missing file
// is not an error: in production variables are set directly.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/ficha-service.db")
	v.SetDefault("storage.output_dir", "./storage/exports")
	v.SetDefault("auth.api_keys", []string{})
	v.SetDefault("auth.admin_keys", []string{})
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("brand.address", "Colectora Macaya esq. Mejico")
	v.SetDefault("brand.phone", "2494 630646")
	v.SetDefault("brand.logo_path", "./assets/logo.png")
	v.SetDefault("brand.contact_icon_path", "./assets/contact.svg")
	v.SetDefault("fonts.regular", "")
	v.SetDefault("fonts.medium", "")
	v.SetDefault("fonts.bold", "")
	v.SetDefault("export.format", "") // empty: each template's own default
	v.SetDefault("export.quality", 0.92)
	v.SetDefault("export.video_duration", 2.5)
	v.SetDefault("export.video_fps", 30)
	v.SetDefault("video.ffmpeg_path", "ffmpeg")
	v.SetDefault("upload.max_bytes", 64<<20)
	v.SetDefault("upload.max_side", 4096)
	v.SetDefault("upload.max_pixels", 50_000_000)
	v.SetDefault("session.ttl", 2*time.Hour)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" unless a path was given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// FICHA_ prefix + nested keys: FICHA_BRAND_PHONE → brand.phone
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
