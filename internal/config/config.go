package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Output    OutputConfig    `mapstructure:"output"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Fonts     FontsConfig     `mapstructure:"fonts"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	GinMode        string   `mapstructure:"gin_mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects where uploaded images are kept.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	UploadDir string `mapstructure:"upload_dir"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
}

// OutputConfig controls where generated covers are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// FetchConfig bounds remote backdrop and poster downloads.
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxBytes  int64         `mapstructure:"max_bytes"`
	MaxPixels int64         `mapstructure:"max_pixels"`
}

// FontsConfig lists candidate font files, tried in order.
type FontsConfig struct {
	Title    []string `mapstructure:"title"`
	Subtitle []string `mapstructure:"subtitle"`
}

// LogConfig configures the zap logger and its rolling file sink.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// RateLimitConfig limits cover generation per client IP. Zero disables it.
type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

const (
	DriverFilesystem = "filesystem"
	DriverMinIO      = "minio"
)

// Load reads configuration from an optional config file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Fonts.Title = splitList(cfg.Fonts.Title)
	cfg.Fonts.Subtitle = splitList(cfg.Fonts.Subtitle)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("storage.driver", DriverFilesystem)
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "uploads")
	v.SetDefault("output.dir", "generated")
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.max_bytes", 20<<20)
	v.SetDefault("fetch.max_pixels", 50_000_000)
	v.SetDefault("fonts.title", []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		"/usr/share/fonts/truetype/freefont/FreeSansBold.ttf",
	})
	v.SetDefault("fonts.subtitle", []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
	})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("ratelimit.per_minute", 60)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"server.port":             "PORT",
		"server.gin_mode":         "GIN_MODE",
		"server.allowed_origins":  "CORS_ALLOWED_ORIGINS",
		"storage.driver":          "STORAGE_DRIVER",
		"storage.upload_dir":      "UPLOAD_FOLDER",
		"minio.endpoint":          "MINIO_ENDPOINT",
		"minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":           "MINIO_USE_SSL",
		"minio.bucket":            "MINIO_BUCKET",
		"minio.region":            "MINIO_REGION",
		"output.dir":              "OUTPUT_DIR",
		"fetch.timeout":           "FETCH_TIMEOUT",
		"fetch.max_bytes":         "FETCH_MAX_BYTES",
		"fetch.max_pixels":        "FETCH_MAX_PIXELS",
		"fonts.title":             "TITLE_FONTS",
		"fonts.subtitle":          "SUBTITLE_FONTS",
		"log.level":               "LOG_LEVEL",
		"log.path":                "LOG_PATH",
		"ratelimit.per_minute":    "RATE_LIMIT_PER_MINUTE",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.Server.Port <= 0 {
		return errors.New("server port must be positive")
	}
	if cfg.Output.Dir == "" {
		return errors.New("output dir is required")
	}
	if cfg.Fetch.Timeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if cfg.Fetch.MaxBytes <= 0 {
		return errors.New("fetch max bytes must be positive")
	}
	if cfg.Fetch.MaxPixels <= 0 {
		return errors.New("fetch max pixels must be positive")
	}
	if cfg.RateLimit.PerMinute < 0 {
		return errors.New("rate limit must not be negative")
	}
	switch cfg.Storage.Driver {
	case DriverFilesystem:
		if cfg.Storage.UploadDir == "" {
			return errors.New("upload dir is required")
		}
	case DriverMinIO:
		if cfg.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	return nil
}
