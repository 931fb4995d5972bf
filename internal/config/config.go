// Package config loads service configuration from a file, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RESUME_SCREENER_SERVER_PORT.
const EnvPrefix = "RESUME_SCREENER"

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "resume-screener.yaml"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Inference InferenceConfig `mapstructure:"inference"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"min=1"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes" validate:"min=1"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// ArtifactsConfig locates the model files and where to download them from.
type ArtifactsConfig struct {
	Dir             string        `mapstructure:"dir" validate:"required"`
	VectorizerFile  string        `mapstructure:"vectorizer_file" validate:"required"`
	ClassifierFile  string        `mapstructure:"classifier_file" validate:"required"`
	EncoderFile     string        `mapstructure:"encoder_file" validate:"required"`
	VectorizerURL   string        `mapstructure:"vectorizer_url"`
	ClassifierURL   string        `mapstructure:"classifier_url"`
	EncoderURL      string        `mapstructure:"encoder_url"`
	Download        bool          `mapstructure:"download"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout" validate:"min=0"`
	S3              S3Config      `mapstructure:"s3"`
}

// S3Config configures s3:// artifact sources.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// CatalogConfig points at the suggestion catalog. Empty uses the built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// InferenceConfig controls model loading.
type InferenceConfig struct {
	EagerLoad     bool          `mapstructure:"eager_load"`
	RetryCooldown time.Duration `mapstructure:"retry_cooldown" validate:"min=0"`
}

// RateLimitConfig limits prediction requests per client IP.
type RateLimitConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute" validate:"min=1"`
	Burst             int      `mapstructure:"burst" validate:"min=1"`
	Whitelist         []string `mapstructure:"whitelist" validate:"dive,ip"`
	Blacklist         []string `mapstructure:"blacklist" validate:"dive,ip"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.max_upload_bytes", 2<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("artifacts.dir", "model")
	v.SetDefault("artifacts.vectorizer_file", "tfidf.json")
	v.SetDefault("artifacts.classifier_file", "clf.json")
	v.SetDefault("artifacts.encoder_file", "encoder.json")
	v.SetDefault("artifacts.vectorizer_url", "")
	v.SetDefault("artifacts.classifier_url", "")
	v.SetDefault("artifacts.encoder_url", "")
	v.SetDefault("artifacts.download", true)
	v.SetDefault("artifacts.download_timeout", 2*time.Minute)
	v.SetDefault("artifacts.s3.region", "")
	v.SetDefault("artifacts.s3.endpoint", "")
	v.SetDefault("artifacts.s3.access_key_id", "")
	v.SetDefault("artifacts.s3.secret_access_key", "")
	v.SetDefault("artifacts.s3.use_path_style", false)

	v.SetDefault("catalog.path", "")

	v.SetDefault("inference.eager_load", true)
	v.SetDefault("inference.retry_cooldown", time.Duration(0))

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// New returns a viper instance with defaults and environment binding applied.
// Every key has a default, so AutomaticEnv can see all of them during Unmarshal.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (or DefaultFile when path is empty and it exists), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith is Load on a caller-provided viper instance, so flags bound to v take effect.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the consistency of artifact sources.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, src := range c.Artifacts.Sources() {
		if strings.HasPrefix(src, "s3://") && c.Artifacts.S3.Region == "" && c.Artifacts.S3.Endpoint == "" {
			return fmt.Errorf("config error: %s source %s needs artifacts.s3.region or artifacts.s3.endpoint", name, src)
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Paths returns the full paths of the three artifact files.
func (a ArtifactsConfig) Paths() (vectorizer, classifier, encoder string) {
	return filepath.Join(a.Dir, a.VectorizerFile),
		filepath.Join(a.Dir, a.ClassifierFile),
		filepath.Join(a.Dir, a.EncoderFile)
}

// Sources maps artifact names to their configured download locations, omitting empty ones.
func (a ArtifactsConfig) Sources() map[string]string {
	sources := make(map[string]string, 3)
	for name, src := range map[string]string{
		"vectorizer": a.VectorizerURL,
		"classifier": a.ClassifierURL,
		"encoder":    a.EncoderURL,
	} {
		if src != "" {
			sources[name] = src
		}
	}
	return sources
}
