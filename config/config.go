package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Minio      MinioConfig      `yaml:"minio"`
	Store      StoreConfig      `yaml:"store"`
	Auth       AuthConfig       `yaml:"auth"`
	Users      []User           `yaml:"users"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type StoreConfig struct {
	MaxDocuments int `yaml:"max_documents"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// ProviderConfig holds credentials and endpoint settings for one AI provider
type ProviderConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature"`
	RateLimitRPM   int     `yaml:"rate_limit_rpm"`
	RateLimitRPD   int     `yaml:"rate_limit_rpd"`
}

type ProvidersConfig struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	OpenAI    ProviderConfig `yaml:"openai"`
}

type ExtractionConfig struct {
	TimeoutSeconds     int      `yaml:"timeout_seconds"`
	ReviewConfidence   float64  `yaml:"review_confidence"`
	MaxBulkFiles       int      `yaml:"max_bulk_files"`
	AllowedExtensions  []string `yaml:"allowed_extensions"`
	MaxUploadSizeBytes int64    `yaml:"max_upload_size_bytes"`
}

// placeholderMarkers flag credential values that were never filled in
var placeholderMarkers = []string{"your-", "placeholder", "changeme", "example", "test-"}

// IsPlaceholder reports whether a credential value is empty or a template
// value that was never replaced with a real key
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

// Timeout returns the provider HTTP timeout as a duration
func (p *ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Timeout returns the per-extraction timeout as a duration
func (e *ExtractionConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	GlobalConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}
	if cfg.Store.MaxDocuments < 0 {
		cfg.Store.MaxDocuments = 0
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}

	if cfg.Providers.Anthropic.BaseURL == "" {
		cfg.Providers.Anthropic.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Providers.Anthropic.Model == "" {
		cfg.Providers.Anthropic.Model = "claude-3-5-sonnet-latest"
	}
	if cfg.Providers.Anthropic.TimeoutSeconds == 0 {
		cfg.Providers.Anthropic.TimeoutSeconds = 60
	}
	if cfg.Providers.Anthropic.RateLimitRPM == 0 {
		cfg.Providers.Anthropic.RateLimitRPM = 50
	}
	if cfg.Providers.Anthropic.RateLimitRPD == 0 {
		cfg.Providers.Anthropic.RateLimitRPD = 1000
	}
	if cfg.Providers.OpenAI.BaseURL == "" {
		cfg.Providers.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Providers.OpenAI.Model == "" {
		cfg.Providers.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.Providers.OpenAI.TimeoutSeconds == 0 {
		cfg.Providers.OpenAI.TimeoutSeconds = 60
	}
	if cfg.Providers.OpenAI.RateLimitRPM == 0 {
		cfg.Providers.OpenAI.RateLimitRPM = 60
	}
	if cfg.Providers.OpenAI.RateLimitRPD == 0 {
		cfg.Providers.OpenAI.RateLimitRPD = 2000
	}

	if cfg.Extraction.TimeoutSeconds == 0 {
		cfg.Extraction.TimeoutSeconds = 90
	}
	if cfg.Extraction.ReviewConfidence == 0 {
		cfg.Extraction.ReviewConfidence = 0.7
	}
	if cfg.Extraction.MaxBulkFiles == 0 {
		cfg.Extraction.MaxBulkFiles = 50
	}
	if len(cfg.Extraction.AllowedExtensions) == 0 {
		cfg.Extraction.AllowedExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".gif", ".webp"}
	}
	if cfg.Extraction.MaxUploadSizeBytes == 0 {
		cfg.Extraction.MaxUploadSizeBytes = 50 * 1024 * 1024 // 50MB
	}
}

// applyEnvOverrides lets provider keys come from the environment so the
// config file never has to hold real credentials
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Providers.Anthropic.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Providers.OpenAI.APIKey = v
	}
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
