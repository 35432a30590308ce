// Package config loads locrag settings from defaults, an optional YAML file
// and the environment.
package config

import "time"

// Registry types.
const (
	RegistryFile   = "file"
	RegistrySQLite = "sqlite"
)

// Default registry locations per type.
const (
	DefaultRegistryFile = "store_name.txt"
	DefaultSQLiteFile   = "locrag.db"
)

// Config is the complete locrag configuration.
type Config struct {
	Gemini    GeminiConfig    `yaml:"gemini"`
	Registry  RegistryConfig  `yaml:"registry"`
	Upload    UploadConfig    `yaml:"upload"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// GeminiConfig holds the service credentials and model names.
type GeminiConfig struct {
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"`
	Model      string `yaml:"model"`
	ImageModel string `yaml:"image_model"`

	// StoreDisplayName names newly created stores.
	StoreDisplayName string `yaml:"store_display_name"`

	// StoreName, when set, pins the store and takes precedence over the
	// registry.
	StoreName string `yaml:"store_name"`
}

// RegistryConfig selects where the current store identifier is kept.
type RegistryConfig struct {
	Type string `yaml:"type"` // file or sqlite
	Path string `yaml:"path"`
}

// Location returns the configured path, or the default for the registry type.
func (c RegistryConfig) Location() string {
	if c.Path != "" {
		return c.Path
	}
	if c.Type == RegistrySQLite {
		return DefaultSQLiteFile
	}
	return DefaultRegistryFile
}

// UploadConfig bounds document ingestion.
type UploadConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBytes     int64         `yaml:"max_bytes"`
}

// RetrievalConfig tunes File Search.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AnswerConfig tunes answer generation.
type AnswerConfig struct {
	Temperature float64 `yaml:"temperature"`

	// MaxContextTokens caps the answer prompt. Zero disables trimming.
	MaxContextTokens int `yaml:"max_context_tokens"`
}

// FetchConfig controls how web pages are downloaded for ingestion.
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RenderTimeout time.Duration `yaml:"render_timeout"`
	MaxPageBytes  int64         `yaml:"max_page_bytes"`

	// RequestsPerSecond limits requests to any one host.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Retries is the number of extra attempts after a transient failure.
	Retries int `yaml:"retries"`

	// AllowPrivateNetworks lets URL ingestion reach loopback and private
	// addresses. Leave it off when the web server listens beyond localhost.
	AllowPrivateNetworks bool `yaml:"allow_private_networks"`
}

// ServerConfig configures locrag-web.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	MetricsPath     string        `yaml:"metrics_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Defaults returns a Config with every optional value filled in.
func Defaults() Config {
	return Config{
		Gemini: GeminiConfig{
			Model:            "gemini-2.5-flash",
			ImageModel:       "imagen-3.0-generate-002",
			StoreDisplayName: "local-rag-store",
		},
		Registry: RegistryConfig{
			Type: RegistryFile,
		},
		Upload: UploadConfig{
			PollInterval: 2 * time.Second,
			Timeout:      5 * time.Minute,
			MaxBytes:     100 << 20,
		},
		Answer: AnswerConfig{
			Temperature: 0.4,
		},
		Fetch: FetchConfig{
			Timeout:           15 * time.Second,
			RenderTimeout:     30 * time.Second,
			MaxPageBytes:      10 << 20,
			RequestsPerSecond: 1,
			Retries:           3,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			SessionTTL:      time.Hour,
			MetricsPath:     "/metrics",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
