package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"pdf-slide-synth/internal/domain"

	"github.com/spf13/viper"
)

const defaultConfigName = "slidesynth"

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort         string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string

	MaxFileSize          int64
	MinFileSize          int64
	SniffSignatures      bool
	ValidatePDFStructure bool

	PDFDecoder  string
	PageTimeout time.Duration

	ModelProvider       string
	ModelName           string
	GeminiAPIKey        string
	VertexProjectID     string
	VertexLocation      string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	SynthesisTimeout    time.Duration
	SynthesisMaxRetries int
	SynthesisMaxChars   int

	ImageBaseURL     string
	ImageTimeout     time.Duration
	ImageConcurrency int

	RateLimitingEnabled bool
	RateLimitBackend    string

	StoreBackend       string
	SQLitePath         string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisPrefix        string
	SupabaseURL        string
	SupabaseKey        string
	FirestoreProjectID string
}

// NewConfig creates a new configuration instance with default values.
// A malformed config file is ignored; use Load to observe the error.
func NewConfig() domain.Config {
	cfg, _ := Load()
	return cfg
}

// Load resolves configuration from the environment, an optional
// slidesynth.yaml (or CONFIG_FILE) and built-in defaults, in that order.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	var fileErr error
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fileErr = err
		}
	}

	cfg := &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:         getStringOrDefault(v, "port", getStringOrDefault(v, "server_port", "8080")),
		LogLevel:           getStringOrDefault(v, "log_level", "info"),
		LogFormat:          getStringOrDefault(v, "log_format", "console"),
		CORSAllowedOrigins: getListOrDefault(v, "cors_allowed_origins", []string{"http://localhost:5173", "http://localhost:4173", "http://localhost:3000"}),

		MaxFileSize:          getInt64OrDefault(v, "max_file_size", 50*1024*1024), // 50MB default
		MinFileSize:          getInt64OrDefault(v, "min_file_size", 100),
		SniffSignatures:      getBoolOrDefault(v, "sniff_signatures", true),
		ValidatePDFStructure: getBoolOrDefault(v, "validate_pdf_structure", false),

		PDFDecoder:  strings.ToLower(getStringOrDefault(v, "pdf_decoder", "fitz")),
		PageTimeout: getSecondsOrDefault(v, "page_timeout_seconds", 90),

		ModelProvider:       strings.ToLower(getStringOrDefault(v, "model_provider", "none")),
		ModelName:           getStringOrDefault(v, "model_name", "gemini-2.5-flash"),
		GeminiAPIKey:        getStringOrDefault(v, "gemini_api_key", ""),
		VertexProjectID:     getStringOrDefault(v, "vertex_project_id", ""),
		VertexLocation:      getStringOrDefault(v, "vertex_location", "us-central1"),
		OpenAIAPIKey:        getStringOrDefault(v, "openai_api_key", ""),
		OpenAIBaseURL:       getStringOrDefault(v, "openai_base_url", ""),
		SynthesisTimeout:    getSecondsOrDefault(v, "synthesis_timeout_seconds", 120),
		SynthesisMaxRetries: int(getInt64OrDefault(v, "synthesis_max_retries", 2)),
		SynthesisMaxChars:   int(getInt64OrDefault(v, "synthesis_max_chars", 800000)),

		ImageBaseURL:     strings.TrimRight(getStringOrDefault(v, "image_base_url", "https://image.pollinations.ai"), "/"),
		ImageTimeout:     getSecondsOrDefault(v, "image_timeout_seconds", 30),
		ImageConcurrency: int(getInt64OrDefault(v, "image_concurrency", 4)),

		RateLimitingEnabled: getBoolOrDefault(v, "enable_rate_limiting", true),
		RateLimitBackend:    strings.ToLower(getStringOrDefault(v, "rate_limit_backend", "memory")),

		StoreBackend:       strings.ToLower(getStringOrDefault(v, "store_backend", "memory")),
		SQLitePath:         getStringOrDefault(v, "sqlite_path", "slidesynth.db"),
		RedisAddr:          getStringOrDefault(v, "redis_addr", "localhost:6379"),
		RedisPassword:      getStringOrDefault(v, "redis_password", ""),
		RedisDB:            int(getInt64OrDefault(v, "redis_db", 0)),
		RedisPrefix:        getStringOrDefault(v, "redis_prefix", "slidesynth:"),
		SupabaseURL:        getStringOrDefault(v, "supabase_url", ""),
		SupabaseKey:        getStringOrDefault(v, "supabase_key", ""),
		FirestoreProjectID: getStringOrDefault(v, "firestore_project_id", ""),
	}
	return cfg, fileErr
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string { return c.ServerPort }

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string { return c.LogLevel }

// GetLogFormat returns console or json
func (c *AppConfig) GetLogFormat() string { return c.LogFormat }

func (c *AppConfig) GetCORSAllowedOrigins() []string { return c.CORSAllowedOrigins }

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 { return c.MaxFileSize }

// GetMinFileSize returns the minimum accepted file size
func (c *AppConfig) GetMinFileSize() int64 { return c.MinFileSize }

func (c *AppConfig) GetSniffSignatures() bool { return c.SniffSignatures }

func (c *AppConfig) GetValidatePDFStructure() bool { return c.ValidatePDFStructure }

// GetPDFDecoder returns the PDF backend name (fitz or rsc)
func (c *AppConfig) GetPDFDecoder() string { return c.PDFDecoder }

func (c *AppConfig) GetPageTimeout() time.Duration { return c.PageTimeout }

// GetModelProvider returns gemini, vertex, openai or none
func (c *AppConfig) GetModelProvider() string { return c.ModelProvider }

func (c *AppConfig) GetModelName() string { return c.ModelName }

func (c *AppConfig) GetGeminiAPIKey() string { return c.GeminiAPIKey }

func (c *AppConfig) GetVertexProjectID() string { return c.VertexProjectID }

func (c *AppConfig) GetVertexLocation() string { return c.VertexLocation }

func (c *AppConfig) GetOpenAIAPIKey() string { return c.OpenAIAPIKey }

func (c *AppConfig) GetOpenAIBaseURL() string { return c.OpenAIBaseURL }

func (c *AppConfig) GetSynthesisTimeout() time.Duration { return c.SynthesisTimeout }

func (c *AppConfig) GetSynthesisMaxRetries() int { return c.SynthesisMaxRetries }

func (c *AppConfig) GetSynthesisMaxChars() int { return c.SynthesisMaxChars }

// GetImageBaseURL returns the image generation endpoint without a trailing slash
func (c *AppConfig) GetImageBaseURL() string { return c.ImageBaseURL }

func (c *AppConfig) GetImageTimeout() time.Duration { return c.ImageTimeout }

func (c *AppConfig) GetImageConcurrency() int { return c.ImageConcurrency }

func (c *AppConfig) GetRateLimitingEnabled() bool { return c.RateLimitingEnabled }

func (c *AppConfig) GetRateLimitBackend() string { return c.RateLimitBackend }

// GetStoreBackend returns the job store backend name
func (c *AppConfig) GetStoreBackend() string { return c.StoreBackend }

func (c *AppConfig) GetSQLitePath() string { return c.SQLitePath }

func (c *AppConfig) GetRedisAddr() string { return c.RedisAddr }

func (c *AppConfig) GetRedisPassword() string { return c.RedisPassword }

func (c *AppConfig) GetRedisDB() int { return c.RedisDB }

func (c *AppConfig) GetRedisPrefix() string { return c.RedisPrefix }

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string { return c.SupabaseURL }

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string { return c.SupabaseKey }

func (c *AppConfig) GetFirestoreProjectID() string { return c.FirestoreProjectID }

// Helper functions for value resolution
func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt64OrDefault(v *viper.Viper, key string, defaultValue int64) int64 {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(v *viper.Viper, key string, defaultValue bool) bool {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getSecondsOrDefault(v *viper.Viper, key string, defaultSeconds int64) time.Duration {
	seconds := getInt64OrDefault(v, key, defaultSeconds)
	if seconds <= 0 {
		seconds = defaultSeconds
	}
	return time.Duration(seconds) * time.Second
}

func getListOrDefault(v *viper.Viper, key string, defaultValue []string) []string {
	raw := v.GetStringSlice(key)
	if s := v.GetString(key); s != "" {
		raw = strings.Split(s, ",")
	}
	var out []string
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
