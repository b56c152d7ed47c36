// Package config handles loading and validating the semrouter configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the semrouter service. It is loaded
// once at startup and treated as read-only afterwards; the router and
// capability clients receive the values they need by constructor injection.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Backends    BackendsConfig    `mapstructure:"backends"`
	Routing     RoutingConfig     `mapstructure:"routing"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the inbound HTTP server settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// InterpreterConfig configures the multimodal interpretation model.
type InterpreterConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the interpretation call timeout as a duration.
func (g GeminiConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// BackendsConfig holds the endpoint configuration for each capability backend.
type BackendsConfig struct {
	FaceRecognitionTTS BackendConfig `mapstructure:"face_recognition_tts"`
	SignLanguage       BackendConfig `mapstructure:"sign_language"`
	SceneDescription   BackendConfig `mapstructure:"scene_description"`
}

// BackendConfig describes one downstream capability endpoint.
type BackendConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the backend call timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RoutingConfig holds the routing policy parameters.
type RoutingConfig struct {
	// ConfidenceThreshold is the minimum judgment confidence required
	// before a backend is invoked. Judgments below it are skipped.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`

	// FetchTimeoutSeconds bounds remote image URL downloads during
	// request normalization.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds"`
}

// FetchTimeout returns the image fetch timeout as a duration.
func (r RoutingConfig) FetchTimeout() time.Duration {
	return time.Duration(r.FetchTimeoutSeconds) * time.Second
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./semrouter.yaml, ./configs/semrouter.yaml,
// /etc/semrouter/semrouter.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8001)
	v.SetDefault("interpreter.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("interpreter.gemini.model", "gemini-2.0-flash-exp")
	v.SetDefault("interpreter.gemini.timeout_seconds", 30)
	v.SetDefault("backends.face_recognition_tts.endpoint", "http://localhost:8002/process")
	v.SetDefault("backends.face_recognition_tts.timeout_seconds", 60)
	v.SetDefault("backends.sign_language.endpoint", "http://localhost:8003")
	v.SetDefault("backends.sign_language.timeout_seconds", 30)
	v.SetDefault("backends.scene_description.endpoint", "http://localhost:8004/describe")
	v.SetDefault("backends.scene_description.timeout_seconds", 30)
	v.SetDefault("routing.confidence_threshold", 0.7)
	v.SetDefault("routing.fetch_timeout_seconds", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("semrouter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/semrouter")
	}

	// Environment variables: SEMROUTER_SERVER_PORT, SEMROUTER_ROUTING_CONFIDENCE_THRESHOLD, etc.
	v.SetEnvPrefix("SEMROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.Interpreter.Gemini.APIKey = resolveEnvRef(cfg.Interpreter.Gemini.APIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Routing.ConfidenceThreshold < 0 || c.Routing.ConfidenceThreshold > 1 {
		return fmt.Errorf("routing.confidence_threshold must be in [0, 1], got %v", c.Routing.ConfidenceThreshold)
	}
	if c.Interpreter.Gemini.TimeoutSeconds <= 0 {
		return fmt.Errorf("interpreter.gemini.timeout_seconds must be positive")
	}
	for name, b := range map[string]BackendConfig{
		"face_recognition_tts": c.Backends.FaceRecognitionTTS,
		"sign_language":        c.Backends.SignLanguage,
		"scene_description":    c.Backends.SceneDescription,
	} {
		if b.Endpoint == "" {
			return fmt.Errorf("backends.%s.endpoint must not be empty", name)
		}
		if b.TimeoutSeconds <= 0 {
			return fmt.Errorf("backends.%s.timeout_seconds must be positive", name)
		}
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		return os.Getenv(envKey)
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
