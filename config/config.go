package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Environment EnvironmentConfig

	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Capture & recall specifics
	Qdrant         QdrantConfig
	Voyage         VoyageConfig
	GoogleCalendar GoogleCalendarConfig
	Transcribe     TranscribeConfig
	Mirror         MirrorConfig
	Reachability   ReachabilityConfig
	Conversation   ConversationConfig

	// LLM provider abstraction
	LLM LLMConfig

	// Retry/timeout envelope applied to remote calls
	Retry RetryConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port            int
	Mode            string
	RateLimitPerMin int
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type QdrantConfig struct {
	URL            string
	CollectionName string
	VectorSize     int
}

type VoyageConfig struct {
	APIKey string
	Model  string
}

type GoogleCalendarConfig struct {
	CredentialsPath string
	CalendarID      string
}

type TranscribeConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type MirrorConfig struct {
	Path string
}

type ReachabilityConfig struct {
	ProbeURL      string
	ProbeInterval time.Duration
}

type ConversationConfig struct {
	SessionID     string
	Timezone      string
	SuccessLinger time.Duration
}

// LLMConfig holds configuration for the LLM provider abstraction layer.
type LLMConfig struct {
	Providers       []ProviderConfig
	FallbackEnabled bool
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	Name     string
	Enabled  bool
	Priority int
	APIKey   string
	BaseURL  string
	Model    string
}

type RetryConfig struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

// Load loads configuration using Viper.
// Config file name: config.yaml — searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.HTTPServer.RateLimitPerMin = viper.GetInt("http_server.rate_limit_per_min")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	cfg.Qdrant.URL = viper.GetString("qdrant.url")
	cfg.Qdrant.CollectionName = viper.GetString("qdrant.collection_name")
	cfg.Qdrant.VectorSize = viper.GetInt("qdrant.vector_size")
	if qdrantURL := viper.GetString("qdrant_url"); qdrantURL != "" {
		cfg.Qdrant.URL = qdrantURL
	}

	cfg.Voyage.APIKey = viper.GetString("voyage.api_key")
	cfg.Voyage.Model = viper.GetString("voyage.model")
	if voyageKey := viper.GetString("voyage_api_key"); voyageKey != "" {
		cfg.Voyage.APIKey = voyageKey
	}

	cfg.GoogleCalendar.CredentialsPath = viper.GetString("google_calendar.credentials_path")
	cfg.GoogleCalendar.CalendarID = viper.GetString("google_calendar.calendar_id")
	if googleCreds := viper.GetString("google_calendar_credentials"); googleCreds != "" {
		cfg.GoogleCalendar.CredentialsPath = googleCreds
	}

	cfg.Transcribe.APIKey = viper.GetString("transcribe.api_key")
	cfg.Transcribe.BaseURL = viper.GetString("transcribe.base_url")
	cfg.Transcribe.Model = viper.GetString("transcribe.model")
	if transcribeKey := viper.GetString("transcribe_api_key"); transcribeKey != "" {
		cfg.Transcribe.APIKey = transcribeKey
	}

	cfg.Mirror.Path = viper.GetString("mirror.path")

	cfg.Reachability.ProbeURL = viper.GetString("reachability.probe_url")
	cfg.Reachability.ProbeInterval = viper.GetDuration("reachability.probe_interval")

	cfg.Conversation.SessionID = viper.GetString("conversation.session_id")
	cfg.Conversation.Timezone = viper.GetString("conversation.timezone")
	cfg.Conversation.SuccessLinger = viper.GetDuration("conversation.success_linger")

	cfg.Retry.Attempts = viper.GetInt("retry.attempts")
	cfg.Retry.Delay = viper.GetDuration("retry.delay")
	cfg.Retry.Timeout = viper.GetDuration("retry.timeout")

	cfg.LLM.FallbackEnabled = viper.GetBool("llm.fallback_enabled")
	if viper.IsSet("llm.providers") {
		providersRaw := viper.Get("llm.providers")
		if providersList, ok := providersRaw.([]interface{}); ok {
			for _, p := range providersList {
				if providerMap, ok := p.(map[string]interface{}); ok {
					provider := ProviderConfig{
						Name:     getStringFromMap(providerMap, "name"),
						Enabled:  getBoolFromMap(providerMap, "enabled"),
						Priority: getIntFromMap(providerMap, "priority"),
						APIKey:   expandEnvVar(getStringFromMap(providerMap, "api_key")),
						BaseURL:  getStringFromMap(providerMap, "base_url"),
						Model:    getStringFromMap(providerMap, "model"),
					}
					cfg.LLM.Providers = append(cfg.LLM.Providers, provider)
				}
			}
		}
	}

	if len(cfg.LLM.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured - please add llm.providers section to config.yaml")
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("http_server.rate_limit_per_min", 60)
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)
	viper.SetDefault("qdrant.collection_name", "memories")
	viper.SetDefault("qdrant.vector_size", 1024)
	viper.SetDefault("mirror.path", "./data/mirror.db")
	viper.SetDefault("reachability.probe_interval", "15s")
	viper.SetDefault("conversation.session_id", "default")
	viper.SetDefault("conversation.timezone", "UTC")
	viper.SetDefault("conversation.success_linger", "2s")
	viper.SetDefault("retry.attempts", 3)
	viper.SetDefault("retry.delay", "200ms")
	viper.SetDefault("retry.timeout", "30s")
	viper.SetDefault("llm.fallback_enabled", true)
}

// expandEnvVar expands environment variables in the format ${VAR_NAME}
func expandEnvVar(value string) string {
	if value == "" {
		return value
	}

	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := value[2 : len(value)-1]
		if envValue := viper.GetString(envVar); envValue != "" {
			return envValue
		}
		if envValue := viper.GetString(strings.ToLower(envVar)); envValue != "" {
			return envValue
		}
		if envValue := os.Getenv(envVar); envValue != "" {
			return envValue
		}
	}

	return value
}

func getStringFromMap(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func getIntFromMap(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
