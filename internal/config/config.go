package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Stream StreamConfig
	Store  StoreConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI:     ai,
		Stream: loadStreamConfig(),
		Store:  loadStoreConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":3000" or "127.0.0.1:3000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the completion model.
type AIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether completion credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the completion model")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &openai.ChatModelConfig{
		APIKey:      c.APIKey,
		Model:       c.Model,
		BaseURL:     c.BaseURL,
		Temperature: temperature,
		MaxTokens:   c.MaxTokens,
	}

	return openai.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", ""),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// StreamConfig describes the hosted realtime chat provider.
type StreamConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// Enabled reports whether hosted provider credentials were provided. Without
// them the service falls back to the in-process realtime hub.
func (c StreamConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != ""
}

func loadStreamConfig() StreamConfig {
	return StreamConfig{
		APIKey:    strings.TrimSpace(os.Getenv("STREAM_API_KEY")),
		APISecret: strings.TrimSpace(os.Getenv("STREAM_API_SECRET")),
		BaseURL:   getEnvOrDefault("STREAM_BASE_URL", ""),
	}
}

// StoreConfig describes the persistence layer.
type StoreConfig struct {
	Path string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Path: getEnvOrDefault("DATABASE_PATH", "data/chat.db"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
