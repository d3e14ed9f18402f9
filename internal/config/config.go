package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration, loaded from the environment with an
// optional .env file. Every knob has a default so the server starts with no
// configuration at all (pointing at a local OpenAI-compatible endpoint).
type Config struct {
	AppPort      int    `mapstructure:"APP_PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`

	ProviderBaseURL string `mapstructure:"PROVIDER_BASE_URL"`
	ProviderAPIKey  string `mapstructure:"PROVIDER_API_KEY"`
	MainModel       string `mapstructure:"MAIN_MODEL"`
	SupportModel    string `mapstructure:"SUPPORT_MODEL"`
	SystemPrompt    string `mapstructure:"SYSTEM_PROMPT"`

	MaxRounds       int           `mapstructure:"MAX_ROUNDS"`
	StreamTimeout   time.Duration `mapstructure:"STREAM_TIMEOUT"`
	StreamRetries   int           `mapstructure:"STREAM_RETRIES"`
	ToolTimeout     time.Duration `mapstructure:"TOOL_TIMEOUT"`
	RetryBaseDelay  time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	RetryMaxDelay   time.Duration `mapstructure:"RETRY_MAX_DELAY"`
	RetryMultiplier float64       `mapstructure:"RETRY_MULTIPLIER"`
	RetryJitter     float64       `mapstructure:"RETRY_JITTER"`

	BreakerThreshold    int           `mapstructure:"BREAKER_THRESHOLD"`
	BreakerResetTimeout time.Duration `mapstructure:"BREAKER_RESET_TIMEOUT"`

	RateLimitQuota  int           `mapstructure:"RATE_LIMIT_QUOTA"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/scribe.db")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetDefault("PROVIDER_BASE_URL", "http://localhost:11434/v1")
	viper.SetDefault("PROVIDER_API_KEY", "")
	viper.SetDefault("MAIN_MODEL", "openai/gpt-oss-20b")
	viper.SetDefault("SUPPORT_MODEL", "openai/gpt-oss-20b")
	viper.SetDefault("SYSTEM_PROMPT", "You are a helpful assistant for a personal knowledge base.")

	viper.SetDefault("MAX_ROUNDS", 10)
	viper.SetDefault("STREAM_TIMEOUT", 120*time.Second)
	viper.SetDefault("STREAM_RETRIES", 3)
	viper.SetDefault("TOOL_TIMEOUT", 30*time.Second)
	viper.SetDefault("RETRY_BASE_DELAY", time.Second)
	viper.SetDefault("RETRY_MAX_DELAY", 10*time.Second)
	viper.SetDefault("RETRY_MULTIPLIER", 2.0)
	viper.SetDefault("RETRY_JITTER", 0.1)

	viper.SetDefault("BREAKER_THRESHOLD", 5)
	viper.SetDefault("BREAKER_RESET_TIMEOUT", 60*time.Second)

	viper.SetDefault("RATE_LIMIT_QUOTA", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
