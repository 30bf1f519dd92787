package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is loaded once and treated
// as immutable; each component receives its slice at construction.
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Topics  Topics  `mapstructure:"topics"`
	Feeds   Feeds   `mapstructure:"feeds"`
	Images  Images  `mapstructure:"images"`
	Publish Publish `mapstructure:"publish"`
	Server  Server  `mapstructure:"server"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Topics holds topic-selection configuration
type Topics struct {
	// RandomThreshold is the probability of skipping feed lookup and going
	// straight to AI subject generation.
	RandomThreshold float64 `mapstructure:"random_threshold"`
	// MaxGenerationRetries caps subject regeneration when the generated
	// title collides with an already-used one.
	MaxGenerationRetries int `mapstructure:"max_generation_retries"`
	// Weights maps content type to its sampling weight.
	Weights map[string]float64 `mapstructure:"weights"`
}

// Feeds holds feed ingestion configuration
type Feeds struct {
	URLs      []string `mapstructure:"urls"`
	UserAgent string   `mapstructure:"user_agent"`
	Timeout   string   `mapstructure:"timeout"`
}

// Images holds image search configuration
type Images struct {
	Provider string       `mapstructure:"provider"`
	PageSize int          `mapstructure:"page_size"`
	Timeout  string       `mapstructure:"timeout"`
	Pexels   PexelsConfig `mapstructure:"pexels"`
}

// PexelsConfig holds Pexels API configuration
type PexelsConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Publish holds publishing platform configuration
type Publish struct {
	WordCount int           `mapstructure:"word_count"`
	Blogger   BloggerConfig `mapstructure:"blogger"`
}

// BloggerConfig holds Blogger API configuration
type BloggerConfig struct {
	BlogID      string `mapstructure:"blog_id"`
	AccessToken string `mapstructure:"access_token"`
	Timeout     string `mapstructure:"timeout"`
	// Endpoint overrides the API base URL, e.g. for a self-hosted proxy.
	Endpoint string `mapstructure:"endpoint"`
}

// Server holds the inbound request adapter configuration
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, and environment.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists (for local development)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".autopress")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".autopress")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Topic selection defaults
	viper.SetDefault("topics.random_threshold", 0.3)
	viper.SetDefault("topics.max_generation_retries", 3)
	viper.SetDefault("topics.weights", map[string]float64{
		"how-to":           0.20,
		"listicle":         0.15,
		"opinion":          0.10,
		"industry-insight": 0.15,
		"tutorial":         0.15,
		"review":           0.05,
		"article":          0.10,
		"news":             0.10,
	})

	// Feed defaults
	viper.SetDefault("feeds.user_agent", "Autopress/1.0")
	viper.SetDefault("feeds.timeout", "30s")

	// Image defaults
	viper.SetDefault("images.provider", "pexels")
	viper.SetDefault("images.page_size", 5)
	viper.SetDefault("images.timeout", "15s")

	// Publish defaults
	viper.SetDefault("publish.word_count", 800)
	viper.SetDefault("publish.blogger.timeout", "30s")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("images.pexels.api_key", []string{
		"PEXELS_API_KEY",
	})

	bindEnvKeys("publish.blogger.blog_id", []string{
		"BLOGGER_BLOG_ID",
		"BLOG_ID",
	})

	bindEnvKeys("publish.blogger.access_token", []string{
		"BLOGGER_ACCESS_TOKEN",
		"BLOGGER_TOKEN",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"AUTOPRESS_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig checks configuration invariants that would otherwise fail
// deep inside a pipeline run.
func validateConfig(config *Config) error {
	if config.Topics.RandomThreshold < 0 || config.Topics.RandomThreshold > 1 {
		return fmt.Errorf("topics.random_threshold must be in [0, 1], got %f", config.Topics.RandomThreshold)
	}
	if config.Topics.MaxGenerationRetries < 1 {
		return fmt.Errorf("topics.max_generation_retries must be at least 1, got %d", config.Topics.MaxGenerationRetries)
	}
	for name, weight := range config.Topics.Weights {
		if weight < 0 {
			return fmt.Errorf("topics.weights[%s] must not be negative, got %f", name, weight)
		}
	}
	return nil
}

// Reset clears the global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}
