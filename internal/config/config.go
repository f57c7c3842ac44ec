// Package config loads service configuration from configs/config.yml and
// ACSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string          `mapstructure:"port"`
	LogLevel  string          `mapstructure:"log_level"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Weather   WeatherConfig   `mapstructure:"weather"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Replay    ReplayConfig    `mapstructure:"replay"`
}

type HTTPConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type WeatherConfig struct {
	// DefaultPath is used when a request carries no weather data.
	DefaultPath string `mapstructure:"default_path"`
}

type NarrativeConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxFailures  int           `mapstructure:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type ReplayConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

const envPrefix = "ACSIM"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("http.read_header_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_upload_bytes", 8<<20)

	v.SetDefault("db.path", "acsim.db")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("weather.default_path", "")

	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.model", "deepseek-chat")
	v.SetDefault("narrative.temperature", 0.7)
	v.SetDefault("narrative.max_tokens", 300)
	v.SetDefault("narrative.timeout", 30*time.Second)
	v.SetDefault("narrative.breaker.max_failures", 3)
	v.SetDefault("narrative.breaker.reset_timeout", 30*time.Second)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "acsim.runs")

	v.SetDefault("replay.batch_size", 168)
}

// Load reads configuration. An explicit path must exist; with an empty path
// configs/config.yml and ./config.yml are tried and defaults apply when
// neither is present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Narrative.APIKey == "" {
		cfg.Narrative.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return errors.New("config: auth.signing_key is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("config: auth.token_ttl must be positive")
	}
	if c.Narrative.Enabled && c.Narrative.BaseURL == "" {
		return errors.New("config: narrative.base_url is required when narrative is enabled")
	}
	if c.Replay.BatchSize <= 0 {
		return errors.New("config: replay.batch_size must be positive")
	}
	return nil
}

// KafkaEnabled reports whether run summaries should be published.
func (c Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != "" }
