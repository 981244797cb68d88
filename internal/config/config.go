package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every runtime knob for the API and the analytics worker.
// Values resolve in three layers: built-in defaults, then an optional YAML
// file named by CONFIG_FILE, then environment variables.
type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	GeminiAPIKey        string        `yaml:"gemini_api_key"`
	GeminiModel         string        `yaml:"gemini_model"`
	GeminiFallbackModel string        `yaml:"gemini_fallback_model"`
	GeminiBaseURL       string        `yaml:"gemini_base_url"`
	GeminiTimeout       time.Duration `yaml:"gemini_timeout"`

	BreakerEnabled bool `yaml:"breaker_enabled"`

	PostgresDSN string `yaml:"postgres_dsn"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`

	IdentifyRatePerSecond float64 `yaml:"identify_rate_per_second"`
	IdentifyRateBurst     int     `yaml:"identify_rate_burst"`

	WorkerMetricsPort string `yaml:"worker_metrics_port"`
}

func defaults() Config {
	return Config{
		APIPort:               "8080",
		LogLevel:              "info",
		GeminiModel:           "gemini-1.5-flash",
		GeminiFallbackModel:   "gemini-pro-vision",
		GeminiTimeout:         60 * time.Second,
		BreakerEnabled:        true,
		NATSSubject:           "signs.identified",
		CacheTTL:              15 * time.Minute,
		IdentifyRatePerSecond: 5,
		IdentifyRateBurst:     10,
		WorkerMetricsPort:     "9091",
	}
}

// Load resolves the configuration. GEMINI_API_KEY is the only required
// setting; Postgres, NATS and Redis are optional and stay disabled when
// their addresses are empty.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return Config{}, fmt.Errorf("config: GEMINI_API_KEY is required")
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.APIPort, "API_PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.GeminiFallbackModel, "GEMINI_FALLBACK_MODEL")
	setString(&cfg.GeminiBaseURL, "GEMINI_BASE_URL")
	setString(&cfg.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.NATSURL, "NATS_URL")
	setString(&cfg.NATSSubject, "NATS_SUBJECT")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.WorkerMetricsPort, "WORKER_METRICS_PORT")

	if err := setDuration(&cfg.GeminiTimeout, "GEMINI_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.CacheTTL, "CACHE_TTL"); err != nil {
		return err
	}
	if err := setBool(&cfg.BreakerEnabled, "BREAKER_ENABLED"); err != nil {
		return err
	}
	if err := setInt(&cfg.RedisDB, "REDIS_DB"); err != nil {
		return err
	}
	if err := setInt(&cfg.IdentifyRateBurst, "IDENTIFY_RATE_BURST"); err != nil {
		return err
	}
	if err := setFloat(&cfg.IdentifyRatePerSecond, "IDENTIFY_RATE_PER_SECOND"); err != nil {
		return err
	}
	return nil
}

func setString(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	}
}

func setDuration(target *time.Duration, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func setBool(target *bool, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func setInt(target *int, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func setFloat(target *float64, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = parsed
	return nil
}
