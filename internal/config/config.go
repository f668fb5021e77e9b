package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	// Debug exposes exception type and message on 500 responses.
	Debug bool `mapstructure:"debug"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type AuthConfig struct {
	Secret     string `mapstructure:"secret"`
	Algorithm  string `mapstructure:"algorithm"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
	// Directory selects the subject store: passthrough or memory.
	Directory string `mapstructure:"directory"`
}

func (a AuthConfig) TTL() time.Duration {
	return time.Duration(a.TTLMinutes) * time.Minute
}

// ProviderConfig holds the credential and endpoint of one upstream provider.
// An empty APIKey means the provider is not configured.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	// Version is only read by the anthropic adapter.
	Version string `mapstructure:"version"`
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Google    ProviderConfig `mapstructure:"google"`
}

// Get returns the configuration for a provider by its wire name.
func (p ProvidersConfig) Get(name string) (ProviderConfig, bool) {
	switch name {
	case "openai":
		return p.OpenAI, true
	case "anthropic":
		return p.Anthropic, true
	case "google":
		return p.Google, true
	}
	return ProviderConfig{}, false
}

type GatewayConfig struct {
	// RequestTimeout bounds every upstream call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// legacy flat environment names still honoured next to the nested ones
var envAliases = map[string]string{
	"auth.secret":                 "SECRET_KEY",
	"auth.algorithm":              "ALGORITHM",
	"auth.ttl_minutes":            "ACCESS_TOKEN_EXPIRE_MINUTES",
	"providers.openai.api_key":    "OPENAI_API_KEY",
	"providers.anthropic.api_key": "ANTHROPIC_API_KEY",
	"providers.google.api_key":    "GOOGLE_AI_API_KEY",
	"app.debug":                   "DEBUG",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range envAliases {
		_ = v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Butler")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.debug", false)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")

	v.SetDefault("auth.secret", "your-secret-key-change-in-production")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.ttl_minutes", 30)
	v.SetDefault("auth.directory", "passthrough")

	// registered so env-only values reach Unmarshal
	for _, p := range []string{"openai", "anthropic", "google"} {
		v.SetDefault("providers."+p+".api_key", "")
		v.SetDefault("providers."+p+".base_url", "")
	}
	v.SetDefault("providers.anthropic.version", "2023-06-01")

	v.SetDefault("gateway.request_timeout", "60s")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "butler")
}

// Validate rejects configurations the process cannot safely start with.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret must not be empty")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("auth.algorithm %q is not a supported HMAC algorithm", c.Auth.Algorithm)
	}
	if c.Auth.TTLMinutes <= 0 {
		return fmt.Errorf("auth.ttl_minutes must be positive, got %d", c.Auth.TTLMinutes)
	}
	switch c.Auth.Directory {
	case "passthrough", "memory":
	default:
		return fmt.Errorf("auth.directory %q is not one of [passthrough, memory]", c.Auth.Directory)
	}
	if c.Gateway.RequestTimeout <= 0 {
		return errors.New("gateway.request_timeout must be positive")
	}
	if _, err := version.NewVersion(c.App.Version); err != nil {
		return fmt.Errorf("app.version: %w", err)
	}
	return nil
}
