package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CALORIFIC"

type GeminiSettings struct {
	APIKey   string
	Model    string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

type ProductSettings struct {
	BaseURL string
	Timeout time.Duration
	TTL     time.Duration
}

type CacheSettings struct {
	Backend  string
	RedisURL string
	TTL      time.Duration
}

type ServerSettings struct {
	Addr         string
	AllowOrigins []string
}

type LogSettings struct {
	Level  string
	Format string
}

type Settings struct {
	DBPath   string
	Gemini   GeminiSettings
	Products ProductSettings
	Cache    CacheSettings
	Server   ServerSettings
	Log      LogSettings
}

type LoadOptions struct {
	// ConfigFile overrides the calorific.yaml search.
	ConfigFile string
	// EnvFile is loaded before the environment is read; missing files are ignored.
	EnvFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.language", "English")
	v.SetDefault("gemini.timeout", "30s")
	v.SetDefault("products.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("products.timeout", "15s")
	v.SetDefault("products.ttl", "720h")
	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl", "168h")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadSettings layers defaults, calorific.yaml, .env and CALORIFIC_* variables.
func LoadSettings(opts LoadOptions) (Settings, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("calorific")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	s := Settings{
		DBPath: strings.TrimSpace(v.GetString("db.path")),
		Gemini: GeminiSettings{
			APIKey:   strings.TrimSpace(v.GetString("gemini.api_key")),
			Model:    strings.TrimSpace(v.GetString("gemini.model")),
			BaseURL:  strings.TrimSpace(v.GetString("gemini.base_url")),
			Language: strings.TrimSpace(v.GetString("gemini.language")),
			Timeout:  v.GetDuration("gemini.timeout"),
		},
		Products: ProductSettings{
			BaseURL: strings.TrimSpace(v.GetString("products.base_url")),
			Timeout: v.GetDuration("products.timeout"),
			TTL:     v.GetDuration("products.ttl"),
		},
		Cache: CacheSettings{
			Backend:  strings.ToLower(strings.TrimSpace(v.GetString("cache.backend"))),
			RedisURL: strings.TrimSpace(v.GetString("cache.redis_url")),
			TTL:      v.GetDuration("cache.ttl"),
		},
		Server: ServerSettings{
			Addr:         strings.TrimSpace(v.GetString("server.addr")),
			AllowOrigins: v.GetStringSlice("server.allow_origins"),
		},
		Log: LogSettings{
			Level:  strings.TrimSpace(v.GetString("log.level")),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		},
	}
	if s.Gemini.APIKey == "" {
		for _, key := range []string{"GEMINI_API_KEY", "API_KEY"} {
			if val := strings.TrimSpace(os.Getenv(key)); val != "" {
				s.Gemini.APIKey = val
				break
			}
		}
	}
	switch s.Cache.Backend {
	case "sqlite", "redis", "off":
	case "":
		s.Cache.Backend = "sqlite"
	default:
		return Settings{}, fmt.Errorf("invalid cache.backend %q (use sqlite, redis or off)", s.Cache.Backend)
	}
	if s.Gemini.Timeout <= 0 {
		s.Gemini.Timeout = 30 * time.Second
	}
	if s.Products.Timeout <= 0 {
		s.Products.Timeout = 15 * time.Second
	}
	return s, nil
}
