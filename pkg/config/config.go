package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// DevBackendURL is the tunnel the front-end team points at while developing.
	DevBackendURL = "https://tbs9k5m4-1337.inc1.devtunnels.ms"

	devSessionSecret = "dev_session_secret"
)

type Config struct {
	Env  string
	Port int

	Backend   BackendConfig
	Redis     RedisConfig
	Session   SessionConfig
	CORS      CORSConfig
	Log       LogConfig
	Directory DirectoryConfig
	Upload    UploadConfig
}

// BackendConfig points the portal at the CMS.
type BackendConfig struct {
	URL          string
	MediaBaseURL string
	Timeout      time.Duration
	// Fallback reports whether URL came from DevBackendURL.
	Fallback bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the signed session cookie and server-side session lifetime.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DirectoryConfig toggles caching of the student listing.
type DirectoryConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// UploadConfig bounds media uploads forwarded to the CMS.
type UploadConfig struct {
	MaxBytes int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	backendURL := strings.TrimRight(firstNonEmpty(v.GetString("BACKEND_URL"), v.GetString("NEXT_PUBLIC_BACKEND_URL")), "/")
	fallback := false
	if backendURL == "" {
		if cfg.Env == EnvProduction {
			return nil, errors.New("BACKEND_URL is required in production")
		}
		backendURL = DevBackendURL
		fallback = true
	}
	cfg.Backend = BackendConfig{
		URL:          backendURL,
		MediaBaseURL: strings.TrimRight(firstNonEmpty(v.GetString("MEDIA_BASE_URL"), backendURL), "/"),
		Timeout:      parseDuration(v.GetString("BACKEND_TIMEOUT"), 10*time.Second),
		Fallback:     fallback,
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 7*24*time.Hour),
		Secure:     cfg.Env == EnvProduction,
	}
	if cfg.Env == EnvProduction && (cfg.Session.Secret == "" || cfg.Session.Secret == devSessionSecret) {
		return nil, errors.New("SESSION_SECRET must be set in production")
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Directory = DirectoryConfig{
		CacheEnabled: v.GetBool("ENABLE_DIRECTORY_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DIRECTORY_CACHE_TTL"), 2*time.Minute),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Upload = UploadConfig{MaxBytes: maxUpload}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("BACKEND_URL", "")
	v.SetDefault("NEXT_PUBLIC_BACKEND_URL", "")
	v.SetDefault("MEDIA_BASE_URL", "")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("SESSION_COOKIE_NAME", "fomo_session")
	v.SetDefault("SESSION_TTL", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_DIRECTORY_CACHE", false)
	v.SetDefault("DIRECTORY_CACHE_TTL", "2m")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
