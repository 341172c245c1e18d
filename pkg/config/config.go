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
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Insights InsightsConfig
	Severity SeverityConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int

	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
	ApplicationName  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// InsightsConfig governs the per-student insight report.
type InsightsConfig struct {
	Enabled          bool
	LookbackDays     int
	HistoryLimit     int
	FetchTimeout     time.Duration
	MoodHistoryLimit int
	HelpExcerptLimit int
}

// SeverityConfig governs the school-wide wellbeing severity overview.
type SeverityConfig struct {
	Enabled      bool
	CacheTTL     time.Duration
	DefaultLimit int
}

// MetricsConfig toggles Prometheus exposure.
type MetricsConfig struct {
	Enabled bool
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		ConnMaxLifetime:  parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		StatementTimeout: parseDuration(v.GetString("DB_STATEMENT_TIMEOUT"), 10*time.Second),
		ApplicationName:  v.GetString("DB_APPLICATION_NAME"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Insights = InsightsConfig{
		Enabled:          v.GetBool("ENABLE_INSIGHTS"),
		LookbackDays:     positiveOr(v.GetInt("INSIGHTS_LOOKBACK_DAYS"), 30),
		HistoryLimit:     positiveOr(v.GetInt("INSIGHTS_HISTORY_LIMIT"), 10),
		FetchTimeout:     parseDuration(v.GetString("INSIGHTS_FETCH_TIMEOUT"), 5*time.Second),
		MoodHistoryLimit: positiveOr(v.GetInt("INSIGHTS_MOOD_HISTORY_LIMIT"), 14),
		HelpExcerptLimit: positiveOr(v.GetInt("INSIGHTS_HELP_EXCERPT_LIMIT"), 5),
	}

	cfg.Severity = SeverityConfig{
		Enabled:      v.GetBool("ENABLE_SEVERITY"),
		CacheTTL:     parseDuration(v.GetString("SEVERITY_CACHE_TTL"), time.Minute),
		DefaultLimit: positiveOr(v.GetInt("SEVERITY_DEFAULT_LIMIT"), 50),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_wellbeing")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_STATEMENT_TIMEOUT", "10s")
	v.SetDefault("DB_APPLICATION_NAME", "sma-wellbeing-api")

	v.SetDefault("ENABLE_REDIS", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_INSIGHTS", true)
	v.SetDefault("INSIGHTS_LOOKBACK_DAYS", 30)
	v.SetDefault("INSIGHTS_HISTORY_LIMIT", 10)
	v.SetDefault("INSIGHTS_FETCH_TIMEOUT", "5s")
	v.SetDefault("INSIGHTS_MOOD_HISTORY_LIMIT", 14)
	v.SetDefault("INSIGHTS_HELP_EXCERPT_LIMIT", 5)

	v.SetDefault("ENABLE_SEVERITY", true)
	v.SetDefault("SEVERITY_CACHE_TTL", "60s")
	v.SetDefault("SEVERITY_DEFAULT_LIMIT", 50)

	v.SetDefault("ENABLE_METRICS", true)
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

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
