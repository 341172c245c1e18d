package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.Insights.LookbackDays)
	assert.Equal(t, 10, cfg.Insights.HistoryLimit)
	assert.Equal(t, 14, cfg.Insights.MoodHistoryLimit)
	assert.Equal(t, 5, cfg.Insights.HelpExcerptLimit)
	assert.Equal(t, 5*time.Second, cfg.Insights.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.Severity.CacheTTL)
	assert.Equal(t, 50, cfg.Severity.DefaultLimit)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 10*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "sma-wellbeing-api", cfg.Database.ApplicationName)
	assert.True(t, cfg.Redis.Enabled)
}

func TestFromViperOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("INSIGHTS_LOOKBACK_DAYS", 14)
	v.Set("INSIGHTS_HISTORY_LIMIT", -1)
	v.Set("INSIGHTS_FETCH_TIMEOUT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	v.Set("JWT_AUDIENCE", "dashboard")
	v.Set("DB_STATEMENT_TIMEOUT", "2500ms")

	cfg := fromViper(v)

	assert.Equal(t, 14, cfg.Insights.LookbackDays)
	assert.Equal(t, 10, cfg.Insights.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.Insights.FetchTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"dashboard"}, cfg.JWT.Audience)
	assert.Equal(t, 2500*time.Millisecond, cfg.Database.StatementTimeout)
}
