package database

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/sma-wellbeing-api/pkg/config"
)

const connectTimeout = 5 * time.Second

// DSN renders the lib/pq keyword/value connection string for cfg. Values are quoted
// so passwords may contain spaces. A statement timeout is sent as a session parameter.
func DSN(cfg config.DatabaseConfig) string {
	params := [][2]string{
		{"host", cfg.Host},
		{"port", fmt.Sprint(cfg.Port)},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", cfg.SSLMode},
		{"connect_timeout", fmt.Sprint(int(connectTimeout.Seconds()))},
	}
	if cfg.ApplicationName != "" {
		params = append(params, [2]string{"application_name", cfg.ApplicationName})
	}
	if cfg.StatementTimeout > 0 {
		params = append(params, [2]string{"statement_timeout", fmt.Sprint(cfg.StatementTimeout.Milliseconds())})
	}

	parts := make([]string, 0, len(params))
	for _, kv := range params {
		if kv[1] == "" {
			continue
		}
		parts = append(parts, kv[0]+"="+quote(kv[1]))
	}
	return strings.Join(parts, " ")
}

func quote(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return "'" + value + "'"
}

// Redacted renders a log-safe description of the target database.
func Redacted(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(cfg.User),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Name,
	}
	return u.String()
}

// NewPostgres opens and pings the wellbeing database.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", Redacted(cfg), err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", Redacted(cfg), err)
	}

	return db, nil
}
