package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cofoundly/cofoundly-backend/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	pgMaxIdleConns    = 10
	pgMaxOpenConns    = 100
	pgConnMaxLifetime = time.Hour
	connectTimeout    = 5 * time.Second
)

// NewPostgresDB opens the postgres connection pool backing the check-in,
// contact and profile repositories and verifies it with a ping.
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxIdleConns(pgMaxIdleConns)
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetConnMaxLifetime(pgConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to postgres",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.DBName))
	return db, nil
}
