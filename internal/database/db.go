package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"user-admin-service/internal/config"
)

// Open builds the DSN from the loaded configuration, opens the pool and
// pings before anything is served, so a wrong DB_* value fails at startup
// rather than on the first login.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(cfg))
	if err != nil {
		return nil, err
	}

	// Admin traffic is light; a handful of connections is plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// dsn assembles the driver connection string. parseTime makes DATETIME
// columns scan into time.Time, and loc=UTC matches the UTC timestamps the
// repositories write. An empty DB_PASS drops the colon entirely.
func dsn(cfg config.Config) string {
	cred := cfg.DBUser
	if cfg.DBPass != "" {
		cred += ":" + cfg.DBPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, cfg.DBHost, cfg.DBPort, cfg.DBName)
}
