package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

type ConnectionInfo struct {
	Host     string
	Port     int
	Username string
	DBName   string
	SSLMode  string
	Password string
	MaxConns int
}

func (i ConnectionInfo) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s password=%s",
		i.Host,
		i.Port,
		i.Username,
		i.DBName,
		i.SSLMode,
		i.Password,
	)
}

func NewPostgresConnection(ctx context.Context, info ConnectionInfo) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", info.DSN())
	if err != nil {
		return nil, err
	}

	if info.MaxConns > 0 {
		db.SetMaxOpenConns(info.MaxConns)
		db.SetMaxIdleConns(info.MaxConns / 2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func Close(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("postgres close failed", "error", err)
	}
}
