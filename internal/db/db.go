package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tradelog/internal/config"
	"tradelog/internal/logger"
)

var ErrNoDSN = errors.New("db: dsn is empty")

// DB is the postgres connection backing the document store.
type DB struct {
	Gorm *gorm.DB
	SQL  *sql.DB
}

// Open connects, applies the pool limits and verifies the connection.
func Open(ctx context.Context, cfg config.DBConfig, log *zap.Logger) (*DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrNoDSN
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:  newGormLogger(logger.OrNop(log), 500*time.Millisecond),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	d := &DB{Gorm: gdb, SQL: sqldb}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.Ping(pingCtx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.SQL == nil {
		return nil
	}
	return d.SQL.PingContext(ctx)
}

// SetTimezone sets the session time zone; an empty name is a no-op.
func (d *DB) SetTimezone(tz string) error {
	tz = strings.TrimSpace(tz)
	if d == nil || d.SQL == nil || tz == "" {
		return nil
	}
	_, err := d.SQL.Exec("SET TIME ZONE '" + strings.ReplaceAll(tz, "'", "") + "'")
	return err
}
