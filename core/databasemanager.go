package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel maps the application log level onto the database log level.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "trace", "debug", "info":
		return LogLevelInfo
	case "warn":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelSilent
	}
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	default:
		return logger.Silent
	}
}

// DatabaseManager owns the connection pool behind the shared session store.
type DatabaseManager struct {
	SqlDB    *sql.DB
	Schema   string
	LogLevel LogLevel
}

// New opens the pool. dsn should NOT include the schema.
func New(dsn string, schema string, maxConnection int) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{SqlDB: sqlDB, Schema: schema}, nil
}

// GetDB gets a *gorm.DB bound to a single connection with `USE schema` applied.
// The caller closes the returned connection.
func (dm *DatabaseManager) GetDB(ctx context.Context) (*gorm.DB, *sql.Conn, error) {
	conn, err := dm.SqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conn: %w", err)
	}

	if dm.Schema != "" {
		if _, err := conn.ExecContext(ctx, "USE `"+dm.Schema+"`"); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to use schema %s: %w", dm.Schema, err)
		}
	}

	dialector := mysql.New(mysql.Config{
		Conn: conn,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(dm.LogLevel.gorm()),
	})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db.WithContext(ctx), conn, nil
}

func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}

// Exec runs fn on a connection scoped to the manager's schema.
func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, conn, err := dm.GetDB(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(db)
}
