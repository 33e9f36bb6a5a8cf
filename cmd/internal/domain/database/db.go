package database

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"atendimentos/cmd/internal/config"
	"atendimentos/cmd/internal/domain/entity"

	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Init opens the store described by cfg, migrates the schema and applies
// the pool limits. URLs with a "file:" prefix or a ".db" suffix open SQLite;
// anything else is handed to the Postgres driver.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(log.New("gorm")),
	})
	if err != nil {
		return nil, err
	}
	if isSQLite(cfg.URL) {
		db.ClauseBuilders["LIMIT"] = BindLimit
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(cfg.IdleTimeout)

	if isSQLite(cfg.URL) {
		// one writer at a time; also keeps ":memory:" on a single database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout+time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewLogger reports slow queries and failures to w. Missing records are
// an expected outcome of lookups and are not logged.
func NewLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// BindLimit renders LIMIT and OFFSET as bound parameters. It replaces the
// SQLite driver's builder, which writes them inline.
func BindLimit(c clause.Clause, builder clause.Builder) {
	limit, ok := c.Expression.(clause.Limit)
	if !ok {
		return
	}
	if limit.Limit == nil || *limit.Limit < 0 {
		if limit.Offset > 0 {
			builder.WriteString("LIMIT -1 OFFSET ")
			builder.AddVar(builder, limit.Offset)
		}
		return
	}
	limit.Build(builder)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&entity.Appointment{})
}

// PoolStats reports the open and idle connection counts of db's pool.
type PoolStats struct {
	Open int
	Idle int
}

func Ping(ctx context.Context, db *gorm.DB) (PoolStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return PoolStats{}, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return PoolStats{}, err
	}
	stats := sqlDB.Stats()
	return PoolStats{Open: stats.OpenConnections, Idle: stats.Idle}, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if isSQLite(cfg.URL) {
		return sqlite.Open(cfg.URL), nil
	}
	dsn, err := PostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return postgres.Open(dsn), nil
}

func isSQLite(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db") || dsn == ":memory:"
}

// PostgresDSN sets sslmode and connect_timeout on cfg.URL, overriding any
// values already present. Both URL and key=value forms are accepted.
func PostgresDSN(cfg config.DatabaseConfig) (string, error) {
	sslmode := "disable"
	if cfg.SSL {
		sslmode = "require"
	}
	timeout := strconv.Itoa(int(cfg.ConnectTimeout.Seconds()))

	if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return "", fmt.Errorf("parse database url: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", sslmode)
		q.Set("connect_timeout", timeout)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	var parts []string
	for _, kv := range strings.Fields(cfg.URL) {
		if strings.HasPrefix(kv, "sslmode=") || strings.HasPrefix(kv, "connect_timeout=") {
			continue
		}
		parts = append(parts, kv)
	}
	parts = append(parts, "sslmode="+sslmode, "connect_timeout="+timeout)
	return strings.Join(parts, " "), nil
}
