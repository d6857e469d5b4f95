package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/nexuscrm/fieldstudio/internal/config"
	"github.com/nexuscrm/fieldstudio/internal/logger"
)

const tlsConfigName = "fieldstudio"

var tlsOnce sync.Once

// Open connects to MySQL/TiDB and verifies the connection. Remote hosts use TLS.
// sql.DB is safe for concurrent use and pools its own connections.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DSN()
	if !cfg.IsLocal() {
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig(tlsConfigName, &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: cfg.Host,
			}); err != nil {
				logger.Error("failed to register TLS config", "error", err)
			}
		})
		dsn += "&tls=" + tlsConfigName
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Idle connections match open connections so the pool does not churn ports.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSecs) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// IsDuplicateKey reports whether err is a MySQL duplicate key violation.
func IsDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
