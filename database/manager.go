/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// Manager owns the one connection an initialization run uses.
type Manager struct {
	config *ConnectionConfig
	db     *bun.DB
	sqlDB  *sql.DB
	logger Logger
}

// NewManager returns a manager for config. A nil config means
// DefaultConnectionConfig.
func NewManager(config *ConnectionConfig) *Manager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &Manager{
		config: config,
		logger: GetLogger(),
	}
}

func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = NopLogger()
	}
	m.logger = logger
}

// Connect opens the connection and pings it, since sql.Open does not dial.
// Every failure is a *ConnectionError.
func (m *Manager) Connect(ctx context.Context) error {
	if m.db != nil {
		return nil
	}

	sqlDB, db, err := m.createConnection()
	if err != nil {
		return m.connectionError("open", err)
	}

	// one connection, no pool
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	timeout := m.config.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(ctxTimeout); err != nil {
		_ = db.Close()
		return m.connectionError("ping", err)
	}

	m.sqlDB, m.db = sqlDB, db
	m.logger.Info("Database connected", "type", m.config.Type, "host", m.config.Host, "dbname", m.config.DBName)
	return nil
}

func (m *Manager) connectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Type: m.config.Type, Host: m.config.Host, Err: err}
}

func (m *Manager) createConnection() (*sql.DB, *bun.DB, error) {
	var (
		driverName string
		dsn        string
		dialect    schema.Dialect
	)

	switch m.config.Type {
	case TypeMySQL:
		driverName, dialect = "mysql", mysqldialect.New()
		dsn = mysqlDSN(m.config)
	case TypePostgres, "postgresql":
		driverName, dialect = "postgres", pgdialect.New()
		dsn = postgresDSN(m.config)
	case TypeSQLite, "sqlite3":
		driverName, dialect = sqliteshim.ShimName, sqlitedialect.New()
		dsn = sqliteDSN(m.config)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %q, supported types: %v", m.config.Type, SupportedTypes)
	}

	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, err
	}
	db := bun.NewDB(sqlDB, dialect)

	db.AddQueryHook(newScriptHook(m.logger))
	if m.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	return sqlDB, db, nil
}

func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	if cfg.ConnectTimeout > 0 {
		// lib/pq reads 0 as no timeout, so never round a short timeout down to it
		q.Set("connect_timeout", strconv.Itoa(int(math.Ceil(cfg.ConnectTimeout.Seconds()))))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// mysqlDSN enables multiStatements so a whole script runs as one Exec.
func mysqlDSN(cfg *ConnectionConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.MultiStatements = true
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectTimeout
	return mc.FormatDSN()
}

func sqliteDSN(cfg *ConnectionConfig) string {
	name := cfg.DBName
	if name == ":memory:" || strings.HasPrefix(name, "file:") || strings.HasSuffix(name, ".db") {
		return name
	}
	return name + ".db"
}

// DB returns the bun handle, nil before Connect.
func (m *Manager) DB() *bun.DB {
	return m.db
}

// Disconnect closes the connection. It is safe to call more than once.
func (m *Manager) Disconnect() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db, m.sqlDB = nil, nil
	if err != nil {
		m.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	m.logger.Debug("Database connection closed")
	return nil
}
