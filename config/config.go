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

// Package config resolves the initializer settings from environment
// variables into an explicit Config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/tomoncle/sqlinit/database"
	"github.com/tomoncle/sqlinit/utils"
)

const (
	EnvDBName = "PROJ_DB_NAME"
	EnvDBUser = "PROJ_DB_USER"
	EnvDBHost = "PROJ_DB_HOST"
	EnvDBPwd  = "PROJ_DB_PWD"
	EnvDBPort = "PROJ_DB_PORT"
)

// Required lists the variables that must be set and non-empty.
var Required = []string{EnvDBName, EnvDBUser, EnvDBHost, EnvDBPwd, EnvDBPort}

type Config struct {
	DBName string `env:"PROJ_DB_NAME,required,notEmpty"`
	DBUser string `env:"PROJ_DB_USER,required,notEmpty"`
	DBHost string `env:"PROJ_DB_HOST,required,notEmpty"`
	DBPass string `env:"PROJ_DB_PWD,required,notEmpty"`
	DBPort int    `env:"PROJ_DB_PORT,required,notEmpty"`

	DBType         string        `env:"PROJ_DB_TYPE" envDefault:"postgres"`
	SSLMode        string        `env:"PROJ_DB_SSLMODE" envDefault:"disable"`
	ConnectTimeout time.Duration `env:"PROJ_DB_CONNECT_TIMEOUT" envDefault:"10s"`
	QueryLog       bool          `env:"PROJ_DB_QUERY_LOG" envDefault:"false"`
	SQLDir         string        `env:"PROJ_DB_SQL_DIR"`

	LogLevel  string `env:"PROJ_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"PROJ_LOG_FORMAT" envDefault:"text"`
}

// ConfigurationError reports missing or malformed settings. It is returned
// before any connection is attempted.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required environment variables: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Load resolves a Config from environ. An empty value counts as unset.
func Load(environ map[string]string) (*Config, error) {
	var missing []string
	for _, key := range Required {
		if environ[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Environment: environ}); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return cfg, nil
}

// FromEnv loads .env from the working directory if present, then resolves
// the process environment. Variables already set win over .env.
func FromEnv() (*Config, error) {
	_ = godotenv.Load()
	return Load(utils.Environ())
}

func (c *Config) Validate() error {
	if c.DBPort <= 0 || c.DBPort > 65535 {
		return fmt.Errorf("%s must be a port number, got %d", EnvDBPort, c.DBPort)
	}
	if !database.IsSupportedType(c.DBType) {
		return fmt.Errorf("PROJ_DB_TYPE %q is not one of %v", c.DBType, database.SupportedTypes)
	}
	// the bundled scripts are written for postgres
	if c.SQLDir == "" && !database.IsPostgres(c.DBType) {
		return fmt.Errorf("PROJ_DB_TYPE %q requires PROJ_DB_SQL_DIR, the bundled scripts only run on postgres", c.DBType)
	}
	return nil
}

// ConnectionConfig converts c for database.Manager.
func (c *Config) ConnectionConfig() *database.ConnectionConfig {
	return &database.ConnectionConfig{
		Type:           c.DBType,
		Host:           c.DBHost,
		Port:           c.DBPort,
		Username:       c.DBUser,
		Password:       c.DBPass,
		DBName:         c.DBName,
		SSLMode:        c.SSLMode,
		ConnectTimeout: c.ConnectTimeout,
		EnableQueryLog: c.QueryLog,
	}
}
