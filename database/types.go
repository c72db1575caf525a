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
	"time"
)

const (
	TypePostgres = "postgres"
	TypeMySQL    = "mysql"
	TypeSQLite   = "sqlite"
)

// SupportedTypes lists the accepted values of ConnectionConfig.Type.
var SupportedTypes = []string{TypePostgres, TypeMySQL, TypeSQLite}

// ConnectionConfig describes the single connection the initializer opens.
type ConnectionConfig struct {
	Type           string        `json:"type"` // postgres、mysql、sqlite
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	Username       string        `json:"username"`
	Password       string        `json:"-"`
	DBName         string        `json:"dbname"`
	SSLMode        string        `json:"sslmode"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	EnableQueryLog bool          `json:"enable_query_log"`
}

// DefaultConnectionConfig returns a postgres config with the defaults the
// command line applies when optional variables are unset.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:           TypePostgres,
		SSLMode:        "disable",
		ConnectTimeout: time.Second * 10,
	}
}

// IsSupportedType reports whether t names a dialect the manager can open.
func IsSupportedType(t string) bool {
	switch t {
	case TypePostgres, "postgresql", TypeMySQL, TypeSQLite, "sqlite3":
		return true
	}
	return false
}

func IsPostgres(t string) bool {
	return t == TypePostgres || t == "postgresql"
}
