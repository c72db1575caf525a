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
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/sqlinit/scripts"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	schemaSQL = `CREATE TABLE brands (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);
CREATE TABLE purchases (
    id          INTEGER PRIMARY KEY,
    brand_id    INTEGER NOT NULL REFERENCES brands (id),
    description TEXT NOT NULL
);`

	idempotentSchemaSQL = `DROP TABLE IF EXISTS purchases;
DROP TABLE IF EXISTS brands;
` + schemaSQL

	seedSQL = `INSERT INTO brands (id, name) VALUES (1, 'Apple'), (2, 'Lego');
INSERT INTO purchases (brand_id, description) VALUES (1, 'phone'), (2, 'castle'), (2, 'train');`
)

// sqliteConfig points at a fresh database file under t.TempDir.
func sqliteConfig(t *testing.T) *ConnectionConfig {
	t.Helper()
	return &ConnectionConfig{
		Type:           TypeSQLite,
		DBName:         filepath.Join(t.TempDir(), "init.db"),
		ConnectTimeout: 5 * time.Second,
	}
}

func scriptSet(files map[string]string) *scripts.Set {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return &scripts.Set{
		FS:     fsys,
		Schema: scripts.DefaultSchemaFile,
		Seed:   scripts.DefaultSeedFile,
		Origin: "test",
	}
}

// openVerifier opens an independent connection to the file behind cfg so
// assertions only see committed data.
func openVerifier(t *testing.T, cfg *ConnectionConfig) *sql.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, sqliteDSN(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n))
	return n
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		m[fmt.Sprint(fields[i])] = fields[i+1]
	}
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: m})
}

func (l *recordingLogger) Debug(msg string, fields ...interface{}) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...interface{})  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...interface{})  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...interface{}) { l.record("error", msg, fields) }

// scriptsWith returns the "script" field of every entry logged with msg.
func (l *recordingLogger) scriptsWith(msg string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.msg == msg {
			out = append(out, fmt.Sprint(e.fields["script"]))
		}
	}
	return out
}
