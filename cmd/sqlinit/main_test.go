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

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/sqlinit/config"
	"github.com/tomoncle/sqlinit/database"
	"github.com/tomoncle/sqlinit/scripts"
	"github.com/tomoncle/sqlinit/utils"
)

func environ() map[string]string {
	return map[string]string{
		config.EnvDBName: "shop",
		config.EnvDBUser: "shop_admin",
		config.EnvDBHost: "localhost",
		config.EnvDBPwd:  "secret",
		config.EnvDBPort: "5432",
	}
}

func loader(env map[string]string) loadFunc {
	return func() (*config.Config, error) { return config.Load(env) }
}

type initCall struct {
	cfg *database.ConnectionConfig
	set *scripts.Set
}

func recorder(calls *[]initCall, result error) initFunc {
	return func(_ context.Context, cfg *database.ConnectionConfig, set *scripts.Set) error {
		*calls = append(*calls, initCall{cfg: cfg, set: set})
		return result
	}
}

// withArgs pins the arguments so cobra never falls back to os.Args, which
// carry the test flags.
func withArgs(cmd *cobra.Command, args ...string) *cobra.Command {
	cmd.SetArgs(append([]string{}, args...))
	return cmd
}

func execute(cmd *cobra.Command, args ...string) error {
	return withArgs(cmd, args...).ExecuteContext(context.Background())
}

func TestRunPassesConfigAndBundledScripts(t *testing.T) {
	var calls []initCall
	cmd := newRootCommand(loader(environ()), recorder(&calls, nil))

	require.NoError(t, execute(cmd))

	require.Len(t, calls, 1)
	assert.Equal(t, "postgres", calls[0].cfg.Type)
	assert.Equal(t, "localhost", calls[0].cfg.Host)
	assert.Equal(t, 5432, calls[0].cfg.Port)
	assert.Equal(t, "shop", calls[0].cfg.DBName)
	assert.Equal(t, scripts.OriginEmbedded, calls[0].set.Origin)
	assert.Equal(t, scripts.DefaultSchemaFile, calls[0].set.Schema)
	assert.Equal(t, scripts.DefaultSeedFile, calls[0].set.Seed)
}

func TestMissingVariableStopsBeforeConnecting(t *testing.T) {
	for _, key := range config.Required {
		t.Run(key, func(t *testing.T) {
			env := environ()
			delete(env, key)

			var calls []initCall
			err := execute(newRootCommand(loader(env), recorder(&calls, nil)))

			var cfgErr *config.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, []string{key}, cfgErr.Missing)
			assert.Empty(t, calls)
		})
	}
}

func TestRejectsPositionalArguments(t *testing.T) {
	var calls []initCall
	err := execute(newRootCommand(loader(environ()), recorder(&calls, nil)), "extra")

	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestMissingScriptDirectory(t *testing.T) {
	env := environ()
	env["PROJ_DB_SQL_DIR"] = filepath.Join(t.TempDir(), "missing")

	var calls []initCall
	err := execute(newRootCommand(loader(env), recorder(&calls, nil)))

	var fileErr *database.FileAccessError
	require.ErrorAs(t, err, &fileErr)
	assert.Empty(t, calls)
}

func TestInitializationErrorIsReturned(t *testing.T) {
	cause := &database.ConnectionError{Op: "ping", Type: "postgres", Host: "localhost", Err: errors.New("refused")}

	var calls []initCall
	err := execute(newRootCommand(loader(environ()), recorder(&calls, cause)))

	var connErr *database.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Len(t, calls, 1)
}

func TestRunExitCodeAndDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	utils.SetOutput(&buf)
	t.Cleanup(func() { utils.SetOutput(os.Stderr) })

	env := environ()
	delete(env, config.EnvDBPwd)
	var calls []initCall

	code := run(context.Background(), withArgs(newRootCommand(loader(env), recorder(&calls, nil))))

	assert.Equal(t, 1, code)
	assert.Empty(t, calls)
	assert.Contains(t, buf.String(), "SQLINIT]")
	assert.Contains(t, buf.String(), "Database initialization failed")
	assert.Contains(t, buf.String(), config.EnvDBPwd)

	buf.Reset()
	code = run(context.Background(), withArgs(newRootCommand(loader(environ()), recorder(&calls, nil))))
	assert.Equal(t, 0, code)
	assert.Len(t, calls, 1)
	assert.NotContains(t, buf.String(), "Database initialization failed")
}

func TestBundledScriptsNeedPostgres(t *testing.T) {
	env := environ()
	env["PROJ_DB_TYPE"] = "sqlite"
	env[config.EnvDBName] = filepath.Join(t.TempDir(), "shop")

	var calls []initCall
	err := execute(newRootCommand(loader(env), recorder(&calls, nil)))

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "PROJ_DB_SQL_DIR")
	assert.Empty(t, calls)
}

func TestSQLiteEndToEnd(t *testing.T) {
	env := environ()
	env["PROJ_DB_TYPE"] = "sqlite"
	env[config.EnvDBName] = filepath.Join(t.TempDir(), "shop")
	env["PROJ_DB_SQL_DIR"] = writeFixtures(t)

	err := execute(newRootCommand(loader(env), database.Initialize))
	require.NoError(t, err)
}

// writeFixtures lays out a sqlite-compatible script directory with a
// manifest that renames both scripts.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		scripts.ManifestFile: "schema: schema.sql\nseed: seed.sql\n",
		"schema.sql":         "DROP TABLE IF EXISTS brands;\nCREATE TABLE brands (id INTEGER PRIMARY KEY, name TEXT NOT NULL);\n",
		"seed.sql":           "INSERT INTO brands (name) VALUES ('Apple'), ('Lego');\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}
