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

// Command sqlinit rebuilds a database from its schema-setup and data-seed
// scripts. Connection settings come from PROJ_DB_* environment variables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tomoncle/sqlinit/config"
	"github.com/tomoncle/sqlinit/database"
	"github.com/tomoncle/sqlinit/scripts"
	"github.com/tomoncle/sqlinit/utils"
)

type loadFunc func() (*config.Config, error)

type initFunc func(ctx context.Context, cfg *database.ConnectionConfig, set *scripts.Set) error

func newRootCommand(load loadFunc, initialize initFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sqlinit",
		Short: "Recreate the database schema and load the seed data",
		Long: "sqlinit connects with the PROJ_DB_NAME, PROJ_DB_USER, PROJ_DB_HOST, PROJ_DB_PWD and\n" +
			"PROJ_DB_PORT settings, runs the schema-setup script and then the data-seed script in one\n" +
			"transaction, and commits only if both succeed.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			utils.ConfigureLogLevel(cfg.LogLevel)
			utils.ConfigureConsoleLogFormat(cfg.LogFormat)

			set, err := scripts.Resolve(cfg.SQLDir)
			if err != nil {
				return &database.FileAccessError{Script: cfg.SQLDir, Err: err}
			}
			return initialize(cmd.Context(), cfg.ConnectionConfig(), set)
		},
	}
}

// run executes cmd and reports any failure on the SQLINIT logger. It returns
// the process exit code.
func run(ctx context.Context, cmd *cobra.Command) int {
	database.InitLogger(database.NewDefaultLogger(utils.NewLogger(database.LoggerName)))

	if err := cmd.ExecuteContext(ctx); err != nil {
		database.GetLogger().Error("Database initialization failed", "error", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, newRootCommand(config.FromEnv, database.Initialize))
	stop()
	os.Exit(code)
}
